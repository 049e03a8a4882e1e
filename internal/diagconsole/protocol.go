// Package diagconsole implements the optional `--diag-sock` Unix-domain-
// socket interface for driving and observing a running simulation
// headlessly: small debug commands in (tick N, spawn, issue) and tick/
// entity-count telemetry out. The length-prefixed JSON wire format is the
// same shape the teacher's ipc package uses for its own socket, but the
// per-type handler registry that package builds on top of it is dropped
// here in favor of a plain switch over the console's four fixed commands
// (see server.go) — there's no second consumer of this protocol that
// would need pluggable handlers. Grounded on
// _examples/nstehr-vimy/vimy-core/ipc/protocol.go.
package diagconsole

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"github.com/osc-sim/simcore/internal/simerr"
)

// maxEnvelopeBytes bounds a single frame's payload size, guarding against
// a corrupted length prefix or a hostile peer.
const maxEnvelopeBytes = 1 << 20

// Envelope is the wire format: a message type tag plus raw JSON payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope marshals data into an Envelope of the given type.
func NewEnvelope(msgType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s envelope: %w", msgType, err)
	}
	return Envelope{Type: msgType, Data: raw}, nil
}

// ReadEnvelope reads one 4-byte-little-endian-length-prefixed JSON
// envelope off conn.
func ReadEnvelope(conn net.Conn) (Envelope, error) {
	var length uint32
	if err := binary.Read(conn, binary.LittleEndian, &length); err != nil {
		return Envelope{}, fmt.Errorf("diag console: read frame length: %w", err)
	}
	if length == 0 || length > maxEnvelopeBytes {
		return Envelope{}, fmt.Errorf("diag console: frame length %d out of bounds: %w", length, simerr.ErrParse)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return Envelope{}, fmt.Errorf("diag console: read frame body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("diag console: decode envelope: %w", err)
	}
	return env, nil
}

// WriteEnvelope frames and writes env to conn.
func WriteEnvelope(conn net.Conn, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("diag console: encode %s envelope: %w", env.Type, err)
	}
	if err := binary.Write(conn, binary.LittleEndian, uint32(len(body))); err != nil {
		return fmt.Errorf("diag console: write frame length: %w", err)
	}
	if _, err := conn.Write(body); err != nil {
		return fmt.Errorf("diag console: write frame body: %w", err)
	}
	return nil
}
