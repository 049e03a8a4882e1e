package diagconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/sim"
	"github.com/osc-sim/simcore/internal/spatial"
)

// TickRequest drives the simulation forward by N ticks (minimum 1).
type TickRequest struct {
	N int `json:"n"`
}

// TickResponse reports the tick count after a TickRequest completes.
type TickResponse struct {
	TickCount uint64 `json:"tick_count"`
}

// SpawnRequest creates a bare unit entity for scenario construction;
// there is no scripting VM in diagnostic mode, so spawned units carry no
// blueprint-derived stats beyond position/army/id — tests that need real
// stats populate the Unit fields directly through the Go API instead.
type SpawnRequest struct {
	Army        int32   `json:"army"`
	BlueprintID string  `json:"blueprint_id"`
	X           float32 `json:"x"`
	Z           float32 `json:"z"`
}

// SpawnResponse reports the id the registry assigned to a spawned entity.
type SpawnResponse struct {
	EntityID uint32 `json:"entity_id"`
}

// IssueRequest pushes a single command onto a unit's queue.
type IssueRequest struct {
	EntityID       uint32              `json:"entity_id"`
	Command        entity.CommandType  `json:"command"`
	X              float32             `json:"x"`
	Z              float32             `json:"z"`
	TargetEntityID uint32              `json:"target_entity_id"`
	ClearExisting  bool                `json:"clear_existing"`
}

// IssueResponse reports whether the target unit was found and the
// command queued.
type IssueResponse struct {
	OK bool `json:"ok"`
}

// StatusResponse is the console's telemetry snapshot.
type StatusResponse struct {
	TickCount   uint64 `json:"tick_count"`
	EntityCount int    `json:"entity_count"`
}

// Server accepts diagnostic console connections over a Unix socket and
// dispatches tick/spawn/issue/status commands against a shared sim.State.
// mu guards every access to state, since each connection runs on its own
// goroutine while the tick loop itself stays single-threaded (unless the
// console's own "tick" command is what's driving it).
type Server struct {
	state *sim.State
	mu    sync.Mutex
	log   *slog.Logger
}

// NewServer wraps state for diagnostic console access.
func NewServer(state *sim.State, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{state: state, log: log}
}

// Serve binds sockPath (removing any stale socket file first, matching
// the teacher's main.go) and accepts connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, sockPath string) error {
	_ = os.RemoveAll(sockPath)
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return fmt.Errorf("listen diag socket: %w", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept diag connection: %w", err)
			}
		}
		go s.serveConn(conn)
	}
}

// serveConn owns one accepted connection's lifetime, reading envelopes
// until the peer disconnects and dispatching each by message type. The
// console only ever speaks four message types, so a plain switch takes
// the place of a pluggable handler registry.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	for {
		env, err := ReadEnvelope(conn)
		if err != nil {
			s.log.Debug("diag console connection closed", "error", err)
			return
		}

		reply, err := s.dispatch(env)
		if err != nil {
			s.log.Error("diag console command failed", "type", env.Type, "error", err)
			continue
		}
		if reply == nil {
			s.log.Warn("diag console: unrecognised command", "type", env.Type)
			continue
		}
		if err := WriteEnvelope(conn, *reply); err != nil {
			s.log.Error("diag console: failed to send reply", "type", reply.Type, "error", err)
			return
		}
	}
}

func (s *Server) dispatch(env Envelope) (*Envelope, error) {
	switch env.Type {
	case "tick":
		return s.handleTick(env)
	case "spawn":
		return s.handleSpawn(env)
	case "issue":
		return s.handleIssue(env)
	case "status":
		return s.handleStatus(env)
	default:
		return nil, nil
	}
}

func (s *Server) handleTick(env Envelope) (*Envelope, error) {
	var req TickRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal tick request: %w", err)
	}
	if req.N < 1 {
		req.N = 1
	}

	s.mu.Lock()
	s.state.Run(req.N)
	resp := TickResponse{TickCount: s.state.TickCount}
	s.mu.Unlock()

	out, err := NewEnvelope("tick_ack", resp)
	return &out, err
}

func (s *Server) handleSpawn(env Envelope) (*Envelope, error) {
	var req SpawnRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal spawn request: %w", err)
	}

	u := entity.NewUnit()
	u.Army = req.Army
	u.BlueprintID = req.BlueprintID
	u.Position = spatial.Vector3{X: req.X, Z: req.Z}

	s.mu.Lock()
	id := s.state.Registry.Register(u)
	s.mu.Unlock()

	out, err := NewEnvelope("spawn_ack", SpawnResponse{EntityID: id})
	return &out, err
}

func (s *Server) handleIssue(env Envelope) (*Envelope, error) {
	var req IssueRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal issue request: %w", err)
	}

	s.mu.Lock()
	u, ok := s.state.Registry.FindUnit(req.EntityID)
	if ok {
		u.PushCommand(entity.UnitCommand{
			Type:           req.Command,
			TargetPosition: spatial.Vector3{X: req.X, Z: req.Z},
			TargetEntityID: req.TargetEntityID,
		}, req.ClearExisting)
	}
	s.mu.Unlock()

	out, err := NewEnvelope("issue_ack", IssueResponse{OK: ok})
	return &out, err
}

func (s *Server) handleStatus(Envelope) (*Envelope, error) {
	s.mu.Lock()
	resp := StatusResponse{TickCount: s.state.TickCount, EntityCount: s.state.Registry.Count()}
	s.mu.Unlock()

	out, err := NewEnvelope("status_ack", resp)
	return &out, err
}
