// Package simerr defines the sentinel error values used across the
// simulation core so callers can classify failures with errors.Is, per the
// error taxonomy: configuration, parse, not-found, scripting, and
// invariant errors. Every package wraps these with fmt.Errorf("...: %w",
// err) at the point of failure rather than inventing a custom Result type.
package simerr

import "errors"

var (
	// ErrConfig marks a boot-time configuration problem (missing init
	// file, missing fa-path). Reported at boot; causes a non-zero exit.
	ErrConfig = errors.New("configuration error")

	// ErrParse marks a malformed or truncated asset (map header, blueprint
	// source). Returned from parsers as an ordinary error value.
	ErrParse = errors.New("parse error")

	// ErrNotFound marks a resource-not-found condition (VFS miss, unknown
	// blueprint id, unknown entity id). Callers decide whether it is fatal.
	ErrNotFound = errors.New("not found")

	// ErrScript marks a failure raised by or while calling into the
	// scripting VM boundary. Never aborts the tick; the caller logs and
	// marks the offending coroutine or command as failed.
	ErrScript = errors.New("script error")

	// ErrInvariant marks a soft invariant violation (capacity exceeded,
	// destroyed entity referenced). Logged and skipped, never propagated
	// out of the tick.
	ErrInvariant = errors.New("invariant violation")
)
