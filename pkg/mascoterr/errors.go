// Package mascoterr defines the engine's closed error taxonomy (spec §7).
// The engine never raises anything outside this list. Components return a
// sentinel directly; CommandError and Fault wrap one with call-site context
// via eris.Wrap, which keeps errors.Is/As working and preserves a stack
// trace, the same sentinel-plus-context-wrap convention the pack's
// eris-using repos follow.
package mascoterr

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Sentinel errors. Compare with errors.Is, never by string.
var (
	// ErrInvalidAffect is returned for an unknown emotion or undertone identifier.
	ErrInvalidAffect = errors.New("invalid affect")

	// ErrInvalidShape is returned for an unknown body shape identifier.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrUnknownGestureFamily is returned when a gesture names an unregistered family.
	ErrUnknownGestureFamily = errors.New("unknown gesture family")

	// ErrGestureQueueFull is a GestureRejected{QueueFull} admission failure.
	ErrGestureQueueFull = errors.New("gesture queue full")

	// ErrGestureSuperseded is a GestureRejected{Superseded} admission failure.
	ErrGestureSuperseded = errors.New("gesture superseded")

	// ErrGestureCancelled is a GestureRejected{Cancelled} lifecycle failure.
	ErrGestureCancelled = errors.New("gesture cancelled")

	// ErrInvalidBpm is returned for a BPM outside [30, 300].
	ErrInvalidBpm = errors.New("invalid bpm")

	// ErrInvalidParticleCapacity is a construction-time-only failure.
	ErrInvalidParticleCapacity = errors.New("invalid particle capacity")

	// ErrSubscriberFault marks an event subscriber callback that panicked or
	// returned an error; raised asynchronously to the diagnostics sink, never
	// surfaced to the caller of the command that produced the event.
	ErrSubscriberFault = errors.New("subscriber fault")
)

// CommandError is returned from HostAPI command methods that fail validation.
// State is never mutated when a CommandError is returned (spec §6/§7).
type CommandError struct {
	Command string
	Param   string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("command %q: %s=%v: %s", e.Command, e.Param, e.Param, e.Err)
	}
	return fmt.Sprintf("command %q: %s", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError builds a CommandError, wrapping err with eris so the
// diagnostics sink can recover a stack trace for operational debugging —
// the same reason the audio-sync reference repo reaches for eris instead of
// plain fmt.Errorf on its hot failure paths.
func NewCommandError(command, param string, err error) *CommandError {
	return &CommandError{Command: command, Param: param, Err: eris.Wrap(err, command)}
}

// Fault wraps a recovered subscriber panic or returned error into
// ErrSubscriberFault, preserving the original cause and an eris stack trace.
func Fault(subscriber string, cause any) error {
	var err error
	switch c := cause.(type) {
	case error:
		err = c
	default:
		err = fmt.Errorf("%v", c)
	}
	return eris.Wrap(fmt.Errorf("%w: subscriber %q: %w", ErrSubscriberFault, subscriber, err), "tick")
}
