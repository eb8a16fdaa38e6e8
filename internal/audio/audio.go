// Package audio implements the decode->ringbuffer->device pipeline: the
// Source and Sink capability interfaces, the lock-free Sink implementation
// built on the SPSC ring buffer, and the Audio tagged sum type (Null or
// Pipe) that the Player drives.
package audio

import (
	perr "github.com/jscyril/playd/pkg/errors"
)

// Audio is the tagged sum type the Player holds: NullAudio when no file is
// loaded, *PipeAudio once one is. The variant set is closed; callers that
// need Pipe-only behaviour (e.g. the broadcast-throttle bookkeeping) type
// assert to *PipeAudio rather than widening this interface.
type Audio interface {
	// Update advances decode/transfer by one tick and returns the
	// resulting sink state.
	Update() (SinkState, error)

	// Path returns the loaded file's path, for the FLOAD broadcast.
	Path() (string, error)

	// PositionMicros and LengthMicros report in microseconds.
	PositionMicros() (uint64, error)
	LengthMicros() (uint64, error)

	// SetPositionMicros seeks. The sink must already be stopped; stopping
	// it beforehand and restarting it afterwards is the caller's job.
	SetPositionMicros(micros uint64) error

	SetPlaying(playing bool) error

	// End forces a transition to AT_END.
	End() error

	Close() error
}

// NullAudio is the no-file-loaded variant. Every state-querying or
// state-changing operation fails with KindNoFile, per §3.
type NullAudio struct{}

var _ Audio = NullAudio{}

func (NullAudio) Update() (SinkState, error) { return SinkStopped, nil }

func (NullAudio) Path() (string, error) {
	return "", perr.New(perr.KindNoFile, "NullAudio.Path", nil)
}

func (NullAudio) PositionMicros() (uint64, error) {
	return 0, perr.New(perr.KindNoFile, "NullAudio.PositionMicros", nil)
}

func (NullAudio) LengthMicros() (uint64, error) {
	return 0, perr.New(perr.KindNoFile, "NullAudio.LengthMicros", nil)
}

func (NullAudio) SetPositionMicros(uint64) error {
	return perr.New(perr.KindNoFile, "NullAudio.SetPositionMicros", nil)
}

func (NullAudio) SetPlaying(bool) error {
	return perr.New(perr.KindNoFile, "NullAudio.SetPlaying", nil)
}

func (NullAudio) End() error {
	return perr.New(perr.KindNoFile, "NullAudio.End", nil)
}

func (NullAudio) Close() error { return nil }
