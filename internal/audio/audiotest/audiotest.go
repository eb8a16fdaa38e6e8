// Package audiotest provides in-memory stubs of the Source and Sink
// capability interfaces for use in tests elsewhere in the module, per the
// design notes' guidance that the test suite substitutes stubs for the
// external decoder/device collaborators rather than exercising real ones.
package audiotest

import (
	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/format"
	perr "github.com/jscyril/playd/pkg/errors"
)

// Source is an in-memory audio.Source backed by a fixed byte slice, chunked
// into ChunkSize pieces per Decode call.
type Source struct {
	PathVal    string
	Channels   uint8
	Rate       uint32
	SampleFmt  format.Sample
	Data       []byte
	ChunkSize  int
	LengthVal  uint64 // in samples; audio.UnknownLength for unknown

	cursor int
	closed bool

	// SeekErr, when non-nil, is returned by the next Seek call.
	SeekErr error
	// DecodeErr, when non-nil, is returned by the next Decode call.
	DecodeErr error
}

var _ audio.Source = (*Source)(nil)

func (s *Source) Path() string               { return s.PathVal }
func (s *Source) ChannelCount() uint8        { return s.Channels }
func (s *Source) SampleRate() uint32         { return s.Rate }
func (s *Source) OutputFormat() format.Sample { return s.SampleFmt }
func (s *Source) Length() uint64             { return s.LengthVal }

func (s *Source) Decode() (audio.DecodeState, []byte, error) {
	if s.DecodeErr != nil {
		err := s.DecodeErr
		s.DecodeErr = nil
		return audio.Decoding, nil, err
	}
	if s.cursor >= len(s.Data) {
		return audio.EndOfFile, nil, nil
	}
	end := s.cursor + s.ChunkSize
	if end > len(s.Data) || s.ChunkSize <= 0 {
		end = len(s.Data)
	}
	chunk := s.Data[s.cursor:end]
	s.cursor = end
	return audio.Decoding, chunk, nil
}

func (s *Source) Seek(samplePos uint64) (uint64, error) {
	if s.SeekErr != nil {
		err := s.SeekErr
		s.SeekErr = nil
		return 0, err
	}
	frameSize := int(s.Channels) * s.SampleFmt.Width()
	if frameSize <= 0 {
		frameSize = 1
	}
	byteOff := int(samplePos) * frameSize
	if byteOff > len(s.Data) {
		return 0, perr.New(perr.KindSeek, "audiotest.Source.Seek", nil)
	}
	s.cursor = byteOff
	return samplePos, nil
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}

func (s *Source) Closed() bool { return s.closed }

// Sink is an in-memory audio.Sink that records calls instead of driving a
// real device. Transfer accepts everything offered, unbounded.
type Sink struct {
	state      audio.SinkState
	pos        uint64
	sourcedOut bool

	StartErr error

	Transferred []byte
	StartCount  int
	StopCount   int
}

var _ audio.Sink = (*Sink)(nil)

func (s *Sink) Start() error {
	s.StartCount++
	if s.StartErr != nil {
		return s.StartErr
	}
	if s.state == audio.SinkAtEnd {
		return perr.New(perr.KindNoFile, "audiotest.Sink.Start", nil)
	}
	s.state = audio.SinkPlaying
	return nil
}

func (s *Sink) Stop() {
	s.StopCount++
	s.state = audio.SinkStopped
}

func (s *Sink) SourceOut() { s.sourcedOut = true }

func (s *Sink) State() audio.SinkState { return s.state }

func (s *Sink) Position() uint64 { return s.pos }

func (s *Sink) SetPosition(samples uint64) error {
	s.pos = samples
	s.sourcedOut = false
	s.Transferred = nil
	return nil
}

func (s *Sink) Transfer(data []byte) int {
	if s.state == audio.SinkAtEnd {
		return 0
	}
	s.Transferred = append(s.Transferred, data...)
	return len(data)
}

// ForceAtEnd implements the synchronous AT_END transition end() relies on.
func (s *Sink) ForceAtEnd(position uint64) {
	s.pos = position
	s.sourcedOut = true
	s.state = audio.SinkAtEnd
}

// SettleAtEnd simulates the real-time callback draining the ring and
// flipping to AT_END, for tests that need to observe that transition
// without a real device thread.
func (s *Sink) SettleAtEnd() {
	if s.sourcedOut && s.state == audio.SinkPlaying {
		s.state = audio.SinkAtEnd
	}
}
