package audio

import (
	"github.com/jscyril/playd/internal/format"
)

// DecodeState reports what a Source's decode() call produced.
type DecodeState uint8

const (
	Decoding DecodeState = iota
	EndOfFile
)

// UnknownLength marks a Source whose total length cannot be determined.
const UnknownLength uint64 = ^uint64(0)

// Source is the capability interface a pluggable decoder must satisfy.
// The core never assumes anything about how decoding happens beyond this
// contract: Pipe Audio pulls chunks from it and hands them to a Sink.
//
// Path, ChannelCount, SampleRate, and OutputFormat are fixed for the
// lifetime of a Source. Decode and Seek are called only from the reactor
// thread, synchronously, on the periodic tick; they must never block for
// long, since a single tick has a tight time budget.
type Source interface {
	// Path returns the opened file path, for display only.
	Path() string

	ChannelCount() uint8
	SampleRate() uint32
	OutputFormat() format.Sample

	// Length returns the total length in samples, or UnknownLength.
	Length() uint64

	// Decode pulls the next chunk of decoded PCM. On EndOfFile the
	// returned slice is empty; further calls keep returning EndOfFile.
	// A decoder fault is returned as an error carrying errors.KindDecode.
	Decode() (DecodeState, []byte, error)

	// Seek repositions to the sample nearest samplePos and returns the
	// sample index actually achieved. Out-of-range positions are
	// reported as an error carrying errors.KindSeek.
	Seek(samplePos uint64) (uint64, error)

	// Close releases the file handle and any decoder state.
	Close() error
}

// BytesPerFrame returns channels x sample width for a Source, the unit in
// which all of its decoded byte buffers are sized.
func BytesPerFrame(s Source) int {
	return int(s.ChannelCount()) * s.OutputFormat().Width()
}

// SamplesFromMicros converts a duration to a sample count at s's rate.
func SamplesFromMicros(s Source, micros uint64) uint64 {
	return format.SamplesFromMicros(s.SampleRate(), micros)
}

// MicrosFromSamples converts a sample count at s's rate to microseconds.
func MicrosFromSamples(s Source, samples uint64) uint64 {
	return format.MicrosFromSamples(s.SampleRate(), samples)
}
