// Package format describes PCM sample layouts and the exact integer
// conversions between sample counts and microseconds that the rest of playd
// relies on.
package format

import "math/bits"

// Sample enumerates the supported PCM element types.
type Sample uint8

const (
	Uint8 Sample = iota
	Int16
	Int32
	Int24In32
	Float32
)

// Width returns the byte width of one channel's worth of a single sample.
func (s Sample) Width() int {
	switch s {
	case Uint8:
		return 1
	case Int16:
		return 2
	case Int32, Int24In32, Float32:
		return 4
	default:
		return 0
	}
}

func (s Sample) String() string {
	switch s {
	case Uint8:
		return "u8"
	case Int16:
		return "s16"
	case Int32:
		return "s32"
	case Int24In32:
		return "s24in32"
	case Float32:
		return "f32"
	default:
		return "unknown"
	}
}

// Format is the negotiated PCM layout shared by a Source and its Sink.
type Format struct {
	Sample     Sample
	Channels   uint8
	SampleRate uint32
}

// FrameSize returns the byte width of one frame: channels x sample width.
// All buffer sizes the pipeline deals in are integer multiples of this.
func (f Format) FrameSize() int {
	return int(f.Channels) * f.Sample.Width()
}

// SamplesFromMicros converts a duration in microseconds to a sample count at
// the given rate, using exact integer arithmetic and saturating at
// math.MaxUint64 on overflow rather than wrapping.
func SamplesFromMicros(rateHz uint32, micros uint64) uint64 {
	return mulDivSaturating(micros, uint64(rateHz), 1_000_000)
}

// MicrosFromSamples converts a sample count at the given rate to a duration
// in microseconds, using the same exact, saturating arithmetic.
func MicrosFromSamples(rateHz uint32, samples uint64) uint64 {
	return mulDivSaturating(samples, 1_000_000, uint64(rateHz))
}

// mulDivSaturating computes floor(a*b/c) without intermediate overflow,
// saturating at math.MaxUint64 if the true result (or the division itself)
// would overflow 64 bits.
func mulDivSaturating(a, b, c uint64) uint64 {
	if c == 0 {
		return ^uint64(0)
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}
