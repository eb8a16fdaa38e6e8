// Package beepsource adapts github.com/faiface/beep decoders to the
// pull-based audio.Source contract: each Decode call reads a fixed batch
// of stereo frames out of the underlying beep.StreamSeekCloser and
// quantises them into signed 16-bit PCM, the byte format the rest of the
// pipeline moves.
package beepsource

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/format"
	perr "github.com/jscyril/playd/pkg/errors"
)

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}

// batchFrames is how many stereo frames a single Decode call pulls from
// the underlying streamer. It bounds the worst-case work the reactor
// thread does on one timer tick.
const batchFrames = 2048

// decodeFn opens a beep decoder for an already-open file handle.
type decodeFn func(io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)

// extensions maps a lowercase file extension to the beep decoder that
// handles it. This generalises the teacher's DecodeAudio extension switch
// from "return a streamer" to "build a Source".
var extensions = map[string]decodeFn{
	".mp3": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(r)
	},
	".wav": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(r)
	},
	".flac": func(r io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(r)
	},
}

// SupportedExtensions reports the lowercase extensions this package can
// build a Source for.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	return exts
}

// Source is a beep-backed audio.Source. Every decoded frame is stereo
// 16-bit PCM regardless of the underlying file's channel count, matching
// beep's own upmixing of mono content to a [2]float64 frame.
type Source struct {
	path     string
	rate     uint32
	length   uint64
	streamer beep.StreamSeekCloser

	scratch [][2]float64
	out     []byte
}

var _ audio.Source = (*Source)(nil)

// Open builds a Source for path by dispatching on its lowercase extension.
// An unknown extension is reported as KindNoFile, and a failure to open or
// decode the file as KindLoad, per §7's taxonomy.
func Open(path string) (*Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := extensions[ext]
	if !ok {
		return nil, perr.New(perr.KindNoFile, "beepsource.Open", fmt.Errorf("unsupported extension %q", ext))
	}

	f, err := openFile(path)
	if err != nil {
		return nil, perr.New(perr.KindLoad, "beepsource.Open", err)
	}

	streamer, bf, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, perr.New(perr.KindLoad, "beepsource.Open", err)
	}

	length := audio.UnknownLength
	if n := streamer.Len(); n >= 0 {
		length = uint64(n)
	}

	logTagsBestEffort(path)

	return &Source{
		path:   path,
		rate:   uint32(bf.SampleRate),
		length: length,
		streamer: streamer,
	}, nil
}

func (s *Source) Path() string                { return s.path }
func (s *Source) ChannelCount() uint8         { return 2 }
func (s *Source) SampleRate() uint32          { return s.rate }
func (s *Source) OutputFormat() format.Sample { return format.Int16 }
func (s *Source) Length() uint64              { return s.length }

// Decode pulls up to batchFrames stereo frames and quantises them to
// little-endian signed 16-bit PCM, interleaved L,R.
func (s *Source) Decode() (audio.DecodeState, []byte, error) {
	if cap(s.scratch) < batchFrames {
		s.scratch = make([][2]float64, batchFrames)
	}
	n, ok := s.streamer.Stream(s.scratch[:batchFrames])
	if err := s.streamer.Err(); err != nil {
		return audio.Decoding, nil, perr.New(perr.KindDecode, "beepsource.Decode", err)
	}
	if !ok || n == 0 {
		return audio.EndOfFile, nil, nil
	}

	need := n * 4 // 2 channels x 2 bytes
	if cap(s.out) < need {
		s.out = make([]byte, need)
	}
	out := s.out[:need]
	for i := 0; i < n; i++ {
		l := quantise(s.scratch[i][0])
		r := quantise(s.scratch[i][1])
		out[i*4+0] = byte(l)
		out[i*4+1] = byte(l >> 8)
		out[i*4+2] = byte(r)
		out[i*4+3] = byte(r >> 8)
	}
	return audio.Decoding, out, nil
}

func (s *Source) Seek(samplePos uint64) (uint64, error) {
	if s.length != audio.UnknownLength && samplePos > s.length {
		return 0, perr.New(perr.KindSeek, "beepsource.Seek", fmt.Errorf("position %d beyond length %d", samplePos, s.length))
	}
	if err := s.streamer.Seek(int(samplePos)); err != nil {
		return 0, perr.New(perr.KindSeek, "beepsource.Seek", err)
	}
	return uint64(s.streamer.Position()), nil
}

func (s *Source) Close() error {
	return s.streamer.Close()
}

func quantise(sample float64) int16 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	return int16(math.Round(sample * math.MaxInt16))
}

// logTagsBestEffort reads ID3/Vorbis/FLAC tags purely for a friendlier log
// line; failures are silently ignored, since tag metadata never gates
// playback.
func logTagsBestEffort(path string) {
	f, err := openFile(path)
	if err != nil {
		return
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	slog.Info("loaded tags", "path", path, "artist", m.Artist(), "title", m.Title())
}
