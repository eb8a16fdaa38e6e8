// Package otosink implements the concrete host audio device backend on
// top of github.com/ebitengine/oto/v3. The core treats device output as an
// abstract capability (§1); this package is the one runnable playd binds
// by default, and is deliberately kept outside internal/audio so that the
// core never imports a concrete backend.
package otosink

import (
	"fmt"
	"log/slog"

	"github.com/ebitengine/oto/v3"

	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/format"
	perr "github.com/jscyril/playd/pkg/errors"
)

// ringBytes sizes the SPSC ring buffer between the reactor's Transfer
// calls and oto's own pull thread. A few hundred milliseconds of audio
// keeps the reactor's 5ms tick comfortably ahead of underrun.
const ringBytes = 64 * 1024

// Device owns an oto.Context and the oto.Player reading from a RingSink,
// and implements audio.Sink by delegating straight to it. oto schedules
// its own real-time pull thread internally and drives it via reader.Read,
// which is exactly the §4.3 device-callback contract: RingSink.PullFrames
// never blocks, allocates, or locks.
type Device struct {
	*audio.RingSink

	ctx    *oto.Context
	player *oto.Player
}

var _ audio.Sink = (*Device)(nil)

// Open builds a Sink bound to the given device id and PCM format. oto/v3
// exposes no portable API for selecting among multiple output devices (it
// always binds the host's default output), so deviceID is accepted for
// CLI-surface compatibility with §6 and logged but otherwise unused; see
// DESIGN.md's Open Questions for this deliberate limitation.
func Open(deviceID int, f format.Format, faults *audio.FaultBus) (*Device, error) {
	if f.Sample != format.Int16 {
		return nil, perr.New(perr.KindInternal, "otosink.Open", perr.ErrUnsupportedFormat)
	}

	sink, err := audio.NewRingSink(f, ringBytes)
	if err != nil {
		return nil, perr.New(perr.KindInternal, "otosink.Open", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   int(f.SampleRate),
		ChannelCount: int(f.Channels),
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, perr.New(perr.KindInternal, "otosink.Open", err)
	}
	<-ready

	if deviceID != 0 {
		slog.Warn("device selection is not supported by the audio backend; using the system default", "requested_device_id", deviceID)
	}

	d := &Device{RingSink: sink, ctx: ctx}
	d.player = ctx.NewPlayer(&reader{sink: sink, frameSize: f.FrameSize(), faults: faults})
	d.player.Play()

	return d, nil
}

// Close stops playback and releases the underlying oto player.
func (d *Device) Close() error {
	return d.player.Close()
}

// reader adapts RingSink.PullFrames to io.Reader, the pull model oto/v3's
// player thread uses to request frames.
type reader struct {
	sink      *audio.RingSink
	frameSize int
	faults    *audio.FaultBus
}

// Read is the real-time callback oto's player thread calls. A panic here
// (an internal invariant violation, never an expected outcome) is caught
// rather than crashing the audio thread: it is published on faults for the
// reactor to observe and act on, and this read is answered with silence.
func (r *reader) Read(p []byte) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.faults.Publish(perr.New(perr.KindInternal, "otosink.reader.Read", fmt.Errorf("%v", rec)))
			for i := range p {
				p[i] = 0
			}
			n, err = len(p), nil
		}
	}()

	if r.frameSize > 0 && len(p)%r.frameSize != 0 {
		p = p[:len(p)-len(p)%r.frameSize]
	}
	r.sink.PullFrames(p)
	return len(p), nil
}
