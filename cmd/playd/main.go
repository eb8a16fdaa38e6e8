// Command playd is a minimal TCP-controlled audio player daemon. It
// decodes one file at a time into a ring buffer the host audio device
// drains, and exposes play/stop/seek/load/eject/pos/end/quit over a
// line-oriented TCP protocol (§6), broadcasting state changes to every
// connected client.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/audio/beepsource"
	"github.com/jscyril/playd/internal/audio/otosink"
	"github.com/jscyril/playd/internal/config"
	"github.com/jscyril/playd/internal/format"
	"github.com/jscyril/playd/internal/logx"
	"github.com/jscyril/playd/internal/netsrv"
	"github.com/jscyril/playd/internal/player"
	perr "github.com/jscyril/playd/pkg/errors"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	logx.Setup(logx.DefaultConfig())

	cfg, err := config.Parse(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if cfg.ListDevices {
		listDevices()
		return 0
	}

	faults := audio.NewFaultBus()
	extensions := sourceFactories()
	sinkFactory := func(source audio.Source, deviceID int) (audio.Sink, error) {
		return otosink.Open(deviceID, sourceFormat(source), faults)
	}

	p := player.New(cfg.DeviceID, sinkFactory, extensions, faults)
	r := netsrv.New(p)
	p.SetIO(r)

	if err := r.Run(cfg.Host, cfg.Port); err != nil {
		var pe *perr.Error
		if errors.As(err, &pe) && pe.Kind == perr.KindNet {
			slog.Error("fatal network error", "err", err)
			return 1
		}
		slog.Error("fatal error", "err", err)
		return 1
	}

	return 0
}

// sourceFactories wires every supported file extension to a constructor
// that produces an audio.Source. This is the one place a new decoder
// backend would need to be added.
func sourceFactories() map[string]player.SourceFactory {
	exts := make(map[string]player.SourceFactory, len(beepsource.SupportedExtensions()))
	factory := func(path string) (audio.Source, error) {
		return beepsource.Open(path)
	}
	for _, ext := range beepsource.SupportedExtensions() {
		exts[ext] = factory
	}
	return exts
}

// sourceFormat derives the PCM format the sink must be built for from an
// already-open source, since the device can only be opened once the file
// being loaded is known (sample rate, channel count).
func sourceFormat(source audio.Source) format.Format {
	return format.Format{
		Sample:     source.OutputFormat(),
		Channels:   source.ChannelCount(),
		SampleRate: source.SampleRate(),
	}
}

// listDevices serves the --list-devices CLI affordance (§6's out-of-core
// device enumeration). oto/v3 exposes no portable device enumeration API
// (see DESIGN.md); the backend always binds the host's default output, so
// this reports that rather than a real device list.
func listDevices() {
	fmt.Println("0\tsystem default output device")
}
