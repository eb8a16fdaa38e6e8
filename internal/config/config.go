// Package config parses playd's CLI surface (§6): a mandatory device id
// and optional host/port positionals, plus the out-of-core
// --list-devices affordance. There is no persisted configuration; apart
// from the logging level and format that logx reads from the environment,
// every run is configured from argv alone.
package config

import (
	"fmt"

	flag "github.com/spf13/pflag"

	perr "github.com/jscyril/playd/pkg/errors"
)

// DefaultHost and DefaultPort match §6's defaults.
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = "1350"
)

// Config is the fully resolved CLI configuration for one run.
type Config struct {
	DeviceID    int
	Host        string
	Port        string
	ListDevices bool
}

// Parse builds a Config from argv (excluding the program name). It
// accepts --list-devices with no positional arguments, in which case
// DeviceID is meaningless and the caller is expected to enumerate devices
// and exit before constructing a Player.
func Parse(argv []string) (Config, error) {
	fs := flag.NewFlagSet("playd", flag.ContinueOnError)
	listDevices := fs.Bool("list-devices", false, "list available output devices and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: playd DEVICE_ID [HOST] [PORT]")
		fmt.Fprintln(fs.Output(), "       playd --list-devices")
		fs.PrintDefaults()
	}

	if err := fs.Parse(argv); err != nil {
		return Config{}, perr.New(perr.KindInvalid, "config.Parse", err)
	}

	if *listDevices {
		return Config{ListDevices: true}, nil
	}

	args := fs.Args()
	if len(args) < 1 {
		return Config{}, perr.New(perr.KindInvalid, "config.Parse", fmt.Errorf("missing DEVICE_ID"))
	}

	deviceID, err := parseDeviceID(args[0])
	if err != nil {
		return Config{}, perr.New(perr.KindInvalid, "config.Parse", err)
	}

	cfg := Config{
		DeviceID: deviceID,
		Host:     DefaultHost,
		Port:     DefaultPort,
	}
	if len(args) > 1 {
		cfg.Host = args[1]
	}
	if len(args) > 2 {
		cfg.Port = args[2]
	}
	return cfg, nil
}

func parseDeviceID(s string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("not a valid device ID: %s", s)
	}
	if id < 0 {
		return 0, fmt.Errorf("device ID must be non-negative: %s", s)
	}
	return id, nil
}
