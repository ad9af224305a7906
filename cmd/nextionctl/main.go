// go-nextion
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nextion.
//
// go-nextion is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nextion is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nextion; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Command nextionctl talks to a Nextion panel over a serial port.
//
// Usage:
//
//	nextionctl [flags] monitor
//	nextionctl [flags] send <command>...
//	nextionctl [flags] upload <file.tft>
//	nextionctl [flags] identify
//	nextionctl [flags] detect
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

var errUsage = errors.New("usage error")

const maxBaudRate = 921600

type config struct {
	devicePath   string
	command      string
	powerPin     string
	args         []string
	baudRate     int
	timeout      time.Duration
	pollInterval time.Duration
	powerDelay   time.Duration
	verbose      bool
	powerLow     bool
}

func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("nextionctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.devicePath, "device", "",
		"Serial device path (e.g., /dev/ttyUSB0 or COM3). Leave empty for auto-detection.")
	fs.IntVar(&cfg.baudRate, "baud", 9600, "Serial speed the panel currently uses, also used for uploads")
	fs.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "Timeout for identify and detect")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", 10*time.Millisecond, "Monitor poll interval")
	fs.StringVar(&cfg.powerPin, "power-pin", "", "GPIO pin switching panel power, cycled after upload (e.g., GPIO17)")
	fs.BoolVar(&cfg.powerLow, "power-active-low", false, "Power pin is active low")
	fs.DurationVar(&cfg.powerDelay, "power-delay", time.Second, "How long the panel stays off during a power cycle")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: nextionctl [flags] monitor|send|upload|identify|detect [args]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.baudRate <= 0 || cfg.baudRate > maxBaudRate {
		return nil, fmt.Errorf("%w: baud rate %d", errUsage, cfg.baudRate)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: missing command", errUsage)
	}
	cfg.command, cfg.args = rest[0], rest[1:]

	switch cfg.command {
	case "monitor", "identify", "detect":
		if len(cfg.args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", errUsage, cfg.command)
		}
	case "send":
		if len(cfg.args) == 0 {
			return nil, fmt.Errorf("%w: send needs at least one command", errUsage)
		}
	case "upload":
		if len(cfg.args) != 1 {
			return nil, fmt.Errorf("%w: upload needs exactly one file", errUsage)
		}
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cfg.command)
	}
	return cfg, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseArgs(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := newLogger(cfg.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{cfg: cfg, logger: logger, out: os.Stdout}
	if err := app.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Str("command", cfg.command).Msg("command failed")
		return 1
	}
	return 0
}
