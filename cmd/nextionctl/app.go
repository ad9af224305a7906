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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	nextion "github.com/ZaparooProject/go-nextion"
	"github.com/ZaparooProject/go-nextion/detection"
	// Import the serial detector to register it
	_ "github.com/ZaparooProject/go-nextion/detection/uart"
	"github.com/ZaparooProject/go-nextion/polling"
	"github.com/ZaparooProject/go-nextion/power"
	"github.com/ZaparooProject/go-nextion/transport/uart"
	"github.com/rs/zerolog"
)

type app struct {
	out    io.Writer
	cfg    *config
	logger zerolog.Logger
}

func (a *app) run(ctx context.Context) error {
	if a.cfg.command == "detect" {
		return a.detect(ctx)
	}

	display, err := a.openDisplay(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = display.Close() }()

	switch a.cfg.command {
	case "monitor":
		return a.monitor(ctx, display)
	case "send":
		return a.send(display)
	case "upload":
		return a.upload(ctx, display)
	case "identify":
		return a.identify(ctx, display)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, a.cfg.command)
	}
}

// openDisplay opens the configured port, or the first panel that answers
// the connect handshake when no port was given.
func (a *app) openDisplay(ctx context.Context) (*nextion.Display, error) {
	path := a.cfg.devicePath
	if path == "" {
		device, err := a.findPanel(ctx)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Stringer("device", device).Msg("using detected panel")
		path = device.Path
	}

	t, err := uart.New(path, uart.WithBaudRate(a.cfg.baudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	display, err := nextion.New(t,
		nextion.WithLogger(a.logger),
		nextion.WithHandler(&eventPrinter{out: a.out}),
		nextion.WithProgress(newProgressPrinter(a.out)),
	)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	return display, nil
}

func (a *app) detectOptions() detection.Options {
	opts := detection.DefaultOptions()
	opts.Timeout = a.cfg.timeout
	opts.BaudRate = a.cfg.baudRate
	return opts
}

func (a *app) findPanel(ctx context.Context) (detection.DeviceInfo, error) {
	a.logger.Info().Msg("auto-detecting Nextion panels")
	devices, err := detection.DetectAll(ctx, a.detectOptions())
	if err != nil {
		return detection.DeviceInfo{}, fmt.Errorf("auto-detection failed: %w", err)
	}
	for _, d := range devices {
		if d.Confidence == detection.High {
			return d, nil
		}
	}
	return detection.DeviceInfo{}, detection.ErrNoDevicesFound
}

func (a *app) detect(ctx context.Context) error {
	devices, err := detection.DetectAll(ctx, a.detectOptions())
	if errors.Is(err, detection.ErrNoDevicesFound) {
		_, _ = fmt.Fprintln(a.out, "No panels found")
		return nil
	}
	for _, d := range devices {
		_, _ = fmt.Fprintln(a.out, d.String())
		if a.cfg.verbose {
			for k, v := range d.Metadata {
				_, _ = fmt.Fprintf(a.out, "    %s: %s\n", k, v)
			}
		}
	}
	return err
}

func (a *app) identify(ctx context.Context, display *nextion.Display) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.timeout)
	defer cancel()

	info, err := display.Identify(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, info.Model)
	_, _ = fmt.Fprintf(a.out, "  firmware: %s\n  mcu:      %s\n  serial:   %s\n  flash:    %d bytes\n  touch:    %t\n",
		info.FirmwareVersion, info.MCUCode, info.SerialNumber, info.FlashSize, info.Touch)
	return nil
}

func (a *app) send(display *nextion.Display) error {
	for _, cmd := range a.cfg.args {
		if err := display.Send(cmd); err != nil {
			return fmt.Errorf("failed to send %q: %w", cmd, err)
		}
		a.logger.Debug().Str("command", cmd).Msg("sent")
	}

	// Give the panel a moment to answer, then print whatever it sent back.
	time.Sleep(100 * time.Millisecond)
	for {
		handled, err := display.Poll()
		if err != nil || !handled {
			return err
		}
	}
}

func (a *app) monitor(ctx context.Context, display *nextion.Display) error {
	cfg := polling.DefaultConfig()
	cfg.PollInterval = a.cfg.pollInterval

	runner, err := polling.NewRunner(display, cfg,
		polling.WithLogger(a.logger),
		polling.WithErrorHandler(func(err error) {
			a.logger.Debug().Err(err).Msg("poll error")
		}))
	if err != nil {
		return err
	}

	a.logger.Info().Msg("monitoring panel events, press Ctrl+C to stop")
	err = runner.Run(ctx)

	m := runner.Metrics()
	s := display.Stats()
	a.logger.Info().
		Int64("cycles", m.Cycles).
		Int64("frames", m.Frames).
		Int64("errors", m.Errors).
		Int64("purges", s.Purges).
		Int64("unknown", s.UnknownOpcodes).
		Msg("monitor stopped")
	return err
}

func (a *app) upload(ctx context.Context, display *nextion.Display) error {
	path := a.cfg.args[0]
	if !strings.HasSuffix(strings.ToLower(path), ".tft") {
		a.logger.Warn().Str("file", path).Msg("firmware files normally end in .tft")
	}

	if err := display.UploadFile(ctx, path); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out)

	if a.cfg.powerPin == "" {
		return nil
	}
	return a.powerCycle(ctx)
}

func (a *app) powerCycle(ctx context.Context) error {
	opts := []power.Option{power.WithLogger(a.logger)}
	if a.cfg.powerLow {
		opts = append(opts, power.ActiveLow())
	}
	sw, err := power.Open(a.cfg.powerPin, opts...)
	if err != nil {
		return err
	}
	a.logger.Info().Str("pin", a.cfg.powerPin).Dur("delay", a.cfg.powerDelay).Msg("power cycling panel")
	return sw.Cycle(ctx, a.cfg.powerDelay)
}
