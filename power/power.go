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

// Package power switches a panel's supply through a GPIO pin.
//
// Panels that stop answering, or that must be rebooted into a freshly
// uploaded firmware without a "rest" command, can be power cycled by
// driving a relay or MOSFET from a host GPIO line.
package power

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DefaultCycleDelay is how long Cycle keeps the panel unpowered
const DefaultCycleDelay = 500 * time.Millisecond

// ErrPinNotFound is returned by Open for an unknown pin name
var ErrPinNotFound = errors.New("gpio pin not found")

// Option configures a Switch
type Option func(*Switch)

// ActiveLow makes a low level power the panel, as on most relay boards
func ActiveLow() Option {
	return func(s *Switch) {
		s.activeLow = true
	}
}

// WithLogger sets the switch's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Switch) {
		s.logger = logger
	}
}

// Switch drives a GPIO line controlling panel power
type Switch struct {
	pin       gpio.PinOut
	logger    zerolog.Logger
	mu        sync.Mutex
	activeLow bool
	on        bool
}

// Open initializes the host drivers and returns a switch on the pin
// named name, for example "GPIO17". The pin is left untouched.
func Open(name string, opts ...Option) (*Switch, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return New(pin, opts...), nil
}

// New returns a switch on an already resolved pin
func New(pin gpio.PinOut, opts ...Option) *Switch {
	s := &Switch{pin: pin, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// On powers the panel
func (s *Switch) On() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(true)
}

// Off cuts panel power
func (s *Switch) Off() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(false)
}

// IsOn reports the last level written
func (s *Switch) IsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// Cycle turns the panel off, waits delay, and turns it back on. A delay
// of zero uses DefaultCycleDelay. If ctx ends during the wait the panel
// is still powered back on and ctx's error is returned.
func (s *Switch) Cycle(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		delay = DefaultCycleDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setLocked(false); err != nil {
		return err
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	var waitErr error
	select {
	case <-ctx.Done():
		waitErr = ctx.Err()
	case <-timer.C:
	}

	if err := s.setLocked(true); err != nil {
		return err
	}
	return waitErr
}

func (s *Switch) setLocked(on bool) error {
	level := gpio.Level(on != s.activeLow)
	if err := s.pin.Out(level); err != nil {
		return fmt.Errorf("failed to drive %s %s: %w", s.pin.Name(), level, err)
	}
	s.on = on
	s.logger.Debug().Str("pin", s.pin.Name()).Bool("on", on).Msg("panel power")
	return nil
}
