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

package power

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// recordingPin remembers every level written
type recordingPin struct {
	gpiotest.Pin
	err    error
	levels []gpio.Level
}

func (p *recordingPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

func newPin() *recordingPin {
	return &recordingPin{Pin: gpiotest.Pin{N: "GPIO17", Num: 17}}
}

func TestOnOff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantOn  gpio.Level
		wantOff gpio.Level
	}{
		{name: "active high", wantOn: gpio.High, wantOff: gpio.Low},
		{name: "active low", opts: []Option{ActiveLow()}, wantOn: gpio.Low, wantOff: gpio.High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pin := newPin()
			s := New(pin, tt.opts...)

			require.NoError(t, s.On())
			assert.True(t, s.IsOn())
			assert.Equal(t, tt.wantOn, pin.Read())

			require.NoError(t, s.Off())
			assert.False(t, s.IsOn())
			assert.Equal(t, tt.wantOff, pin.Read())
		})
	}
}

func TestCycle(t *testing.T) {
	t.Parallel()

	pin := newPin()
	s := New(pin)

	start := time.Now()
	require.NoError(t, s.Cycle(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, pin.levels)
	assert.True(t, s.IsOn())
}

func TestCycleCancelledStillPowersOn(t *testing.T) {
	t.Parallel()

	pin := newPin()
	s := New(pin, ActiveLow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Cycle(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low}, pin.levels)
	assert.True(t, s.IsOn())
}

func TestPinFailure(t *testing.T) {
	t.Parallel()

	pin := newPin()
	pin.err = errors.New("not exported")
	s := New(pin)

	err := s.On()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GPIO17")
	assert.False(t, s.IsOn())

	assert.Error(t, s.Cycle(context.Background(), time.Millisecond))
}
