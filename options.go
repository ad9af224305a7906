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

package nextion

import (
	"fmt"

	"github.com/ZaparooProject/go-nextion/internal/frame"
	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Display
type Option func(*Display) error

// WithHandler sets the event handler receiving decoded frames
func WithHandler(h EventHandler) Option {
	return func(d *Display) error {
		d.SetHandler(h)
		return nil
	}
}

// WithLogger sets the logger used for protocol diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Display) error {
		d.logger = logger
		return nil
	}
}

// WithBaudRate overrides the baud rate announced to the panel during
// uploads. Without it the channel's own rate is announced.
func WithBaudRate(rate uint32) Option {
	return func(d *Display) error {
		if rate == 0 || rate > frame.MaxBaudRate {
			return fmt.Errorf("%w: baud rate %d", ErrInvalidParameter, rate)
		}
		d.config.BaudRate = rate
		return nil
	}
}

// WithMaxStringLength bounds the text kept from string data reports
func WithMaxStringLength(n int) Option {
	return func(d *Display) error {
		if n <= 0 {
			return fmt.Errorf("%w: max string length %d", ErrInvalidParameter, n)
		}
		d.config.MaxStringLength = n
		return nil
	}
}

// WithUploadConfig replaces the firmware upload configuration
func WithUploadConfig(cfg UploadConfig) Option {
	return func(d *Display) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid upload config: %w", err)
		}
		d.config.Upload = cfg
		return nil
	}
}

// WithProgress sets the callback receiving upload progress
func WithProgress(fn ProgressCallback) Option {
	return func(d *Display) error {
		d.config.Upload.Progress = fn
		return nil
	}
}
