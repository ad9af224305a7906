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
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-nextion/internal/frame"
	"github.com/rs/zerolog"
)

// DisplayConfig contains configuration options for the Display
type DisplayConfig struct {
	// Upload configures the firmware transfer
	Upload UploadConfig
	// BaudRate overrides the rate announced to the panel when starting a
	// firmware upload. Zero announces the rate the channel reports.
	BaudRate uint32
	// MaxStringLength bounds the text kept from a string data report.
	// Longer reports are consumed in full and delivered truncated.
	MaxStringLength int
}

// DefaultDisplayConfig returns default display configuration
func DefaultDisplayConfig() *DisplayConfig {
	return &DisplayConfig{
		MaxStringLength: 1024,
		Upload:          DefaultUploadConfig(),
	}
}

// Stats holds decoder counters
type Stats struct {
	Frames         int64 // Opcodes read from the channel
	Purges         int64 // Resynchronizations after malformed frames
	UnknownOpcodes int64 // Frames with an unrecognized leading byte
	ChannelErrors  int64 // Poll cycles aborted by a channel error
}

type decoderStats struct {
	frames         atomic.Int64
	purges         atomic.Int64
	unknownOpcodes atomic.Int64
	channelErrors  atomic.Int64
}

type handlerBox struct {
	h EventHandler
}

// Display represents a Nextion panel attached to a byte channel.
//
// Thread Safety: any number of goroutines may send commands concurrently;
// each command is written atomically. Poll must be driven by a single
// goroutine. State accessors (PageHistory, Touch, Stats) are safe to call
// from any goroutine.
type Display struct {
	channel Channel
	config  *DisplayConfig
	handler atomic.Pointer[handlerBox]
	logger  zerolog.Logger
	stats   decoderStats
	initErr error
	touch   TouchState
	// serialMu serializes writers. Held for one command or a whole upload.
	serialMu sync.Mutex
	// readMu is held by Poll for one cycle and by upload for the whole
	// transfer. Acquire it before serialMu.
	readMu   sync.Mutex
	stateMu  sync.RWMutex
	initOnce sync.Once
	history  pageHistory
}

// New creates a new Display on the given channel
func New(channel Channel, opts ...Option) (*Display, error) {
	if channel == nil {
		return nil, fmt.Errorf("%w: channel is nil", ErrInvalidParameter)
	}

	d := &Display{
		channel: channel,
		config:  DefaultDisplayConfig(),
		logger:  zerolog.Nop(),
	}
	d.handler.Store(&handlerBox{h: NopHandler{}})

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Channel returns the underlying channel
func (d *Display) Channel() Channel {
	return d.channel
}

// Config returns a copy of the current configuration
func (d *Display) Config() DisplayConfig {
	return *d.config
}

// SetHandler replaces the event handler. A nil handler restores NopHandler.
func (d *Display) SetHandler(h EventHandler) {
	if h == nil {
		h = NopHandler{}
	}
	d.handler.Store(&handlerBox{h: h})
}

func (d *Display) eventHandler() EventHandler {
	return d.handler.Load().h
}

// Init forces the panel out of transparent data mode. It is called
// implicitly before the first command, so calling it is optional.
func (d *Display) Init() error {
	d.serialMu.Lock()
	defer d.serialMu.Unlock()
	return d.ensureInitLocked()
}

// ensureInitLocked sends the mode reset token once. Callers hold serialMu.
func (d *Display) ensureInitLocked() error {
	d.initOnce.Do(func() {
		d.logger.Debug().Msg("sending mode reset token")
		d.initErr = d.writeLocked(frame.AppendTerminator([]byte(frame.ModeResetToken)))
	})
	return d.initErr
}

// Stats returns a snapshot of the decoder counters
func (d *Display) Stats() Stats {
	return Stats{
		Frames:         d.stats.frames.Load(),
		Purges:         d.stats.purges.Load(),
		UnknownOpcodes: d.stats.unknownOpcodes.Load(),
		ChannelErrors:  d.stats.channelErrors.Load(),
	}
}

// SetTimeout sets the read timeout of the channel
func (d *Display) SetTimeout(timeout time.Duration) error {
	if err := d.channel.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on channel: %w", err)
	}
	return nil
}

// Close closes the display channel
func (d *Display) Close() error {
	if d.channel != nil {
		if err := d.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	return nil
}

// channelError wraps err as a ChannelError unless it already is one
func (d *Display) channelError(op string, err error) error {
	var ce *ChannelError
	if errors.As(err, &ce) {
		return err
	}
	return NewChannelError(op, channelPort(d.channel), err, ErrorTypeTransient)
}
