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
	"time"
)

// Channel defines the byte stream between the host and a Nextion panel.
// The UART backend lives in transport/uart; tests use MockChannel.
//
// Reads block until the requested bytes arrive or the channel timeout
// expires, in which case a timeout error is returned. Available and Peek
// never block for longer than it takes to drain what the OS has buffered.
type Channel interface {
	// Available returns the number of bytes that can be read without blocking
	Available() (int, error)

	// Peek returns the next byte without consuming it. ok is false when no
	// byte is currently available.
	Peek() (b byte, ok bool, err error)

	// ReadByte reads a single byte
	ReadByte() (byte, error)

	// ReadFull reads exactly n bytes
	ReadFull(n int) ([]byte, error)

	// ReadUntil consumes bytes up to and including delim and returns the
	// bytes before it. At most limit bytes are retained; the rest are
	// consumed and dropped. A limit of zero or less retains nothing.
	ReadUntil(delim byte, limit int) ([]byte, error)

	// Write writes p verbatim
	Write(p []byte) (int, error)

	// Discard drops all buffered input
	Discard() error

	// SetTimeout sets the read timeout for blocking reads
	SetTimeout(timeout time.Duration) error

	// Close closes the channel
	Close() error

	// IsConnected returns true if the channel is open
	IsConnected() bool

	// Type returns the channel type
	Type() ChannelType
}

// ChannelType represents the kind of byte channel
type ChannelType string

const (
	// ChannelUART represents UART/serial transport.
	ChannelUART ChannelType = "uart"
	// ChannelMock represents a mock channel for testing
	ChannelMock ChannelType = "mock"
)

// portNamer is implemented by channels that know their device path
type portNamer interface {
	PortName() string
}

// baudRater is implemented by channels that know their serial speed
type baudRater interface {
	BaudRate() int
}

// channelPort returns the device path of ch for error reporting
func channelPort(ch Channel) string {
	if pn, ok := ch.(portNamer); ok {
		return pn.PortName()
	}
	return string(ch.Type())
}
