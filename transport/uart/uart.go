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

// Package uart provides a Nextion channel over a serial port
package uart

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	nextion "github.com/ZaparooProject/go-nextion"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the rate used when WithBaudRate is not given
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds how long a read waits for the next byte
	DefaultReadTimeout = time.Second

	// pollSlice is the serial read timeout. It bounds how long Available
	// and Peek wait when nothing has been received.
	pollSlice = 5 * time.Millisecond
	readChunk = 512
)

// Option configures a Transport
type Option func(*Transport)

// WithBaudRate sets the serial speed
func WithBaudRate(rate int) Option {
	return func(t *Transport) {
		t.baudRate = rate
	}
}

// WithReadTimeout sets how long blocking reads wait for the next byte
func WithReadTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.timeout = timeout
	}
}

// Transport implements nextion.Channel on a serial port.
//
// Received bytes are buffered so that Available and Peek can be answered
// without losing data. Reads and writes may run concurrently.
type Transport struct {
	port     serial.Port
	portName string
	buf      []byte
	scratch  []byte
	timeout  time.Duration
	baudRate int
	mu       sync.Mutex
	closed   atomic.Bool
}

// New opens portName for a Nextion panel
func New(portName string, opts ...Option) (*Transport, error) {
	t := newTransport(portName, opts...)

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, t.wrap("open", err)
	}

	if err := port.SetReadTimeout(pollSlice); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	t.port = port
	return t, nil
}

func newTransport(portName string, opts ...Option) *Transport {
	t := &Transport{
		portName: portName,
		baudRate: DefaultBaudRate,
		timeout:  DefaultReadTimeout,
		scratch:  make([]byte, readChunk),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PortName returns the device path
func (t *Transport) PortName() string {
	return t.portName
}

// BaudRate returns the serial speed the port was opened with
func (t *Transport) BaudRate() int {
	return t.baudRate
}

// Available returns the number of buffered bytes, reading once from the
// port when the buffer is empty
func (t *Transport) Available() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("available"); err != nil {
		return 0, err
	}
	if len(t.buf) == 0 {
		if _, err := t.readSome(); err != nil {
			return 0, err
		}
	}
	return len(t.buf), nil
}

// Peek returns the next byte without consuming it
func (t *Transport) Peek() (b byte, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("peek"); err != nil {
		return 0, false, err
	}
	if len(t.buf) == 0 {
		if _, err := t.readSome(); err != nil {
			return 0, false, err
		}
	}
	if len(t.buf) == 0 {
		return 0, false, nil
	}
	return t.buf[0], true, nil
}

// ReadByte reads one byte
func (t *Transport) ReadByte() (byte, error) {
	out, err := t.ReadFull(1)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// ReadFull reads exactly n bytes
func (t *Transport) ReadFull(n int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("read"); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(t.timeout)
	for len(t.buf) < n {
		got, err := t.readSome()
		if err != nil {
			return nil, err
		}
		if got > 0 {
			deadline = time.Now().Add(t.timeout)
		} else if time.Now().After(deadline) {
			return nil, nextion.NewTimeoutError("read", t.portName)
		}
	}

	out := append([]byte(nil), t.buf[:n]...)
	t.consume(n)
	return out, nil
}

// ReadUntil reads through delim, keeping at most limit bytes before it
func (t *Transport) ReadUntil(delim byte, limit int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("read"); err != nil {
		return nil, err
	}

	limit = max(limit, 0)
	var out []byte
	deadline := time.Now().Add(t.timeout)
	for {
		if idx := bytes.IndexByte(t.buf, delim); idx >= 0 {
			keep := min(idx, limit-len(out))
			out = append(out, t.buf[:keep]...)
			t.consume(idx + 1)
			return out, nil
		}

		keep := min(len(t.buf), limit-len(out))
		out = append(out, t.buf[:keep]...)
		t.consume(len(t.buf))

		got, err := t.readSome()
		if err != nil {
			return nil, err
		}
		if got > 0 {
			deadline = time.Now().Add(t.timeout)
		} else if time.Now().After(deadline) {
			return nil, nextion.NewTimeoutError("read", t.portName)
		}
	}
}

// Write writes p to the port
func (t *Transport) Write(p []byte) (int, error) {
	if err := t.checkOpen("write"); err != nil {
		return 0, err
	}
	n, err := t.port.Write(p)
	if err != nil {
		return n, t.wrap("write", err)
	}
	return n, nil
}

// Discard drops buffered input on both sides of the driver
func (t *Transport) Discard() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("discard"); err != nil {
		return err
	}
	t.buf = t.buf[:0]
	if err := t.port.ResetInputBuffer(); err != nil {
		return t.wrap("discard", err)
	}
	return nil
}

// SetTimeout sets how long blocking reads wait for the next byte
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout %v", nextion.ErrInvalidParameter, timeout)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil || t.closed.Swap(true) {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected returns true while the port is open
func (t *Transport) IsConnected() bool {
	return t.port != nil && !t.closed.Load()
}

// Type returns ChannelUART
func (*Transport) Type() nextion.ChannelType {
	return nextion.ChannelUART
}

// readSome performs one timed read from the port. Callers hold mu.
func (t *Transport) readSome() (int, error) {
	n, err := t.port.Read(t.scratch)
	if err != nil {
		return 0, t.wrap("read", err)
	}
	t.buf = append(t.buf, t.scratch[:n]...)
	return n, nil
}

func (t *Transport) consume(n int) {
	t.buf = append(t.buf[:0], t.buf[n:]...)
}

func (t *Transport) checkOpen(op string) error {
	if !t.IsConnected() {
		return nextion.NewClosedError(op, t.portName)
	}
	return nil
}

// wrap classifies serial errors for retry decisions
func (t *Transport) wrap(op string, err error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortClosed:
			return nextion.NewChannelError(op, t.portName, fmt.Errorf("%w: %w", nextion.ErrChannelClosed, err),
				nextion.ErrorTypePermanent)
		case serial.PortNotFound, serial.InvalidSerialPort, serial.PermissionDenied,
			serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits:
			return nextion.NewChannelError(op, t.portName, err, nextion.ErrorTypePermanent)
		case serial.PortBusy, serial.InvalidTimeoutValue, serial.ErrorEnumeratingPorts,
			serial.FunctionNotImplemented:
			return nextion.NewChannelError(op, t.portName, err, nextion.ErrorTypeTransient)
		}
	}

	sentinel := nextion.ErrChannelRead
	if op == "write" {
		sentinel = nextion.ErrChannelWrite
	}
	return nextion.NewChannelError(op, t.portName, fmt.Errorf("%w: %w", sentinel, err), nextion.ErrorTypeTransient)
}

var _ nextion.Channel = (*Transport)(nil)
