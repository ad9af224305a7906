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
	"bytes"
	"sync"
	"time"
)

const mockPort = "mock"

// MockChannel is an in-memory Channel for tests. Bytes queued with Feed are
// returned by reads; writes are captured and may be answered by WriteHook.
// Reads never block: asking for more than is queued consumes what is there
// and returns a timeout error, like a serial port whose timeout expired.
type MockChannel struct {
	// WriteHook, if set, is called with every write. Bytes it returns are
	// queued as panel output.
	WriteHook func(p []byte) []byte
	readErr   error
	writeErr  error
	rx        []byte
	tx        []byte
	writes    [][]byte
	timeout   time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewMockChannel creates a new mock channel
func NewMockChannel() *MockChannel {
	return &MockChannel{timeout: time.Second}
}

// NewMockChannelWithInput creates a mock channel with queued panel output
func NewMockChannelWithInput(data ...[]byte) *MockChannel {
	m := NewMockChannel()
	m.Feed(data...)
	return m
}

// Feed queues bytes as if the panel had sent them
func (m *MockChannel) Feed(data ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range data {
		m.rx = append(m.rx, d...)
	}
}

// SetWriteHook replaces WriteHook
func (m *MockChannel) SetWriteHook(fn func(p []byte) []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteHook = fn
}

// SetReadError makes every subsequent read fail with err. Nil clears it.
func (m *MockChannel) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes every subsequent write fail with err. Nil clears it.
func (m *MockChannel) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Written returns a copy of every byte written so far
func (m *MockChannel) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.tx...)
}

// Writes returns a copy of each Write call's payload
func (m *MockChannel) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// ClearWritten forgets captured writes
func (m *MockChannel) ClearWritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tx = nil
	m.writes = nil
}

// Pending returns the number of queued bytes not yet read
func (m *MockChannel) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rx)
}

// Available implements Channel
func (m *MockChannel) Available() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReadLocked("available"); err != nil {
		return 0, err
	}
	return len(m.rx), nil
}

// Peek implements Channel
func (m *MockChannel) Peek() (b byte, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReadLocked("peek"); err != nil {
		return 0, false, err
	}
	if len(m.rx) == 0 {
		return 0, false, nil
	}
	return m.rx[0], true, nil
}

// ReadByte implements Channel
func (m *MockChannel) ReadByte() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReadLocked("read"); err != nil {
		return 0, err
	}
	if len(m.rx) == 0 {
		return 0, NewTimeoutError("read", mockPort)
	}
	b := m.rx[0]
	m.rx = m.rx[1:]
	return b, nil
}

// ReadFull implements Channel. A short read times out and leaves the
// queued bytes in place.
func (m *MockChannel) ReadFull(n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReadLocked("read"); err != nil {
		return nil, err
	}
	if len(m.rx) < n {
		return nil, NewTimeoutError("read", mockPort)
	}
	out := append([]byte(nil), m.rx[:n]...)
	m.rx = m.rx[n:]
	return out, nil
}

// ReadUntil implements Channel. Without a delimiter the scanned bytes are
// consumed before the timeout, as the serial transport does.
func (m *MockChannel) ReadUntil(delim byte, limit int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkReadLocked("read"); err != nil {
		return nil, err
	}

	idx := bytes.IndexByte(m.rx, delim)
	if idx < 0 {
		m.rx = nil
		return nil, NewTimeoutError("read", mockPort)
	}

	keep := min(idx, max(limit, 0))
	out := append([]byte(nil), m.rx[:keep]...)
	m.rx = m.rx[idx+1:]
	return out, nil
}

// Write implements Channel
func (m *MockChannel) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, NewClosedError("write", mockPort)
	}
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return 0, err
	}
	m.tx = append(m.tx, p...)
	m.writes = append(m.writes, append([]byte(nil), p...))
	hook := m.WriteHook
	m.mu.Unlock()

	if hook != nil {
		if reply := hook(p); len(reply) > 0 {
			m.Feed(reply)
		}
	}
	return len(p), nil
}

// Discard implements Channel
func (m *MockChannel) Discard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return NewClosedError("discard", mockPort)
	}
	m.rx = nil
	return nil
}

// SetTimeout implements Channel
func (m *MockChannel) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Close implements Channel
func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected implements Channel
func (m *MockChannel) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type implements Channel
func (*MockChannel) Type() ChannelType {
	return ChannelMock
}

func (m *MockChannel) checkReadLocked(op string) error {
	if m.closed {
		return NewClosedError(op, mockPort)
	}
	return m.readErr
}

// BlockingChannel is a MockChannel whose writes block until Unblock is
// called, the write timeout expires, or the channel is closed.
// This is used for testing lock contention between senders.
type BlockingChannel struct {
	*MockChannel
	gate     chan struct{}
	entered  chan struct{}
	timeout  time.Duration
	gateMu   sync.Mutex
	isClosed bool
}

// NewBlockingChannel creates a new blocking channel
func NewBlockingChannel() *BlockingChannel {
	return &BlockingChannel{
		MockChannel: NewMockChannel(),
		gate:        make(chan struct{}),
		entered:     make(chan struct{}, 64),
		timeout:     5 * time.Second,
	}
}

// Entered receives a value each time a write starts waiting
func (b *BlockingChannel) Entered() <-chan struct{} {
	return b.entered
}

// Write blocks until released, then behaves like MockChannel.Write
func (b *BlockingChannel) Write(p []byte) (int, error) {
	b.gateMu.Lock()
	gate := b.gate
	closed := b.isClosed
	timeout := b.timeout
	b.gateMu.Unlock()

	if closed {
		return 0, NewClosedError("write", mockPort)
	}

	select {
	case b.entered <- struct{}{}:
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-gate:
	case <-timer.C:
		return 0, NewTimeoutError("write", mockPort)
	}

	return b.MockChannel.Write(p)
}

// Unblock releases every write currently waiting
func (b *BlockingChannel) Unblock() {
	b.gateMu.Lock()
	defer b.gateMu.Unlock()
	if !b.isClosed {
		close(b.gate)
		b.gate = make(chan struct{})
	}
}

// SetWriteTimeout bounds how long a write waits to be released
func (b *BlockingChannel) SetWriteTimeout(timeout time.Duration) {
	b.gateMu.Lock()
	defer b.gateMu.Unlock()
	b.timeout = timeout
}

// Close releases all waiting writes and marks the channel closed
func (b *BlockingChannel) Close() error {
	b.gateMu.Lock()
	if !b.isClosed {
		b.isClosed = true
		close(b.gate)
	}
	b.gateMu.Unlock()
	return b.MockChannel.Close()
}

var (
	_ Channel = (*MockChannel)(nil)
	_ Channel = (*BlockingChannel)(nil)
)
