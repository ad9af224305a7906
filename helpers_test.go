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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder captures every handler call
type recorder struct {
	strs     []string
	numerics []uint32
	events   []Opcode
	mu       sync.Mutex
}

func (r *recorder) OnString(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strs = append(r.strs, text)
}

func (r *recorder) OnNumeric(value uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numerics = append(r.numerics, value)
}

func (r *recorder) OnEvent(opcode Opcode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, opcode)
}

func (r *recorder) Strings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.strs...)
}

func (r *recorder) Numerics() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.numerics...)
}

func (r *recorder) Events() []Opcode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Opcode(nil), r.events...)
}

func newTestDisplay(t *testing.T, opts ...Option) (*Display, *MockChannel, *recorder) {
	t.Helper()

	ch := NewMockChannel()
	rec := &recorder{}
	d, err := New(ch, append([]Option{WithHandler(rec)}, opts...)...)
	require.NoError(t, err)
	return d, ch, rec
}

// pollAll runs Poll until the channel is drained
func pollAll(t *testing.T, d *Display) int {
	t.Helper()

	cycles := 0
	for {
		handled, err := d.Poll()
		require.NoError(t, err)
		if !handled {
			return cycles
		}
		cycles++
		require.Less(t, cycles, 10000, "poll did not drain the channel")
	}
}
