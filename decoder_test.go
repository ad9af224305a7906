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
	"testing"

	testutil "github.com/ZaparooProject/go-nextion/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_NoData(t *testing.T) {
	t.Parallel()

	d, _, rec := newTestDisplay(t)

	handled, err := d.Poll()
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, rec.Events())
	assert.Equal(t, Stats{}, d.Stats())
}

func TestPoll_NumericReport(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed([]byte{0x71, 0x12, 0x34, 0x56, 0x00, 0xFF, 0xFF, 0xFF})

	handled, err := d.Poll()
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []uint32{0x00563412}, rec.Numerics())
	assert.Empty(t, rec.Events())
	assert.Zero(t, ch.Pending())
}

func TestPoll_NumericReportBadTerminator(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(
		[]byte{0x71, 0x12, 0x34, 0x56, 0x00, 0xFF, 0x00, 0xFF},
		[]byte{0xFF, 0xFF},
		testutil.BuildNumericFrame(7),
	)

	pollAll(t, d)

	assert.Equal(t, []uint32{7}, rec.Numerics())
	assert.Equal(t, int64(1), d.Stats().Purges)
}

func TestPoll_StringReport(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(testutil.BuildStringFrame("hello"), testutil.BuildStringFrame(""))

	assert.Equal(t, 2, pollAll(t, d))
	assert.Equal(t, []string{"hello", ""}, rec.Strings())
}

func TestPoll_StringReportTruncated(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t, WithMaxStringLength(4))
	ch.Feed(testutil.BuildStringFrame("abcdefgh"), testutil.BuildNumericFrame(42))

	pollAll(t, d)

	assert.Equal(t, []string{"abcd"}, rec.Strings())
	assert.Equal(t, []uint32{42}, rec.Numerics())
}

func TestPoll_PageHistory(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(testutil.BuildPageFrame(1), testutil.BuildPageFrame(2), testutil.BuildPageFrame(3))
	pollAll(t, d)
	require.Equal(t, [PageHistorySize]byte{3, 2, 1, 0, 0}, d.PageHistory())

	ch.Feed(testutil.BuildPageFrame(3))
	pollAll(t, d)
	assert.Equal(t, [PageHistorySize]byte{3, 2, 1, 0, 0}, d.PageHistory())

	ch.Feed(testutil.BuildPageFrame(7))
	pollAll(t, d)
	assert.Equal(t, [PageHistorySize]byte{7, 3, 2, 1, 0}, d.PageHistory())
	assert.Equal(t, byte(7), d.CurrentPage())

	events := rec.Events()
	assert.Len(t, events, 5)
	for _, ev := range events {
		assert.Equal(t, CurrentPageNumber, ev)
	}
}

func TestPoll_PageReportBadTerminator(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed([]byte{0x66, 0x04, 0xFF, 0x00, 0xFF, 0xFF})

	pollAll(t, d)

	assert.Empty(t, rec.Events())
	assert.Equal(t, [PageHistorySize]byte{}, d.PageHistory())
}

func TestPoll_Touch(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)

	ch.Feed([]byte{0x67, 0x00, 0x64, 0x00, 0xC8, 0x01, 0xFF, 0xFF, 0xFF})
	handled, err := d.Poll()
	require.NoError(t, err)
	require.True(t, handled)
	assert.Zero(t, ch.Pending(), "touch frames are always purged through the terminator")
	assert.Equal(t, TouchState{PressX: 100, PressY: 200}, d.Touch())

	ch.Feed([]byte{0x68, 0x00, 0x64, 0x00, 0xC8, 0x00, 0xFF, 0xFF, 0xFF})
	handled, err = d.Poll()
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, TouchState{PressX: 100, PressY: 200, ReleaseX: 100, ReleaseY: 200}, d.Touch())

	assert.Equal(t, []Opcode{TouchCoordinateAwake, TouchCoordinateSleep}, rec.Events())
}

func TestPoll_TouchUnknownFlag(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(
		[]byte{0x67, 0x00, 0x64, 0x00, 0xC8, 0x02, 0xFF, 0xFF, 0xFF},
		[]byte{0x68, 0x00, 0x0A, 0x00, 0x14, 0x7F, 0xFF, 0xFF, 0xFF},
	)

	pollAll(t, d)

	assert.Empty(t, rec.Events(), "touch reports with other flags are not dispatched")
	assert.Equal(t, TouchState{}, d.Touch())
	assert.Zero(t, ch.Pending())
	assert.Equal(t, int64(2), d.Stats().Purges)
}

func TestPoll_TouchEventIgnored(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed([]byte{0x65, 0x00, 0x02, 0x01, 0xFF, 0xFF, 0xFF})

	handled, err := d.Poll()
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, rec.Events())
	assert.Equal(t, 6, ch.Pending())
}

func TestPoll_StatusOpcodes(t *testing.T) {
	t.Parallel()

	for op := range statusOpcodes {
		t.Run(op.String(), func(t *testing.T) {
			t.Parallel()

			d, ch, rec := newTestDisplay(t)
			ch.Feed(testutil.BuildStatusFrame(byte(op)))
			pollAll(t, d)
			assert.Equal(t, []Opcode{op}, rec.Events())

			ch.Feed([]byte{byte(op), 0xFF, 0x00, 0xFF, 0xFF})
			pollAll(t, d)
			assert.Equal(t, []Opcode{op}, rec.Events(), "malformed status must not be dispatched")
			assert.Equal(t, int64(1), d.Stats().Purges)
		})
	}
}

func TestPoll_InvalidInstructionDiscriminator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  []Opcode
	}{
		{
			name:  "startup",
			input: testutil.BuildStartupFrame(),
			want:  []Opcode{Startup},
		},
		{
			name:  "invalid instruction",
			input: testutil.BuildInvalidInstructionFrame(),
			want:  []Opcode{InvalidInstruction},
		},
		{
			name:  "startup with bad tail",
			input: []byte{0x00, 0x00, 0x00, 0x01, 0xFF, 0xFF, 0xFF},
		},
		{
			name:  "invalid instruction with bad tail",
			input: []byte{0x00, 0xFF, 0x00, 0xFF, 0xFF},
		},
		{
			name:  "unknown discriminator",
			input: []byte{0x00, 0x42, 0xFF, 0xFF, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, ch, rec := newTestDisplay(t)
			ch.Feed(tt.input)
			pollAll(t, d)

			assert.Equal(t, tt.want, rec.Events())
			assert.Zero(t, ch.Pending())
		})
	}
}

func TestPoll_UnknownOpcode(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(
		[]byte{0x50, 'x', 'y', 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		testutil.BuildNumericFrame(1),
	)

	pollAll(t, d)

	assert.Equal(t, []Opcode{Opcode(0x50)}, rec.Events())
	assert.Equal(t, []uint32{1}, rec.Numerics())

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.UnknownOpcodes)
	assert.Equal(t, int64(1), stats.Purges)
	assert.Equal(t, int64(2), stats.Frames)
}

func TestPoll_UnframedErrorOpcodes(t *testing.T) {
	t.Parallel()

	for _, op := range []Opcode{InvalidFileOperation, FailEEPROMOperation} {
		t.Run(op.String(), func(t *testing.T) {
			t.Parallel()

			d, ch, rec := newTestDisplay(t)
			ch.Feed(
				[]byte{byte(op), 0x01, 0x02, 0xFF, 0xFF, 0xFF},
				testutil.BuildNumericFrame(3),
			)

			pollAll(t, d)

			assert.Equal(t, []Opcode{op}, rec.Events())
			assert.Equal(t, []uint32{3}, rec.Numerics(), "payload bytes are purged, not decoded")

			stats := d.Stats()
			assert.Equal(t, int64(1), stats.Purges)
			assert.Zero(t, stats.UnknownOpcodes)
		})
	}
}

func TestPoll_MixedStream(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(testutil.Concat(
		testutil.BuildStartupFrame(),
		testutil.BuildStatusFrame(byte(Ready)),
		testutil.BuildPageFrame(2),
		testutil.BuildTouchFrame(testutil.OpTouchCoordinateAwake, 10, 20, true),
		testutil.BuildStringFrame("t0"),
		testutil.BuildNumericFrame(99),
		testutil.BuildStatusFrame(byte(InvalidComponentID)),
	))

	pollAll(t, d)

	assert.Equal(t, []Opcode{Startup, Ready, CurrentPageNumber, TouchCoordinateAwake, InvalidComponentID}, rec.Events())
	assert.Equal(t, []string{"t0"}, rec.Strings())
	assert.Equal(t, []uint32{99}, rec.Numerics())
	assert.Equal(t, int64(1), d.Stats().Purges, "only the touch frame purges")
}

func TestPoll_TruncatedFrame(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed([]byte{0x71, 0x01, 0x02})

	handled, err := d.Poll()
	require.Error(t, err)
	assert.True(t, handled)
	require.ErrorIs(t, err, ErrChannelTimeout)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.Empty(t, rec.Numerics())
	assert.Equal(t, int64(1), d.Stats().ChannelErrors)
	assert.Zero(t, ch.Pending(), "the partial frame is dropped")

	ch.Feed(testutil.BuildNumericFrame(7))
	pollAll(t, d)
	assert.Equal(t, []uint32{7}, rec.Numerics())
}

func TestPoll_TimeoutResyncsAtTerminator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "page", input: []byte{0x66, 0x03, 0xFF}},
		{name: "touch", input: []byte{0x67, 0x00, 0x03, 0xFF, 0xFF}},
		{name: "string trailer", input: []byte{0x70, 'o', 'k', 0xFF, 0x03}},
		{name: "startup tail", input: []byte{0x00, 0x00, 0x03, 0xFF}},
		{name: "invalid instruction tail", input: []byte{0x00, 0xFF, 0x03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, ch, rec := newTestDisplay(t)
			ch.Feed(tt.input)

			_, err := d.Poll()
			require.ErrorIs(t, err, ErrChannelTimeout)

			ch.Feed(testutil.BuildNumericFrame(5))
			pollAll(t, d)

			assert.Empty(t, rec.Events(), "the frame tail must not decode as an opcode")
			assert.Empty(t, rec.Strings())
			assert.Equal(t, []uint32{5}, rec.Numerics())
			assert.Zero(t, ch.Pending())
		})
	}
}

func TestPoll_ChannelError(t *testing.T) {
	t.Parallel()

	d, ch, _ := newTestDisplay(t)
	ch.SetReadError(ErrChannelRead)

	handled, err := d.Poll()
	assert.False(t, handled)
	require.ErrorIs(t, err, ErrChannelRead)

	var ce *ChannelError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "available", ce.Op)
	assert.Equal(t, "mock", ce.Port)
}

func TestPoll_SkippedWhileChannelHeld(t *testing.T) {
	t.Parallel()

	d, ch, rec := newTestDisplay(t)
	ch.Feed(testutil.BuildNumericFrame(5))

	d.readMu.Lock()
	handled, err := d.Poll()
	d.readMu.Unlock()

	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, rec.Numerics())

	pollAll(t, d)
	assert.Equal(t, []uint32{5}, rec.Numerics())
}

func TestPoll_HandlerSwap(t *testing.T) {
	t.Parallel()

	d, ch, first := newTestDisplay(t)
	second := &recorder{}

	ch.Feed(testutil.BuildNumericFrame(1))
	pollAll(t, d)

	d.SetHandler(second)
	ch.Feed(testutil.BuildNumericFrame(2))
	pollAll(t, d)

	d.SetHandler(nil)
	ch.Feed(testutil.BuildNumericFrame(3))
	pollAll(t, d)

	assert.Equal(t, []uint32{1}, first.Numerics())
	assert.Equal(t, []uint32{2}, second.Numerics())
}
