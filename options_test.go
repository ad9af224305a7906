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
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	d, err := New(NewMockChannel())
	require.NoError(t, err)

	cfg := d.Config()
	assert.Zero(t, cfg.BaudRate, "uploads announce the channel rate unless overridden")
	assert.Equal(t, 1024, cfg.MaxStringLength)
	assert.Equal(t, 4096, cfg.Upload.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Upload.HandshakeInterval)
	assert.Equal(t, 50, cfg.Upload.HandshakeAttempts)
	assert.Equal(t, 5*time.Second, cfg.Upload.AckTimeout)
	assert.IsType(t, NopHandler{}, d.eventHandler())
}

func TestNew_NilChannel(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		check   func(t *testing.T, d *Display)
		name    string
		opt     Option
		wantErr bool
	}{
		{
			name: "baud rate",
			opt:  WithBaudRate(115200),
			check: func(t *testing.T, d *Display) {
				t.Helper()
				assert.Equal(t, uint32(115200), d.Config().BaudRate)
			},
		},
		{name: "zero baud rate", opt: WithBaudRate(0), wantErr: true},
		{name: "baud rate too high", opt: WithBaudRate(1_000_000), wantErr: true},
		{
			name: "max string length",
			opt:  WithMaxStringLength(64),
			check: func(t *testing.T, d *Display) {
				t.Helper()
				assert.Equal(t, 64, d.Config().MaxStringLength)
			},
		},
		{name: "zero max string length", opt: WithMaxStringLength(0), wantErr: true},
		{
			name: "upload config",
			opt: WithUploadConfig(UploadConfig{
				ChunkSize:         512,
				HandshakeAttempts: 3,
			}),
			check: func(t *testing.T, d *Display) {
				t.Helper()
				assert.Equal(t, 512, d.Config().Upload.ChunkSize)
				assert.Equal(t, 3, d.Config().Upload.HandshakeAttempts)
			},
		},
		{name: "zero chunk size", opt: WithUploadConfig(UploadConfig{}), wantErr: true},
		{
			name:    "negative duration",
			opt:     WithUploadConfig(UploadConfig{ChunkSize: 1, AckTimeout: -time.Second}),
			wantErr: true,
		},
		{
			name: "progress",
			opt:  WithProgress(func(UploadProgress) {}),
			check: func(t *testing.T, d *Display) {
				t.Helper()
				assert.NotNil(t, d.Config().Upload.Progress)
			},
		},
		{
			name: "logger",
			opt:  WithLogger(zerolog.New(zerolog.NewTestWriter(t))),
			check: func(t *testing.T, d *Display) {
				t.Helper()
				assert.NotEqual(t, zerolog.Disabled, d.logger.GetLevel())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := New(NewMockChannel(), tt.opt)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}
