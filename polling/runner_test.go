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

package polling

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	nextion "github.com/ZaparooProject/go-nextion"
	testutil "github.com/ZaparooProject/go-nextion/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	err     error
	handled bool
}

// scriptedPoller returns scripted results, then reports no data forever
type scriptedPoller struct {
	script []result
	calls  atomic.Int64
	mu     sync.Mutex
}

func (p *scriptedPoller) Poll() (bool, error) {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.script) == 0 {
		return false, nil
	}
	r := p.script[0]
	p.script = p.script[1:]
	return r.handled, r.err
}

func fastConfig() Config {
	return Config{PollInterval: time.Millisecond, MaxBurst: 4}
}

func TestNewRunnerDefaults(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(nil, Config{})
	require.ErrorIs(t, err, ErrNilPoller)

	r, err := NewRunner(&scriptedPoller{}, Config{IdleInterval: time.Microsecond})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().PollInterval, r.config.PollInterval)
	assert.Equal(t, DefaultConfig().MaxBurst, r.config.MaxBurst)
	assert.Zero(t, r.config.IdleInterval, "idle interval shorter than poll interval is disabled")
	assert.Equal(t, r.config.PollInterval, r.Metrics().CurrentInterval)
}

func TestRunnerDrainsBurst(t *testing.T) {
	t.Parallel()

	p := &scriptedPoller{script: []result{
		{handled: true}, {handled: true}, {handled: true}, {handled: true}, {handled: true},
	}}
	r, err := NewRunner(p, fastConfig())
	require.NoError(t, err)

	// MaxBurst is 4, so the first cycle takes four frames
	require.NoError(t, r.cycle())
	m := r.Metrics()
	assert.Equal(t, int64(1), m.Cycles)
	assert.Equal(t, int64(4), m.Frames)
	assert.Equal(t, int64(4), p.calls.Load())

	// second cycle takes the last frame and stops at the empty poll
	require.NoError(t, r.cycle())
	assert.Equal(t, int64(5), r.Metrics().Frames)
	assert.Equal(t, int64(6), p.calls.Load())
}

func TestRunnerRetryableErrorContinues(t *testing.T) {
	t.Parallel()

	timeout := nextion.NewTimeoutError("read", "test")
	p := &scriptedPoller{script: []result{{err: timeout}, {handled: true}}}

	var seen []error
	r, err := NewRunner(p, fastConfig(), WithErrorHandler(func(err error) { seen = append(seen, err) }))
	require.NoError(t, err)

	require.NoError(t, r.cycle())
	require.NoError(t, r.cycle())
	assert.Equal(t, int64(1), r.Metrics().Errors)
	assert.Equal(t, int64(1), r.Metrics().Frames)
	require.Len(t, seen, 1)
	assert.ErrorIs(t, seen[0], nextion.ErrChannelTimeout)
}

func TestRunnerStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	closed := nextion.NewClosedError("read", "test")
	p := &scriptedPoller{script: []result{{handled: true}, {err: closed}}}
	r, err := NewRunner(p, fastConfig())
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.False(t, r.IsRunning())
	require.ErrorIs(t, r.Err(), nextion.ErrChannelClosed)
	assert.ErrorIs(t, r.Stop(), nextion.ErrChannelClosed)
	assert.Equal(t, int64(1), r.Metrics().Frames)
}

func TestRunnerStartStop(t *testing.T) {
	t.Parallel()

	p := &scriptedPoller{}
	r, err := NewRunner(p, fastConfig())
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool { return r.Metrics().Cycles >= 3 },
		2*time.Second, time.Millisecond)

	require.NoError(t, r.Stop())
	assert.False(t, r.IsRunning())

	cycles := r.Metrics().Cycles
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, cycles, r.Metrics().Cycles)

	// restartable after Stop
	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop())
}

func TestRunnerStopRightAfterStart(t *testing.T) {
	t.Parallel()

	for range 200 {
		r, err := NewRunner(&scriptedPoller{}, fastConfig())
		require.NoError(t, err)

		started := make(chan error, 1)
		go func() { started <- r.Start(context.Background()) }()

		// Stop as soon as the runner reports itself running
		for !r.IsRunning() {
			runtime.Gosched()
		}
		require.NoError(t, r.Stop())
		require.NoError(t, <-started)

		assert.False(t, r.IsRunning())
		select {
		case <-r.Done():
		default:
			t.Fatal("Stop returned while the loop was still running")
		}
	}
}

func TestRunnerStopWithoutStart(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(&scriptedPoller{}, fastConfig())
	require.NoError(t, err)
	assert.NoError(t, r.Stop())
}

func TestRunBlocksUntilCancelled(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(&scriptedPoller{}, fastConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))
	assert.Positive(t, r.Metrics().Cycles)
	assert.False(t, r.IsRunning())
}

func TestRunnerIdleSlowdown(t *testing.T) {
	t.Parallel()

	cfg := Config{
		PollInterval: time.Millisecond,
		IdleInterval: 20 * time.Millisecond,
		IdleAfter:    5 * time.Millisecond,
		MaxBurst:     1,
	}
	p := &scriptedPoller{}
	r, err := NewRunner(p, cfg)
	require.NoError(t, err)

	r.lastFrame.Store(time.Now().UnixNano())
	require.NoError(t, r.cycle())
	assert.Equal(t, time.Millisecond, r.Metrics().CurrentInterval)

	r.lastFrame.Store(time.Now().Add(-time.Second).UnixNano())
	require.NoError(t, r.cycle())
	assert.Equal(t, 20*time.Millisecond, r.Metrics().CurrentInterval)

	p.mu.Lock()
	p.script = []result{{handled: true}}
	p.mu.Unlock()
	require.NoError(t, r.cycle())
	assert.Equal(t, time.Millisecond, r.Metrics().CurrentInterval)
}

type countingHandler struct {
	nextion.HandlerFuncs
	numerics atomic.Int64
}

func TestRunnerDrivesDisplay(t *testing.T) {
	t.Parallel()

	mock := nextion.NewMockChannelWithInput(
		testutil.BuildNumericFrame(1),
		testutil.BuildNumericFrame(2),
		testutil.BuildNumericFrame(3),
	)
	h := &countingHandler{}
	h.Numeric = func(uint32) { h.numerics.Add(1) }

	display, err := nextion.New(mock, nextion.WithHandler(h))
	require.NoError(t, err)

	r, err := NewRunner(display, fastConfig())
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))
	defer func() { _ = r.Stop() }()

	require.Eventually(t, func() bool { return h.numerics.Load() == 3 },
		2*time.Second, time.Millisecond)
	assert.Equal(t, int64(3), r.Metrics().Frames)

	mock.Feed(testutil.BuildNumericFrame(4))
	require.Eventually(t, func() bool { return h.numerics.Load() == 4 },
		2*time.Second, time.Millisecond)
}

var errBoom = errors.New("boom")

func TestRunnerPlainErrorIsPermanent(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(&scriptedPoller{script: []result{{err: errBoom}}}, fastConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, r.Run(context.Background()), errBoom)
}
