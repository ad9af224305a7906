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

// Package polling drives a Display's decoder from a background goroutine.
//
// The protocol engine never reads on its own: something has to call Poll
// repeatedly. Runner does that on an interval, draining bursts of frames
// quickly and slowing down while the panel is quiet.
package polling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	nextion "github.com/ZaparooProject/go-nextion"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyRunning is returned by Start when the runner is active
	ErrAlreadyRunning = errors.New("runner is already running")
	// ErrNilPoller is returned by NewRunner without a poller
	ErrNilPoller = errors.New("poller cannot be nil")
)

// Poller decodes at most one frame per call. *nextion.Display implements it.
type Poller interface {
	Poll() (handled bool, err error)
}

// Config holds the runner timing
type Config struct {
	// PollInterval is the delay between cycles while frames are arriving
	PollInterval time.Duration
	// IdleInterval is the delay used once nothing arrived for IdleAfter.
	// Zero disables the slowdown.
	IdleInterval time.Duration
	// IdleAfter is how long the panel must stay quiet before slowing down
	IdleAfter time.Duration
	// MaxBurst bounds how many frames one cycle drains back to back
	MaxBurst int
}

// DefaultConfig returns timing suitable for touch-driven interfaces
func DefaultConfig() Config {
	return Config{
		PollInterval: 10 * time.Millisecond,
		IdleInterval: 50 * time.Millisecond,
		IdleAfter:    5 * time.Second,
		MaxBurst:     32,
	}
}

// Metrics is a snapshot of runner activity
type Metrics struct {
	Cycles          int64         // Poll cycles run
	Frames          int64         // Frames decoded
	Errors          int64         // Poll calls that returned an error
	LastCycle       time.Duration // Duration of the most recent cycle
	CurrentInterval time.Duration // Delay before the next cycle
}

// Runner calls Poll until stopped or until the channel fails permanently
type Runner struct {
	poller Poller
	// OnError is called with every Poll error, from the runner goroutine.
	// Set it before Start.
	OnError   func(error)
	logger    zerolog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	config    Config
	lastFrame atomic.Int64
	cycles    atomic.Int64
	frames    atomic.Int64
	errs      atomic.Int64
	lastCycle atomic.Int64
	interval  atomic.Int64
	mu        sync.Mutex
	running   atomic.Bool
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithErrorHandler sets OnError
func WithErrorHandler(fn func(error)) RunnerOption {
	return func(r *Runner) {
		r.OnError = fn
	}
}

// NewRunner creates a runner for poller. Non-positive config values are
// replaced with defaults.
func NewRunner(poller Poller, config Config, opts ...RunnerOption) (*Runner, error) {
	if poller == nil {
		return nil, ErrNilPoller
	}

	def := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.MaxBurst <= 0 {
		config.MaxBurst = def.MaxBurst
	}
	if config.IdleInterval < config.PollInterval {
		config.IdleInterval = 0
	}

	r := &Runner{
		poller: poller,
		config: config,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.interval.Store(int64(config.PollInterval))
	return r, nil
}

// Start runs the poll loop in a new goroutine
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running.Load() {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.err = nil
	r.running.Store(true)

	go func() {
		defer close(done)
		defer cancel()

		err := r.loop(runCtx)

		r.mu.Lock()
		r.err = err
		r.running.Store(false)
		r.mu.Unlock()
	}()
	return nil
}

// Run polls on the calling goroutine until ctx is done or Poll returns an
// error that is not retryable.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running.Load() {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running.Store(true)
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running.Store(false)
		r.mu.Unlock()
	}()
	return r.loop(ctx)
}

// Stop cancels the loop started by Start and waits for it to exit.
// It returns the error that ended the loop, if any.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return r.Err()
}

// Done is closed when the loop started by Start exits
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Err returns the error that ended the last loop. Cancellation is not an error.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// IsRunning reports whether the loop is active
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// Metrics returns current activity counters
func (r *Runner) Metrics() Metrics {
	return Metrics{
		Cycles:          r.cycles.Load(),
		Frames:          r.frames.Load(),
		Errors:          r.errs.Load(),
		LastCycle:       time.Duration(r.lastCycle.Load()),
		CurrentInterval: time.Duration(r.interval.Load()),
	}
}

func (r *Runner) loop(ctx context.Context) error {
	r.lastFrame.Store(time.Now().UnixNano())
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if err := r.cycle(); err != nil {
			r.logger.Error().Err(err).Msg("polling stopped")
			return err
		}
		timer.Reset(time.Duration(r.interval.Load()))
	}
}

// cycle drains up to MaxBurst frames. It returns an error only when the
// loop must stop.
func (r *Runner) cycle() error {
	start := time.Now()
	defer func() {
		r.cycles.Add(1)
		r.lastCycle.Store(int64(time.Since(start)))
		r.adjustInterval()
	}()

	for range r.config.MaxBurst {
		handled, err := r.poller.Poll()
		if handled {
			r.frames.Add(1)
			r.lastFrame.Store(time.Now().UnixNano())
		}
		if err != nil {
			r.errs.Add(1)
			if r.OnError != nil {
				r.OnError(err)
			}
			if !nextion.IsRetryable(err) {
				return err
			}
			r.logger.Debug().Err(err).Msg("poll failed")
			return nil
		}
		if !handled {
			return nil
		}
	}
	return nil
}

func (r *Runner) adjustInterval() {
	interval := r.config.PollInterval
	if r.config.IdleInterval > 0 {
		quiet := time.Since(time.Unix(0, r.lastFrame.Load()))
		if quiet > r.config.IdleAfter {
			interval = r.config.IdleInterval
		}
	}
	r.interval.Store(int64(interval))
}
