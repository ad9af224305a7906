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

// Package retry provides bounded polling loops shared by the protocol code
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExhausted is returned when every attempt asked to be retried
	ErrExhausted = errors.New("retries exhausted")
	// ErrDeadline is returned when a timeout-based loop runs out of time
	ErrDeadline = errors.New("deadline exceeded")
)

// Operation represents a function that can be retried
// Returns: data, shouldRetry, error
// - data: the result if successful
// - shouldRetry: true if the operation should be retried
// - error: any permanent error that should stop retries
type Operation[T any] func() (T, bool, error)

// Config configures retry behavior
type Config struct {
	OnRetry     func() error
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry executes an operation up to MaxRetries+1 times, sleeping
// RetryDelay between attempts. The sleep is interrupted by ctx.
func WithRetry[T any](ctx context.Context, config Config, operation Operation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}

		if !shouldRetry {
			return result, nil
		}

		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(); err != nil {
				return zero, err
			}
		}

		if err := sleep(ctx, config.RetryDelay); err != nil {
			return zero, err
		}
	}

	if config.Description != "" {
		return zero, fmt.Errorf("%s: %w after %d attempts", config.Description, ErrExhausted, config.MaxRetries+1)
	}
	return zero, ErrExhausted
}

// Until executes an operation every interval until it stops asking to be
// retried, timeout elapses or ctx is done. A timeout of zero or less
// waits for ctx alone.
func Until[T any](ctx context.Context, timeout, interval time.Duration, operation Operation[T]) (T, error) {
	var zero T
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}

		if !shouldRetry {
			return result, nil
		}

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return zero, ErrDeadline
		}

		if err := sleep(ctx, interval); err != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
