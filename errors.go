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
)

// Channel errors
var (
	ErrChannelTimeout = errors.New("channel timeout")
	ErrChannelRead    = errors.New("channel read failed")
	ErrChannelWrite   = errors.New("channel write failed")
	ErrChannelClosed  = errors.New("channel closed")
)

// Upload errors
var (
	ErrHandshakeTimeout  = errors.New("no reply to connect handshake")
	ErrHandshakeMismatch = errors.New("unexpected reply to connect handshake")
	ErrUnexpectedAck     = errors.New("unexpected upload acknowledgment")
	ErrAckTimeout        = errors.New("upload acknowledgment timeout")
	ErrFirmwareSize      = errors.New("firmware shorter than declared size")
)

// ErrInvalidParameter is returned for arguments the panel would reject
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on retry
	ErrorTypeTransient
	// ErrorTypeTimeout errors are caused by a slow or silent panel
	ErrorTypeTimeout
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// ChannelError describes a failure of the underlying byte channel
type ChannelError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *ChannelError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *ChannelError) Unwrap() error {
	return e.Err
}

// NewChannelError creates a ChannelError with retryability derived from the error type
func NewChannelError(op, port string, err error, errType ErrorType) *ChannelError {
	return &ChannelError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a timeout ChannelError
func NewTimeoutError(op, port string) *ChannelError {
	return NewChannelError(op, port, ErrChannelTimeout, ErrorTypeTimeout)
}

// NewClosedError creates a permanent ChannelError for use of a closed channel
func NewClosedError(op, port string) *ChannelError {
	return NewChannelError(op, port, ErrChannelClosed, ErrorTypePermanent)
}

// IsRetryable reports whether err is worth retrying.
// Only errors carrying type information are considered; plain wrapped
// strings are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce.Retryable
	}

	switch {
	case errors.Is(err, ErrChannelTimeout),
		errors.Is(err, ErrChannelRead),
		errors.Is(err, ErrChannelWrite),
		errors.Is(err, ErrHandshakeTimeout),
		errors.Is(err, ErrAckTimeout):
		return true
	default:
		return false
	}
}

// GetErrorType returns the classification of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce.Type
	}

	switch {
	case errors.Is(err, ErrChannelTimeout),
		errors.Is(err, ErrHandshakeTimeout),
		errors.Is(err, ErrAckTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrChannelRead), errors.Is(err, ErrChannelWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// UploadStage names a step of the firmware upload
type UploadStage string

// Upload stages in protocol order
const (
	StagePreparing    UploadStage = "preparing"
	StageHandshaking  UploadStage = "handshaking"
	StageNegotiating  UploadStage = "negotiating"
	StageStarting     UploadStage = "starting"
	StageTransferring UploadStage = "transferring"
	StageCompleting   UploadStage = "completing"
	StageComplete     UploadStage = "complete"
)

// UploadError reports the stage at which a firmware upload failed
type UploadError struct {
	Err       error
	Stage     UploadStage
	BytesSent int64
}

// Error implements the error interface
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed while %s after %d bytes: %v", e.Stage, e.BytesSent, e.Err)
}

// Unwrap returns the wrapped error
func (e *UploadError) Unwrap() error {
	return e.Err
}
