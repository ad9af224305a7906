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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZaparooProject/go-nextion/internal/frame"
	"github.com/ZaparooProject/go-nextion/internal/retry"
)

// maxReplyLen bounds the remainder of a "comok" reply kept for parsing
const maxReplyLen = 256

// UploadConfig configures the firmware transfer
type UploadConfig struct {
	// Progress is called after every stage change and every chunk
	Progress ProgressCallback
	// ChunkSize is the number of bytes written per acknowledgment
	ChunkSize int
	// HandshakeAttempts bounds how often HandshakeInterval elapses while
	// waiting for the reply to "connect"
	HandshakeAttempts int
	// HandshakeInterval is the delay between handshake reply checks
	HandshakeInterval time.Duration
	// AckPollInterval is the delay between chunk acknowledgment checks
	AckPollInterval time.Duration
	// AckTimeout bounds the wait for each chunk acknowledgment.
	// Zero waits until the context is done.
	AckTimeout time.Duration
	// SettleDelay is waited after the handshake reply before draining input
	SettleDelay time.Duration
}

// DefaultUploadConfig returns the transfer parameters the panel firmware expects
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		ChunkSize:         frame.DefaultChunkSize,
		HandshakeInterval: 100 * time.Millisecond,
		HandshakeAttempts: 50,
		AckPollInterval:   5 * time.Millisecond,
		AckTimeout:        5 * time.Second,
		SettleDelay:       10 * time.Millisecond,
	}
}

// Validate checks the configuration for unusable values
func (c UploadConfig) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d", ErrInvalidParameter, c.ChunkSize)
	case c.HandshakeAttempts < 0:
		return fmt.Errorf("%w: handshake attempts %d", ErrInvalidParameter, c.HandshakeAttempts)
	case c.HandshakeInterval < 0, c.AckPollInterval < 0, c.AckTimeout < 0, c.SettleDelay < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidParameter)
	}
	return nil
}

// UploadProgress describes the state of a running upload
type UploadProgress struct {
	Stage       UploadStage
	BytesSent   int64
	TotalBytes  int64
	Percentage  float64
	ElapsedTime time.Duration
}

// ProgressCallback receives upload progress. It runs on the uploading
// goroutine while the channel is held, so it must not send commands.
type ProgressCallback func(UploadProgress)

// uploadSession is the transient state of one transfer
type uploadSession struct {
	start    time.Time
	progress ProgressCallback
	stage    UploadStage
	total    int64
	sent     int64
}

func (s *uploadSession) enter(stage UploadStage) {
	s.stage = stage
	s.report()
}

func (s *uploadSession) report() {
	if s.progress == nil {
		return
	}
	var pct float64
	if s.total > 0 {
		pct = float64(s.sent) / float64(s.total) * 100
	}
	s.progress(UploadProgress{
		Stage:       s.stage,
		BytesSent:   s.sent,
		TotalBytes:  s.total,
		Percentage:  pct,
		ElapsedTime: time.Since(s.start),
	})
}

func (s *uploadSession) fail(err error) error {
	return &UploadError{Stage: s.stage, BytesSent: s.sent, Err: err}
}

// UploadFile uploads the TFT firmware image at path
func (d *Display) UploadFile(ctx context.Context, path string) error {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return &UploadError{Stage: StagePreparing, Err: fmt.Errorf("failed to open firmware: %w", err)}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return &UploadError{Stage: StagePreparing, Err: fmt.Errorf("failed to stat firmware: %w", err)}
	}
	if info.IsDir() {
		return &UploadError{Stage: StagePreparing, Err: fmt.Errorf("%w: %s is a directory", ErrInvalidParameter, path)}
	}

	return d.Upload(ctx, f, info.Size())
}

// Upload transfers size bytes of firmware read from r to the panel.
//
// The channel is held for the whole transfer: commands from other
// goroutines block and Poll does nothing until Upload returns. Every
// failure is returned as an *UploadError naming the stage; nothing is
// retried. The panel reboots into the new firmware on success.
func (d *Display) Upload(ctx context.Context, r io.Reader, size int64) error {
	cfg := d.config.Upload
	s := &uploadSession{
		start:    time.Now(),
		progress: cfg.Progress,
		total:    size,
	}

	if r == nil || size <= 0 {
		return s.fail(fmt.Errorf("%w: firmware size %d", ErrInvalidParameter, size))
	}

	s.enter(StagePreparing)
	d.prepareUpload()

	d.readMu.Lock()
	defer d.readMu.Unlock()
	d.serialMu.Lock()
	defer d.serialMu.Unlock()

	s.enter(StageHandshaking)
	if err := d.handshakeLocked(ctx); err != nil {
		return s.fail(err)
	}

	s.enter(StageNegotiating)
	info, err := d.negotiateLocked(ctx)
	if err != nil {
		return s.fail(err)
	}
	if info != nil {
		d.logger.Info().
			Str("model", info.Model).
			Str("firmware", info.FirmwareVersion).
			Int64("flash", info.FlashSize).
			Msg("panel accepted upload handshake")
	}

	s.enter(StageStarting)
	baud := d.uploadBaudRate()
	start := fmt.Sprintf("%s %d,%d,0", frame.UploadCommandVerb, size, baud)
	if err := d.writeLocked(frame.AppendTerminator([]byte(frame.UploadRunMode))); err != nil {
		return s.fail(err)
	}
	if err := d.writeLocked(frame.AppendTerminator([]byte(start))); err != nil {
		return s.fail(err)
	}

	s.enter(StageTransferring)
	d.logger.Debug().Int64("size", size).Uint32("baud", baud).Msg("transferring firmware")

	buf := make([]byte, cfg.ChunkSize)
	for s.sent < size {
		n := min(int64(cfg.ChunkSize), size-s.sent)
		chunk := buf[:n]
		if _, err := io.ReadFull(r, chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = fmt.Errorf("%w: %w", ErrFirmwareSize, err)
			}
			return s.fail(err)
		}
		if err := d.waitAckLocked(ctx); err != nil {
			return s.fail(err)
		}
		if err := d.writeLocked(chunk); err != nil {
			return s.fail(err)
		}
		s.sent += n
		s.report()
	}

	s.enter(StageCompleting)
	if err := d.waitAckLocked(ctx); err != nil {
		return s.fail(err)
	}

	s.enter(StageComplete)
	d.logger.Info().
		Int64("bytes", s.sent).
		Dur("elapsed", time.Since(s.start)).
		Msg("firmware upload complete")
	return nil
}

// Identify performs the "connect" handshake and returns the panel's
// self description. The panel stays in normal mode afterwards.
func (d *Display) Identify(ctx context.Context) (*PanelInfo, error) {
	d.readMu.Lock()
	defer d.readMu.Unlock()
	d.serialMu.Lock()
	defer d.serialMu.Unlock()

	if err := d.handshakeLocked(ctx); err != nil {
		return nil, err
	}
	info, err := d.negotiateLocked(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: incomplete reply", ErrHandshakeMismatch)
	}
	return info, nil
}

// prepareUpload keeps the panel awake and bright for the transfer.
// Failures are logged and otherwise ignored.
func (d *Display) prepareUpload() {
	for _, cmd := range []string{"dim=100", "ussp=0", "thsp=0"} {
		if err := d.Send(cmd); err != nil {
			d.logger.Warn().Err(err).Str("command", cmd).Msg("upload preparation command failed")
		}
	}
}

// handshakeLocked sends the connect sequence and waits for the first reply
// byte. Callers hold readMu and serialMu.
func (d *Display) handshakeLocked(ctx context.Context) error {
	cfg := d.config.Upload

	if err := d.channel.Discard(); err != nil {
		return d.channelError("discard", err)
	}

	sequence := [][]byte{
		frame.AppendTerminator([]byte(frame.ModeResetToken)),
		frame.ClearInstruction,
		frame.AppendTerminator([]byte(frame.ConnectRequest)),
		frame.AppendTerminator([]byte("\xFF\xFF " + frame.ConnectRequest)),
	}
	for _, p := range sequence {
		if err := d.writeLocked(p); err != nil {
			return err
		}
	}

	_, err := retry.WithRetry(ctx, retry.Config{
		Description: "connect handshake",
		MaxRetries:  cfg.HandshakeAttempts,
		RetryDelay:  cfg.HandshakeInterval,
	}, func() (struct{}, bool, error) {
		n, err := d.channel.Available()
		if err != nil {
			return struct{}{}, false, d.channelError("available", err)
		}
		return struct{}{}, n == 0, nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return fmt.Errorf("%w: %w", ErrHandshakeTimeout, err)
	}
	return err
}

// negotiateLocked checks the "comok" reply and drains what follows it.
// The returned PanelInfo is nil when the rest of the reply could not be
// parsed. Callers hold readMu and serialMu.
func (d *Display) negotiateLocked(ctx context.Context) (*PanelInfo, error) {
	reply, err := d.channel.ReadFull(frame.ConnectReplyLen)
	if err != nil {
		return nil, d.channelError("read", err)
	}
	if string(reply) != frame.ConnectReply {
		return nil, fmt.Errorf("%w: got %q", ErrHandshakeMismatch, reply)
	}

	rest, err := d.channel.ReadUntil(frame.TerminatorByte, maxReplyLen)
	if err != nil {
		d.logger.Debug().Err(err).Msg("handshake reply not terminated")
	}

	timer := time.NewTimer(d.config.Upload.SettleDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil, ctx.Err()
	case <-timer.C:
	}

	if err := d.channel.Discard(); err != nil {
		return nil, d.channelError("discard", err)
	}

	info, err := ParsePanelInfo(append(reply, rest...))
	if err != nil {
		d.logger.Debug().Err(err).Msg("could not parse handshake reply")
		return nil, nil //nolint:nilnil // panel details are optional here
	}
	return info, nil
}

// waitAckLocked waits for the chunk acknowledgment byte.
// Callers hold readMu and serialMu.
func (d *Display) waitAckLocked(ctx context.Context) error {
	cfg := d.config.Upload

	ack, err := retry.Until(ctx, cfg.AckTimeout, cfg.AckPollInterval, func() (byte, bool, error) {
		n, err := d.channel.Available()
		if err != nil {
			return 0, false, d.channelError("available", err)
		}
		if n == 0 {
			return 0, true, nil
		}
		b, err := d.channel.ReadByte()
		if err != nil {
			return 0, false, d.channelError("read", err)
		}
		return b, false, nil
	})
	if errors.Is(err, retry.ErrDeadline) {
		return ErrAckTimeout
	}
	if err != nil {
		return err
	}

	if ack != frame.ChunkAck {
		return fmt.Errorf("%w: 0x%02X", ErrUnexpectedAck, ack)
	}
	return nil
}

// uploadBaudRate returns the rate announced in the upload command: the
// configured override, else the channel's own speed, else the default.
func (d *Display) uploadBaudRate() uint32 {
	if d.config.BaudRate != 0 {
		return d.config.BaudRate
	}
	if br, ok := d.channel.(baudRater); ok {
		if rate := br.BaudRate(); rate > 0 && rate <= frame.MaxBaudRate {
			return uint32(rate) //nolint:gosec // bounded above
		}
	}
	return frame.DefaultBaudRate
}
