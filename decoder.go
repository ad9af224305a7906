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

	"github.com/ZaparooProject/go-nextion/internal/frame"
)

// Frame layouts after the opcode byte
const (
	numericPayloadLen = 7 // 4 byte value + terminator
	pagePayloadLen    = 4 // page id + terminator
	touchPayloadLen   = 5 // x, y (big-endian) + press flag
	stringTrailerLen  = 2 // rest of the terminator after the first 0xFF
	startupTailLen    = 4
	invalidTailLen    = 2
)

var startupTail = []byte{0x00, 0x00, 0xFF, 0xFF}

// Poll decodes at most one frame from the channel and dispatches it to the
// event handler. When no byte is available it returns immediately with
// handled set to false.
//
// Malformed frames are resynchronized internally and never reported as
// errors; err is only set when the channel itself fails. Poll is a no-op
// while an upload or Identify holds the channel.
func (d *Display) Poll() (handled bool, err error) {
	if !d.readMu.TryLock() {
		return false, nil
	}
	defer d.readMu.Unlock()

	n, err := d.channel.Available()
	if err != nil {
		return false, d.pollFailed("available", err)
	}
	if n == 0 {
		return false, nil
	}

	b, err := d.channel.ReadByte()
	if err != nil {
		return false, d.pollFailed("read", err)
	}
	d.stats.frames.Add(1)

	if err := d.decode(Opcode(b)); err != nil {
		d.resync(err)
		return true, d.pollFailed("read", err)
	}
	return true, nil
}

// resync drops the rest of a frame whose payload timed out so its tail is
// not decoded as the next opcode. A closed channel is left alone.
func (d *Display) resync(err error) {
	if GetErrorType(err) == ErrorTypePermanent {
		return
	}
	if d.purge() == nil {
		return
	}
	if derr := d.channel.Discard(); derr != nil {
		d.logger.Debug().Err(derr).Msg("discard after partial frame failed")
	}
}

func (d *Display) pollFailed(op string, err error) error {
	d.stats.channelErrors.Add(1)
	return d.channelError(op, err)
}

// decode reads the payload following op and dispatches the event
func (d *Display) decode(op Opcode) error {
	handler := d.eventHandler()

	switch op {
	case NumericDataEnclosed:
		return d.decodeNumeric(handler)
	case StringDataEnclosed:
		return d.decodeString(handler)
	case CurrentPageNumber:
		return d.decodePage(handler)
	case TouchCoordinateAwake, TouchCoordinateSleep:
		return d.decodeTouch(op, handler)
	case InvalidInstruction:
		return d.decodeInvalidInstruction(handler)
	case TouchEvent:
		// Component touch reports are left in the stream for the next cycles.
		return nil
	}

	if op.IsStatus() {
		return d.decodeStatus(op, handler)
	}

	if _, known := opcodeNames[op]; !known {
		d.stats.unknownOpcodes.Add(1)
	}
	d.logger.Debug().Stringer("opcode", op).Msg("unframed opcode, purging")
	if err := d.purge(); err != nil {
		return err
	}
	handler.OnEvent(op)
	return nil
}

func (d *Display) decodeNumeric(handler EventHandler) error {
	buf, err := d.channel.ReadFull(numericPayloadLen)
	if err != nil {
		return err
	}
	if !frame.HasTerminatorAt(buf, 4) {
		d.logger.Debug().Hex("payload", buf).Msg("malformed numeric report")
		return d.purge()
	}
	handler.OnNumeric(frame.LittleEndian32(buf, 0))
	return nil
}

func (d *Display) decodeString(handler EventHandler) error {
	text, err := d.channel.ReadUntil(frame.TerminatorByte, d.config.MaxStringLength)
	if err != nil {
		return err
	}
	if _, err := d.channel.ReadFull(stringTrailerLen); err != nil {
		return err
	}
	handler.OnString(string(text))
	return nil
}

func (d *Display) decodePage(handler EventHandler) error {
	buf, err := d.channel.ReadFull(pagePayloadLen)
	if err != nil {
		return err
	}
	if !frame.HasTerminatorAt(buf, 1) {
		d.logger.Debug().Hex("payload", buf).Msg("malformed page report")
		return d.purge()
	}
	d.recordPage(buf[0])
	handler.OnEvent(CurrentPageNumber)
	return nil
}

func (d *Display) decodeTouch(op Opcode, handler EventHandler) error {
	buf, err := d.channel.ReadFull(touchPayloadLen)
	if err != nil {
		return err
	}

	x := frame.BigEndian16(buf, 0)
	y := frame.BigEndian16(buf, 2)
	switch buf[4] {
	case 0x01:
		d.recordPress(x, y)
	case 0x00:
		d.recordRelease(x, y)
	default:
		d.logger.Debug().Uint8("flag", buf[4]).Msg("unexpected touch flag")
		return d.purge()
	}

	handler.OnEvent(op)
	return d.purge()
}

func (d *Display) decodeInvalidInstruction(handler EventHandler) error {
	disc, err := d.channel.ReadByte()
	if err != nil {
		return err
	}

	switch disc {
	case 0x00:
		buf, err := d.channel.ReadFull(startupTailLen)
		if err != nil {
			return err
		}
		if !bytes.Equal(buf, startupTail) {
			return d.purge()
		}
		handler.OnEvent(Startup)
	case frame.TerminatorByte:
		buf, err := d.channel.ReadFull(invalidTailLen)
		if err != nil {
			return err
		}
		if !frame.IsTerminator(buf) {
			return d.purge()
		}
		handler.OnEvent(InvalidInstruction)
	default:
		return d.purge()
	}
	return nil
}

func (d *Display) decodeStatus(op Opcode, handler EventHandler) error {
	buf, err := d.channel.ReadFull(frame.TerminatorLength)
	if err != nil {
		return err
	}
	if !frame.IsTerminator(buf) {
		d.logger.Debug().Stringer("opcode", op).Hex("payload", buf).Msg("malformed status report")
		return d.purge()
	}
	handler.OnEvent(op)
	return nil
}

// purge discards input through the next terminator byte and any 0xFF
// bytes directly following it.
func (d *Display) purge() error {
	d.stats.purges.Add(1)

	if _, err := d.channel.ReadUntil(frame.TerminatorByte, 0); err != nil {
		return err
	}
	for {
		b, ok, err := d.channel.Peek()
		if err != nil {
			return err
		}
		if !ok || b != frame.TerminatorByte {
			return nil
		}
		if _, err := d.channel.ReadByte(); err != nil {
			return err
		}
	}
}
