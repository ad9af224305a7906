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
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-nextion/internal/frame"
)

const panelInfoFields = 7

// PanelInfo describes a panel as reported in its reply to "connect"
type PanelInfo struct {
	Reserved        string
	Model           string
	FirmwareVersion string
	MCUCode         string
	SerialNumber    string
	FlashSize       int64
	Touch           bool
}

// String returns a one-line summary of the panel
func (p *PanelInfo) String() string {
	return fmt.Sprintf("%s (fw %s, serial %s, flash %d bytes)",
		p.Model, p.FirmwareVersion, p.SerialNumber, p.FlashSize)
}

// ParsePanelInfo parses a full reply of the form
// "comok 1,30601-0,NX4832T035_011R,163,61488,D264B8204F0E1828,16777216".
// Trailing terminator bytes are ignored.
func ParsePanelInfo(reply []byte) (*PanelInfo, error) {
	for len(reply) > 0 && (reply[len(reply)-1] == frame.TerminatorByte || reply[len(reply)-1] == 0x00) {
		reply = reply[:len(reply)-1]
	}
	text := string(reply)

	rest, ok := strings.CutPrefix(text, frame.ConnectReply)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHandshakeMismatch, text)
	}

	fields := strings.Split(strings.TrimSpace(rest), ",")
	if len(fields) < panelInfoFields {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidParameter, panelInfoFields, len(fields))
	}

	flash, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid flash size %q: %w", fields[6], err)
	}

	return &PanelInfo{
		Touch:           fields[0] == "1",
		Reserved:        fields[1],
		Model:           fields[2],
		FirmwareVersion: fields[3],
		MCUCode:         fields[4],
		SerialNumber:    fields[5],
		FlashSize:       flash,
	}, nil
}
