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

// Package testing provides builders for panel-to-host frames used across tests
package testing

import (
	"encoding/binary"
)

var terminator = []byte{0xFF, 0xFF, 0xFF}

// Opcodes used by the builders. Duplicated here so this package does not
// depend on the root package.
const (
	OpInvalidInstruction    = 0x00
	OpInstructionSuccessful = 0x01
	OpCurrentPageNumber     = 0x66
	OpTouchCoordinateAwake  = 0x67
	OpTouchCoordinateSleep  = 0x68
	OpStringDataEnclosed    = 0x70
	OpNumericDataEnclosed   = 0x71
)

// BuildNumericFrame creates a numeric data report carrying value
func BuildNumericFrame(value uint32) []byte {
	out := []byte{OpNumericDataEnclosed, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(out[1:], value)
	return append(out, terminator...)
}

// BuildStringFrame creates a string data report carrying text
func BuildStringFrame(text string) []byte {
	out := append([]byte{OpStringDataEnclosed}, text...)
	return append(out, terminator...)
}

// BuildPageFrame creates a current page report
func BuildPageFrame(page byte) []byte {
	return append([]byte{OpCurrentPageNumber, page}, terminator...)
}

// BuildTouchFrame creates a touch coordinate report. pressed selects the press/release flag.
func BuildTouchFrame(opcode byte, x, y uint16, pressed bool) []byte {
	state := byte(0x00)
	if pressed {
		state = 0x01
	}
	out := []byte{opcode, byte(x >> 8), byte(x), byte(y >> 8), byte(y), state}
	return append(out, terminator...)
}

// BuildStatusFrame creates a fixed-length status or error report
func BuildStatusFrame(opcode byte) []byte {
	return append([]byte{opcode}, terminator...)
}

// BuildStartupFrame creates the startup notification in the layout the decoder validates
func BuildStartupFrame() []byte {
	return []byte{OpInvalidInstruction, 0x00, 0x00, 0x00, 0xFF, 0xFF}
}

// BuildInvalidInstructionFrame creates the invalid instruction report
func BuildInvalidInstructionFrame() []byte {
	return []byte{OpInvalidInstruction, 0xFF, 0xFF, 0xFF}
}

// BuildConnectReply creates a full reply to the "connect" handshake
func BuildConnectReply(model string) []byte {
	out := []byte("comok 1,30601-0," + model + ",163,61488,D264B8204F0E1828,16777216")
	return append(out, terminator...)
}

// Concat joins frames into one stream
func Concat(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
