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

// Package frame provides wire constants and terminator helpers for Nextion communication
package frame

// Terminator markers
const (
	TerminatorByte   = 0xFF // Single terminator byte
	TerminatorLength = 3    // Number of terminator bytes closing every command and frame
)

// Upload protocol markers
const (
	ChunkAck          = 0x05    // Panel is ready for the next upload chunk
	ConnectReplyLen   = 5       // Length of the "comok" handshake reply
	DefaultChunkSize  = 4096    // Panel side upload buffer size
	DefaultBaudRate   = 921600  // Upload baud rate when the channel reports none
	MaxBaudRate       = 921600  // Highest baud rate accepted by "baud="
	MaxBrightness     = 100     // Highest value accepted by "dim="
	UploadRunMode     = "runmod=2"
	UploadCommandVerb = "whmi-wri"
)

// Literal tokens exchanged with the panel
const (
	// ModeResetToken forces the panel out of transparent data mode and clears
	// any partially received instruction.
	ModeResetToken = "DRAKJHSUYDGBNCJHGJKSHBDN"
	ConnectRequest = "connect"
	ConnectReply   = "comok"
)

// Terminator is the 3-byte sequence closing every command and frame.
var Terminator = []byte{TerminatorByte, TerminatorByte, TerminatorByte}

// ClearInstruction is written before the upload handshake to flush a half received instruction.
var ClearInstruction = []byte{0x00, TerminatorByte, TerminatorByte, TerminatorByte}
