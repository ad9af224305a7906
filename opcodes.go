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

import "fmt"

// Opcode is the leading byte of a frame sent by the panel
type Opcode byte

// Error opcodes
const (
	InvalidInstruction             Opcode = 0x00
	InvalidComponentID             Opcode = 0x02
	InvalidPageID                  Opcode = 0x03
	InvalidPictureID               Opcode = 0x04
	InvalidFontID                  Opcode = 0x05
	InvalidFileOperation           Opcode = 0x06
	InvalidCRC                     Opcode = 0x09
	InvalidBaudRateSetting         Opcode = 0x11
	InvalidWaveformIDOrChannel     Opcode = 0x12
	InvalidVariableNameOrAttribute Opcode = 0x1A
	InvalidVariableOperation       Opcode = 0x1B
	FailToAssign                   Opcode = 0x1C
	FailEEPROMOperation            Opcode = 0x1D
	InvalidQuantityOfParameters    Opcode = 0x1E
	IOOperationFailed              Opcode = 0x1F
	InvalidEscapeCharacter         Opcode = 0x20
	TooLongVariableName            Opcode = 0x23
	SerialBufferOverflow           Opcode = 0x24
)

// Status and data opcodes
const (
	InstructionSuccessful   Opcode = 0x01
	TouchEvent              Opcode = 0x65
	CurrentPageNumber       Opcode = 0x66
	TouchCoordinateAwake    Opcode = 0x67
	TouchCoordinateSleep    Opcode = 0x68
	StringDataEnclosed      Opcode = 0x70
	NumericDataEnclosed     Opcode = 0x71
	AutoEnteredSleepMode    Opcode = 0x86
	AutoWakeFromSleepMode   Opcode = 0x87
	Ready                   Opcode = 0x88
	StartUpgradeFromSD      Opcode = 0x89
	TransparentDataFinished Opcode = 0xFD
	TransparentDataReady    Opcode = 0xFE
)

// Startup is reported to the event handler when the panel announces a
// power-on. It never appears on the wire as a leading byte.
const Startup Opcode = 0x07

// statusOpcodes are followed by exactly one terminator. InvalidFileOperation
// and FailEEPROMOperation have no fixed layout and are purged through the
// next terminator like unrecognized frames.
var statusOpcodes = map[Opcode]struct{}{
	InstructionSuccessful:          {},
	InvalidComponentID:             {},
	InvalidPageID:                  {},
	InvalidPictureID:               {},
	InvalidFontID:                  {},
	InvalidCRC:                     {},
	InvalidBaudRateSetting:         {},
	InvalidWaveformIDOrChannel:     {},
	InvalidVariableNameOrAttribute: {},
	InvalidVariableOperation:       {},
	FailToAssign:                   {},
	InvalidQuantityOfParameters:    {},
	IOOperationFailed:              {},
	InvalidEscapeCharacter:         {},
	TooLongVariableName:            {},
	SerialBufferOverflow:           {},
	AutoEnteredSleepMode:           {},
	AutoWakeFromSleepMode:          {},
	Ready:                          {},
	StartUpgradeFromSD:             {},
	TransparentDataFinished:        {},
	TransparentDataReady:           {},
}

var opcodeNames = map[Opcode]string{
	InvalidInstruction:             "InvalidInstruction",
	InstructionSuccessful:          "InstructionSuccessful",
	InvalidComponentID:             "InvalidComponentID",
	InvalidPageID:                  "InvalidPageID",
	InvalidPictureID:               "InvalidPictureID",
	InvalidFontID:                  "InvalidFontID",
	InvalidFileOperation:           "InvalidFileOperation",
	Startup:                        "Startup",
	InvalidCRC:                     "InvalidCRC",
	InvalidBaudRateSetting:         "InvalidBaudRateSetting",
	InvalidWaveformIDOrChannel:     "InvalidWaveformIDOrChannel",
	InvalidVariableNameOrAttribute: "InvalidVariableNameOrAttribute",
	InvalidVariableOperation:       "InvalidVariableOperation",
	FailToAssign:                   "FailToAssign",
	FailEEPROMOperation:            "FailEEPROMOperation",
	InvalidQuantityOfParameters:    "InvalidQuantityOfParameters",
	IOOperationFailed:              "IOOperationFailed",
	InvalidEscapeCharacter:         "InvalidEscapeCharacter",
	TooLongVariableName:            "TooLongVariableName",
	SerialBufferOverflow:           "SerialBufferOverflow",
	TouchEvent:                     "TouchEvent",
	CurrentPageNumber:              "CurrentPageNumber",
	TouchCoordinateAwake:           "TouchCoordinateAwake",
	TouchCoordinateSleep:           "TouchCoordinateSleep",
	StringDataEnclosed:             "StringDataEnclosed",
	NumericDataEnclosed:            "NumericDataEnclosed",
	AutoEnteredSleepMode:           "AutoEnteredSleepMode",
	AutoWakeFromSleepMode:          "AutoWakeFromSleepMode",
	Ready:                          "Ready",
	StartUpgradeFromSD:             "StartUpgradeFromSD",
	TransparentDataFinished:        "TransparentDataFinished",
	TransparentDataReady:           "TransparentDataReady",
}

// String returns the opcode name, or its hex value if unknown
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(o))
}

// IsStatus reports whether o is a fixed-length status or error code
func (o Opcode) IsStatus() bool {
	_, ok := statusOpcodes[o]
	return ok
}

// IsError reports whether o reports a failed instruction
func (o Opcode) IsError() bool {
	switch o {
	case InvalidInstruction, InvalidComponentID, InvalidPageID, InvalidPictureID,
		InvalidFontID, InvalidFileOperation, InvalidCRC, InvalidBaudRateSetting,
		InvalidWaveformIDOrChannel, InvalidVariableNameOrAttribute, InvalidVariableOperation,
		FailToAssign, FailEEPROMOperation, InvalidQuantityOfParameters, IOOperationFailed,
		InvalidEscapeCharacter, TooLongVariableName, SerialBufferOverflow:
		return true
	default:
		return false
	}
}
