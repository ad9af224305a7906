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

// EventHandler receives decoded frames from Display.Poll.
// Methods are called on the polling goroutine and should return quickly.
type EventHandler interface {
	// OnString is called with the text of a string data report
	OnString(text string)
	// OnNumeric is called with the value of a numeric data report
	OnNumeric(value uint32)
	// OnEvent is called for page changes, touches, status codes and startup
	OnEvent(opcode Opcode)
}

// NopHandler ignores every event
type NopHandler struct{}

// OnString does nothing
func (NopHandler) OnString(string) {}

// OnNumeric does nothing
func (NopHandler) OnNumeric(uint32) {}

// OnEvent does nothing
func (NopHandler) OnEvent(Opcode) {}

// HandlerFuncs adapts plain functions to EventHandler. Nil fields are skipped.
type HandlerFuncs struct {
	String  func(text string)
	Numeric func(value uint32)
	Event   func(opcode Opcode)
}

// OnString calls h.String if set
func (h HandlerFuncs) OnString(text string) {
	if h.String != nil {
		h.String(text)
	}
}

// OnNumeric calls h.Numeric if set
func (h HandlerFuncs) OnNumeric(value uint32) {
	if h.Numeric != nil {
		h.Numeric(value)
	}
}

// OnEvent calls h.Event if set
func (h HandlerFuncs) OnEvent(opcode Opcode) {
	if h.Event != nil {
		h.Event(opcode)
	}
}

var (
	_ EventHandler = NopHandler{}
	_ EventHandler = HandlerFuncs{}
)
