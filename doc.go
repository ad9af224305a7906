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

/*
Package nextion provides a pure Go driver for Nextion serial HMI touch displays.

The panel is driven over a UART with ASCII commands closed by three 0xFF
bytes, and reports touches, page changes, variable values and error codes
as small binary frames closed the same way. This package frames outgoing
commands, decodes incoming frames and uploads TFT firmware images.

Features:
  - Command framing safe for concurrent senders
  - Frame decoder with resynchronization after corrupted input
  - Firmware upload with handshake, chunk acknowledgment and progress reporting
  - Page history and touch coordinate tracking
  - Widget, drawing and system command helpers
  - Serial port discovery of attached panels (see detection/uart)

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-nextion"
	    "github.com/ZaparooProject/go-nextion/transport/uart"
	)

	// Open the serial port the panel is attached to
	transport, err := uart.New("/dev/ttyUSB0", uart.WithBaudRate(115200))
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Receive panel events
	handler := nextion.HandlerFuncs{
	    Numeric: func(v uint32) { fmt.Println("value", v) },
	    Event:   func(op nextion.Opcode) { fmt.Println("event", op) },
	}

	display, err := nextion.New(transport, nextion.WithHandler(handler))
	if err != nil {
	    log.Fatal(err)
	}

	if err := display.SetText("t0", "hello"); err != nil {
	    log.Fatal(err)
	}

	// Drive the decoder from one goroutine
	for {
	    if _, err := display.Poll(); err != nil {
	        log.Println(err)
	    }
	    time.Sleep(5 * time.Millisecond)
	}

The polling package offers a Runner that does the last loop for you.

Error Handling:

Transport failures are returned as *ChannelError and failed uploads as
*UploadError. Both unwrap to the sentinel errors of this package:

	if errors.Is(err, nextion.ErrUnexpectedAck) {
	    // the panel rejected a firmware chunk
	}

Frames that fail validation are dropped without an error; Stats counts them.

Thread Safety:

Commands may be sent from any number of goroutines. Poll must be called
from a single goroutine. Upload and Identify take exclusive ownership of
the channel until they return.
*/
package nextion
