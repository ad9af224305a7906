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

	"github.com/ZaparooProject/go-nextion/internal/frame"
)

// Send writes cmd followed by the terminator as one atomic command.
// It blocks until no other command is being written.
//
// The command text is written verbatim: 0xFF bytes are not escaped.
// Panel side failures are only reported later through OnEvent.
func (d *Display) Send(cmd string) error {
	return d.SendBytes([]byte(cmd))
}

// SendBytes is Send for raw command bytes
func (d *Display) SendBytes(cmd []byte) error {
	d.serialMu.Lock()
	defer d.serialMu.Unlock()

	if err := d.ensureInitLocked(); err != nil {
		return err
	}
	return d.writeLocked(frame.AppendTerminator(cmd))
}

// Sendf formats a command with fmt.Sprintf semantics and sends it
func (d *Display) Sendf(format string, args ...any) error {
	return d.Send(fmt.Sprintf(format, args...))
}

// writeLocked writes p in full. Callers hold serialMu.
func (d *Display) writeLocked(p []byte) error {
	for len(p) > 0 {
		n, err := d.channel.Write(p)
		if err != nil {
			return d.channelError("write", err)
		}
		if n == 0 {
			return NewChannelError("write", channelPort(d.channel), ErrChannelWrite, ErrorTypeTransient)
		}
		p = p[n:]
	}
	return nil
}
