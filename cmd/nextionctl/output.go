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

package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	nextion "github.com/ZaparooProject/go-nextion"
)

// eventPrinter writes decoded panel reports, one per line
type eventPrinter struct {
	out io.Writer
	mu  sync.Mutex
}

func (p *eventPrinter) OnString(text string) {
	p.printf("STRING  %q\n", text)
}

func (p *eventPrinter) OnNumeric(value uint32) {
	p.printf("NUMERIC %d (0x%08X)\n", value, value)
}

func (p *eventPrinter) OnEvent(op nextion.Opcode) {
	switch {
	case op.IsError():
		p.printf("ERROR   %s (0x%02X)\n", op, byte(op))
	default:
		p.printf("EVENT   %s (0x%02X)\n", op, byte(op))
	}
}

func (p *eventPrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// newProgressPrinter returns an upload progress callback drawing a
// single updating line
func newProgressPrinter(out io.Writer) nextion.ProgressCallback {
	var last nextion.UploadStage
	return func(p nextion.UploadProgress) {
		if p.Stage != nextion.StageTransferring {
			if p.Stage != last {
				_, _ = fmt.Fprintf(out, "\n%s", p.Stage)
			}
			last = p.Stage
			return
		}
		last = p.Stage
		_, _ = fmt.Fprintf(out, "\r%s %6.2f%% %d/%d bytes %s",
			p.Stage, p.Percentage, p.BytesSent, p.TotalBytes, p.ElapsedTime.Truncate(100*time.Millisecond))
	}
}
