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

// PageHistorySize is the number of page identifiers remembered
const PageHistorySize = 5

// pageHistory holds the most recently reported pages, most recent first
type pageHistory [PageHistorySize]byte

// push records page unless it is already the most recent entry.
// It reports whether the history changed.
func (h *pageHistory) push(page byte) bool {
	if h[0] == page {
		return false
	}
	copy(h[1:], h[:PageHistorySize-1])
	h[0] = page
	return true
}

// TouchState holds the last reported press and release coordinates
type TouchState struct {
	PressX   uint16
	PressY   uint16
	ReleaseX uint16
	ReleaseY uint16
}

// PageHistory returns a copy of the page history, most recent first
func (d *Display) PageHistory() [PageHistorySize]byte {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.history
}

// CurrentPage returns the most recently reported page
func (d *Display) CurrentPage() byte {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.history[0]
}

// Touch returns a snapshot of the last touch coordinates
func (d *Display) Touch() TouchState {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.touch
}

func (d *Display) recordPage(page byte) {
	d.stateMu.Lock()
	changed := d.history.push(page)
	d.stateMu.Unlock()

	if changed {
		d.logger.Debug().Uint8("page", page).Msg("page changed")
	}
}

func (d *Display) recordPress(x, y uint16) {
	d.stateMu.Lock()
	d.touch.PressX, d.touch.PressY = x, y
	d.stateMu.Unlock()
}

func (d *Display) recordRelease(x, y uint16) {
	d.stateMu.Lock()
	d.touch.ReleaseX, d.touch.ReleaseY = x, y
	d.stateMu.Unlock()
}
