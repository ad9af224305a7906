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

package frame

// AppendTerminator returns cmd followed by the 3-byte terminator.
// The payload is not inspected: 0xFF bytes inside cmd are written as-is.
func AppendTerminator(cmd []byte) []byte {
	out := make([]byte, 0, len(cmd)+TerminatorLength)
	out = append(out, cmd...)
	return append(out, Terminator...)
}

// IsTerminator reports whether every byte of b is 0xFF.
// An empty slice is not a terminator.
func IsTerminator(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, v := range b {
		if v != TerminatorByte {
			return false
		}
	}
	return true
}

// HasTerminatorAt reports whether buf holds a complete terminator starting at off.
func HasTerminatorAt(buf []byte, off int) bool {
	if off < 0 || off+TerminatorLength > len(buf) {
		return false
	}
	return IsTerminator(buf[off : off+TerminatorLength])
}

// BigEndian16 decodes the 16-bit big-endian value at buf[off:off+2].
func BigEndian16(buf []byte, off int) uint16 {
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}

// LittleEndian32 decodes the 32-bit little-endian value at buf[off:off+4].
func LittleEndian32(buf []byte, off int) uint32 {
	return uint32(buf[off]) |
		uint32(buf[off+1])<<8 |
		uint32(buf[off+2])<<16 |
		uint32(buf[off+3])<<24
}
