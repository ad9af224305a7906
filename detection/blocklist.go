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

package detection

import (
	"path/filepath"
	"strings"
)

// knownBridges lists USB serial bridges shipped on Nextion boards and the
// common adapters used to wire them up. A match raises confidence but is
// never required.
var knownBridges = map[string]string{
	"1A86:7523": "CH340",
	"1A86:55D4": "CH9102",
	"10C4:EA60": "CP210x",
	"0403:6001": "FT232R",
	"0403:6015": "FT231X",
	"067B:2303": "PL2303",
}

// DefaultBlocklist returns USB devices that should never receive the
// connect handshake. Format: VID:PID in hexadecimal, case-insensitive.
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno, resets on open
		"2341:0001", // Arduino Uno (old firmware), resets on open
		"2341:0042", // Arduino Mega 2560, resets on open
	}
}

// BridgeName returns the chip name for a known USB serial bridge
func BridgeName(vidpid string) (string, bool) {
	name, ok := knownBridges[NormalizeVIDPID(vidpid)]
	return name, ok
}

// IsBlocked reports whether vidpid appears in blocklist
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = NormalizeVIDPID(vidpid)
	if vidpid == "" {
		return false
	}
	for _, blocked := range blocklist {
		if NormalizeVIDPID(blocked) == vidpid {
			return true
		}
	}
	return false
}

// FormatVIDPID joins a vendor and product id as "VVVV:PPPP"
func FormatVIDPID(vid, pid string) string {
	if vid == "" || pid == "" {
		return ""
	}
	return NormalizeVIDPID(vid + ":" + pid)
}

// NormalizeVIDPID accepts "vid:pid", "VID:1234 PID:5678" or
// "vendor=1234 product=5678" and returns "1234:5678" in upper case.
// It returns an empty string when no pair can be found.
func NormalizeVIDPID(descriptor string) string {
	s := strings.ToUpper(strings.TrimSpace(descriptor))
	if s == "" {
		return ""
	}

	vid := hexAfter(s, "VID:", "VID=", "VENDOR=")
	pid := hexAfter(s, "PID:", "PID=", "PRODUCT=")
	if vid != "" && pid != "" {
		return padHex(vid) + ":" + padHex(pid)
	}

	vid, pid, ok := strings.Cut(s, ":")
	if !ok || !isHex(vid) || !isHex(pid) {
		return ""
	}
	return padHex(vid) + ":" + padHex(pid)
}

// hexAfter returns the hex digits following the first matching key
func hexAfter(s string, keys ...string) string {
	for _, key := range keys {
		idx := strings.Index(s, key)
		if idx < 0 {
			continue
		}
		rest := s[idx+len(key):]
		end := strings.IndexFunc(rest, func(r rune) bool { return !isHexRune(r) })
		if end < 0 {
			end = len(rest)
		}
		if end > 0 {
			return rest[:end]
		}
	}
	return ""
}

func padHex(s string) string {
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}

func isHex(s string) bool {
	if s == "" || len(s) > 4 {
		return false
	}
	for _, r := range s {
		if !isHexRune(r) {
			return false
		}
	}
	return true
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths.
// Paths are cleaned and compared case-insensitively so "COM3" and "com3"
// match on Windows.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := comparablePath(devicePath)
	for _, p := range ignorePaths {
		if p != "" && comparablePath(p) == device {
			return true
		}
	}
	return false
}

func comparablePath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
