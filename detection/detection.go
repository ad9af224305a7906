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

// Package detection finds Nextion panels attached to the host.
//
// Detectors for each channel type register themselves in init. Import the
// detector packages you want for side effects:
//
//	import _ "github.com/ZaparooProject/go-nextion/detection/uart"
//
//	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound is returned when no panel was found
	ErrNoDevicesFound = errors.New("no devices found")
	// ErrDetectionTimeout is returned when detection ran out of time
	ErrDetectionTimeout = errors.New("detection timeout")
	// ErrUnsupportedPlatform is returned by detectors that cannot run here
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode selects how much a detector may disturb candidate devices
type Mode int

const (
	// Passive only enumerates ports and never writes to them
	Passive Mode = iota
	// Probe opens each candidate and performs the connect handshake
	Probe
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Probe:
		return "probe"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Confidence rates how sure a detector is that a device is a panel
type Confidence int

const (
	// Low means the port exists but nothing identifies it
	Low Confidence = iota
	// Medium means the USB bridge is one panels commonly use
	Medium
	// High means the panel answered the connect handshake
	High
)

// String returns the confidence name
func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// DeviceInfo describes one detected device
type DeviceInfo struct {
	Metadata   map[string]string
	Path       string
	Transport  string
	Name       string
	VIDPID     string
	Confidence Confidence
}

// String returns a one line description
func (d DeviceInfo) String() string {
	name := d.Name
	if name == "" {
		name = "unknown device"
	}
	return fmt.Sprintf("%s at %s (%s, %s confidence)", name, d.Path, d.Transport, d.Confidence)
}

// Options configures detection
type Options struct {
	// Blocklist holds VID:PID pairs that are never probed
	Blocklist []string
	// IgnorePaths holds device paths skipped entirely
	IgnorePaths []string
	// Timeout bounds the whole detection run
	Timeout time.Duration
	// ProbeTimeout bounds the handshake with each candidate
	ProbeTimeout time.Duration
	// BaudRate is the speed used when probing serial ports
	BaudRate int
	// Mode selects passive enumeration or active probing
	Mode Mode
}

// DefaultOptions returns options suitable for interactive use
func DefaultOptions() Options {
	return Options{
		Mode:         Probe,
		Timeout:      10 * time.Second,
		ProbeTimeout: 2 * time.Second,
		BaudRate:     9600,
		Blocklist:    DefaultBlocklist(),
	}
}

// Detector finds devices reachable over one channel type
type Detector interface {
	// Transport names the channel type, e.g. "uart"
	Transport() string
	// Detect returns the devices found. It returns ErrNoDevicesFound
	// rather than an empty slice when nothing matched.
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Detector{}
)

// RegisterDetector makes a detector available to DetectAll.
// Registering a second detector for the same transport replaces the first.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors sorted by transport
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Transport() < out[j].Transport()
	})
	return out
}

// DetectAll runs every registered detector and merges the results.
// Detectors reporting ErrNoDevicesFound or ErrUnsupportedPlatform are
// skipped; the first other error is returned along with whatever devices
// were found.
func DetectAll(ctx context.Context, opts Options) ([]DeviceInfo, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		devices  []DeviceInfo
		firstErr error
	)
	for _, d := range Detectors() {
		if ctx.Err() != nil {
			if len(devices) == 0 {
				return nil, ErrDetectionTimeout
			}
			return devices, nil
		}

		found, err := d.Detect(ctx, &opts)
		devices = append(devices, found...)
		switch {
		case err == nil,
			errors.Is(err, ErrNoDevicesFound),
			errors.Is(err, ErrUnsupportedPlatform):
		case firstErr == nil:
			firstErr = fmt.Errorf("%s detection failed: %w", d.Transport(), err)
		}
	}

	if len(devices) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, ErrNoDevicesFound
	}
	return devices, firstErr
}
