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

// Package uart finds Nextion panels on serial ports.
//
// Importing the package registers its detector with the detection package.
package uart

import (
	"context"
	"errors"
	"fmt"
	"time"

	nextion "github.com/ZaparooProject/go-nextion"
	"github.com/ZaparooProject/go-nextion/detection"
	serialport "github.com/ZaparooProject/go-nextion/transport/uart"
	"go.bug.st/serial/enumerator"
)

// TransportName is the value of DeviceInfo.Transport for serial panels
const TransportName = "uart"

// probeInterval is the handshake reply poll interval used while probing
const probeInterval = 20 * time.Millisecond

type (
	listFunc   func() ([]*enumerator.PortDetails, error)
	accessFunc func(path string) error
	probeFunc  func(ctx context.Context, path string, opts *detection.Options) (*nextion.PanelInfo, error)
)

type detector struct {
	list   listFunc
	access accessFunc
	probe  probeFunc
}

// New returns the serial port detector
func New() detection.Detector {
	return &detector{
		list:   enumerator.GetDetailedPortsList,
		access: checkAccess,
		probe:  probePort,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport implements detection.Detector
func (*detector) Transport() string {
	return TransportName
}

// Detect implements detection.Detector
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if ctx.Err() != nil {
			if len(devices) == 0 {
				return nil, detection.ErrDetectionTimeout
			}
			return devices, nil
		}

		device, ok := d.inspect(ctx, port, opts)
		if ok {
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// inspect turns one enumerated port into a DeviceInfo. It returns false
// when the port is filtered out or did not answer a probe.
func (d *detector) inspect(
	ctx context.Context, port *enumerator.PortDetails, opts *detection.Options,
) (detection.DeviceInfo, bool) {
	if port == nil || port.Name == "" || detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	device := detection.DeviceInfo{
		Path:       port.Name,
		Transport:  TransportName,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
	if port.IsUSB {
		device.VIDPID = detection.FormatVIDPID(port.VID, port.PID)
		if detection.IsBlocked(device.VIDPID, opts.Blocklist) {
			return detection.DeviceInfo{}, false
		}
		if bridge, ok := detection.BridgeName(device.VIDPID); ok {
			device.Confidence = detection.Medium
			device.Metadata["bridge"] = bridge
		}
		if port.Product != "" {
			device.Metadata["product"] = port.Product
		}
		if port.SerialNumber != "" {
			device.Metadata["usb_serial"] = port.SerialNumber
		}
	}

	if opts.Mode == detection.Passive {
		return device, true
	}

	if err := d.access(port.Name); err != nil {
		return detection.DeviceInfo{}, false
	}

	probeCtx := ctx
	if opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, opts.ProbeTimeout)
		defer cancel()
	}

	info, err := d.probe(probeCtx, port.Name, opts)
	if err != nil || info == nil {
		return detection.DeviceInfo{}, false
	}

	device.Name = info.Model
	device.Confidence = detection.High
	device.Metadata["firmware"] = info.FirmwareVersion
	device.Metadata["mcu"] = info.MCUCode
	device.Metadata["serial"] = info.SerialNumber
	device.Metadata["flash"] = fmt.Sprint(info.FlashSize)
	if info.Touch {
		device.Metadata["touch"] = "true"
	}
	return device, true
}

// probePort opens path and runs the connect handshake
func probePort(ctx context.Context, path string, opts *detection.Options) (*nextion.PanelInfo, error) {
	baud := opts.BaudRate
	if baud <= 0 {
		baud = serialport.DefaultBaudRate
	}

	readTimeout := opts.ProbeTimeout
	if readTimeout <= 0 {
		readTimeout = serialport.DefaultReadTimeout
	}

	t, err := serialport.New(path, serialport.WithBaudRate(baud), serialport.WithReadTimeout(readTimeout))
	if err != nil {
		return nil, err
	}
	defer func() { _ = t.Close() }()

	cfg := nextion.DefaultUploadConfig()
	cfg.HandshakeInterval = probeInterval
	cfg.HandshakeAttempts = handshakeAttempts(opts.ProbeTimeout)

	display, err := nextion.New(t, nextion.WithUploadConfig(cfg))
	if err != nil {
		return nil, err
	}

	info, err := display.Identify(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", detection.ErrDetectionTimeout, path)
		}
		return nil, err
	}
	return info, nil
}

func handshakeAttempts(timeout time.Duration) int {
	if timeout <= 0 {
		return nextion.DefaultUploadConfig().HandshakeAttempts
	}
	return max(int(timeout/probeInterval), 1)
}
