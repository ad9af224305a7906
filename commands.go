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

// Colors in the panel's RGB565 encoding
const (
	ColorBlack  uint16 = 0
	ColorBlue   uint16 = 31
	ColorGreen  uint16 = 2016
	ColorYellow uint16 = 65504
	ColorRed    uint16 = 63488
	ColorWhite  uint16 = 65535
)

// Alignment values for DrawText
const (
	AlignLeft   uint8 = 0
	AlignCenter uint8 = 1
	AlignRight  uint8 = 2

	AlignTop    uint8 = 0
	AlignMiddle uint8 = 1
	AlignBottom uint8 = 2
)

// Background modes for DrawText
const (
	BackgroundCropImage  uint8 = 0
	BackgroundSolidColor uint8 = 1
	BackgroundImage      uint8 = 2
	BackgroundNone       uint8 = 3
)

// Click event types
const (
	ClickRelease uint8 = 0
	ClickPress   uint8 = 1
)

// ColorVariantDefault selects the plain .bco/.pco attribute rather than a numbered variant
const ColorVariantDefault = -1

func boolArg(v bool) int {
	if v {
		return 1
	}
	return 0
}

func saveSuffix(save bool) string {
	if save {
		return "s"
	}
	return ""
}

// sendNamed validates name then sends the formatted command
func (d *Display) sendNamed(name, format string, args ...any) error {
	if err := validateName(name); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf(format, args...))
}

// Widgets

// Show makes a component visible
func (d *Display) Show(name string) error {
	return d.sendNamed(name, "vis %s,1", name)
}

// Hide makes a component invisible
func (d *Display) Hide(name string) error {
	return d.sendNamed(name, "vis %s,0", name)
}

// SetText replaces the text of a component. Quotes, backslashes and line
// breaks are escaped.
func (d *Display) SetText(name, text string) error {
	return d.sendNamed(name, "%s.txt=%s", name, quoteText(text))
}

// AddText appends to the text of a component
func (d *Display) AddText(name, text string) error {
	return d.sendNamed(name, "%s.txt+=%s", name, quoteText(text))
}

// DeleteText removes count characters from the end of a component's text
func (d *Display) DeleteText(name string, count uint8) error {
	return d.sendNamed(name, "%s.txt-=%d", name, count)
}

// SetValue sets the numeric value of a component
func (d *Display) SetValue(name string, value uint32) error {
	return d.sendNamed(name, "%s.val=%d", name, value)
}

// SetGlobalValue assigns a global variable or system variable
func (d *Display) SetGlobalValue(name string, value uint32) error {
	return d.sendNamed(name, "%s=%d", name, value)
}

// SetPicture sets the picture resource of a component
func (d *Display) SetPicture(name string, pictureID uint8) error {
	return d.sendNamed(name, "%s.pic=%d", name, pictureID)
}

// SetFont sets the font resource of a component
func (d *Display) SetFont(name string, fontID uint8) error {
	return d.sendNamed(name, "%s.font=%d", name, fontID)
}

// SetBackgroundColor sets .bco of a component. A variant >= 0 selects the
// numbered attribute (.bco2 for the pressed state of a button).
func (d *Display) SetBackgroundColor(name string, color uint16, variant int) error {
	return d.sendNamed(name, "%s.bco%s=%d", name, colorVariant(variant), color)
}

// SetFontColor sets .pco of a component. variant works as in SetBackgroundColor.
func (d *Display) SetFontColor(name string, color uint16, variant int) error {
	return d.sendNamed(name, "%s.pco%s=%d", name, colorVariant(variant), color)
}

func colorVariant(variant int) string {
	if variant <= ColorVariantDefault {
		return ""
	}
	return fmt.Sprint(variant)
}

// Refresh redraws a component
func (d *Display) Refresh(name string) error {
	return d.sendNamed(name, "ref %s", name)
}

// Click triggers the press or release event of a component
func (d *Display) Click(name string, event uint8) error {
	if event > ClickPress {
		return fmt.Errorf("%w: click event %d", ErrInvalidParameter, event)
	}
	return d.sendNamed(name, "click %s,%d", name, event)
}

// Get asks the panel to report an attribute. The answer arrives as a
// string or numeric report through Poll.
func (d *Display) Get(attribute string) error {
	return d.sendNamed(attribute, "get %s", attribute)
}

// Pages

// SetPage switches to the page with the given id
func (d *Display) SetPage(pageID uint8) error {
	return d.Send(fmt.Sprintf("page %d", pageID))
}

// SetPageByName switches to the named page
func (d *Display) SetPageByName(name string) error {
	return d.sendNamed(name, "page %s", name)
}

// RefreshCurrentPage asks the panel to report the current page.
// The report updates PageHistory when it is decoded.
func (d *Display) RefreshCurrentPage() error {
	return d.Get("dp")
}

// System

// SetBrightness sets the backlight level in percent. save makes it the
// power-on default.
func (d *Display) SetBrightness(level uint8, save bool) error {
	if level > frame.MaxBrightness {
		return fmt.Errorf("%w: brightness %d exceeds %d", ErrInvalidParameter, level, frame.MaxBrightness)
	}
	return d.Send(fmt.Sprintf("dim%s=%d", saveSuffix(save), level))
}

// SetBaudRate changes the panel's serial speed. The channel must be
// reopened at the new rate afterwards.
func (d *Display) SetBaudRate(rate uint32, save bool) error {
	if rate == 0 || rate > frame.MaxBaudRate {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidParameter, rate)
	}
	return d.Send(fmt.Sprintf("baud%s=%d", saveSuffix(save), rate))
}

// SetStandbySerialTimer sets the seconds without serial data before
// sleeping. Zero disables it.
func (d *Display) SetStandbySerialTimer(seconds uint16) error {
	return d.Send(fmt.Sprintf("ussp=%d", seconds))
}

// SetStandbyTouchTimer sets the seconds without touch before sleeping.
// Zero disables it.
func (d *Display) SetStandbyTouchTimer(seconds uint16) error {
	return d.Send(fmt.Sprintf("thsp=%d", seconds))
}

// SetSerialWakeUp controls whether serial data wakes the panel
func (d *Display) SetSerialWakeUp(enabled bool) error {
	return d.Send(fmt.Sprintf("usup=%d", boolArg(enabled)))
}

// SetTouchWakeUp controls whether a touch wakes the panel
func (d *Display) SetTouchWakeUp(enabled bool) error {
	return d.Send(fmt.Sprintf("thup=%d", boolArg(enabled)))
}

// SetWakeUpPage selects the page shown on wake up
func (d *Display) SetWakeUpPage(pageID uint8) error {
	return d.Send(fmt.Sprintf("wup=%d", pageID))
}

// Sleep puts the panel to sleep
func (d *Display) Sleep() error {
	return d.Send("sleep=1")
}

// WakeUp wakes the panel
func (d *Display) WakeUp() error {
	return d.Send("sleep=0")
}

// Reboot resets the panel. It reports Startup and Ready once it is back.
func (d *Display) Reboot() error {
	return d.Send("rest")
}

// Calibrate starts touch calibration
func (d *Display) Calibrate() error {
	return d.Send("touch_j")
}

// StopExecution makes the panel queue incoming commands instead of running them
func (d *Display) StopExecution() error {
	return d.Send("com_stop")
}

// ResumeExecution runs queued commands and resumes normal execution
func (d *Display) ResumeExecution() error {
	return d.Send("com_star")
}

// SetReparseMode switches between passive (false) and active (true)
// protocol reparse mode. Passive mode is the normal command mode.
func (d *Display) SetReparseMode(active bool) error {
	if active {
		return d.Send("recmod=1")
	}
	return d.Send(frame.ModeResetToken)
}

// Drawing

// Clear fills the screen with color
func (d *Display) Clear(color uint16) error {
	return d.Send(fmt.Sprintf("cls %d", color))
}

// DrawLine draws a line between two points
func (d *Display) DrawLine(x1, y1, x2, y2, color uint16) error {
	return d.Send(fmt.Sprintf("line %d,%d,%d,%d,%d", x1, y1, x2, y2, color))
}

// DrawRectangle draws a filled rectangle, or only its outline when hollow
func (d *Display) DrawRectangle(x, y, width, height, color uint16, hollow bool) error {
	if hollow {
		return d.Send(fmt.Sprintf("draw %d,%d,%d,%d,%d", x, y, x+width, y+height, color))
	}
	return d.Send(fmt.Sprintf("fill %d,%d,%d,%d,%d", x, y, width, height, color))
}

// DrawCircle draws a filled circle, or only its outline when hollow
func (d *Display) DrawCircle(x, y, radius, color uint16, hollow bool) error {
	verb := "cirs"
	if hollow {
		verb = "cir"
	}
	return d.Send(fmt.Sprintf("%s %d,%d,%d,%d", verb, x, y, radius, color))
}

// DrawPicture draws a picture resource at a position
func (d *Display) DrawPicture(x, y uint16, pictureID uint16) error {
	return d.Send(fmt.Sprintf("pic %d,%d,%d", x, y, pictureID))
}

// TextBox describes where and how DrawText renders
type TextBox struct {
	X, Y, Width, Height uint16
	FontID              uint8
	FontColor           uint16
	// Background is a color or a picture id, depending on BackgroundType
	Background     uint16
	HAlign, VAlign uint8
	BackgroundType uint8
}

// DrawText renders text directly on the screen
func (d *Display) DrawText(box TextBox, text string) error {
	if box.HAlign > AlignRight || box.VAlign > AlignBottom {
		return fmt.Errorf("%w: alignment %d,%d", ErrInvalidParameter, box.HAlign, box.VAlign)
	}
	if box.BackgroundType > BackgroundNone {
		return fmt.Errorf("%w: background type %d", ErrInvalidParameter, box.BackgroundType)
	}
	return d.Send(fmt.Sprintf("xstr %d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%s",
		box.X, box.Y, box.Width, box.Height, box.FontID, box.FontColor, box.Background,
		box.HAlign, box.VAlign, box.BackgroundType, quoteText(text)))
}
