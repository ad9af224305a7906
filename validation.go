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
	"strings"

	"github.com/ZaparooProject/go-nextion/internal/frame"
)

// validateName checks that a component or variable name can be embedded
// in a command without changing its meaning
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidParameter)
	}
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case ' ', ',', '"', '\\', frame.TerminatorByte:
			return fmt.Errorf("%w: name %q contains a reserved character", ErrInvalidParameter, name)
		}
	}
	return nil
}

// textEscaper escapes the characters the panel treats specially inside a
// quoted string literal
var textEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\r`, "\n", `\r`)

// quoteText returns s as a quoted panel string literal
func quoteText(s string) string {
	return `"` + textEscaper.Replace(s) + `"`
}
