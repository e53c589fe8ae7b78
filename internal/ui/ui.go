// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal output helpers shared by every sigil
// subcommand: colorized status lines and plain text fallbacks for
// non-terminal or NO_COLOR environments.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color instances reused across commands. They are safe for concurrent use
// after InitColors has run.
var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Cyan   = color.New(color.FgCyan)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// InitColors enables or disables ANSI output based on the --no-color flag,
// the NO_COLOR environment variable, and whether stdout is a terminal.
func InitColors(noColor bool) {
	enabled := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	color.NoColor = !enabled
}

// Header prints a bold section title.
func Header(title string) {
	_, _ = Bold.Println(title)
}

// SubHeader prints a secondary section title.
func SubHeader(title string) {
	_, _ = Bold.Println(title)
}

// Label renders a bold field label, e.g. "Verdict:".
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText renders a value in faint color, for secondary details like durations.
func DimText(v interface{}) string {
	return Dim.Sprint(v)
}

// CountText renders a numeric count.
func CountText(v interface{}) string {
	return fmt.Sprint(v)
}

// Info prints an informational line.
func Info(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Cyan.Sprint("info:"), msg)
}

// Infof prints a formatted informational line.
func Infof(format string, args ...interface{}) {
	Info(fmt.Sprintf(format, args...))
}

// Success prints a confirmation line in green.
func Success(msg string) {
	_, _ = Green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

// Successf prints a formatted confirmation line.
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning line in yellow.
func Warning(msg string) {
	_, _ = Yellow.Fprintf(os.Stderr, "warning: %s\n", msg)
}

// Warningf prints a formatted warning line.
func Warningf(format string, args ...interface{}) {
	Warning(fmt.Sprintf(format, args...))
}

// VerdictColor returns the color instance associated with a verdict name,
// for rendering the report's risk banner.
func VerdictColor(verdict string) *color.Color {
	switch verdict {
	case "Clean":
		return Green
	case "LowRisk":
		return Green
	case "MediumRisk":
		return Yellow
	case "HighRisk", "Critical":
		return Red
	default:
		return Dim
	}
}
