// Package ui styles terminal output.
package ui

import "os"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// enabled is false when NO_COLOR is set (https://no-color.org)
var enabled = os.Getenv("NO_COLOR") == ""

// SetColor turns styling on or off
func SetColor(on bool) {
	enabled = on
}

// Paint wraps s in the given style codes when color is enabled
func Paint(s string, codes ...string) string {
	if !enabled || len(codes) == 0 {
		return s
	}
	prefix := ""
	for _, c := range codes {
		prefix += c
	}
	return prefix + s + ColorReset
}

func Bold(s string) string    { return Paint(s, ColorBold) }
func Success(s string) string { return Paint(s, ColorGreen) }
func Info(s string) string    { return Paint(s, ColorDim, ColorYellow) }
func Error(s string) string   { return Paint(s, ColorRed) }
func Dim(s string) string     { return Paint(s, ColorDim) }
func Accent(s string) string  { return Paint(s, ColorCyan) }
