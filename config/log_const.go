package config

import "github.com/logrusorgru/aurora"

// Color constants for component loggers.
const (
	ColorBlue    = aurora.BlueFg
	ColorCyan    = aurora.CyanFg
	ColorGreen   = aurora.GreenFg
	ColorMagenta = aurora.MagentaFg
	ColorPurple  = aurora.MagentaFg | aurora.BoldFm
	ColorYellow  = aurora.YellowFg
)
