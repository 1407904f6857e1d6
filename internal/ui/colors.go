package ui

import (
	"fmt"
	"os"
	"strings"
)

// ANSI codes used by the theme.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	Grey    = "\033[90m"
	BrRed   = "\033[91m"
	BrGreen = "\033[92m"
	BrYel   = "\033[93m"
	BrCyan  = "\033[96m"
)

// Theme maps UI elements to colors.
type Theme struct {
	Success string
	Warning string
	Error   string
	Info    string

	Header      string
	Label       string
	Value       string
	Command     string
	Flag        string
	Description string
	Separator   string
	Pending     string
}

// DefaultTheme returns the standard color scheme.
func DefaultTheme() *Theme {
	return &Theme{
		Success: BrGreen,
		Warning: BrYel,
		Error:   BrRed,
		Info:    BrCyan,

		Header:      Bold + BrCyan,
		Label:       Bold,
		Value:       "", // terminal default foreground
		Command:     BrGreen,
		Flag:        BrYel,
		Description: Grey,
		Separator:   Grey,
		Pending:     Grey,
	}
}

// ColorConfig manages color and emoji output settings.
type ColorConfig struct {
	Enabled      bool
	EmojiEnabled bool
	Theme        *Theme
}

// NewColorConfig detects whether the environment supports colors.
func NewColorConfig() *ColorConfig {
	noColor := os.Getenv("NO_COLOR") != ""
	term := os.Getenv("TERM")
	return &ColorConfig{
		Enabled:      !noColor && term != "dumb" && term != "",
		EmojiEnabled: true,
		Theme:        DefaultTheme(),
	}
}

// Apply wraps text in a color if colors are enabled.
func (c *ColorConfig) Apply(color, text string) string {
	if !c.Enabled {
		return text
	}
	return color + text + Reset
}

func (c *ColorConfig) Success(text string) string { return c.Apply(c.Theme.Success, text) }
func (c *ColorConfig) Warning(text string) string { return c.Apply(c.Theme.Warning, text) }
func (c *ColorConfig) Error(text string) string   { return c.Apply(c.Theme.Error, text) }
func (c *ColorConfig) Info(text string) string    { return c.Apply(c.Theme.Info, text) }
func (c *ColorConfig) Header(text string) string  { return c.Apply(c.Theme.Header, text) }
func (c *ColorConfig) Label(text string) string   { return c.Apply(c.Theme.Label, text) }
func (c *ColorConfig) Value(text string) string   { return c.Apply(c.Theme.Value, text) }
func (c *ColorConfig) Command(text string) string { return c.Apply(c.Theme.Command, text) }
func (c *ColorConfig) Flag(text string) string    { return c.Apply(c.Theme.Flag, text) }

func (c *ColorConfig) Description(text string) string {
	return c.Apply(c.Theme.Description, text)
}

// FormatKeyValue renders a "key: value" pair with label styling.
func (c *ColorConfig) FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", c.Label(key), c.Value(value))
}

// FormatFlag renders a flag with its description, as used by help text.
func (c *ColorConfig) FormatFlag(flag, desc string) string {
	return fmt.Sprintf("  %s  %s", c.Flag(flag), c.Description(desc))
}

// Separator returns a horizontal rule of the given width.
func (c *ColorConfig) Separator(width int) string {
	return c.Apply(c.Theme.Separator, strings.Repeat("─", width))
}

// StatusIcon returns a colored status marker, ASCII when emoji is off.
func (c *ColorConfig) StatusIcon(status string) string {
	if !c.EmojiEnabled {
		switch strings.ToLower(status) {
		case "ok", "success", "running", "present":
			return c.Success("[OK]")
		case "warning", "drift", "stale":
			return c.Warning("[WARN]")
		case "error", "failed", "missing", "stopped":
			return c.Error("[ERR]")
		case "info":
			return c.Info("[INFO]")
		default:
			return c.Apply(c.Theme.Pending, "[ ]")
		}
	}

	switch strings.ToLower(status) {
	case "ok", "success", "running", "present":
		return c.Success("✓")
	case "warning", "drift", "stale":
		return c.Warning("⚠")
	case "error", "failed", "missing", "stopped":
		return c.Error("✗")
	case "info":
		return c.Info("ℹ")
	default:
		return c.Apply(c.Theme.Pending, "○")
	}
}
