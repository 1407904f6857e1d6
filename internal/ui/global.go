package ui

// Presentation settings shared by every command. Only the concerns the
// renderers consume live here; behavioral flags (quiet, non-interactive)
// stay with the commands that read them.
type Config struct {
	NoColor bool
	NoEmoji bool
}

var globalConfig Config

// InitGlobal records the presentation settings once, after flag parsing.
func InitGlobal(cfg Config) { globalConfig = cfg }

// GetGlobal returns the recorded presentation settings.
func GetGlobal() Config { return globalConfig }

// NewColorConfigFromGlobal builds a ColorConfig that honors both the
// environment (NO_COLOR, TERM) and the recorded flag settings.
func NewColorConfigFromGlobal() *ColorConfig {
	c := NewColorConfig()
	c.Enabled = c.Enabled && !globalConfig.NoColor
	c.EmojiEnabled = c.EmojiEnabled && !globalConfig.NoEmoji
	return c
}

// NewPrinterFromGlobal builds a Printer bound to the recorded settings.
func NewPrinterFromGlobal(format string) Printer {
	return Printer{format: format, Colors: NewColorConfigFromGlobal()}
}
