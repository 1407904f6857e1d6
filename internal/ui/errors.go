package ui

import (
	"fmt"
	"strings"
)

// ErrorMessage is a structured, actionable failure report: the problem,
// what may have caused it, and what to try next. Sections left empty
// are omitted from the rendering.
type ErrorMessage struct {
	Problem string
	Causes  []string
	Actions []string
	Hints   []string
}

// Format renders the error using the color theme. No ANSI codes are
// emitted when colors are disabled (NO_COLOR or dumb terminal).
func (e ErrorMessage) Format(c *ColorConfig) string {
	var b strings.Builder
	b.WriteString(c.Error("✗ ") + c.Header("Error") + "\n")
	if e.Problem != "" {
		fmt.Fprintf(&b, "  %s: %s\n", c.Label("Problem"), e.Problem)
	}
	writeSection(&b, c.Label("Possible causes"), "•", e.Causes, nil)
	writeSection(&b, c.Label("Try"), "→", e.Actions, nil)
	writeSection(&b, c.Label("Hints"), "·", e.Hints, c.Description)
	return b.String()
}

func writeSection(b *strings.Builder, heading, bullet string, items []string, style func(string) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", heading)
	for _, it := range items {
		if style != nil {
			it = style(it)
		}
		fmt.Fprintf(b, "   %s %s\n", bullet, it)
	}
}

// PrintError prints the structured error using the current theme.
func PrintError(e ErrorMessage) {
	fmt.Println(e.Format(NewColorConfigFromGlobal()))
}
