package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nxadm/tail"
)

const logViewMaxLines = 5000

var (
	logTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	logFooterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logPausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

type logLineMsg string

type logTailDoneMsg struct{ err error }

type logViewKeys struct {
	Quit   key.Binding
	Follow key.Binding
	Top    key.Binding
	Bottom key.Binding
}

func defaultLogViewKeys() logViewKeys {
	return logViewKeys{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
		Follow: key.NewBinding(key.WithKeys("f")),
		Top:    key.NewBinding(key.WithKeys("g", "home")),
		Bottom: key.NewBinding(key.WithKeys("G", "end")),
	}
}

// logViewModel is a scrollback viewer over a followed log file. New
// lines stream in from tail; scrolling up pauses follow mode until
// the user jumps back to the bottom or presses f.
type logViewModel struct {
	file     string
	tailer   *tail.Tail
	viewport viewport.Model
	keys     logViewKeys
	lines    []string
	follow   bool
	ready    bool
	err      error
}

func newLogViewModel(file string, t *tail.Tail) logViewModel {
	return logViewModel{
		file:   file,
		tailer: t,
		keys:   defaultLogViewKeys(),
		follow: true,
	}
}

func (m logViewModel) waitForLine() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-m.tailer.Lines
		if !ok {
			return logTailDoneMsg{err: m.tailer.Err()}
		}
		if line.Err != nil {
			return logTailDoneMsg{err: line.Err}
		}
		return logLineMsg(line.Text)
	}
}

func (m logViewModel) Init() tea.Cmd {
	return m.waitForLine()
}

func (m logViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerH := 2
		footerH := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerH-footerH)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerH - footerH
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case logLineMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > logViewMaxLines {
			m.lines = m.lines[len(m.lines)-logViewMaxLines:]
		}
		if m.ready {
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			if m.follow {
				m.viewport.GotoBottom()
			}
		}
		return m, m.waitForLine()

	case logTailDoneMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.follow = false
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.follow = true
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	// Manual scrolling away from the bottom pauses follow mode.
	if m.ready && !m.viewport.AtBottom() {
		m.follow = false
	}
	return m, cmd
}

func (m logViewModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := logTitleStyle.Render(m.file) + "\n" + strings.Repeat("─", m.viewport.Width) + "\n"
	footer := logFooterStyle.Render("q quit · f follow · g/G top/bottom")
	if !m.follow {
		footer += "  " + logPausedStyle.Render("[paused]")
	}
	return header + m.viewport.View() + "\n" + footer
}

// FollowFile runs the interactive log viewer over the given file.
// Intended for TTY sessions; callers should fall back to plain output
// when stdout is not a terminal.
func FollowFile(file string) error {
	t, err := tail.TailFile(file, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("tail %s: %w", file, err)
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	p := tea.NewProgram(newLogViewModel(file, t), tea.WithAltScreen())
	final, err := p.Run()
	ResetTerminalAfterTUI()
	if err != nil {
		return err
	}
	if m, ok := final.(logViewModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
