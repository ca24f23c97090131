// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/staranto/apiparity/internal/log"
)

const (
	pickerRows = 10
	maxHistory = 100
)

var errNoSelection = errors.New("no endpoint selected")

// pickerModel is the Bubble Tea model for choosing a catalog endpoint.
type pickerModel struct {
	input     textinput.Model
	names     []string
	matches   []string
	cursor    int
	chosen    string
	cancelled bool
}

func newPickerModel(names []string) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Focus()
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorBlink)

	return pickerModel{
		input:   ti,
		names:   names,
		matches: names,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if len(m.matches) > 0 {
				m.chosen = m.matches[m.cursor]
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil

		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.matches = filterNames(m.names, m.input.Value())
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
	return m, cmd
}

func (m pickerModel) View() string {
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5A56E0"))
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F6BE00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))

	lines := []string{promptStyle.Render("endpoint> ") + m.input.View()}

	start := 0
	if m.cursor >= pickerRows {
		start = m.cursor - pickerRows + 1
	}
	end := min(start+pickerRows, len(m.matches))
	for i := start; i < end; i++ {
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+m.matches[i]))
		} else {
			lines = append(lines, "  "+m.matches[i])
		}
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d/%d  ↑/↓ move  enter select  esc cancel", len(m.matches), len(m.names))))

	return strings.Join(lines, "\n")
}

// filterNames keeps names containing every space-separated term of query,
// case-insensitively, in their original order.
func filterNames(names []string, query string) []string {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return names
	}

	var out []string
	for _, n := range names {
		lower := strings.ToLower(n)
		keep := true
		for _, t := range terms {
			if !strings.Contains(lower, t) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, n)
		}
	}
	return out
}

// canPick reports whether both ends are terminals.
func canPick(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(fin.Fd())) {
		return false
	}
	fout, ok := out.(*os.File)
	return ok && term.IsTerminal(int(fout.Fd()))
}

// pickEndpoint runs the picker over names, most recently picked first, and
// records the choice.
func pickEndpoint(names []string, in io.Reader, out io.Writer) (string, error) {
	file := historyFile()
	history := loadHistory(file)

	p := tea.NewProgram(newPickerModel(recentFirst(names, history)), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("endpoint picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.cancelled || m.chosen == "" {
		return "", errNoSelection
	}

	saveHistory(file, append(history, m.chosen))
	log.Debugf("picked endpoint %s", m.chosen)
	return m.chosen, nil
}

// recentFirst orders names with the most recent history entries first and
// the rest in their given order.
func recentFirst(names, history []string) []string {
	out := make([]string, 0, len(names))
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if slices.Contains(names, h) && !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// historyFile returns the path to the picker history file.
func historyFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".apiparity_history"
	}
	return filepath.Join(homeDir, ".apiparity_history")
}

func loadHistory(filename string) []string {
	var history []string

	file, err := os.Open(filename)
	if err != nil {
		return history
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			history = append(history, line)
		}
	}

	return history
}

func saveHistory(filename string, history []string) {
	start := 0
	if len(history) > maxHistory {
		start = len(history) - maxHistory
	}

	file, err := os.Create(filename)
	if err != nil {
		log.Debugf("history not saved: %v", err)
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for i := start; i < len(history); i++ {
		fmt.Fprintln(writer, history[i])
	}
	writer.Flush()
}
