package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/overlaysmith/pkg/deps"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
)

// =============================================================================
// CandidateListModel - Interactive package disambiguation
// =============================================================================

// CandidateListModel is the bubbletea model for choosing one of several
// fully qualified packages sharing a name.
type CandidateListModel struct {
	Name       string
	Candidates []string
	Cursor     int
	Offset     int
	Height     int
	Selected   string
}

// NewCandidateListModel creates a picker for the candidates of an ambiguous name.
func NewCandidateListModel(err *deps.AmbiguousError) CandidateListModel {
	return CandidateListModel{
		Name:       err.Name,
		Candidates: err.Candidates(),
		Height:     15,
	}
}

func (m CandidateListModel) Init() tea.Cmd {
	return nil
}

func (m CandidateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Candidates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Candidates) > 0 {
				m.Selected = m.Candidates[m.Cursor]
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m CandidateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Several packages are named %q", m.Name)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Candidates))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + m.Candidates[i]))
		} else {
			b.WriteString(listNormalStyle.Render("  " + m.Candidates[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Candidates))))
	return b.String()
}

// withPick runs fn with name. If fn reports an ambiguous name and the
// session is interactive, the user picks a candidate and fn runs again.
func withPick[T any](ctx context.Context, pick bool, name string, fn func(string) (T, error)) (T, error) {
	out, err := fn(name)
	var amb *deps.AmbiguousError
	if err == nil || !pick || !isTerminal() || !stderrors.As(err, &amb) {
		return out, err
	}

	final, perr := tea.NewProgram(NewCandidateListModel(amb), tea.WithContext(ctx)).Run()
	if perr != nil {
		return out, perr
	}
	chosen := final.(CandidateListModel).Selected
	if chosen == "" {
		return out, err
	}
	return fn(chosen)
}

// =============================================================================
// Package table
// =============================================================================

// packageRow is one line of the package listing.
type packageRow struct {
	Category    string
	Name        string
	Versions    []string
	Description string
}

// packageTable renders rows as a bordered table.
func packageTable(rows []packageRow) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Category, r.Name, strings.Join(r.Versions, " "), truncate(r.Description, 60)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Category", "Package", "Versions", "Description").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorOK)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorAccent)
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorLabel)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
