package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// PaletteListModel - Interactive palette selection
// =============================================================================

// PaletteListModel is the bubbletea model for interactive palette selection.
type PaletteListModel struct {
	Palettes []paletteEntry
	Cursor   int
	Selected *paletteEntry
	Height   int
	Offset   int
}

// NewPaletteListModel creates a new palette list model.
func NewPaletteListModel(palettes []paletteEntry) PaletteListModel {
	return PaletteListModel{Palettes: palettes, Height: 15}
}

func (m PaletteListModel) Init() tea.Cmd {
	return nil
}

func (m PaletteListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Palettes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Palettes) == 0 {
				return m, tea.Quit
			}
			p := m.Palettes[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PaletteListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Palette"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Palettes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Palettes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		source := "stored"
		if p.Builtin {
			source = "built-in"
		}
		rows = append(rows, []string{cursor, p.Name, fmt.Sprintf("%d", len(p.Colors)), source, swatches(p.Colors)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Palette", "Colors", "Source", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Palettes) || col == 4 {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Palettes[idx].Builtin {
				base = base.Foreground(colorGray)
			} else {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Palettes))))

	return b.String()
}
