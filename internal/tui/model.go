package tui

import (
	"fmt"
	"strings"

	"github.com/airbusgeo/gridio/internal/gridio"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	Accept key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Accept, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
	All:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
	Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "import")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

// Model is a checklist of the sub-datasets of a file
type Model struct {
	file        string
	subDatasets []gridio.SubDataset
	checked     []bool
	cursor      int
	accepted    bool
	help        help.Model
}

// NewModel creates a checklist with nothing checked
func NewModel(file string, subDatasets []gridio.SubDataset) Model {
	return Model{
		file:        file,
		subDatasets: subDatasets,
		checked:     make([]bool, len(subDatasets)),
		help:        help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			m.accepted = false
			return m, tea.Quit
		case key.Matches(msg, keys.Accept):
			m.accepted = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.subDatasets)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(m.checked) > 0 {
				m.checked[m.cursor] = !m.checked[m.cursor]
			}
		case key.Matches(msg, keys.All):
			all := true
			for _, c := range m.checked {
				all = all && c
			}
			for i := range m.checked {
				m.checked[i] = !all
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sub-datasets of "+m.file) + "\n\n")
	for i, sd := range m.subDatasets {
		cursor, box := "  ", "[ ]"
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%3d  %s", sd.Index, sd.Description)
		if m.checked[i] {
			box = "[x]"
			line = checkedStyle.Render(line)
		}
		b.WriteString(cursor + box + " " + line + "\n")
		if i == m.cursor {
			b.WriteString("        " + dimStyle.Render(sd.Name) + "\n")
		}
	}
	return boxStyle.Render(b.String()) + "\n" + m.help.View(keys) + "\n"
}

// Selected returns the checked sub-datasets, or nothing if the dialog has been cancelled
func (m Model) Selected() []gridio.SubDataset {
	if !m.accepted {
		return nil
	}
	var res []gridio.SubDataset
	for i, c := range m.checked {
		if c {
			res = append(res, m.subDatasets[i])
		}
	}
	return res
}
