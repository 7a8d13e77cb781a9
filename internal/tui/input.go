package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"segment-leader/internal/service"
)

// InputModel is the activity id prompt
type InputModel struct {
	textInput textinput.Model
	spinner   spinner.Model
	opts      service.RankOptions
	loading   bool
	err       error
}

// NewInputModel creates the activity prompt. opts are used for the first run.
func NewInputModel(opts service.RankOptions) InputModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. 1234567890"
	ti.Prompt = "Activity ID: "
	ti.CharLimit = 20
	ti.Width = 24
	ti.Validate = func(s string) error {
		if strings.Trim(s, "0123456789") != "" {
			return fmt.Errorf("activity id must be numeric")
		}
		return nil
	}
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return InputModel{
		textInput: ti,
		spinner:   sp,
		opts:      opts,
	}
}

// Init initializes the input screen
func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

// Focus focuses the text input
func (m *InputModel) Focus() tea.Cmd {
	return m.textInput.Focus()
}

// SetLoading toggles the spinner
func (m InputModel) SetLoading(loading bool) InputModel {
	m.loading = loading
	if loading {
		m.err = nil
	}
	return m
}

// SetError shows err under the prompt
func (m InputModel) SetError(err error) InputModel {
	m.err = err
	return m
}

// ParseActivityID parses an activity id typed by the user
func ParseActivityID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("enter an activity id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid activity id %q", s)
	}
	return id, nil
}

// Update handles messages
func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "enter":
			id, err := ParseActivityID(m.textInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			opts := m.opts
			return m, func() tea.Msg {
				return RankRequestMsg{ActivityID: id, Opts: opts}
			}
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the input screen
func (m InputModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Rank an activity's segments"))
	sections = append(sections, "  "+m.textInput.View())
	sections = append(sections, "")

	switch {
	case m.loading:
		sections = append(sections, "  "+m.spinner.View()+" Fetching the activity and segment leaders...")
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}

	sections = append(sections, "")
	sections = append(sections, statusStyle.Render(fmt.Sprintf("  gender: %s  filter: %s  %s",
		m.opts.Gender, m.opts.Filter, prFilterLabel(m.opts.PRFilter))))
	sections = append(sections, statusStyle.Render("  enter: rank  esc: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
