package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"?", "Help (this screen)"},
		{"esc", "Back / close help"},
		{"q", "Quit"},
	}))

	sections = append(sections, m.renderSection("Activity prompt", []keyHelp{
		{"enter", "Rank the activity's segments"},
		{"esc", "Quit"},
	}))

	sections = append(sections, m.renderSection("Ranking", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"+ / -", "Raise / lower the minimum segment distance"},
		{"c", "Toggle categorized climbs only (rides)"},
		{"p", "Cycle the PR filter: all, top 1, 2, 3, 5, 10"},
		{"r", "Re-rank (draws a new sample)"},
		{"e", "Export the table"},
		{"i", "Insights"},
		{"enter", "Map of the selected segment"},
	}))

	sections = append(sections, m.renderSection("Insights", []keyHelp{
		{"m", "Next metric"},
		{"j / k", "Scroll"},
	}))

	sections = append(sections, m.renderTermsHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderTermsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Terms"))
	lines = append(lines, "")

	terms := []struct {
		name string
		desc string
	}{
		{"Behind", "Your time over the KOM/QOM time, minus one. +10% means 10% slower."},
		{"Leader", "The KOM (men) or QOM (women) time on the segment."},
		{"Unranked", "No leader time could be looked up. Shown last."},
		{"Terrain", "Uphill/downhill past 1% grade and 10 m of elevation, flat within both."},
		{"Sample", "Only a capped number of segments is looked up per run to stay inside the API quota."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	for _, t := range terms {
		lines = append(lines, "  "+helpKeyStyle.Render(t.name))
		lines = append(lines, "  "+mutedStyle.Render(t.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
