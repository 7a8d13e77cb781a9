package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"segment-leader/internal/analysis"
)

// InsightsModel plots the ranked rows
type InsightsModel struct {
	rows     []analysis.RankedSegment
	units    Units
	metric   int // index into analysis.Metrics
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// NewInsightsModel creates the insights screen
func NewInsightsModel(rows []analysis.RankedSegment, units Units, width, height int) InsightsModel {
	m := InsightsModel{
		rows:  rows,
		units: units,
	}
	return m.Resize(width, height)
}

// Resize fits the viewport to the window
func (m InsightsModel) Resize(width, height int) InsightsModel {
	m.width = width
	m.height = height
	if width <= 0 || height <= 0 {
		return m
	}
	if !m.ready {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height - 6
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Metric returns the selected scatter metric
func (m InsightsModel) Metric() analysis.Metric {
	return analysis.Metrics[m.metric]
}

// Update handles messages
func (m InsightsModel) Update(msg tea.Msg) (InsightsModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "m" {
		m.metric = (m.metric + 1) % len(analysis.Metrics)
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the insights screen
func (m InsightsModel) View() string {
	if !m.ready {
		return m.renderContent()
	}
	return m.viewport.View()
}

func (m InsightsModel) renderContent() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Insights"))

	points := analysis.ScatterSeries(m.rows, m.Metric())
	if len(points) < 2 {
		sections = append(sections, "  Not enough ranked segments to plot.")
		sections = append(sections, statusStyle.Render("\n  esc: back"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })

	sections = append(sections, m.renderDifferenceChart(points))
	sections = append(sections, m.renderMetricChart(points))
	sections = append(sections, m.renderScatterTable(points))
	sections = append(sections, m.renderTerrainSummary())
	sections = append(sections, statusStyle.Render("\n  m: next metric  j/k: scroll  esc: back"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m InsightsModel) chartWidth() int {
	return max(min(m.width-12, 70), 20)
}

func (m InsightsModel) renderDifferenceChart(points []analysis.ScatterPoint) string {
	_, hi := analysis.XAxisRange(m.rows)

	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = min(p.X, analysis.MaxPlotDifference) * 100
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(
		fmt.Sprintf("Time behind the leader, best first (%%, axis 0 to %.0f)", hi*100)))
	lines = append(lines, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(m.chartWidth()),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(hi*100),
	))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m InsightsModel) renderMetricChart(points []analysis.ScatterPoint) string {
	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Y
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(
		m.Metric().Label()+" by rank"))
	lines = append(lines, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(m.chartWidth()),
	))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m InsightsModel) renderScatterTable(points []analysis.ScatterPoint) string {
	var lines []string

	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-28s  %8s  %14s  %-8s",
		"Segment", "Behind", m.Metric(), "Terrain")))
	for _, p := range points {
		diff := p.X
		line := fmt.Sprintf("%-28s  %8s  %14.2f  ", truncateName(p.Name, 28), m.units.FormatDifference(&diff), p.Y)
		lines = append(lines, " "+line+terrainStyle(p.Terrain).Render(fmt.Sprintf("%-8s", p.Terrain)))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m InsightsModel) renderTerrainSummary() string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("By terrain"))
	for _, s := range analysis.SummarizeByTerrain(m.rows) {
		mean, best := s.MeanDifference, s.BestDifference
		lines = append(lines, "  "+RenderMetric(
			terrainStyle(s.Terrain).Render(string(s.Terrain)),
			fmt.Sprintf("%d segments, mean %s, best %s", s.Count, m.units.FormatDifference(&mean), m.units.FormatDifference(&best)),
			"",
		))
	}
	return strings.Join(lines, "\n")
}
