package tui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"segment-leader/internal/analysis"
	"segment-leader/internal/service"
)

// prFilterSteps are the PR filter values cycled with "p". 0 is off.
var prFilterSteps = []int{0, 1, 2, 3, 5, 10}

// distanceStepKm is how far "+" and "-" move the distance filter
const distanceStepKm = 0.5

// RankingModel is the ranked segment table
type RankingModel struct {
	activityID int64
	ranking    *service.Ranking
	opts       service.RankOptions
	units      Units

	minKm    float64
	rows     []analysis.RankedSegment // rows passing the distance filter
	cursor   int
	offset   int
	pageSize int
	loading  bool
}

// NewRankingModel creates the table for a finished run
func NewRankingModel(activityID int64, r *service.Ranking, opts service.RankOptions, units Units) RankingModel {
	m := RankingModel{
		activityID: activityID,
		ranking:    r,
		opts:       opts,
		units:      units,
		pageSize:   15,
	}
	m.applyFilter()
	return m
}

// SetLoading marks a re-run in progress
func (m RankingModel) SetLoading(loading bool) RankingModel {
	m.loading = loading
	return m
}

// Rows returns the rows currently shown
func (m RankingModel) Rows() []analysis.RankedSegment {
	return m.rows
}

func (m *RankingModel) applyFilter() {
	if m.ranking == nil {
		m.rows = nil
		return
	}
	m.rows = analysis.FilterMinDistance(m.ranking.Rows, m.minKm)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.clampOffset()
}

func (m *RankingModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
}

func nextPRFilter(current int) int {
	for i, v := range prFilterSteps {
		if v == current {
			return prFilterSteps[(i+1)%len(prFilterSteps)]
		}
	}
	return prFilterSteps[0]
}

func prFilterLabel(v int) string {
	if v <= 0 {
		return "PRs: all"
	}
	return fmt.Sprintf("PRs: top %d", v)
}

func (m RankingModel) rerun(opts service.RankOptions) tea.Cmd {
	id := m.activityID
	return func() tea.Msg {
		return RankRequestMsg{ActivityID: id, Opts: opts}
	}
}

// Update handles messages
func (m RankingModel) Update(msg tea.Msg) (RankingModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.ranking == nil {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.clampOffset()
		}
	case "+", "=":
		maxKm := analysis.MaxDistanceKm(m.ranking.Rows)
		m.minKm = math.Min(m.minKm+distanceStepKm, math.Floor(maxKm/distanceStepKm)*distanceStepKm)
		m.applyFilter()
	case "-":
		m.minKm = math.Max(m.minKm-distanceStepKm, 0)
		m.applyFilter()
	case "c":
		opts := m.opts
		if opts.Filter == analysis.FilterClimbs {
			opts.Filter = analysis.FilterAll
		} else {
			opts.Filter = analysis.FilterClimbs
		}
		return m, m.rerun(opts)
	case "p":
		opts := m.opts
		opts.PRFilter = nextPRFilter(opts.PRFilter)
		return m, m.rerun(opts)
	case "r":
		return m, m.rerun(m.opts)
	case "e":
		rows := m.rows
		return m, func() tea.Msg { return ExportRequestMsg{Rows: rows} }
	case "i":
		rows := m.rows
		return m, func() tea.Msg { return OpenInsightsMsg{Rows: rows} }
	case "enter":
		if m.cursor < len(m.rows) {
			r := m.rows[m.cursor]
			return m, func() tea.Msg {
				return OpenMapMsg{SegmentID: r.SegmentID, SegmentName: r.Name}
			}
		}
	}
	return m, nil
}

// View renders the ranked table
func (m RankingModel) View() string {
	if m.ranking == nil {
		return "\n  No ranking yet."
	}

	var sections []string

	title := fmt.Sprintf("%s (%d)", m.ranking.Activity.Name, m.activityID)
	sections = append(sections, cardTitleStyle.Render(title))

	filters := fmt.Sprintf("  filter: %s  %s  min distance: %s  showing %d of %d",
		m.opts.Filter, prFilterLabel(m.opts.PRFilter), m.units.FormatDistance(m.minKm*1000),
		len(m.rows), len(m.ranking.Rows))
	if m.loading {
		filters += "  " + warningStyle.Render("re-ranking...")
	}
	sections = append(sections, statusStyle.Render(filters))

	if len(m.rows) == 0 {
		sections = append(sections, "\n  No segments match the current filters.")
		sections = append(sections, m.renderHelp())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-28s  %9s  %8s  %8s  %8s  %6s  %-8s  %4s",
		"Segment", "Distance", "Time", "Leader", "Behind", "Grade", "Terrain", "PR"))
	sections = append(sections, header)

	end := min(m.offset+m.pageSize, len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		leader := "-"
		if !r.Unranked {
			leader = m.units.FormatDuration(r.LeaderTime)
		}

		row := fmt.Sprintf("%s%-28s  %9s  %8s  %8s  %8s  %5.1f%%  %-8s  %4s",
			cursor,
			truncateName(r.Name, 28),
			m.units.FormatDistance(r.Distance),
			m.units.FormatDuration(r.ElapsedTime),
			leader,
			m.units.FormatDifference(r.DifferenceFromLeader),
			r.AverageGrade,
			r.Terrain,
			m.units.FormatPRRank(r.PRRank),
		)

		switch {
		case i == m.cursor:
			sections = append(sections, tableSelectedStyle.Render(row))
		case r.Unranked:
			sections = append(sections, tableRowStyle.Foreground(mutedColor).Render(row))
		default:
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	if m.cursor < len(m.rows) {
		sel := m.rows[m.cursor]
		if sel.LookupErr != nil {
			sections = append(sections, warningStyle.Render(fmt.Sprintf("  leader lookup failed: %v", sel.LookupErr)))
		} else {
			sections = append(sections, statusStyle.Render(fmt.Sprintf("  %s: %s vs leader %s, %+.0f m elevation",
				sel.Name, m.units.FormatSpeed(sel.Speed), m.units.FormatSpeed(sel.LeaderSpeed), sel.ElevationDifference)))
		}
	}

	sections = append(sections, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RankingModel) renderHelp() string {
	return statusStyle.Render("\n  enter: map  i: insights  +/-: distance  c: climbs  p: PR filter  r: re-rank  e: export")
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
