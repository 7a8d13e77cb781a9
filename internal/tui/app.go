package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"segment-leader/internal/analysis"
	"segment-leader/internal/auth"
	"segment-leader/internal/config"
	"segment-leader/internal/export"
	"segment-leader/internal/polyline"
	"segment-leader/internal/service"
	"segment-leader/internal/strava"
)

// Screen identifiers
type Screen int

const (
	ScreenInput Screen = iota
	ScreenRanking
	ScreenInsights
	ScreenMap
	ScreenHelp
)

// TokenProvider hands out a currently valid access token
type TokenProvider interface {
	GetToken(ctx context.Context) (auth.Token, error)
}

// Ranker runs the segment ranking pipeline
type Ranker interface {
	RankActivity(ctx context.Context, token auth.Token, activityID int64, opts service.RankOptions) (*service.Ranking, error)
	ActivityPath(ctx context.Context, token auth.Token, activityID int64) ([]polyline.Coordinate, error)
	SegmentPath(ctx context.Context, token auth.Token, segmentID int64) ([]polyline.Coordinate, error)
}

// QuotaReporter reports the remaining Strava API requests
type QuotaReporter interface {
	QuotaStatus() (shortRemaining, dailyRemaining int)
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	input    InputModel
	ranking  RankingModel
	insights InsightsModel
	mapView  MapModel
	help     HelpModel

	// Services
	tokens TokenProvider
	ranker Ranker
	quota  QuotaReporter

	cfg   config.Config
	units Units

	// Current run
	activityID int64
	running    bool

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies. quota may be nil.
func NewApp(tokens TokenProvider, ranker Ranker, quota QuotaReporter, cfg config.Config) *App {
	units := NewUnits(cfg.Display)
	return &App{
		screen: ScreenInput,
		tokens: tokens,
		ranker: ranker,
		quota:  quota,
		cfg:    cfg,
		units:  units,
		input:  NewInputModel(defaultOptions(cfg.Ranking)),
		help:   NewHelpModel(),
	}
}

func defaultOptions(cfg config.RankingConfig) service.RankOptions {
	return service.RankOptions{
		Gender:   strava.Gender(cfg.Gender),
		Filter:   analysis.Filter(cfg.Filter),
		PRFilter: cfg.PRFilter,
	}
}

// RankRequestMsg asks the app to run the ranking pipeline
type RankRequestMsg struct {
	ActivityID int64
	Opts       service.RankOptions
}

// RankingDoneMsg is sent when a pipeline run finishes
type RankingDoneMsg struct {
	ActivityID int64
	Opts       service.RankOptions
	Ranking    *service.Ranking
	Err        error
}

// OpenMapMsg opens the map for a segment of the current activity
type OpenMapMsg struct {
	SegmentID   int64
	SegmentName string
}

// PathsLoadedMsg carries the decoded activity and segment routes
type PathsLoadedMsg struct {
	SegmentID int64
	Activity  []polyline.Coordinate
	Segment   []polyline.Coordinate
	Err       error
}

// OpenInsightsMsg opens the insights screen for the visible rows
type OpenInsightsMsg struct {
	Rows []analysis.RankedSegment
}

// ExportRequestMsg asks the app to export the visible rows
type ExportRequestMsg struct {
	Rows []analysis.RankedSegment
}

// ExportDoneMsg is sent when an export finishes
type ExportDoneMsg struct {
	Path string
	Err  error
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.input.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		}

		// The input screen owns every other key while typing
		if a.screen != ScreenInput {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
					a.screen = ScreenHelp
				}
				return a, nil
			case "esc":
				return a, a.back()
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.insights = a.insights.Resize(msg.Width, msg.Height)
		a.mapView = a.mapView.Resize(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case RankRequestMsg:
		if a.running {
			return a, nil
		}
		a.running = true
		a.activityID = msg.ActivityID
		a.status = fmt.Sprintf("Ranking activity %d...", msg.ActivityID)
		a.input = a.input.SetLoading(true)
		a.ranking = a.ranking.SetLoading(true)
		return a, tea.Batch(a.input.spinner.Tick, a.runRanking(msg))

	case RankingDoneMsg:
		a.running = false
		a.input = a.input.SetLoading(false)
		a.ranking = a.ranking.SetLoading(false)
		if msg.Err != nil {
			a.status = errorStyle.Render(fmt.Sprintf("Ranking failed: %v", msg.Err))
			if a.screen == ScreenInput {
				a.input = a.input.SetError(msg.Err)
			}
			return a, nil
		}
		a.status = a.rankingStatus(msg.Ranking)
		a.ranking = NewRankingModel(msg.ActivityID, msg.Ranking, msg.Opts, a.units)
		a.screen = ScreenRanking
		return a, nil

	case OpenMapMsg:
		a.screen = ScreenMap
		a.mapView = NewMapModel(msg.SegmentName, a.cfg.Display.PathColor, a.units, a.width, a.height)
		return a, a.loadPaths(msg.SegmentID)

	case PathsLoadedMsg:
		a.mapView = a.mapView.SetPaths(msg)
		return a, nil

	case OpenInsightsMsg:
		a.screen = ScreenInsights
		a.insights = NewInsightsModel(msg.Rows, a.units, a.width, a.height)
		return a, nil

	case ExportRequestMsg:
		a.status = "Exporting..."
		return a, a.runExport(msg.Rows)

	case ExportDoneMsg:
		if msg.Err != nil {
			a.status = errorStyle.Render(fmt.Sprintf("Export failed: %v", msg.Err))
		} else {
			a.status = successStyle.Render("Exported to " + msg.Path)
		}
		return a, nil
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenInput:
		a.input, cmd = a.input.Update(msg)
	case ScreenRanking:
		a.ranking, cmd = a.ranking.Update(msg)
	case ScreenInsights:
		a.insights, cmd = a.insights.Update(msg)
	case ScreenMap:
		a.mapView, cmd = a.mapView.Update(msg)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

func (a *App) back() tea.Cmd {
	switch a.screen {
	case ScreenHelp:
		a.screen = a.prevScreen
	case ScreenInsights, ScreenMap:
		a.screen = ScreenRanking
	case ScreenRanking:
		a.screen = ScreenInput
		a.input = a.input.SetError(nil)
		return a.input.Focus()
	}
	return nil
}

func (a *App) runRanking(req RankRequestMsg) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		tok, err := a.tokens.GetToken(ctx)
		if err != nil {
			return RankingDoneMsg{ActivityID: req.ActivityID, Opts: req.Opts, Err: fmt.Errorf("getting token: %w", err)}
		}
		r, err := a.ranker.RankActivity(ctx, tok, req.ActivityID, req.Opts)
		return RankingDoneMsg{ActivityID: req.ActivityID, Opts: req.Opts, Ranking: r, Err: err}
	}
}

func (a *App) loadPaths(segmentID int64) tea.Cmd {
	activityID := a.activityID
	return func() tea.Msg {
		ctx := context.Background()
		tok, err := a.tokens.GetToken(ctx)
		if err != nil {
			return PathsLoadedMsg{SegmentID: segmentID, Err: err}
		}
		activity, err := a.ranker.ActivityPath(ctx, tok, activityID)
		if err != nil {
			return PathsLoadedMsg{SegmentID: segmentID, Err: err}
		}
		segment, err := a.ranker.SegmentPath(ctx, tok, segmentID)
		if err != nil {
			return PathsLoadedMsg{SegmentID: segmentID, Err: err}
		}
		return PathsLoadedMsg{SegmentID: segmentID, Activity: activity, Segment: segment}
	}
}

func (a *App) runExport(rows []analysis.RankedSegment) tea.Cmd {
	dir, format, activityID := a.cfg.Export.Dir, a.cfg.Export.Format, a.activityID
	return func() tea.Msg {
		path, err := export.Write(dir, format, activityID, rows)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

func (a *App) rankingStatus(r *service.Ranking) string {
	ranked := analysis.CountRanked(r.Rows)
	s := fmt.Sprintf("%d of %d segments ranked", ranked, len(r.Rows))
	if a.quota != nil {
		short, daily := a.quota.QuotaStatus()
		s += fmt.Sprintf("  ·  API requests left: %s (15 min), %s (daily)",
			humanize.Comma(int64(short)), humanize.Comma(int64(daily)))
	}
	return s
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenInput:
		content = a.input.View()
	case ScreenRanking:
		content = a.ranking.View()
	case ScreenInsights:
		content = a.insights.View()
	case ScreenMap:
		content = a.mapView.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Strava Segment Leader")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"enter", "Activity", ScreenInput},
		{"", "Ranking", ScreenRanking},
		{"i", "Insights", ScreenInsights},
		{"", "Map", ScreenMap},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := item.label
		if item.key != "" {
			label = "[" + item.key + "] " + label
		}
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	if a.screen == ScreenInput {
		nav += "  " + navInactiveStyle.Render("[esc] Quit")
	} else {
		nav += "  " + navInactiveStyle.Render("[esc] Back  [q] Quit")
	}

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
