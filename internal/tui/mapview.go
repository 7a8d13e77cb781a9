package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/s2"

	"segment-leader/internal/analysis"
	"segment-leader/internal/polyline"
)

// Raster cells
const (
	cellEmpty    = ' '
	cellActivity = '·'
	cellSegment  = '█'
)

// MapModel draws the activity route with the selected segment overlaid
type MapModel struct {
	segmentName string
	color       string
	units       Units

	activity analysis.MapView
	segment  analysis.MapView
	loading  bool
	err      error
	width    int
	height   int
}

// NewMapModel creates a map screen waiting for its paths
func NewMapModel(segmentName, color string, units Units, width, height int) MapModel {
	return MapModel{
		segmentName: segmentName,
		color:       color,
		units:       units,
		loading:     true,
		width:       width,
		height:      height,
	}
}

// Resize fits the raster to the window
func (m MapModel) Resize(width, height int) MapModel {
	m.width = width
	m.height = height
	return m
}

// SetPaths builds the map views from freshly loaded routes
func (m MapModel) SetPaths(msg PathsLoadedMsg) MapModel {
	m.loading = false
	m.err = msg.Err
	if msg.Err != nil {
		return m
	}

	activity, err := analysis.NewMapView("Strava Activity", msg.Activity, m.color)
	if err != nil {
		m.err = err
		return m
	}
	segment, err := analysis.NewMapView(m.segmentName, msg.Segment, m.color)
	if err != nil {
		m.err = err
		return m
	}
	m.activity = activity
	m.segment = segment
	return m
}

// Update handles messages
func (m MapModel) Update(msg tea.Msg) (MapModel, tea.Cmd) {
	return m, nil
}

// View renders the map screen
func (m MapModel) View() string {
	if m.loading {
		return "\n  Loading map..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string

	sections = append(sections, cardTitleStyle.Render(m.segmentName))

	if m.activity.NumPoints == 0 {
		sections = append(sections, "  This activity has no route to draw.")
		sections = append(sections, statusStyle.Render("\n  esc: back"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	width := max(min(m.width-4, 100), 20)
	height := max(min(m.height-14, 30), 8)

	bounds := m.activity.Bounds.Union(m.segment.Bounds)
	grid := rasterize(bounds, width, height, []rasterPath{
		{coords: toCoords(m.activity.Path), cell: cellActivity},
		{coords: toCoords(m.segment.Path), cell: cellSegment},
	})

	segStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.color))
	actStyle := lipgloss.NewStyle().Foreground(mutedColor)

	box := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for _, c := range row {
			switch c {
			case cellSegment:
				b.WriteString(segStyle.Render(string(c)))
			case cellActivity:
				b.WriteString(actStyle.Render(string(c)))
			default:
				b.WriteRune(c)
			}
		}
		box[i] = b.String()
	}
	sections = append(sections, cardStyle.Padding(0, 1).Render(strings.Join(box, "\n")))

	sections = append(sections, RenderMetric("Activity length", m.units.FormatDistance(m.activity.LengthM), ""))
	sections = append(sections, RenderMetric("Segment length", m.units.FormatDistance(m.segment.LengthM), ""))
	sections = append(sections, RenderMetric("Center", fmt.Sprintf("%.5f, %.5f", m.activity.Center.Lat, m.activity.Center.Lng), ""))
	sections = append(sections, RenderMetric("Zoom", fmt.Sprintf("%d", m.activity.Zoom), ""))
	sections = append(sections, statusStyle.Render("\n  esc: back to ranking"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// toCoords turns [lng, lat] pairs back into coordinates
func toCoords(path [][2]float64) []polyline.Coordinate {
	coords := make([]polyline.Coordinate, len(path))
	for i, p := range path {
		coords[i] = polyline.Coordinate{Lat: p[1], Lng: p[0]}
	}
	return coords
}

type rasterPath struct {
	coords []polyline.Coordinate
	cell   rune
}

// rasterize projects paths onto a width x height grid covering bounds, north
// up. Later paths draw over earlier ones.
func rasterize(bounds s2.Rect, width, height int, paths []rasterPath) [][]rune {
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(cellEmpty), width))
	}
	if bounds.IsEmpty() || width < 1 || height < 1 {
		return grid
	}

	minLat, maxLat := bounds.Lo().Lat.Degrees(), bounds.Hi().Lat.Degrees()
	minLng, maxLng := bounds.Lo().Lng.Degrees(), bounds.Hi().Lng.Degrees()

	project := func(c polyline.Coordinate) (int, int) {
		x, y := 0.0, 0.0
		if maxLng > minLng {
			x = (c.Lng - minLng) / (maxLng - minLng) * float64(width-1)
		}
		if maxLat > minLat {
			y = (maxLat - c.Lat) / (maxLat - minLat) * float64(height-1)
		}
		return clamp(int(x+0.5), 0, width-1), clamp(int(y+0.5), 0, height-1)
	}

	for _, p := range paths {
		for i, c := range p.coords {
			x, y := project(c)
			if i == 0 {
				grid[y][x] = p.cell
				continue
			}
			px, py := project(p.coords[i-1])
			drawLine(grid, px, py, x, y, p.cell)
		}
	}
	return grid
}

func drawLine(grid [][]rune, x0, y0, x1, y1 int, cell rune) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		grid[y0][x0] = cell
		return
	}
	for s := 0; s <= steps; s++ {
		x := x0 + (x1-x0)*s/steps
		y := y0 + (y1-y0)*s/steps
		grid[y][x] = cell
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
