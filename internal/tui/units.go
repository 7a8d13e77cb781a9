package tui

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"segment-leader/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
	kmPerMile     = metersPerMile / metersPerKm
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.2f km", meters/metersPerKm)
}

// FormatSpeed formats a speed given in km/h
func (u Units) FormatSpeed(kmh float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mph", kmh/kmPerMile)
	}
	return fmt.Sprintf("%.1f km/h", kmh)
}

// FormatDuration formats seconds as H:MM:SS or M:SS
func (u Units) FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatDifference formats a difference from the leader as a percentage
func (u Units) FormatDifference(d *float64) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *d*100)
}

// FormatPRRank formats a personal record rank as an ordinal ("1st", "2nd")
func (u Units) FormatPRRank(rank *int) string {
	if rank == nil {
		return "-"
	}
	return humanize.Ordinal(*rank)
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}
