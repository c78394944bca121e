package tui

import (
	"fmt"

	"runlab/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
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
	if u.cfg.DistanceUnit == "mi" {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// FormatPace formats pace from total seconds and meters to the user's preferred unit
func (u Units) FormatPace(seconds int, meters float64) string {
	if meters <= 0 || seconds <= 0 {
		return "-"
	}
	if u.cfg.PaceUnit == "min/mi" {
		return formatPaceSeconds(float64(seconds) / (meters / metersPerMile))
	}
	return formatPaceSeconds(float64(seconds) / (meters / metersPerKm))
}

// FormatPaceSeconds formats a pace already expressed in seconds per
// kilometer, converting to min/mi when configured. The analysis engine
// reports all paces in sec/km.
func (u Units) FormatPaceSeconds(secPerKm float64) string {
	if secPerKm <= 0 {
		return "-"
	}
	if u.cfg.PaceUnit == "min/mi" {
		return formatPaceSeconds(secPerKm * metersPerMile / metersPerKm)
	}
	return formatPaceSeconds(secPerKm)
}

// FormatPaceWithUnit formats pace with the unit label
func (u Units) FormatPaceWithUnit(seconds int, meters float64) string {
	pace := u.FormatPace(seconds, meters)
	if pace == "-" {
		return pace
	}
	return pace + "/" + u.DistanceLabel()
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.cfg.DistanceUnit == "mi" {
		return "mi"
	}
	return "km"
}

// PaceLabel returns the pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	if u.cfg.PaceUnit == "min/mi" {
		return "min/mi"
	}
	return "min/km"
}

func formatPaceSeconds(paceSeconds float64) string {
	mins := int(paceSeconds) / 60
	secs := int(paceSeconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
