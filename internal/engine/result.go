package engine

import (
	"encoding/json"
	"errors"
)

// ErrInsufficientData is returned by the few calculators that cannot produce
// even a degraded value, such as an EWMA over an empty series.
var ErrInsufficientData = errors.New("insufficient data")

// Method identifies which formula or fallback path produced a result.
type Method int

const (
	MethodNone Method = iota
	MethodHeartRate
	MethodPace
	MethodComposite
)

func (m Method) String() string {
	switch m {
	case MethodHeartRate:
		return "heart_rate"
	case MethodPace:
		return "pace"
	case MethodComposite:
		return "composite"
	default:
		return "none"
	}
}

// MarshalJSON encodes the method as its string tag.
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Flag marks a specific data-quality condition on a result.
type Flag string

const (
	FlagInsufficientData  Flag = "insufficient_data"
	FlagInsufficientHist  Flag = "insufficient_history"
	FlagInvalidPhysiology Flag = "invalid_physiology"
	FlagEstimatedProfile  Flag = "estimated_profile"
	FlagMissingHeartRate  Flag = "missing_heart_rate"
	FlagMissingWeather    Flag = "missing_weather"
	FlagMissingSplits     Flag = "missing_splits"
	FlagImplausibleValue  Flag = "implausible_estimate"
	FlagNonSteadyState    Flag = "non_steady_state"
	FlagExtremeHRReserve  Flag = "extreme_hr_reserve"
	FlagEstimated         Flag = "estimated"
)

// Quality describes how trustworthy the inputs behind a result were.
type Quality struct {
	Score             float64  `json:"qualityScore"` // 0..100
	Flags             []Flag   `json:"flags,omitempty"`
	MissingDataImpact []string `json:"missingDataImpact,omitempty"`
}

// Has reports whether a flag is set.
func (q Quality) Has(f Flag) bool {
	for _, x := range q.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// Result wraps every calculator output with its confidence and provenance.
// A composite result's confidence never exceeds the minimum confidence of
// the inputs it required; optional inputs that were absent are simply
// excluded rather than dragging confidence below that floor.
type Result[T any] struct {
	Value      T        `json:"value"`
	Confidence float64  `json:"confidence"` // 0..1
	Quality    Quality  `json:"dataQuality"`
	Method     Method   `json:"calculationMethod"`
	Warnings   []string `json:"warnings,omitempty"`
}

// flag appends a quality flag, optionally noting what data was missing.
func (r *Result[T]) flag(f Flag, impact string) {
	r.Quality.Flags = append(r.Quality.Flags, f)
	if impact != "" {
		r.Quality.MissingDataImpact = append(r.Quality.MissingDataImpact, impact)
	}
}

func (r *Result[T]) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// CombineConfidence bounds a composite confidence by the minimum of its
// required input confidences.
func CombineConfidence(own float64, inputs ...float64) float64 {
	c := clamp01(own)
	for _, in := range inputs {
		if in < c {
			c = clamp01(in)
		}
	}
	return c
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
