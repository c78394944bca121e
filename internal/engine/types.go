// Package engine derives training-load and physiological metrics from a
// runner's activity history: TRIMP, CTL/ATL/TSB, ACWR injury risk, VO2max
// estimates, environmental pace normalization, and aerobic decoupling.
//
// Every calculator is a pure function over in-memory summary records. None of
// them return hard errors for degraded input; they return a low-confidence
// Result with quality flags instead. Callers supply chronologically ordered
// history where ordering matters.
package engine

import "time"

// ActivityRecord is the per-activity summary the engine consumes. It is never
// mutated; ingestion owns these records.
type ActivityRecord struct {
	ID            int64
	StartTime     time.Time
	Distance      float64 // meters
	MovingTime    int     // seconds
	ElevationGain float64 // meters, 0 when unknown
	AvgHeartrate  *float64
	MaxHeartrate  *float64
	Weather       *Weather
	Splits        []Split
}

// Weather is the environmental snapshot recorded for an activity.
type Weather struct {
	TempC       float64
	HumidityPct float64
	WindKmh     float64
}

// Split is a summary of one distance split (typically 1 km) within an
// activity. Splits are summary statistics, not raw streams.
type Split struct {
	Distance     float64 // meters
	MovingTime   int     // seconds
	AvgHeartrate *float64
}

// PaceSecPerKm returns the average pace in seconds per kilometer, or 0 when
// the activity has no distance.
func (a ActivityRecord) PaceSecPerKm() float64 {
	if a.Distance <= 0 || a.MovingTime <= 0 {
		return 0
	}
	return float64(a.MovingTime) / (a.Distance / 1000)
}

// Day returns the activity's calendar day in UTC.
func (a ActivityRecord) Day() time.Time {
	return a.StartTime.UTC().Truncate(24 * time.Hour)
}

// Sex is used to select physiological coefficients and defaults.
type Sex int

const (
	SexUnspecified Sex = iota
	SexMale
	SexFemale
)

// PhysiologyProfile holds the athlete's physiology. Any field may be absent;
// Resolve substitutes defaults so calculators never see a hole.
type PhysiologyProfile struct {
	RestingHR *float64
	MaxHR     *float64
	WeightKg  *float64
	BirthYear int
	Sex       Sex
	UpdatedAt time.Time
}

// Physiology is a fully-resolved profile: both heart rates present and
// resting < max. Estimated reports whether defaults were substituted, which
// callers use to degrade confidence.
type Physiology struct {
	RestingHR float64
	MaxHR     float64
	WeightKg  float64
	Sex       Sex
	Estimated bool
}

const (
	defaultRestingHR = 50
	defaultMaxHR     = 185
	defaultWeightKg  = 70
)

// Resolve substitutes age/sex-derived defaults for missing fields and falls
// back to defaults entirely when the stored values are not physiologically
// plausible (resting >= max, or outside human ranges).
func (p PhysiologyProfile) Resolve(now time.Time) Physiology {
	r := Physiology{
		RestingHR: defaultRestingHR,
		MaxHR:     defaultMaxHR,
		WeightKg:  defaultWeightKg,
		Sex:       p.Sex,
		Estimated: true,
	}

	if p.BirthYear > 1900 && p.BirthYear <= now.Year() {
		age := float64(now.Year() - p.BirthYear)
		r.MaxHR = 220 - age
	}
	if p.WeightKg != nil && *p.WeightKg > 20 && *p.WeightKg < 250 {
		r.WeightKg = *p.WeightKg
	}

	haveResting := p.RestingHR != nil && *p.RestingHR >= 25 && *p.RestingHR <= 110
	haveMax := p.MaxHR != nil && *p.MaxHR >= 120 && *p.MaxHR <= 230

	if haveResting {
		r.RestingHR = *p.RestingHR
	}
	if haveMax {
		r.MaxHR = *p.MaxHR
	}
	if haveResting && haveMax {
		if *p.RestingHR < *p.MaxHR {
			r.Estimated = false
		} else {
			// Invalid pair: drop back to defaults rather than abort.
			r.RestingHR = defaultRestingHR
			r.MaxHR = defaultMaxHR
		}
	}

	if r.RestingHR >= r.MaxHR {
		r.RestingHR = defaultRestingHR
		r.MaxHR = defaultMaxHR
		r.Estimated = true
	}

	return r
}

// Reserve returns the heart rate reserve (max - resting).
func (p Physiology) Reserve() float64 {
	return p.MaxHR - p.RestingHR
}

// DailyLoad aggregates one calendar day of training. It is always rebuilt
// from scratch by summing that day's activities, never patched in place.
type DailyLoad struct {
	Date       time.Time
	TRIMP      float64
	Distance   float64 // meters
	MovingTime int     // seconds
	Activities int
}
