package engine

import (
	"fmt"
	"math"
	"time"
)

// PaceVO2Entry maps a pace to the VO2max band a runner sustaining it would
// typically hold. Entries must be sorted by ascending pace (descending VO2).
type PaceVO2Entry struct {
	PaceSecPerKm float64
	VO2max       float64
}

// VO2maxConfig carries the estimator's tables and bounds so tests can
// substitute them without touching package state.
type VO2maxConfig struct {
	PaceTable []PaceVO2Entry

	// Plausibility band; estimates outside it are flagged, not discarded.
	MinPlausible float64
	MaxPlausible float64

	// Base confidence per estimation path, before steady-state attenuation.
	HRConfidence   float64
	PaceConfidence float64

	// Qualifying floor for the rolling trend.
	MinTrendConfidence float64

	// Slope (ml/kg/min per month) beyond which the trend is not "stable".
	TrendThreshold float64
}

// DefaultVO2maxConfig returns the standard table, anchored to typical
// sustained-pace fitness bands for recreational through competitive runners.
func DefaultVO2maxConfig() VO2maxConfig {
	return VO2maxConfig{
		PaceTable: []PaceVO2Entry{
			{165, 70},
			{180, 65},
			{200, 60},
			{215, 55},
			{230, 50},
			{250, 46},
			{270, 42},
			{300, 38},
			{330, 35},
			{360, 32.5},
			{400, 30},
			{450, 27.5},
			{510, 25.5},
			{600, 24},
		},
		MinPlausible:       25,
		MaxPlausible:       80,
		HRConfidence:       0.8,
		PaceConfidence:     0.55,
		MinTrendConfidence: 0.3,
		TrendThreshold:     0.3,
	}
}

// EstimateVO2max estimates aerobic capacity from a single activity. The
// heart-rate method (Uth-Sorensen, scaled by the activity's effort ratio)
// is preferred; the pace-table method is the fallback. The two are never
// blended. Steady-state quality attenuates confidence but never rejects.
func EstimateVO2max(a ActivityRecord, phys Physiology, cfg VO2maxConfig) Result[float64] {
	res := Result[float64]{}

	steady := steadyStateQuality(a)

	if a.AvgHeartrate != nil && *a.AvgHeartrate > 0 && phys.RestingHR > 0 && phys.MaxHR > phys.RestingHR {
		base := 15.3 * (phys.MaxHR / phys.RestingHR)
		effort := clampFloat(*a.AvgHeartrate/phys.MaxHR, 0, 1.0)
		// Scale toward the full estimate as effort approaches max; a
		// half-effort jog reveals less about the ceiling.
		res.Value = base * (0.57 + 0.43*effort) * (0.9 + 0.1*steady)
		res.Confidence = cfg.HRConfidence * steady
		res.Method = MethodHeartRate
		res.Quality.Score = res.Confidence * 100
		if phys.Estimated {
			res.flag(FlagEstimatedProfile, "resting/max heart rate estimated from defaults")
			res.Confidence = CombineConfidence(res.Confidence, 0.5)
		}
	} else if pace := a.PaceSecPerKm(); pace > 0 && len(cfg.PaceTable) > 0 {
		res.Value = paceTableVO2(cfg.PaceTable, pace) + distanceAdjustment(a.Distance)
		res.Confidence = cfg.PaceConfidence * steady
		res.Method = MethodPace
		res.Quality.Score = res.Confidence * 100
		res.flag(FlagMissingHeartRate, "estimate derived from pace only")
		res.flag(FlagEstimated, "")
	} else {
		res.flag(FlagInsufficientData, "no heart rate or pace to estimate from")
		return res
	}

	flagVO2maxPlausibility(&res, phys, steady, cfg)
	return res
}

// steadyStateQuality is the heuristic pre-filter: short activities, high
// heart-rate variability, and heavy climbing all reduce confidence that the
// activity was a steady effort. It attenuates; it never hard-rejects.
func steadyStateQuality(a ActivityRecord) float64 {
	q := 1.0

	switch {
	case a.MovingTime < 600: // under 10 minutes
		q *= 0.4
	case a.MovingTime < 1200:
		q *= 0.7
	}

	if a.AvgHeartrate != nil && a.MaxHeartrate != nil && *a.AvgHeartrate > 0 {
		ratio := (*a.MaxHeartrate - *a.AvgHeartrate) / *a.AvgHeartrate
		switch {
		case ratio <= 0.10:
			// low variability: steady
		case ratio >= 0.35:
			q *= 0.5
		default:
			q *= 1 - (ratio-0.10)/(0.35-0.10)*0.5
		}
	} else {
		q *= 0.85 // variability unknown
	}

	if a.Distance > 0 {
		perKm := a.ElevationGain / (a.Distance / 1000)
		switch {
		case perKm <= 10:
			// flat enough
		case perKm >= 40:
			q *= 0.6
		default:
			q *= 1 - (perKm-10)/(40-10)*0.4
		}
	}

	return clampFloat(q, 0.1, 1)
}

// flagVO2maxPlausibility attaches warnings for implausible estimates without
// discarding them.
func flagVO2maxPlausibility(res *Result[float64], phys Physiology, steady float64, cfg VO2maxConfig) {
	if res.Value < cfg.MinPlausible || res.Value > cfg.MaxPlausible {
		res.flag(FlagImplausibleValue, "")
		res.warn(fmt.Sprintf("estimate %.1f outside plausible range [%.0f, %.0f] ml/kg/min",
			res.Value, cfg.MinPlausible, cfg.MaxPlausible))
	}
	if steady < 0.5 {
		res.flag(FlagNonSteadyState, "")
		res.warn("activity does not look like a steady-state effort")
	}
	if res.Method == MethodHeartRate && phys.RestingHR > 0 {
		ratio := phys.MaxHR / phys.RestingHR
		if ratio > 4.0 || ratio < 1.3 {
			res.flag(FlagExtremeHRReserve, "")
			res.warn(fmt.Sprintf("max/resting heart-rate ratio %.1f is extreme", ratio))
		}
	}
}

// paceTableVO2 interpolates a VO2max from the pace table, clamping outside
// the table's ends.
func paceTableVO2(table []PaceVO2Entry, paceSecPerKm float64) float64 {
	if paceSecPerKm <= table[0].PaceSecPerKm {
		return table[0].VO2max
	}
	last := table[len(table)-1]
	if paceSecPerKm >= last.PaceSecPerKm {
		return last.VO2max
	}

	lo, hi := 0, len(table)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if table[mid].PaceSecPerKm <= paceSecPerKm {
			lo = mid
		} else {
			hi = mid
		}
	}

	a, b := table[lo], table[hi]
	frac := (paceSecPerKm - a.PaceSecPerKm) / (b.PaceSecPerKm - a.PaceSecPerKm)
	return a.VO2max + frac*(b.VO2max-a.VO2max)
}

// distanceAdjustment nudges the pace-method estimate: holding a pace over a
// long distance implies more capacity than holding it briefly, and very
// short efforts overstate sustainable pace.
func distanceAdjustment(distanceM float64) float64 {
	switch {
	case distanceM >= 21000:
		return 4
	case distanceM >= 15000:
		return 3
	case distanceM >= 10000:
		return 2
	case distanceM >= 5000:
		return 1
	case distanceM >= 3000:
		return 0
	default:
		return -2
	}
}

// VO2maxPoint is one activity's estimate together with the recency-weighted
// 30-day rolling value as of that activity.
type VO2maxPoint struct {
	ActivityID int64
	Date       time.Time
	Estimate   float64
	Confidence float64
	Rolling    float64
}

// VO2maxHistory estimates every qualifying activity and computes the 30-day
// recency-weighted rolling average as of each one. Activities must be in
// chronological order.
func VO2maxHistory(activities []ActivityRecord, phys Physiology, cfg VO2maxConfig) []VO2maxPoint {
	var points []VO2maxPoint
	for _, a := range activities {
		est := EstimateVO2max(a, phys, cfg)
		if est.Confidence < cfg.MinTrendConfidence {
			continue
		}
		p := VO2maxPoint{
			ActivityID: a.ID,
			Date:       a.StartTime,
			Estimate:   est.Value,
			Confidence: est.Confidence,
		}

		var weighted, totalWeight float64
		for _, prev := range points {
			ageDays := p.Date.Sub(prev.Date).Hours() / 24
			if ageDays > 30 {
				continue
			}
			w := prev.Confidence * math.Exp(-ageDays/15)
			weighted += prev.Estimate * w
			totalWeight += w
		}
		// Include the current point at full recency.
		weighted += p.Estimate * p.Confidence
		totalWeight += p.Confidence
		p.Rolling = weighted / totalWeight

		points = append(points, p)
	}
	return points
}

// TrendDirection classifies a rolling VO2max trend.
type TrendDirection int

const (
	TrendStable TrendDirection = iota
	TrendImproving
	TrendDeclining
)

func (d TrendDirection) String() string {
	switch d {
	case TrendImproving:
		return "improving"
	case TrendDeclining:
		return "declining"
	default:
		return "stable"
	}
}

// VO2maxTrend summarizes the rolling series.
type VO2maxTrend struct {
	Current       float64
	SlopePerMonth float64
	Direction     TrendDirection
}

// AssessVO2maxTrend fits a regression through the rolling series and
// classifies the slope against the configured monthly threshold.
func AssessVO2maxTrend(points []VO2maxPoint, cfg VO2maxConfig) Result[VO2maxTrend] {
	res := Result[VO2maxTrend]{Method: MethodComposite}

	if len(points) < 3 {
		res.flag(FlagInsufficientData, "fewer than 3 qualifying VO2max estimates")
		return res
	}

	spanDays := points[len(points)-1].Date.Sub(points[0].Date).Hours() / 24
	if spanDays < 1 {
		res.flag(FlagInsufficientData, "estimates span less than a day")
		return res
	}

	rolling := make([]float64, len(points))
	minConf := points[0].Confidence
	for i, p := range points {
		rolling[i] = p.Rolling
		if p.Confidence < minConf {
			minConf = p.Confidence
		}
	}

	// Per-point slope scaled to per-day by the average spacing, then to a
	// monthly rate.
	perPoint := regressionSlope(rolling)
	perDay := perPoint * float64(len(points)-1) / spanDays
	slopePerMonth := perDay * 30

	t := VO2maxTrend{
		Current:       rolling[len(rolling)-1],
		SlopePerMonth: slopePerMonth,
	}
	switch {
	case slopePerMonth > cfg.TrendThreshold:
		t.Direction = TrendImproving
	case slopePerMonth < -cfg.TrendThreshold:
		t.Direction = TrendDeclining
	default:
		t.Direction = TrendStable
	}

	res.Value = t
	res.Confidence = CombineConfidence(clamp01(spanDays/30), minConf)
	res.Quality.Score = res.Confidence * 100
	return res
}
