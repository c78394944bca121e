package engine

import "fmt"

// EnvConfig holds the dead zones and penalty slopes of the environmental
// pace normalizer. Each factor costs nothing inside its dead zone and a
// linear number of seconds per kilometer outside it.
type EnvConfig struct {
	TempOptLowC    float64 // below this, cold penalty applies
	TempOptHighC   float64 // above this, heat penalty applies
	HeatPerDegree  float64 // sec/km per degree C above the dead zone
	ColdPerDegree  float64 // sec/km per degree C below the dead zone
	HumidityOptPct float64
	HumidityPerPct float64 // sec/km per percentage point above the dead zone
	WindOptKmh     float64
	WindPerKmh     float64 // sec/km per km/h above the dead zone
	ElevOptPerKm   float64 // meters of gain per km before climbing costs pace
	ElevPerMeter   float64 // sec/km per meter of gain per km above the dead zone

	// MaxAdjustmentFrac caps the total adjustment as a fraction of the
	// observed pace, to stop runaway extrapolation.
	MaxAdjustmentFrac float64

	// Plausibility bounds; readings outside these skip the factor.
	MinPlausibleTempC float64
	MaxPlausibleTempC float64
}

// DefaultEnvConfig returns the standard adjustment curves.
func DefaultEnvConfig() EnvConfig {
	return EnvConfig{
		TempOptLowC:    10,
		TempOptHighC:   20,
		HeatPerDegree:  2.0,
		ColdPerDegree:  1.0,
		HumidityOptPct: 60,
		HumidityPerPct: 0.3,
		WindOptKmh:     15,
		WindPerKmh:     1.2,
		ElevOptPerKm:   10,
		ElevPerMeter:   1.5,

		MaxAdjustmentFrac: 0.5,

		MinPlausibleTempC: -30,
		MaxPlausibleTempC: 50,
	}
}

// PaceAdjustment breaks the environmental cost down per factor. All values
// are seconds per kilometer; positive means the conditions slowed the
// runner, so the normalized pace is faster than the observed one.
type PaceAdjustment struct {
	ObservedPace   float64
	NormalizedPace float64
	Temperature    float64
	Humidity       float64
	Wind           float64
	Elevation      float64
	Total          float64
}

// NormalizePace converts an observed pace into a condition-normalized pace.
// Missing weather returns the pace unchanged at confidence 0; implausible
// readings skip only the offending factor.
func NormalizePace(a ActivityRecord, cfg EnvConfig) Result[PaceAdjustment] {
	res := Result[PaceAdjustment]{Method: MethodComposite}

	observed := a.PaceSecPerKm()
	res.Value = PaceAdjustment{ObservedPace: observed, NormalizedPace: observed}
	if observed <= 0 {
		res.flag(FlagInsufficientData, "activity has no pace")
		return res
	}
	if a.Weather == nil {
		res.flag(FlagMissingWeather, "no weather snapshot; pace returned unadjusted")
		return res
	}
	w := *a.Weather

	adj := &res.Value
	confidence := 1.0

	switch {
	case w.TempC < cfg.MinPlausibleTempC || w.TempC > cfg.MaxPlausibleTempC:
		res.flag(FlagImplausibleValue, "")
		res.warn(fmt.Sprintf("temperature %.1fC outside plausible range; skipped", w.TempC))
		confidence *= 0.5
	case w.TempC > cfg.TempOptHighC:
		adj.Temperature = (w.TempC - cfg.TempOptHighC) * cfg.HeatPerDegree
	case w.TempC < cfg.TempOptLowC:
		adj.Temperature = (cfg.TempOptLowC - w.TempC) * cfg.ColdPerDegree
	}

	switch {
	case w.HumidityPct < 0 || w.HumidityPct > 100:
		res.flag(FlagImplausibleValue, "")
		res.warn(fmt.Sprintf("humidity %.0f%% outside [0, 100]; skipped", w.HumidityPct))
		confidence *= 0.5
	case w.HumidityPct > cfg.HumidityOptPct:
		adj.Humidity = (w.HumidityPct - cfg.HumidityOptPct) * cfg.HumidityPerPct
	}

	switch {
	case w.WindKmh < 0:
		res.flag(FlagImplausibleValue, "")
		res.warn("negative wind speed; skipped")
		confidence *= 0.5
	case w.WindKmh > cfg.WindOptKmh:
		adj.Wind = (w.WindKmh - cfg.WindOptKmh) * cfg.WindPerKmh
	}

	if a.Distance > 0 {
		perKm := a.ElevationGain / (a.Distance / 1000)
		if perKm > cfg.ElevOptPerKm {
			adj.Elevation = (perKm - cfg.ElevOptPerKm) * cfg.ElevPerMeter
		}
	}

	total := adj.Temperature + adj.Humidity + adj.Wind + adj.Elevation
	maxAdj := observed * cfg.MaxAdjustmentFrac
	adj.Total = clampFloat(total, -maxAdj, maxAdj)
	adj.NormalizedPace = observed - adj.Total

	res.Confidence = confidence
	res.Quality.Score = confidence * 100
	return res
}
