package engine

import (
	"math"
	"testing"
)

func envActivity(distance float64, movingTime int, gain float64, w *Weather) ActivityRecord {
	return ActivityRecord{
		Distance:      distance,
		MovingTime:    movingTime,
		ElevationGain: gain,
		Weather:       w,
	}
}

func TestNormalizePace(t *testing.T) {
	cfg := DefaultEnvConfig()

	tests := []struct {
		name    string
		act     ActivityRecord
		checkFn func(t *testing.T, res Result[PaceAdjustment])
	}{
		{
			name: "mild conditions adjust nothing",
			act:  envActivity(10000, 3300, 50, &Weather{TempC: 15, HumidityPct: 50, WindKmh: 5}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if res.Value.Total != 0 {
					t.Errorf("Total = %v, want 0 inside all dead zones", res.Value.Total)
				}
				if res.Value.NormalizedPace != res.Value.ObservedPace {
					t.Errorf("NormalizedPace = %v, want observed %v",
						res.Value.NormalizedPace, res.Value.ObservedPace)
				}
				if res.Confidence != 1 {
					t.Errorf("Confidence = %v, want 1", res.Confidence)
				}
			},
		},
		{
			name: "heat and humidity slow the runner",
			act:  envActivity(10000, 3300, 0, &Weather{TempC: 30, HumidityPct: 90, WindKmh: 5}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if math.Abs(res.Value.Temperature-20) > 0.001 {
					t.Errorf("Temperature = %v, want 20 for 10C over the dead zone", res.Value.Temperature)
				}
				if math.Abs(res.Value.Humidity-9) > 0.001 {
					t.Errorf("Humidity = %v, want 9 for 30 points over", res.Value.Humidity)
				}
				if res.Value.Total <= 0 {
					t.Error("hot humid run should carry a positive total cost")
				}
				if res.Value.NormalizedPace >= res.Value.ObservedPace {
					t.Error("normalized pace should be faster than observed in bad conditions")
				}
			},
		},
		{
			name: "cold costs less per degree than heat",
			act:  envActivity(10000, 3300, 0, &Weather{TempC: 0, HumidityPct: 40}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if math.Abs(res.Value.Temperature-10) > 0.001 {
					t.Errorf("Temperature = %v, want 10 for 10C below the dead zone", res.Value.Temperature)
				}
			},
		},
		{
			name: "wind and climbing each cost pace",
			act:  envActivity(10000, 3300, 300, &Weather{TempC: 15, HumidityPct: 50, WindKmh: 25}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if math.Abs(res.Value.Wind-12) > 0.001 {
					t.Errorf("Wind = %v, want 12 for 10 km/h over", res.Value.Wind)
				}
				if math.Abs(res.Value.Elevation-30) > 0.001 {
					t.Errorf("Elevation = %v, want 30 for 20 m/km over", res.Value.Elevation)
				}
			},
		},
		{
			name: "extreme conditions cap at half the observed pace",
			act:  envActivity(10000, 3300, 1200, &Weather{TempC: 45, HumidityPct: 100, WindKmh: 80}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				wantCap := res.Value.ObservedPace * cfg.MaxAdjustmentFrac
				if math.Abs(res.Value.Total-wantCap) > 0.001 {
					t.Errorf("Total = %v, want capped at %v", res.Value.Total, wantCap)
				}
			},
		},
		{
			name: "missing weather returns the pace unchanged",
			act:  envActivity(10000, 3300, 0, nil),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if res.Confidence != 0 {
					t.Errorf("Confidence = %v, want 0", res.Confidence)
				}
				if !res.Quality.Has(FlagMissingWeather) {
					t.Error("expected missing-weather flag")
				}
				if res.Value.NormalizedPace != res.Value.ObservedPace {
					t.Error("pace must pass through unadjusted without weather")
				}
			},
		},
		{
			name: "implausible humidity skips only that factor",
			act:  envActivity(10000, 3300, 0, &Weather{TempC: 30, HumidityPct: 180, WindKmh: 5}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if res.Value.Humidity != 0 {
					t.Errorf("Humidity = %v, want 0 when the reading is implausible", res.Value.Humidity)
				}
				if res.Value.Temperature == 0 {
					t.Error("temperature factor should still apply")
				}
				if !res.Quality.Has(FlagImplausibleValue) {
					t.Error("expected implausible-value flag")
				}
				if res.Confidence >= 1 {
					t.Errorf("Confidence = %v, want reduced", res.Confidence)
				}
				if len(res.Warnings) == 0 {
					t.Error("expected a warning naming the skipped reading")
				}
			},
		},
		{
			name: "no pace soft-fails",
			act:  envActivity(0, 0, 0, &Weather{TempC: 15}),
			checkFn: func(t *testing.T, res Result[PaceAdjustment]) {
				if res.Confidence != 0 {
					t.Errorf("Confidence = %v, want 0", res.Confidence)
				}
				if !res.Quality.Has(FlagInsufficientData) {
					t.Error("expected insufficient-data flag")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkFn(t, NormalizePace(tt.act, cfg))
		})
	}
}

func TestNormalizePaceMonotonicInTemperature(t *testing.T) {
	cfg := DefaultEnvConfig()

	prev := -1.0
	for temp := 20.0; temp <= 40; temp++ {
		res := NormalizePace(envActivity(10000, 3300, 0, &Weather{TempC: temp, HumidityPct: 50}), cfg)
		if res.Value.Total < prev {
			t.Fatalf("total cost fell from %v to %v at %vC", prev, res.Value.Total, temp)
		}
		prev = res.Value.Total
	}
}
