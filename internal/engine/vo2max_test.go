package engine

import (
	"math"
	"testing"
	"time"
)

func TestEstimateVO2max(t *testing.T) {
	phys := testPhysiology()
	cfg := DefaultVO2maxConfig()

	tests := []struct {
		name     string
		activity ActivityRecord
		phys     Physiology
		expected float64
		delta    float64
		method   Method
		checkFn  func(t *testing.T, res Result[float64])
	}{
		{
			name: "heart rate method on a steady hour",
			activity: ActivityRecord{
				Distance:     12000,
				MovingTime:   3600,
				AvgHeartrate: floatPtr(160),
				MaxHeartrate: floatPtr(170),
			},
			phys:     phys,
			expected: 53.3,
			delta:    0.1,
			method:   MethodHeartRate,
			checkFn: func(t *testing.T, res Result[float64]) {
				if math.Abs(res.Confidence-0.8) > 0.001 {
					t.Errorf("Confidence = %v, want 0.8 for a clean steady effort", res.Confidence)
				}
			},
		},
		{
			name: "pace fallback without heart rate",
			activity: ActivityRecord{
				Distance:   5000,
				MovingTime: 1500,
			},
			phys:     phys,
			expected: 39, // table pace 300 -> 38, plus the 5k distance bump
			delta:    0.01,
			method:   MethodPace,
			checkFn: func(t *testing.T, res Result[float64]) {
				if !res.Quality.Has(FlagMissingHeartRate) {
					t.Error("expected missing-heart-rate flag on pace fallback")
				}
				if !res.Quality.Has(FlagEstimated) {
					t.Error("pace-only estimate should be tagged estimated")
				}
				if res.Confidence >= cfg.HRConfidence {
					t.Errorf("Confidence = %v, want below the HR path's %v", res.Confidence, cfg.HRConfidence)
				}
			},
		},
		{
			name: "short blast is flagged non-steady but still estimated",
			activity: ActivityRecord{
				Distance:     1500,
				MovingTime:   400,
				AvgHeartrate: floatPtr(160),
				MaxHeartrate: floatPtr(168),
			},
			phys:   phys,
			delta:  100, // value itself is not the point here
			method: MethodHeartRate,
			checkFn: func(t *testing.T, res Result[float64]) {
				if !res.Quality.Has(FlagNonSteadyState) {
					t.Error("expected non-steady-state flag for a 7-minute effort")
				}
				if res.Value <= 0 {
					t.Error("estimate should still be produced")
				}
				if math.Abs(res.Confidence-0.8*0.4) > 0.001 {
					t.Errorf("Confidence = %v, want 0.32 after short-duration attenuation", res.Confidence)
				}
			},
		},
		{
			name: "implausible estimate is flagged not discarded",
			activity: ActivityRecord{
				Distance:     10000,
				MovingTime:   3000,
				AvgHeartrate: floatPtr(195),
				MaxHeartrate: floatPtr(200),
			},
			phys:   Physiology{RestingHR: 30, MaxHR: 200, WeightKg: 70},
			delta:  1000,
			method: MethodHeartRate,
			checkFn: func(t *testing.T, res Result[float64]) {
				if !res.Quality.Has(FlagImplausibleValue) {
					t.Errorf("Value = %v, expected implausible flag above %v", res.Value, cfg.MaxPlausible)
				}
				if !res.Quality.Has(FlagExtremeHRReserve) {
					t.Error("max/resting ratio of 6.7 should flag extreme reserve")
				}
				if len(res.Warnings) == 0 {
					t.Error("expected warnings alongside the flags")
				}
			},
		},
		{
			name:     "nothing to estimate from",
			activity: ActivityRecord{},
			phys:     phys,
			delta:    0.01,
			checkFn: func(t *testing.T, res Result[float64]) {
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
			res := EstimateVO2max(tt.activity, tt.phys, cfg)
			if tt.expected > 0 && math.Abs(res.Value-tt.expected) > tt.delta {
				t.Errorf("Value = %v, want %v +- %v", res.Value, tt.expected, tt.delta)
			}
			if res.Method != tt.method {
				t.Errorf("Method = %v, want %v", res.Method, tt.method)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, res)
			}
		})
	}
}

func TestEstimateVO2maxMonotonicInEffort(t *testing.T) {
	phys := testPhysiology()
	cfg := DefaultVO2maxConfig()

	// Sweep from well under half of max HR to max; each step must raise
	// the estimate, with no flat region at low effort.
	prev := 0.0
	for hr := 80.0; hr <= 185; hr += 5 {
		a := ActivityRecord{
			Distance:     10000,
			MovingTime:   3300,
			AvgHeartrate: floatPtr(hr),
			MaxHeartrate: floatPtr(hr + 5),
		}
		res := EstimateVO2max(a, phys, cfg)
		if res.Value <= prev {
			t.Fatalf("estimate did not rise (%v to %v) as average HR rose to %v", prev, res.Value, hr)
		}
		prev = res.Value
	}
}

func TestEstimatedProfileDegradesConfidence(t *testing.T) {
	cfg := DefaultVO2maxConfig()
	a := ActivityRecord{
		Distance:     12000,
		MovingTime:   3600,
		AvgHeartrate: floatPtr(160),
		MaxHeartrate: floatPtr(170),
	}

	measured := EstimateVO2max(a, testPhysiology(), cfg)

	est := testPhysiology()
	est.Estimated = true
	defaulted := EstimateVO2max(a, est, cfg)

	if !defaulted.Quality.Has(FlagEstimatedProfile) {
		t.Error("expected estimated-profile flag")
	}
	if defaulted.Confidence >= measured.Confidence {
		t.Errorf("estimated profile confidence %v should be below measured %v",
			defaulted.Confidence, measured.Confidence)
	}
}

func TestPaceTableVO2(t *testing.T) {
	table := DefaultVO2maxConfig().PaceTable

	tests := []struct {
		pace     float64
		expected float64
	}{
		{100, 70},  // faster than the table clamps to the top
		{165, 70},  // exact first entry
		{285, 40},  // halfway between the 270 and 300 anchors
		{300, 38},  // exact interior entry
		{600, 24},  // exact last entry
		{900, 24},  // slower than the table clamps to the bottom
	}
	for _, tt := range tests {
		if got := paceTableVO2(table, tt.pace); math.Abs(got-tt.expected) > 0.01 {
			t.Errorf("paceTableVO2(%v) = %v, want %v", tt.pace, got, tt.expected)
		}
	}
}

func TestVO2maxHistory(t *testing.T) {
	phys := testPhysiology()
	cfg := DefaultVO2maxConfig()
	base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	steadyRun := func(id int64, day int, hr float64) ActivityRecord {
		return ActivityRecord{
			ID:           id,
			StartTime:    base.AddDate(0, 0, day),
			Distance:     10000,
			MovingTime:   3300,
			AvgHeartrate: floatPtr(hr),
			MaxHeartrate: floatPtr(hr + 6),
		}
	}

	t.Run("low confidence estimates are excluded", func(t *testing.T) {
		acts := []ActivityRecord{
			steadyRun(1, 0, 155),
			{ID: 2, StartTime: base.AddDate(0, 0, 2), Distance: 1200, MovingTime: 400}, // pace only and short
			steadyRun(3, 4, 155),
		}
		points := VO2maxHistory(acts, phys, cfg)
		if len(points) != 2 {
			t.Fatalf("got %d points, want 2", len(points))
		}
		if points[0].ActivityID != 1 || points[1].ActivityID != 3 {
			t.Errorf("kept IDs %d, %d; want 1, 3", points[0].ActivityID, points[1].ActivityID)
		}
	})

	t.Run("identical estimates roll to themselves", func(t *testing.T) {
		acts := []ActivityRecord{steadyRun(1, 0, 155), steadyRun(2, 7, 155), steadyRun(3, 14, 155)}
		points := VO2maxHistory(acts, phys, cfg)
		if len(points) != 3 {
			t.Fatalf("got %d points, want 3", len(points))
		}
		for _, p := range points {
			if math.Abs(p.Rolling-p.Estimate) > 0.001 {
				t.Errorf("Rolling = %v, want %v for a flat series", p.Rolling, p.Estimate)
			}
		}
	})

	t.Run("points older than thirty days drop out of the window", func(t *testing.T) {
		acts := []ActivityRecord{steadyRun(1, 0, 175), steadyRun(2, 40, 150)}
		points := VO2maxHistory(acts, phys, cfg)
		if len(points) != 2 {
			t.Fatalf("got %d points, want 2", len(points))
		}
		if math.Abs(points[1].Rolling-points[1].Estimate) > 0.001 {
			t.Errorf("Rolling = %v includes a stale point, want %v", points[1].Rolling, points[1].Estimate)
		}
	})

	t.Run("rolling weights recent points harder", func(t *testing.T) {
		acts := []ActivityRecord{steadyRun(1, 0, 145), steadyRun(2, 10, 170)}
		points := VO2maxHistory(acts, phys, cfg)
		last := points[1]
		mid := (points[0].Estimate + last.Estimate) / 2
		if last.Rolling <= mid {
			t.Errorf("Rolling = %v, want above the midpoint %v of the two estimates", last.Rolling, mid)
		}
		if last.Rolling >= last.Estimate {
			t.Errorf("Rolling = %v should still sit below the newest estimate %v", last.Rolling, last.Estimate)
		}
	})
}

func trendPoints(base time.Time, rollings []float64) []VO2maxPoint {
	points := make([]VO2maxPoint, len(rollings))
	for i, r := range rollings {
		points[i] = VO2maxPoint{
			Date:       base.AddDate(0, 0, i*7),
			Estimate:   r,
			Confidence: 0.8,
			Rolling:    r,
		}
	}
	return points
}

func TestAssessVO2maxTrend(t *testing.T) {
	cfg := DefaultVO2maxConfig()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		points   []VO2maxPoint
		expected TrendDirection
		checkFn  func(t *testing.T, res Result[VO2maxTrend])
	}{
		{
			name:     "too few points",
			points:   trendPoints(base, []float64{50, 50.5}),
			expected: TrendStable,
			checkFn: func(t *testing.T, res Result[VO2maxTrend]) {
				if res.Confidence != 0 {
					t.Errorf("Confidence = %v, want 0 with two points", res.Confidence)
				}
				if !res.Quality.Has(FlagInsufficientData) {
					t.Error("expected insufficient-data flag")
				}
			},
		},
		{
			name:     "steady gains classify as improving",
			points:   trendPoints(base, []float64{50, 50.5, 51, 51.5, 52}),
			expected: TrendImproving,
			checkFn: func(t *testing.T, res Result[VO2maxTrend]) {
				if res.Value.SlopePerMonth < 1.5 {
					t.Errorf("SlopePerMonth = %v, want roughly 2 for 0.5/week", res.Value.SlopePerMonth)
				}
				if res.Value.Current != 52 {
					t.Errorf("Current = %v, want 52", res.Value.Current)
				}
				if res.Confidence <= 0 {
					t.Error("expected positive confidence over a four-week span")
				}
			},
		},
		{
			name:     "steady losses classify as declining",
			points:   trendPoints(base, []float64{52, 51.5, 51, 50.5, 50}),
			expected: TrendDeclining,
		},
		{
			name:     "flat series is stable",
			points:   trendPoints(base, []float64{50, 50, 50, 50}),
			expected: TrendStable,
		},
		{
			name:     "sub-threshold drift is stable",
			points:   trendPoints(base, []float64{50, 50.02, 50.04, 50.06, 50.08}),
			expected: TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AssessVO2maxTrend(tt.points, cfg)
			if res.Value.Direction != tt.expected {
				t.Errorf("Direction = %v (slope %v), want %v",
					res.Value.Direction, res.Value.SlopePerMonth, tt.expected)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, res)
			}
		})
	}
}
