package engine

import (
	"math"
	"testing"
	"time"
)

func TestACWR(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := DefaultRiskConfig()

	tests := []struct {
		name    string
		loads   []DailyLoad
		checkFn func(t *testing.T, res Result[ACWRResult])
	}{
		{
			name:  "insufficient history",
			loads: constantLoads(base, 3, 100),
			checkFn: func(t *testing.T, res Result[ACWRResult]) {
				if res.Confidence != 0 {
					t.Errorf("Confidence = %v, want 0", res.Confidence)
				}
				if !res.Quality.Has(FlagInsufficientHist) {
					t.Error("expected insufficient-history flag")
				}
			},
		},
		{
			name:  "steady training is optimal",
			loads: constantLoads(base, 28, 100),
			checkFn: func(t *testing.T, res Result[ACWRResult]) {
				if math.Abs(res.Value.Ratio-1.0) > 0.01 {
					t.Errorf("Ratio = %v, want ~1.0", res.Value.Ratio)
				}
				if res.Value.Band != ACWROptimal {
					t.Errorf("Band = %v, want optimal", res.Value.Band)
				}
				if res.Confidence != 1 {
					t.Errorf("Confidence = %v, want 1 with 28 days", res.Confidence)
				}
			},
		},
		{
			name: "sudden burst after near-zero base is high risk",
			loads: append(
				dailyLoads(base, 5), // one token day anchors the window
				constantLoads(base.AddDate(0, 0, 21), 7, 100)...),
			checkFn: func(t *testing.T, res Result[ACWRResult]) {
				if res.Value.Ratio <= cfg.HighRisk {
					t.Errorf("Ratio = %v, want > %v", res.Value.Ratio, cfg.HighRisk)
				}
				if res.Value.Band != ACWRHighRisk {
					t.Errorf("Band = %v, want high-risk", res.Value.Band)
				}
			},
		},
		{
			name: "recent silence after a training block is detraining",
			loads: append(
				constantLoads(base, 18, 100),
				dailyLoads(base.AddDate(0, 0, 27), 0)...),
			checkFn: func(t *testing.T, res Result[ACWRResult]) {
				if res.Value.Band != ACWRDetraining {
					t.Errorf("Band = %v (ratio %v, acute %v), want detraining",
						res.Value.Band, res.Value.Ratio, res.Value.Acute)
				}
			},
		},
		{
			name: "moderate ramp lands in caution",
			loads: append(
				constantLoads(base, 21, 70),
				constantLoads(base.AddDate(0, 0, 21), 7, 115)...),
			checkFn: func(t *testing.T, res Result[ACWRResult]) {
				if res.Value.Band != ACWRCaution {
					t.Errorf("Band = %v (ratio %v), want caution", res.Value.Band, res.Value.Ratio)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkFn(t, ACWR(tt.loads, cfg))
		})
	}
}

func TestACWRRatioCapped(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// All load concentrated in the trailing week: ratio stays bounded.
	loads := append(dailyLoads(base, 0), constantLoads(base.AddDate(0, 0, 27), 1, 500)...)

	res := ACWR(loads, DefaultRiskConfig())
	if math.IsInf(res.Value.Ratio, 1) || res.Value.Ratio > acwrRatioCap {
		t.Errorf("Ratio = %v, want capped at %v", res.Value.Ratio, acwrRatioCap)
	}
}

func TestRiskSeverityMonotonic(t *testing.T) {
	cfg := DefaultRiskConfig()

	prev := SeverityLow
	for score := 0.0; score <= 100; score++ {
		s := cfg.severity(score)
		if s < prev {
			t.Fatalf("severity(%v) = %v dropped below severity at lower score", score, s)
		}
		prev = s
	}

	tests := []struct {
		score    float64
		expected Severity
	}{
		{0, SeverityLow},
		{29.9, SeverityLow},
		{30, SeverityModerate},
		{55, SeverityModerate},
		{55.1, SeverityHigh},
		{80, SeverityHigh},
		{80.1, SeverityCritical},
		{100, SeverityCritical},
	}
	for _, tt := range tests {
		if got := cfg.severity(tt.score); got != tt.expected {
			t.Errorf("severity(%v) = %v, want %v", tt.score, got, tt.expected)
		}
	}
}

// riskFixture builds a month of steady running with heart rate.
func riskFixture(base time.Time, days int, pace float64, hr float64) []ActivityRecord {
	var acts []ActivityRecord
	for i := 0; i < days; i++ {
		acts = append(acts, ActivityRecord{
			ID:           int64(i + 1),
			StartTime:    base.AddDate(0, 0, i).Add(7 * time.Hour),
			Distance:     10000,
			MovingTime:   int(pace * 10),
			AvgHeartrate: floatPtr(hr),
		})
	}
	return acts
}

func TestAssessInjuryRisk(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	phys := testPhysiology()
	cfg := DefaultRiskConfig()

	t.Run("steady training scores low", func(t *testing.T) {
		acts := riskFixture(base, 30, 330, 145)
		loads := BuildDailyLoads(acts, phys, DefaultTRIMPConfig())

		res := AssessInjuryRisk(acts, loads, phys, cfg)
		if len(res.Value.Factors) != 5 {
			t.Fatalf("expected 5 factors, got %d", len(res.Value.Factors))
		}
		if res.Value.Level != SeverityLow && res.Value.Level != SeverityModerate {
			t.Errorf("Level = %v for steady training, want low or moderate (score %v)",
				res.Value.Level, res.Value.OverallScore)
		}
		if res.Value.Overreaching == Overtraining {
			t.Error("steady training must not classify as overtraining")
		}
		if res.Confidence <= 0 {
			t.Error("full month of data should carry positive confidence")
		}
	})

	t.Run("confidence bounded by ACWR input", func(t *testing.T) {
		acts := riskFixture(base, 10, 330, 145)
		loads := BuildDailyLoads(acts, phys, DefaultTRIMPConfig())

		acwr := ACWR(loads, cfg)
		res := AssessInjuryRisk(acts, loads, phys, cfg)
		if res.Confidence > acwr.Confidence {
			t.Errorf("composite confidence %v exceeds ACWR input confidence %v",
				res.Confidence, acwr.Confidence)
		}
	})

	t.Run("too little history soft-fails", func(t *testing.T) {
		acts := riskFixture(base, 3, 330, 145)
		loads := BuildDailyLoads(acts, phys, DefaultTRIMPConfig())

		res := AssessInjuryRisk(acts, loads, phys, cfg)
		if res.Confidence != 0 {
			t.Errorf("Confidence = %v, want 0", res.Confidence)
		}
		if res.Value.Overreaching != OverreachingNormal {
			t.Errorf("Overreaching = %v, want normal with no history", res.Value.Overreaching)
		}
	})

	t.Run("load spike raises the spike factor", func(t *testing.T) {
		// Quiet month then a heavy week.
		quiet := riskFixture(base, 2, 330, 145)
		heavy := riskFixture(base.AddDate(0, 0, 21), 7, 300, 170)
		acts := append(quiet, heavy...)
		loads := BuildDailyLoads(acts, phys, DefaultTRIMPConfig())

		res := AssessInjuryRisk(acts, loads, phys, cfg)
		spike := factorByKind(t, res.Value.Factors, FactorLoadSpike)
		if spike.Score <= 55 {
			t.Errorf("spike score = %v, want > 55 after a burst week", spike.Score)
		}
		if spike.Severity < SeverityHigh {
			t.Errorf("spike severity = %v, want at least high", spike.Severity)
		}
	})
}

func factorByKind(t *testing.T, factors []RiskFactor, kind RiskFactorKind) RiskFactor {
	t.Helper()
	for _, f := range factors {
		if f.Kind == kind {
			return f
		}
	}
	t.Fatalf("factor %v not found", kind)
	return RiskFactor{}
}

func TestPerformanceDeclineFactor(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	phys := testPhysiology()
	now := base.AddDate(0, 0, 20)

	t.Run("slowing at matched effort scores up", func(t *testing.T) {
		var acts []ActivityRecord
		for i := 0; i < 10; i++ {
			// Same heart rate, pace degrading 2% per run.
			pace := 300 * math.Pow(1.02, float64(i))
			acts = append(acts, ActivityRecord{
				StartTime:    base.AddDate(0, 0, i*2),
				Distance:     10000,
				MovingTime:   int(pace * 10),
				AvgHeartrate: floatPtr(150),
			})
		}
		f := performanceDeclineFactor(acts, phys, now)
		if !f.HasData {
			t.Fatal("expected enough data to score decline")
		}
		if f.Score < 50 {
			t.Errorf("Score = %v, want high for steady 2%%/run slowdown", f.Score)
		}
	})

	t.Run("stable pace scores zero", func(t *testing.T) {
		acts := riskFixture(base, 10, 330, 145)
		f := performanceDeclineFactor(acts, phys, now)
		if !f.HasData {
			t.Fatal("expected enough data")
		}
		if f.Score != 0 {
			t.Errorf("Score = %v, want 0 for stable pace", f.Score)
		}
	})

	t.Run("no heart-rate runs is unscored", func(t *testing.T) {
		acts := []ActivityRecord{{StartTime: now, Distance: 10000, MovingTime: 3300}}
		f := performanceDeclineFactor(acts, phys, now)
		if f.HasData {
			t.Error("decline should be unscored without heart-rate runs")
		}
	})
}

func TestHeartRateAnomalyFactor(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base.AddDate(0, 0, 27)

	t.Run("elevated recent heart rate scores up", func(t *testing.T) {
		baseline := riskFixture(base, 21, 330, 140)
		elevated := riskFixture(base.AddDate(0, 0, 21), 7, 330, 155)
		f := heartRateAnomalyFactor(append(baseline, elevated...), now)
		if !f.HasData || f.Score <= 0 {
			t.Errorf("Score = %v (hasData %v), want positive for HR drift", f.Score, f.HasData)
		}
	})

	t.Run("stable heart rate scores zero", func(t *testing.T) {
		f := heartRateAnomalyFactor(riskFixture(base, 28, 330, 145), now)
		if f.Score != 0 {
			t.Errorf("Score = %v, want 0 for stable HR", f.Score)
		}
	})
}

func TestRecoveryPatternFactor(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no rest under heavy load scores high", func(t *testing.T) {
		f := recoveryPatternFactor(constantLoads(base, 14, 150))
		if f.Score < 55 {
			t.Errorf("Score = %v, want high with zero rest days at heavy load", f.Score)
		}
	})

	t.Run("regular rest days score low", func(t *testing.T) {
		var loads []DailyLoad
		for i := 0; i < 14; i++ {
			v := 100.0
			if i%3 == 0 {
				v = 0
			}
			loads = append(loads, DailyLoad{Date: base.AddDate(0, 0, i), TRIMP: v})
		}
		f := recoveryPatternFactor(loads)
		if f.Score != 0 {
			t.Errorf("Score = %v, want 0 with ample rest", f.Score)
		}
	})
}

func TestOverreachingStatus(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	declining := RiskFactor{Kind: FactorPerformanceDecline, Score: 60, HasData: true}
	steady := RiskFactor{Kind: FactorPerformanceDecline, Score: 10, HasData: true}

	t.Run("balanced training is normal", func(t *testing.T) {
		if got := overreachingStatus(constantLoads(base, 42, 80), steady); got != OverreachingNormal {
			t.Errorf("status = %v, want normal", got)
		}
	})

	t.Run("sustained heavy block is functional overreaching", func(t *testing.T) {
		loads := append(constantLoads(base, 21, 0), constantLoads(base.AddDate(0, 0, 21), 10, 150)...)
		if got := overreachingStatus(loads, steady); got != OverreachingFunctional {
			t.Errorf("status = %v, want functional", got)
		}
	})

	t.Run("long heavy block with decline is non-functional", func(t *testing.T) {
		loads := append(constantLoads(base, 21, 0), constantLoads(base.AddDate(0, 0, 21), 16, 150)...)
		if got := overreachingStatus(loads, declining); got != OverreachingNonFunctional {
			t.Errorf("status = %v, want non-functional", got)
		}
	})

	t.Run("same block without decline stays functional", func(t *testing.T) {
		loads := append(constantLoads(base, 21, 0), constantLoads(base.AddDate(0, 0, 21), 16, 150)...)
		if got := overreachingStatus(loads, steady); got != OverreachingFunctional {
			t.Errorf("status = %v, want functional", got)
		}
	})
}
