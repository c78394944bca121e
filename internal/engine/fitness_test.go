package engine

import (
	"math"
	"testing"
	"time"
)

func dailyLoads(start time.Time, trimps ...float64) []DailyLoad {
	loads := make([]DailyLoad, len(trimps))
	for i, v := range trimps {
		loads[i] = DailyLoad{Date: start.AddDate(0, 0, i), TRIMP: v, Activities: 1}
	}
	return loads
}

func constantLoads(start time.Time, days int, trimp float64) []DailyLoad {
	values := make([]float64, days)
	for i := range values {
		values[i] = trimp
	}
	return dailyLoads(start, values...)
}

func TestFitnessInsufficientHistory(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		loads []DailyLoad
	}{
		{"empty history", nil},
		{"single day", constantLoads(base, 1, 100)},
		{"six days", constantLoads(base, 6, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Fitness(tt.loads)
			if res.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0", res.Confidence)
			}
			if res.Value.Status != FormNeutral {
				t.Errorf("Status = %v, want neutral", res.Value.Status)
			}
			if !res.Quality.Has(FlagInsufficientHist) {
				t.Error("short history should be flagged insufficient")
			}
		})
	}
}

func TestFitnessConvergesToConstantLoad(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := Fitness(constantLoads(base, 60, 100))

	if math.Abs(res.Value.CTL-100) > 0.5 {
		t.Errorf("CTL = %v, want ~100", res.Value.CTL)
	}
	if math.Abs(res.Value.ATL-100) > 0.5 {
		t.Errorf("ATL = %v, want ~100", res.Value.ATL)
	}
	if math.Abs(res.Value.TSB) > 0.5 {
		t.Errorf("TSB = %v, want ~0", res.Value.TSB)
	}
	if res.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1 after 42+ days", res.Confidence)
	}
	if res.Value.Status != FormNeutral {
		t.Errorf("Status = %v, want neutral at TSB ~0", res.Value.Status)
	}
}

func TestFitnessConfidenceRamp(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	short := Fitness(constantLoads(base, 10, 100))
	long := Fitness(constantLoads(base, 30, 100))

	if short.Confidence >= long.Confidence {
		t.Errorf("confidence should grow with history: %v vs %v", short.Confidence, long.Confidence)
	}
	if math.Abs(short.Confidence-10.0/42.0) > 0.01 {
		t.Errorf("10-day confidence = %v, want ~%v", short.Confidence, 10.0/42.0)
	}
}

func TestFitnessNoTrainingData(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := Fitness(constantLoads(base, 14, 0))

	if res.Value.Status != FormNeutral {
		t.Errorf("Status = %v, want neutral for empty training", res.Value.Status)
	}
	if res.Value.Recommendation == "" {
		t.Error("all-zero history should carry an explicit no-data recommendation")
	}
}

func TestClassifyForm(t *testing.T) {
	tests := []struct {
		tsb      float64
		expected FormStatus
	}{
		{30, FormFresh},
		{25.1, FormFresh},
		{25, FormNeutral},
		{0, FormNeutral},
		{-5, FormNeutral},
		{-5.1, FormFatigued},
		{-29.9, FormFatigued},
		{-30, FormVeryFatigued},
		{-60, FormVeryFatigued},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			status, _ := classifyForm(FitnessState{CTL: 50, ATL: 50 - tt.tsb, TSB: tt.tsb})
			if status != tt.expected {
				t.Errorf("classifyForm(tsb=%v) = %v, want %v", tt.tsb, status, tt.expected)
			}
		})
	}
}

func TestFitnessTrend(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fills gaps with rest days", func(t *testing.T) {
		loads := []DailyLoad{
			{Date: base, TRIMP: 100},
			{Date: base.AddDate(0, 0, 5), TRIMP: 100},
		}
		trend := FitnessTrend(loads)
		if len(trend) != 6 {
			t.Fatalf("expected 6 days including rest days, got %d", len(trend))
		}
		// CTL decays over the rest days.
		if trend[4].CTL >= trend[0].CTL {
			t.Errorf("CTL should decay during rest: day0=%v day4=%v", trend[0].CTL, trend[4].CTL)
		}
	})

	t.Run("ATL reacts faster than CTL", func(t *testing.T) {
		// A rest block then a heavy block: fatigue outpaces fitness.
		loads := append(constantLoads(base, 14, 0), constantLoads(base.AddDate(0, 0, 14), 7, 150)...)
		trend := FitnessTrend(loads)
		last := trend[len(trend)-1]
		if last.ATL <= last.CTL {
			t.Errorf("ATL (%v) should exceed CTL (%v) after a sudden block", last.ATL, last.CTL)
		}
		if last.TSB >= 0 {
			t.Errorf("TSB should be negative after a sudden block, got %v", last.TSB)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if trend := FitnessTrend(nil); trend != nil {
			t.Errorf("expected nil trend for empty loads, got %v", trend)
		}
	})
}

func TestFitnessDeterministic(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loads := append(constantLoads(base, 20, 80), constantLoads(base.AddDate(0, 0, 20), 10, 140)...)

	a := Fitness(loads)
	b := Fitness(loads)
	if a.Value != b.Value || a.Confidence != b.Confidence {
		t.Error("Fitness must be deterministic for identical input")
	}
}
