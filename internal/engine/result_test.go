package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCombineConfidence(t *testing.T) {
	tests := []struct {
		name     string
		own      float64
		inputs   []float64
		expected float64
	}{
		{"no inputs keeps own", 0.8, nil, 0.8},
		{"weakest input wins", 0.9, []float64{0.7, 0.4, 0.8}, 0.4},
		{"own already lowest", 0.3, []float64{0.7, 0.9}, 0.3},
		{"clamps above one", 1.5, []float64{2.0}, 1.0},
		{"clamps below zero", 0.5, []float64{-0.2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineConfidence(tt.own, tt.inputs...); got != tt.expected {
				t.Errorf("CombineConfidence(%v, %v) = %v, want %v", tt.own, tt.inputs, got, tt.expected)
			}
		})
	}
}

func TestResultJSON(t *testing.T) {
	res := Result[float64]{
		Value:      42.5,
		Confidence: 0.8,
		Method:     MethodHeartRate,
	}
	res.Quality.Score = 80
	res.flag(FlagMissingWeather, "no weather snapshot")
	res.warn("something to know")

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)

	for _, want := range []string{
		`"value":42.5`,
		`"confidence":0.8`,
		`"qualityScore":80`,
		`"calculationMethod":"heart_rate"`,
		`"flags":["missing_weather"]`,
		`"missingDataImpact":["no weather snapshot"]`,
		`"warnings":["something to know"]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s in %s", want, s)
		}
	}
}

func TestResultJSONOmitsEmptyLists(t *testing.T) {
	data, err := json.Marshal(Result[float64]{Value: 1, Confidence: 1, Method: MethodPace})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, absent := range []string{"flags", "missingDataImpact", "warnings"} {
		if strings.Contains(string(data), absent) {
			t.Errorf("clean result should omit %q: %s", absent, data)
		}
	}
}

func TestQualityHas(t *testing.T) {
	var q Quality
	if q.Has(FlagEstimated) {
		t.Error("empty quality should have no flags")
	}
	q.Flags = append(q.Flags, FlagEstimated, FlagMissingHeartRate)
	if !q.Has(FlagMissingHeartRate) {
		t.Error("expected missing-heart-rate flag")
	}
	if q.Has(FlagMissingWeather) {
		t.Error("unexpected missing-weather flag")
	}
}
