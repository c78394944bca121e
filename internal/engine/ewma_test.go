package engine

import (
	"errors"
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestEWMA(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		days     int
		expected float64
		delta    float64
		wantErr  error
	}{
		{
			name:    "empty series",
			values:  nil,
			days:    7,
			wantErr: ErrInsufficientData,
		},
		{
			name:     "single value seeds the average",
			values:   []float64{42},
			days:     7,
			expected: 42,
		},
		{
			name:     "constant series stays constant",
			values:   []float64{100, 100, 100, 100, 100},
			days:     42,
			expected: 100,
		},
		{
			name:   "two values blend by alpha",
			values: []float64{100, 0},
			days:   7,
			// alpha = 2/8 = 0.25; 100 + 0.25*(0-100) = 75
			expected: 75,
		},
		{
			name: "shorter time constant reacts faster",
			// checked against the 42-day case below
			values:   []float64{0, 100},
			days:     7,
			expected: 25,
		},
		{
			name:     "longer time constant reacts slower",
			values:   []float64{0, 100},
			days:     42,
			expected: 100 * 2.0 / 43.0,
			delta:    0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EWMA(tt.values, tt.days)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EWMA() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EWMA() unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("EWMA() = %v, want %v (±%v)", got, tt.expected, tt.delta)
			}
		})
	}
}

func TestTrailing(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	got := Trailing(values, 3)
	if len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Errorf("Trailing(values, 3) = %v, want [3 4 5]", got)
	}

	if got := Trailing(values, 10); len(got) != 5 {
		t.Errorf("Trailing(values, 10) returned %d elements, want all 5", len(got))
	}

	if got := Trailing(values, 0); got != nil {
		t.Errorf("Trailing(values, 0) = %v, want nil", got)
	}
}

func TestTrailingEWMA(t *testing.T) {
	// Only the trailing 7 values should matter: prepend garbage and the
	// result must not change.
	tail := []float64{10, 20, 30, 40, 50, 60, 70}
	full := append([]float64{999, 999, 999}, tail...)

	want, err := EWMA(tail, 7)
	if err != nil {
		t.Fatalf("EWMA(tail): %v", err)
	}
	got, err := TrailingEWMA(full, 7)
	if err != nil {
		t.Fatalf("TrailingEWMA(full): %v", err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TrailingEWMA() = %v, want %v", got, want)
	}
}

func TestRegressionSlope(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
		delta    float64
	}{
		{"too few points", []float64{5}, 0, 0},
		{"flat series", []float64{3, 3, 3, 3}, 0, 1e-9},
		{"unit ramp", []float64{0, 1, 2, 3, 4}, 1, 1e-9},
		{"negative ramp", []float64{10, 8, 6, 4}, -2, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := regressionSlope(tt.values)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("regressionSlope() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if cv := coefficientOfVariation([]float64{5, 5, 5, 5}); cv != 0 {
		t.Errorf("constant series CV = %v, want 0", cv)
	}
	cv := coefficientOfVariation([]float64{90, 110})
	// mean 100, stddev 10
	if math.Abs(cv-0.1) > 1e-9 {
		t.Errorf("CV = %v, want 0.1", cv)
	}
}
