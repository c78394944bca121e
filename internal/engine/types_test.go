package engine

import (
	"testing"
	"time"
)

func TestPhysiologyProfileResolve(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		profile   PhysiologyProfile
		resting   float64
		max       float64
		estimated bool
	}{
		{
			name:      "empty profile gets defaults",
			profile:   PhysiologyProfile{},
			resting:   50,
			max:       185,
			estimated: true,
		},
		{
			name: "measured pair is used as-is",
			profile: PhysiologyProfile{
				RestingHR: floatPtr(48),
				MaxHR:     floatPtr(192),
			},
			resting:   48,
			max:       192,
			estimated: false,
		},
		{
			name: "birth year drives the max estimate",
			profile: PhysiologyProfile{
				BirthYear: 1990,
			},
			resting:   50,
			max:       185, // 220 - 35
			estimated: true,
		},
		{
			name: "resting at or above max falls back to defaults",
			profile: PhysiologyProfile{
				RestingHR: floatPtr(95),
				MaxHR:     floatPtr(90),
			},
			resting:   50,
			max:       185,
			estimated: true,
		},
		{
			name: "out-of-range readings are ignored",
			profile: PhysiologyProfile{
				RestingHR: floatPtr(10),  // below any living athlete
				MaxHR:     floatPtr(300), // above any

			},
			resting:   50,
			max:       185,
			estimated: true,
		},
		{
			name: "measured resting with estimated max",
			profile: PhysiologyProfile{
				RestingHR: floatPtr(44),
				BirthYear: 1985,
			},
			resting:   44,
			max:       180, // 220 - 40
			estimated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.Resolve(now)
			if got.RestingHR != tt.resting {
				t.Errorf("RestingHR = %v, want %v", got.RestingHR, tt.resting)
			}
			if got.MaxHR != tt.max {
				t.Errorf("MaxHR = %v, want %v", got.MaxHR, tt.max)
			}
			if got.Estimated != tt.estimated {
				t.Errorf("Estimated = %v, want %v", got.Estimated, tt.estimated)
			}
			if got.Reserve() <= 0 {
				t.Errorf("Reserve = %v, must always resolve positive", got.Reserve())
			}
		})
	}
}

func TestPhysiologyProfileResolveWeight(t *testing.T) {
	now := time.Now()

	if got := (PhysiologyProfile{}).Resolve(now); got.WeightKg != 70 {
		t.Errorf("WeightKg = %v, want default 70", got.WeightKg)
	}
	p := PhysiologyProfile{WeightKg: floatPtr(62.5)}
	if got := p.Resolve(now); got.WeightKg != 62.5 {
		t.Errorf("WeightKg = %v, want 62.5", got.WeightKg)
	}
	p = PhysiologyProfile{WeightKg: floatPtr(500)}
	if got := p.Resolve(now); got.WeightKg != 70 {
		t.Errorf("WeightKg = %v, implausible reading should fall back to 70", got.WeightKg)
	}
}

func TestActivityRecordPace(t *testing.T) {
	tests := []struct {
		name     string
		act      ActivityRecord
		expected float64
	}{
		{"10k in 55 minutes", ActivityRecord{Distance: 10000, MovingTime: 3300}, 330},
		{"no distance", ActivityRecord{MovingTime: 3300}, 0},
		{"no time", ActivityRecord{Distance: 10000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.act.PaceSecPerKm(); got != tt.expected {
				t.Errorf("PaceSecPerKm() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestActivityRecordDay(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	a := ActivityRecord{StartTime: time.Date(2025, 7, 12, 1, 30, 0, 0, loc)}

	want := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	if got := a.Day(); !got.Equal(want) {
		t.Errorf("Day() = %v, want %v (UTC day boundary)", got, want)
	}
}
