package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Activity represents a Strava activity summary plus the weather snapshot
// attached when its detail was synced
type Activity struct {
	ID                 int64
	AthleteID          int64
	Name               string
	Type               string
	StartDate          time.Time
	StartDateLocal     time.Time
	Timezone           string
	Distance           float64 // meters
	MovingTime         int     // seconds
	ElapsedTime        int     // seconds
	TotalElevationGain float64
	AverageSpeed       float64  // m/s
	MaxSpeed           float64  // m/s
	AverageHeartrate   *float64 // nullable
	MaxHeartrate       *float64 // nullable
	HasHeartrate       bool
	TempC              *float64 // nullable, from detail sync
	HumidityPct        *float64
	WindKmh            *float64
	DetailSynced       bool
}

// Split represents one kilometer split summary within an activity
type Split struct {
	ActivityID          int64
	SplitIndex          int
	Distance            float64 // meters
	MovingTime          int     // seconds
	AverageHeartrate    *float64
	ElevationDifference *float64
}

// Profile represents the athlete's stored physiology. All fields are
// nullable; resolution to usable values happens in the engine.
type Profile struct {
	RestingHR *float64
	MaxHR     *float64
	WeightKg  *float64
	BirthYear int
	Sex       string // "", "male", "female"
	UpdatedAt time.Time
}

// DailyLoad represents one calendar day's aggregated training load
type DailyLoad struct {
	Date          string // YYYY-MM-DD
	TRIMP         float64
	Distance      float64 // meters
	MovingTime    int     // seconds
	ActivityCount int
}

// MetricSnapshot represents the derived metrics as of one calendar day
type MetricSnapshot struct {
	Date          string // YYYY-MM-DD
	CTL           *float64
	ATL           *float64
	TSB           *float64
	ACWR          *float64
	RiskScore     *float64
	RiskLevel     string
	VO2maxRolling *float64
	Confidence    *float64
}
