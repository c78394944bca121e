package strava

import "time"

// Activity represents a Strava activity summary from the API
type Activity struct {
	ID                 int64     `json:"id"`
	Athlete            Athlete   `json:"athlete"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	ElapsedTime        int       `json:"elapsed_time"`         // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       float64   `json:"average_speed"`        // m/s
	MaxSpeed           float64   `json:"max_speed"`            // m/s
	AverageHeartrate   float64   `json:"average_heartrate"`    // bpm
	MaxHeartrate       float64   `json:"max_heartrate"`        // bpm
	HasHeartrate       bool      `json:"has_heartrate"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// DetailedActivity is the full activity response from /activities/{id}.
// The engine only needs the kilometer split summaries and the recorded
// temperature on top of the summary fields.
type DetailedActivity struct {
	Activity
	Calories     float64       `json:"calories"`
	AverageTemp  *float64      `json:"average_temp"` // degrees C, nullable
	SplitsMetric []SplitMetric `json:"splits_metric"`
}

// SplitMetric is one kilometer split summary within a detailed activity
type SplitMetric struct {
	Split               int      `json:"split"` // 1-based index
	Distance            float64  `json:"distance"`
	MovingTime          int      `json:"moving_time"`
	ElapsedTime         int      `json:"elapsed_time"`
	ElevationDifference *float64 `json:"elevation_difference"`
	AverageSpeed        float64  `json:"average_speed"`
	AverageHeartrate    *float64 `json:"average_heartrate"`
}

// HasSplits returns true if the detail carries usable split summaries
func (d *DetailedActivity) HasSplits() bool {
	return d != nil && len(d.SplitsMetric) > 0
}
