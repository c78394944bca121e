package service

import (
	"errors"
	"fmt"
	"time"

	"runlab/internal/config"
	"runlab/internal/engine"
	"runlab/internal/store"
	"runlab/internal/strava"
)

// convertActivity maps a Strava summary onto the storage model
func convertActivity(a strava.Activity) *store.Activity {
	out := &store.Activity{
		ID:                 a.ID,
		AthleteID:          a.Athlete.ID,
		Name:               a.Name,
		Type:               a.Type,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		Timezone:           a.Timezone,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		HasHeartrate:       a.HasHeartrate,
	}
	if a.HasHeartrate {
		avg, max := a.AverageHeartrate, a.MaxHeartrate
		if avg > 0 {
			out.AverageHeartrate = &avg
		}
		if max > 0 {
			out.MaxHeartrate = &max
		}
	}
	return out
}

// toEngineActivity maps a stored activity and its splits to the record the
// engine consumes. The weather snapshot is only attached when temperature
// is known; the normalizer treats absent weather as zero-confidence.
func toEngineActivity(a store.Activity, splits []store.Split) engine.ActivityRecord {
	rec := engine.ActivityRecord{
		ID:            a.ID,
		StartTime:     a.StartDate,
		Distance:      a.Distance,
		MovingTime:    a.MovingTime,
		ElevationGain: a.TotalElevationGain,
		AvgHeartrate:  a.AverageHeartrate,
		MaxHeartrate:  a.MaxHeartrate,
	}

	if a.TempC != nil {
		w := engine.Weather{TempC: *a.TempC}
		if a.HumidityPct != nil {
			w.HumidityPct = *a.HumidityPct
		}
		if a.WindKmh != nil {
			w.WindKmh = *a.WindKmh
		}
		rec.Weather = &w
	}

	for _, s := range splits {
		rec.Splits = append(rec.Splits, engine.Split{
			Distance:     s.Distance,
			MovingTime:   s.MovingTime,
			AvgHeartrate: s.AverageHeartrate,
		})
	}
	return rec
}

func parseSex(s string) engine.Sex {
	switch s {
	case "male":
		return engine.SexMale
	case "female":
		return engine.SexFemale
	default:
		return engine.SexUnspecified
	}
}

// athleteProfile builds the physiology profile: the stored profile wins,
// the config athlete block fills the holes.
func athleteProfile(db *store.DB, athlete config.AthleteConfig) engine.PhysiologyProfile {
	p := engine.PhysiologyProfile{
		BirthYear: athlete.BirthYear,
		Sex:       parseSex(athlete.Sex),
	}
	if athlete.RestingHR > 0 {
		v := athlete.RestingHR
		p.RestingHR = &v
	}
	if athlete.MaxHR > 0 {
		v := athlete.MaxHR
		p.MaxHR = &v
	}
	if athlete.WeightKg > 0 {
		v := athlete.WeightKg
		p.WeightKg = &v
	}

	stored, err := db.GetProfile()
	if err != nil {
		if !errors.Is(err, store.ErrNoProfile) {
			// Unreadable profile: fall back to the config block.
			return p
		}
		return p
	}

	if stored.RestingHR != nil {
		p.RestingHR = stored.RestingHR
	}
	if stored.MaxHR != nil {
		p.MaxHR = stored.MaxHR
	}
	if stored.WeightKg != nil {
		p.WeightKg = stored.WeightKg
	}
	if stored.BirthYear != 0 {
		p.BirthYear = stored.BirthYear
	}
	if stored.Sex != "" {
		p.Sex = parseSex(stored.Sex)
	}
	p.UpdatedAt = stored.UpdatedAt
	return p
}

const dayFormat = "2006-01-02"

// loadEngineRecords loads every stored run as an engine record, splits
// attached, in chronological order, together with the resolved physiology.
func loadEngineRecords(db *store.DB, athlete config.AthleteConfig) ([]engine.ActivityRecord, engine.Physiology, error) {
	phys := athleteProfile(db, athlete).Resolve(time.Now())

	activities, err := db.ListActivitiesSince(time.Time{})
	if err != nil {
		return nil, phys, fmt.Errorf("listing activities: %w", err)
	}

	ids := make([]int64, 0, len(activities))
	for _, a := range activities {
		if a.DetailSynced {
			ids = append(ids, a.ID)
		}
	}
	splitsByID, err := db.GetSplitsForActivities(ids)
	if err != nil {
		return nil, phys, fmt.Errorf("loading splits: %w", err)
	}

	records := make([]engine.ActivityRecord, 0, len(activities))
	for _, a := range activities {
		records = append(records, toEngineActivity(a, splitsByID[a.ID]))
	}
	return records, phys, nil
}

// toStoreLoads maps engine daily loads onto storage rows
func toStoreLoads(loads []engine.DailyLoad) []store.DailyLoad {
	out := make([]store.DailyLoad, len(loads))
	for i, l := range loads {
		out[i] = store.DailyLoad{
			Date:          l.Date.Format(dayFormat),
			TRIMP:         l.TRIMP,
			Distance:      l.Distance,
			MovingTime:    l.MovingTime,
			ActivityCount: l.Activities,
		}
	}
	return out
}

// toEngineLoads maps storage rows back to engine daily loads, skipping rows
// whose date does not parse
func toEngineLoads(rows []store.DailyLoad) []engine.DailyLoad {
	out := make([]engine.DailyLoad, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse(dayFormat, r.Date)
		if err != nil {
			continue
		}
		out = append(out, engine.DailyLoad{
			Date:       date,
			TRIMP:      r.TRIMP,
			Distance:   r.Distance,
			MovingTime: r.MovingTime,
			Activities: r.ActivityCount,
		})
	}
	return out
}
