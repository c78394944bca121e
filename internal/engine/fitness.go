package engine

import "time"

// FormStatus classifies training stress balance.
type FormStatus int

const (
	FormNeutral FormStatus = iota
	FormFresh
	FormFatigued
	FormVeryFatigued
)

func (s FormStatus) String() string {
	switch s {
	case FormFresh:
		return "fresh"
	case FormFatigued:
		return "fatigued"
	case FormVeryFatigued:
		return "very-fatigued"
	default:
		return "neutral"
	}
}

// FitnessState is the current chronic/acute load balance. It is derived
// state, always recomputable from the daily load history.
type FitnessState struct {
	CTL            float64
	ATL            float64
	TSB            float64
	Status         FormStatus
	Recommendation string
}

// DailyFitness is one day of the CTL/ATL/TSB trend, used for charting.
type DailyFitness struct {
	Date time.Time
	CTL  float64
	ATL  float64
	TSB  float64
}

const (
	ctlDays = 42
	atlDays = 7

	// minFitnessHistoryDays is the floor below which the model refuses to
	// claim anything about fitness.
	minFitnessHistoryDays = 7
)

// Fitness computes the current CTL/ATL/TSB state from daily load history.
// Histories shorter than seven days soft-fail: the result carries zero
// confidence and a neutral status instead of an error. Confidence ramps
// linearly with history length and saturates at 42 days.
func Fitness(loads []DailyLoad) Result[FitnessState] {
	res := Result[FitnessState]{
		Value:  FitnessState{Status: FormNeutral},
		Method: MethodComposite,
	}

	series := fillDailySeries(loads)
	if len(series) < minFitnessHistoryDays {
		res.flag(FlagInsufficientHist, "fewer than 7 days of load history")
		res.Value.Recommendation = "Not enough training history yet - keep logging runs."
		return res
	}

	values := make([]float64, len(series))
	for i, d := range series {
		values[i] = d.TRIMP
	}

	ctl, err := EWMA(values, ctlDays)
	if err != nil {
		res.flag(FlagInsufficientData, "empty load series")
		return res
	}
	atl, _ := TrailingEWMA(values, atlDays)

	state := FitnessState{CTL: ctl, ATL: atl, TSB: ctl - atl}
	state.Status, state.Recommendation = classifyForm(state)
	res.Value = state
	res.Confidence = clamp01(float64(len(series)) / ctlDays)
	res.Quality.Score = res.Confidence * 100
	return res
}

// FitnessTrend computes the full day-by-day CTL/ATL/TSB series, for charts.
// Both averages run iteratively over the gap-filled series, so each day's
// values match what Fitness would report given history up to that day.
func FitnessTrend(loads []DailyLoad) []DailyFitness {
	series := fillDailySeries(loads)
	if len(series) == 0 {
		return nil
	}

	ctlAlpha := 2.0 / (ctlDays + 1.0)
	atlAlpha := 2.0 / (atlDays + 1.0)

	trend := make([]DailyFitness, 0, len(series))
	var ctl, atl float64
	for i, d := range series {
		if i == 0 {
			ctl = d.TRIMP
			atl = d.TRIMP
		} else {
			ctl += ctlAlpha * (d.TRIMP - ctl)
			atl += atlAlpha * (d.TRIMP - atl)
		}
		trend = append(trend, DailyFitness{Date: d.Date, CTL: ctl, ATL: atl, TSB: ctl - atl})
	}
	return trend
}

// classifyForm maps TSB onto a form status. A completely empty history (all
// loads zero) is neutral with an explicit no-data recommendation rather than
// a fatigue label.
func classifyForm(s FitnessState) (FormStatus, string) {
	if s.TSB == 0 && s.CTL == 0 && s.ATL == 0 {
		return FormNeutral, "No training data - go for a run."
	}
	switch {
	case s.TSB > 25:
		return FormFresh, "Very fresh - race-ready, but fitness may be fading."
	case s.TSB >= -5:
		return FormNeutral, "Balanced - good time to train."
	case s.TSB > -30:
		return FormFatigued, "Carrying fatigue - build in an easy day."
	default:
		return FormVeryFatigued, "Deep fatigue - rest needed."
	}
}

// fillDailySeries expands sparse daily loads into a contiguous day-by-day
// series from first to last date, inserting zero-load rest days. Input order
// does not matter; duplicate dates are summed.
func fillDailySeries(loads []DailyLoad) []DailyLoad {
	if len(loads) == 0 {
		return nil
	}

	byDay := make(map[int64]DailyLoad, len(loads))
	first, last := loads[0].Date, loads[0].Date
	for _, l := range loads {
		day := l.Date.UTC().Truncate(24 * time.Hour)
		agg := byDay[day.Unix()]
		agg.Date = day
		agg.TRIMP += l.TRIMP
		agg.Distance += l.Distance
		agg.MovingTime += l.MovingTime
		agg.Activities += l.Activities
		byDay[day.Unix()] = agg
		if day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}
	first = first.UTC().Truncate(24 * time.Hour)
	last = last.UTC().Truncate(24 * time.Hour)

	var series []DailyLoad
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if agg, ok := byDay[d.Unix()]; ok {
			series = append(series, agg)
		} else {
			series = append(series, DailyLoad{Date: d})
		}
	}
	return series
}
