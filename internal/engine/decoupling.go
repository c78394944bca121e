package engine

// DecouplingGrade classifies aerobic efficiency on long activities.
type DecouplingGrade int

const (
	DecouplingExcellent DecouplingGrade = iota
	DecouplingGood
	DecouplingFair
	DecouplingPoor
)

func (g DecouplingGrade) String() string {
	switch g {
	case DecouplingExcellent:
		return "excellent"
	case DecouplingGood:
		return "good"
	case DecouplingFair:
		return "fair"
	default:
		return "poor"
	}
}

// DecouplingResult compares first-half and second-half efficiency.
type DecouplingResult struct {
	Percent         float64 // raw pace:HR (or pace-only) drift, percent
	AdjustedPercent float64 // after environmental allowance, when weather known
	FirstHalfPace   float64 // sec/km
	SecondHalfPace  float64 // sec/km
	FirstHalfHR     float64 // 0 when heart rate unavailable
	SecondHalfHR    float64
	Grade           DecouplingGrade
	UsedHeartRate   bool
}

// minDecouplingDuration is the floor below which pacing drift says nothing
// about aerobic durability.
const minDecouplingDuration = 3600 // seconds

// Decoupling measures the drift in pace:heart-rate efficiency between the
// first and second half of a long activity, built from its split summaries.
// Positive drift means the second half was less efficient. When heart rate
// is unavailable the raw pace ratio is used instead, at lower confidence.
func Decoupling(a ActivityRecord, env EnvConfig) Result[DecouplingResult] {
	res := Result[DecouplingResult]{Method: MethodComposite}

	if a.MovingTime < minDecouplingDuration {
		res.flag(FlagInsufficientData, "activity shorter than 60 minutes")
		return res
	}
	if len(a.Splits) < 2 {
		res.flag(FlagMissingSplits, "no split summaries; cannot compare halves")
		return res
	}

	first, second := splitHalves(a.Splits)
	r := DecouplingResult{
		FirstHalfPace:  halfPace(first),
		SecondHalfPace: halfPace(second),
		FirstHalfHR:    halfHR(first),
		SecondHalfHR:   halfHR(second),
	}
	if r.FirstHalfPace <= 0 || r.SecondHalfPace <= 0 {
		res.flag(FlagInsufficientData, "splits carry no usable pace")
		return res
	}

	r.UsedHeartRate = r.FirstHalfHR > 0 && r.SecondHalfHR > 0
	if r.UsedHeartRate {
		// Efficiency is speed per beat; slowing down or a rising heart
		// rate both push the drift positive.
		firstEff := 1 / (r.FirstHalfPace * r.FirstHalfHR)
		secondEff := 1 / (r.SecondHalfPace * r.SecondHalfHR)
		r.Percent = (firstEff - secondEff) / firstEff * 100
		res.Method = MethodHeartRate
	} else {
		r.Percent = (r.SecondHalfPace - r.FirstHalfPace) / r.FirstHalfPace * 100
		res.Method = MethodPace
		res.flag(FlagMissingHeartRate, "drift computed from pace only")
	}

	// Hot or humid conditions inflate second-half drift for reasons that
	// are not aerobic fitness; grant back half of the environmental cost.
	r.AdjustedPercent = r.Percent
	if a.Weather != nil {
		if envRes := NormalizePace(a, env); envRes.Confidence > 0 && envRes.Value.Total > 0 {
			allowance := envRes.Value.Total / envRes.Value.ObservedPace * 100 * 0.5
			r.AdjustedPercent = r.Percent - allowance
		}
	} else {
		res.flag(FlagMissingWeather, "decoupling not adjusted for conditions")
	}

	r.Grade = gradeDecoupling(r.AdjustedPercent)

	confidence := 0.5
	if r.UsedHeartRate {
		confidence += 0.25
	}
	// Longer activities give the drift more room to show; saturates at 2h.
	confidence += 0.25 * clamp01(float64(a.MovingTime-minDecouplingDuration)/minDecouplingDuration)
	res.Confidence = confidence
	res.Quality.Score = confidence * 100
	res.Value = r
	return res
}

func gradeDecoupling(pct float64) DecouplingGrade {
	switch {
	case pct < 5:
		return DecouplingExcellent
	case pct < 10:
		return DecouplingGood
	case pct < 15:
		return DecouplingFair
	default:
		return DecouplingPoor
	}
}

// splitHalves divides the splits at the midpoint of cumulative moving time.
func splitHalves(splits []Split) (first, second []Split) {
	total := 0
	for _, s := range splits {
		total += s.MovingTime
	}
	half := total / 2

	elapsed := 0
	for i, s := range splits {
		if elapsed >= half && i > 0 {
			return splits[:i], splits[i:]
		}
		elapsed += s.MovingTime
	}
	mid := len(splits) / 2
	return splits[:mid], splits[mid:]
}

func halfPace(splits []Split) float64 {
	var dist float64
	var dur int
	for _, s := range splits {
		dist += s.Distance
		dur += s.MovingTime
	}
	if dist <= 0 || dur <= 0 {
		return 0
	}
	return float64(dur) / (dist / 1000)
}

func halfHR(splits []Split) float64 {
	var sum, weight float64
	for _, s := range splits {
		if s.AvgHeartrate == nil || *s.AvgHeartrate <= 0 {
			continue
		}
		w := float64(s.MovingTime)
		sum += *s.AvgHeartrate * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
