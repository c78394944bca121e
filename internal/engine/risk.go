package engine

import (
	"fmt"
	"math"
	"time"
)

// ACWRBand classifies the acute:chronic workload ratio.
type ACWRBand int

const (
	ACWROptimal ACWRBand = iota
	ACWRCaution
	ACWRHighRisk
	ACWRDetraining
)

func (b ACWRBand) String() string {
	switch b {
	case ACWRCaution:
		return "caution"
	case ACWRHighRisk:
		return "high-risk"
	case ACWRDetraining:
		return "detraining"
	default:
		return "optimal"
	}
}

// Severity buckets a 0-100 risk score. Cut-points are monotonic:
// <30 low, 30-55 moderate, 55-80 high, >80 critical.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityModerate
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityModerate:
		return "moderate"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "low"
	}
}

// RiskFactorKind names the composite assessment's individual factors.
type RiskFactorKind int

const (
	FactorLoadSpike RiskFactorKind = iota
	FactorPerformanceDecline
	FactorHeartRateAnomaly
	FactorPaceConsistency
	FactorRecoveryPattern
)

func (k RiskFactorKind) String() string {
	switch k {
	case FactorLoadSpike:
		return "training-load-spike"
	case FactorPerformanceDecline:
		return "performance-decline"
	case FactorHeartRateAnomaly:
		return "heart-rate-anomaly"
	case FactorPaceConsistency:
		return "pace-consistency"
	default:
		return "recovery-pattern"
	}
}

// OverreachingStatus is the training-stress ladder. It is recomputed fresh
// from the full history window on every call, never transitioned
// incrementally.
type OverreachingStatus int

const (
	OverreachingNormal OverreachingStatus = iota
	OverreachingFunctional
	OverreachingNonFunctional
	Overtraining
)

func (o OverreachingStatus) String() string {
	switch o {
	case OverreachingFunctional:
		return "functional"
	case OverreachingNonFunctional:
		return "non-functional"
	case Overtraining:
		return "overtraining"
	default:
		return "normal"
	}
}

// RiskConfig holds the thresholds and weights of the injury-risk model.
// The cut-points are empirical; their ordering is what the model relies on.
type RiskConfig struct {
	OptimalLow   float64 // ACWR lower bound of the optimal band
	OptimalHigh  float64 // ACWR upper bound of the optimal band
	HighRisk     float64 // ACWR above this is high-risk
	DetrainAcute float64 // acute daily load below this can count as detraining

	ModerateScore float64
	HighScore     float64
	CriticalScore float64

	SpikeWeight       float64
	DeclineWeight     float64
	HRAnomalyWeight   float64
	ConsistencyWeight float64
	RecoveryWeight    float64
}

// DefaultRiskConfig returns the documented thresholds.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		OptimalLow:   0.8,
		OptimalHigh:  1.3,
		HighRisk:     1.5,
		DetrainAcute: 1.0,

		ModerateScore: 30,
		HighScore:     55,
		CriticalScore: 80,

		SpikeWeight:       0.30,
		DeclineWeight:     0.20,
		HRAnomalyWeight:   0.20,
		ConsistencyWeight: 0.15,
		RecoveryWeight:    0.15,
	}
}

func (c RiskConfig) severity(score float64) Severity {
	switch {
	case score > c.CriticalScore:
		return SeverityCritical
	case score > c.HighScore:
		return SeverityHigh
	case score >= c.ModerateScore:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// ACWRResult carries the workload ratio and its inputs.
type ACWRResult struct {
	Ratio   float64
	Acute   float64 // mean daily load over trailing 7 days
	Chronic float64 // mean daily load over trailing 28 days
	Band    ACWRBand
}

const acwrRatioCap = 9.99

// ACWR computes the acute:chronic workload ratio from daily load history.
// Acute is the trailing 7-day mean, chronic the trailing 28-day mean, both
// over the gap-filled series. A chronic load of zero with recent training
// caps the ratio rather than dividing by zero.
func ACWR(loads []DailyLoad, cfg RiskConfig) Result[ACWRResult] {
	res := Result[ACWRResult]{Method: MethodComposite}

	series := fillDailySeries(loads)
	if len(series) < minFitnessHistoryDays {
		res.flag(FlagInsufficientHist, "fewer than 7 days of load history")
		return res
	}

	values := make([]float64, len(series))
	for i, d := range series {
		values[i] = d.TRIMP
	}

	acute := mean(Trailing(values, 7))
	chronic := mean(Trailing(values, 28))

	r := ACWRResult{Acute: acute, Chronic: chronic}
	switch {
	case chronic > 0:
		r.Ratio = clampFloat(acute/chronic, 0, acwrRatioCap)
	case acute > 0:
		r.Ratio = acwrRatioCap
	}

	switch {
	case r.Ratio > cfg.HighRisk:
		r.Band = ACWRHighRisk
	case r.Ratio > cfg.OptimalHigh:
		r.Band = ACWRCaution
	case r.Ratio < cfg.OptimalLow && acute < cfg.DetrainAcute:
		r.Band = ACWRDetraining
	case r.Ratio < cfg.OptimalLow:
		r.Band = ACWRCaution
	default:
		r.Band = ACWROptimal
	}

	res.Value = r
	res.Confidence = clamp01(float64(len(series)) / 28.0)
	res.Quality.Score = res.Confidence * 100
	return res
}

// RiskFactor is one scored component of the composite assessment.
type RiskFactor struct {
	Kind     RiskFactorKind
	Score    float64 // 0..100
	Severity Severity
	Detail   string
	// HasData marks whether the history contained enough signal to score
	// this factor; unscored factors are excluded from the weighted overall
	// rather than pulling it toward zero.
	HasData bool
}

// InjuryAssessment is the composite injury-risk picture.
type InjuryAssessment struct {
	ACWR         ACWRResult
	Factors      []RiskFactor
	OverallScore float64
	Level        Severity
	Overreaching OverreachingStatus
}

// AssessInjuryRisk scores the five composite risk factors over the supplied
// history and derives an overall level plus the overreaching status.
// Activities must be in chronological order.
func AssessInjuryRisk(activities []ActivityRecord, loads []DailyLoad, phys Physiology, cfg RiskConfig) Result[InjuryAssessment] {
	res := Result[InjuryAssessment]{Method: MethodComposite}

	acwr := ACWR(loads, cfg)
	if acwr.Confidence == 0 {
		res.flag(FlagInsufficientHist, "not enough history for a risk assessment")
		res.Value.Overreaching = OverreachingNormal
		return res
	}
	res.Value.ACWR = acwr.Value

	now := latestDay(loads)
	decline := performanceDeclineFactor(activities, phys, now)
	factors := []RiskFactor{
		loadSpikeFactor(acwr.Value, cfg),
		decline,
		heartRateAnomalyFactor(activities, now),
		paceConsistencyFactor(activities, phys, now),
		recoveryPatternFactor(loads),
	}
	for i := range factors {
		factors[i].Severity = cfg.severity(factors[i].Score)
	}
	res.Value.Factors = factors

	var weighted, totalWeight float64
	weights := map[RiskFactorKind]float64{
		FactorLoadSpike:          cfg.SpikeWeight,
		FactorPerformanceDecline: cfg.DeclineWeight,
		FactorHeartRateAnomaly:   cfg.HRAnomalyWeight,
		FactorPaceConsistency:    cfg.ConsistencyWeight,
		FactorRecoveryPattern:    cfg.RecoveryWeight,
	}
	for _, f := range factors {
		if !f.HasData {
			res.Quality.MissingDataImpact = append(res.Quality.MissingDataImpact,
				fmt.Sprintf("%s not scored: insufficient data", f.Kind))
			continue
		}
		w := weights[f.Kind]
		weighted += f.Score * w
		totalWeight += w
	}
	if totalWeight > 0 {
		res.Value.OverallScore = weighted / totalWeight
	}
	res.Value.Level = cfg.severity(res.Value.OverallScore)
	res.Value.Overreaching = overreachingStatus(loads, decline)

	scored := 0
	for _, f := range factors {
		if f.HasData {
			scored++
		}
	}
	res.Confidence = CombineConfidence(float64(scored)/float64(len(factors)), acwr.Confidence)
	res.Quality.Score = res.Confidence * 100
	return res
}

// loadSpikeFactor scores how far the workload ratio sits from the optimal
// band. Monotonically increasing with distance from 1.05 in either
// direction, steeper on the spike side.
func loadSpikeFactor(acwr ACWRResult, cfg RiskConfig) RiskFactor {
	f := RiskFactor{Kind: FactorLoadSpike, HasData: true}

	r := acwr.Ratio
	switch {
	case r > cfg.HighRisk:
		f.Score = 55 + clampFloat((r-cfg.HighRisk)/0.5, 0, 1)*45
		f.Detail = fmt.Sprintf("acute load %.1fx chronic - sharp spike", r)
	case r > cfg.OptimalHigh:
		f.Score = 30 + (r-cfg.OptimalHigh)/(cfg.HighRisk-cfg.OptimalHigh)*25
		f.Detail = fmt.Sprintf("acute load %.1fx chronic - ramping quickly", r)
	case r < cfg.OptimalLow:
		f.Score = 15 + clampFloat((cfg.OptimalLow-r)/cfg.OptimalLow, 0, 1)*15
		f.Detail = "training load well below chronic baseline"
	default:
		f.Score = clampFloat(math.Abs(r-1.05)/0.25, 0, 1) * 15
		f.Detail = "workload ratio in the optimal band"
	}
	return f
}

// performanceDeclineFactor looks for pace slowing at matched heart-rate
// effort: a positive trend in sec-per-km-per-bpm over the trailing 42 days.
func performanceDeclineFactor(activities []ActivityRecord, phys Physiology, now time.Time) RiskFactor {
	f := RiskFactor{Kind: FactorPerformanceDecline}

	efs := effortPaceSeries(activities, phys, now, 42)
	if len(efs) < 4 {
		f.Detail = "not enough heart-rate runs to detect a trend"
		return f
	}
	f.HasData = true

	slope := regressionSlope(efs)
	m := mean(efs)
	if m <= 0 {
		return f
	}
	// Relative drift per activity; 2% per activity saturates the score.
	rel := slope / m
	f.Score = clampFloat(rel/0.02, 0, 1) * 100
	if rel > 0 {
		f.Detail = fmt.Sprintf("pace at matched effort slowing %.1f%% per run", rel*100)
	} else {
		f.Detail = "pace at matched effort holding or improving"
	}
	return f
}

// heartRateAnomalyFactor compares the trailing week's average exercise HR to
// the trailing month's. A sustained upward drift at similar training is an
// early overload signal.
func heartRateAnomalyFactor(activities []ActivityRecord, now time.Time) RiskFactor {
	f := RiskFactor{Kind: FactorHeartRateAnomaly}

	var recent, baseline []float64
	for _, a := range activities {
		if a.AvgHeartrate == nil {
			continue
		}
		age := now.Sub(a.Day())
		if age < 0 || age > 28*24*time.Hour {
			continue
		}
		baseline = append(baseline, *a.AvgHeartrate)
		if age <= 7*24*time.Hour {
			recent = append(recent, *a.AvgHeartrate)
		}
	}
	if len(recent) < 2 || len(baseline) < 4 {
		f.Detail = "not enough heart-rate data to compare weeks"
		return f
	}
	f.HasData = true

	base := mean(baseline)
	if base <= 0 {
		return f
	}
	drift := (mean(recent) - base) / base
	if drift <= 0 {
		f.Detail = "exercise heart rate stable"
		return f
	}
	// 8% elevation saturates the score.
	f.Score = clampFloat(drift/0.08, 0, 1) * 100
	f.Detail = fmt.Sprintf("exercise heart rate %.1f%% above monthly baseline", drift*100)
	return f
}

// paceConsistencyFactor scores the coefficient of variation of easy-effort
// pace over the trailing 28 days. Erratic pacing at easy effort correlates
// with accumulating fatigue.
func paceConsistencyFactor(activities []ActivityRecord, phys Physiology, now time.Time) RiskFactor {
	f := RiskFactor{Kind: FactorPaceConsistency}

	var paces []float64
	for _, a := range activities {
		age := now.Sub(a.Day())
		if age < 0 || age > 28*24*time.Hour {
			continue
		}
		pace := a.PaceSecPerKm()
		if pace <= 0 {
			continue
		}
		if a.AvgHeartrate != nil && phys.Reserve() > 0 {
			frac := (*a.AvgHeartrate - phys.RestingHR) / phys.Reserve()
			if frac > 0.85 {
				continue // workouts and races are expected to vary
			}
		}
		paces = append(paces, pace)
	}
	if len(paces) < 4 {
		f.Detail = "not enough easy runs to measure consistency"
		return f
	}
	f.HasData = true

	cv := coefficientOfVariation(paces)
	// CV 5% is normal, 25% saturates.
	f.Score = clampFloat((cv-0.05)/0.20, 0, 1) * 100
	f.Detail = fmt.Sprintf("easy pace variation %.0f%%", cv*100)
	return f
}

// recoveryPatternFactor scores rest-day frequency against load over the
// trailing 14 days. Heavy load with no rest days scores highest.
func recoveryPatternFactor(loads []DailyLoad) RiskFactor {
	f := RiskFactor{Kind: FactorRecoveryPattern}

	series := fillDailySeries(loads)
	if len(series) < 7 {
		f.Detail = "not enough history to judge recovery"
		return f
	}
	f.HasData = true

	window := Trailing(series, 14)
	restDays := 0
	var total float64
	for _, d := range window {
		if d.TRIMP == 0 {
			restDays++
		}
		total += d.TRIMP
	}
	avgDaily := total / float64(len(window))

	// Two rest days per fortnight is the baseline expectation; the deficit
	// is scaled by how heavy the training actually is.
	restDeficit := clampFloat((2-float64(restDays))/2, 0, 1)
	loadFactor := clampFloat(avgDaily/120, 0, 1)
	f.Score = restDeficit * (40 + 60*loadFactor)
	f.Detail = fmt.Sprintf("%d rest days in the last %d", restDays, len(window))
	return f
}

// overreachingStatus walks the normal -> functional -> non-functional ->
// overtraining ladder from the trailing TSB series plus the performance
// trend. Thresholds are consecutive-day counts so the ladder is monotonic in
// both sustained negative TSB and decline.
func overreachingStatus(loads []DailyLoad, decline RiskFactor) OverreachingStatus {
	trend := FitnessTrend(loads)
	if len(trend) == 0 {
		return OverreachingNormal
	}

	below10, below20 := 0, 0
	for i := len(trend) - 1; i >= 0; i-- {
		if trend[i].TSB < -10 {
			below10++
		} else {
			break
		}
	}
	for i := len(trend) - 1; i >= 0; i-- {
		if trend[i].TSB < -20 {
			below20++
		} else {
			break
		}
	}

	declining := decline.HasData && decline.Score > 40

	switch {
	case below20 >= 21 && declining:
		return Overtraining
	case below10 >= 14 && declining:
		return OverreachingNonFunctional
	case below10 >= 7:
		return OverreachingFunctional
	default:
		return OverreachingNormal
	}
}

// effortPaceSeries extracts sec-per-km-per-bpm for heart-rate activities in
// the trailing window, ordered as supplied (chronological).
func effortPaceSeries(activities []ActivityRecord, phys Physiology, now time.Time, windowDays int) []float64 {
	var out []float64
	for _, a := range activities {
		if a.AvgHeartrate == nil || *a.AvgHeartrate <= 0 {
			continue
		}
		age := now.Sub(a.Day())
		if age < 0 || age > time.Duration(windowDays)*24*time.Hour {
			continue
		}
		pace := a.PaceSecPerKm()
		if pace <= 0 {
			continue
		}
		out = append(out, pace / *a.AvgHeartrate)
	}
	return out
}

func latestDay(loads []DailyLoad) time.Time {
	var latest time.Time
	for _, l := range loads {
		if l.Date.After(latest) {
			latest = l.Date
		}
	}
	return latest.UTC().Truncate(24 * time.Hour)
}
