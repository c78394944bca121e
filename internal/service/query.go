package service

import (
	"errors"
	"fmt"
	"time"

	"runlab/internal/config"
	"runlab/internal/engine"
	"runlab/internal/store"
)

// QueryService provides read-only queries for the TUI
type QueryService struct {
	store   *store.DB
	athlete config.AthleteConfig
}

// NewQueryService creates a new query service
func NewQueryService(store *store.DB, athleteCfg config.AthleteConfig) *QueryService {
	return &QueryService{store: store, athlete: athleteCfg}
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	Fitness     engine.Result[engine.FitnessState]
	Risk        engine.Result[engine.InjuryAssessment]
	VO2maxTrend engine.Result[engine.VO2maxTrend]

	// This week (Monday through now)
	WeekRunCount int
	WeekDistance float64 // meters
	WeekTime     int     // seconds
	WeekTRIMP    float64

	RecentActivities []store.Activity
}

// GetDashboardData fetches all data needed for the dashboard
func (q *QueryService) GetDashboardData() (*DashboardData, error) {
	data := &DashboardData{}

	rows, err := q.store.ListDailyLoads()
	if err != nil {
		return nil, fmt.Errorf("listing daily loads: %w", err)
	}
	loads := toEngineLoads(rows)

	records, phys, err := loadEngineRecords(q.store, q.athlete)
	if err != nil {
		return nil, err
	}

	data.Fitness = engine.Fitness(loads)
	data.Risk = engine.AssessInjuryRisk(records, loads, phys, engine.DefaultRiskConfig())

	points := engine.VO2maxHistory(records, phys, engine.DefaultVO2maxConfig())
	data.VO2maxTrend = engine.AssessVO2maxTrend(points, engine.DefaultVO2maxConfig())

	q.fillWeekStats(data, rows)

	recent, err := q.store.ListActivities(7, 0)
	if err != nil {
		return nil, fmt.Errorf("listing recent activities: %w", err)
	}
	data.RecentActivities = recent

	return data, nil
}

// fillWeekStats sums the daily load rows from Monday onward
func (q *QueryService) fillWeekStats(data *DashboardData, rows []store.DailyLoad) {
	now := time.Now()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday counts as the end of the week
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))
	cutoff := monday.Format(dayFormat)

	for _, r := range rows {
		if r.Date < cutoff {
			continue
		}
		data.WeekRunCount += r.ActivityCount
		data.WeekDistance += r.Distance
		data.WeekTime += r.MovingTime
		data.WeekTRIMP += r.TRIMP
	}
}

// TrendData holds the per-day metric series for charting. All slices are
// the same length, oldest first; missing values are carried as zero.
type TrendData struct {
	Dates []string
	CTL   []float64
	ATL   []float64
	TSB   []float64
	ACWR  []float64
}

// GetTrendData returns the trailing days of metric snapshots, oldest first.
// days <= 0 returns the full stored window.
func (q *QueryService) GetTrendData(days int) (*TrendData, error) {
	snaps, err := q.store.ListMetricSnapshots(days)
	if err != nil {
		return nil, fmt.Errorf("listing metric snapshots: %w", err)
	}

	data := &TrendData{}
	for _, s := range snaps {
		data.Dates = append(data.Dates, s.Date)
		data.CTL = append(data.CTL, deref(s.CTL))
		data.ATL = append(data.ATL, deref(s.ATL))
		data.TSB = append(data.TSB, deref(s.TSB))
		data.ACWR = append(data.ACWR, deref(s.ACWR))
	}
	return data, nil
}

// VO2maxSeries is the per-activity estimate history plus the fitted trend
type VO2maxSeries struct {
	Points []engine.VO2maxPoint
	Trend  engine.Result[engine.VO2maxTrend]
}

// GetVO2maxSeries estimates VO2max for every qualifying stored run
func (q *QueryService) GetVO2maxSeries() (*VO2maxSeries, error) {
	records, phys, err := loadEngineRecords(q.store, q.athlete)
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultVO2maxConfig()
	points := engine.VO2maxHistory(records, phys, cfg)
	return &VO2maxSeries{
		Points: points,
		Trend:  engine.AssessVO2maxTrend(points, cfg),
	}, nil
}

// GetRiskReport runs the full injury risk assessment over stored history
func (q *QueryService) GetRiskReport() (engine.Result[engine.InjuryAssessment], error) {
	rows, err := q.store.ListDailyLoads()
	if err != nil {
		return engine.Result[engine.InjuryAssessment]{}, fmt.Errorf("listing daily loads: %w", err)
	}

	records, phys, err := loadEngineRecords(q.store, q.athlete)
	if err != nil {
		return engine.Result[engine.InjuryAssessment]{}, err
	}

	return engine.AssessInjuryRisk(records, toEngineLoads(rows), phys, engine.DefaultRiskConfig()), nil
}

// GetActivitiesList returns stored activities, most recent first
func (q *QueryService) GetActivitiesList(limit, offset int) ([]store.Activity, error) {
	return q.store.ListActivities(limit, offset)
}

// GetTotalActivityCount returns the number of stored activities
func (q *QueryService) GetTotalActivityCount() (int, error) {
	return q.store.CountActivities()
}

// ActivityAnalysis is the full per-activity report: internal load, VO2max
// estimate, condition-normalized pace and aerobic decoupling.
type ActivityAnalysis struct {
	Activity   store.Activity
	Splits     []store.Split
	TRIMP      engine.Result[float64]
	VO2max     engine.Result[float64]
	Pace       engine.Result[engine.PaceAdjustment]
	Decoupling engine.Result[engine.DecouplingResult]
}

// GetActivityAnalysis computes the per-activity report for one stored run
func (q *QueryService) GetActivityAnalysis(id int64) (*ActivityAnalysis, error) {
	activity, err := q.store.GetActivity(id)
	if err != nil {
		return nil, fmt.Errorf("getting activity %d: %w", id, err)
	}
	splits, err := q.store.GetSplits(id)
	if err != nil {
		return nil, fmt.Errorf("getting splits for %d: %w", id, err)
	}

	phys := athleteProfile(q.store, q.athlete).Resolve(time.Now())
	rec := toEngineActivity(*activity, splits)
	envCfg := engine.DefaultEnvConfig()

	return &ActivityAnalysis{
		Activity:   *activity,
		Splits:     splits,
		TRIMP:      engine.TRIMP(rec, phys, engine.DefaultTRIMPConfig()),
		VO2max:     engine.EstimateVO2max(rec, phys, engine.DefaultVO2maxConfig()),
		Pace:       engine.NormalizePace(rec, envCfg),
		Decoupling: engine.Decoupling(rec, envCfg),
	}, nil
}

// GetProfile returns the stored athlete profile, nil when none is saved
func (q *QueryService) GetProfile() (*store.Profile, error) {
	p, err := q.store.GetProfile()
	if err != nil {
		if errors.Is(err, store.ErrNoProfile) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// SaveProfile stores the athlete profile. The caller is expected to rebuild
// derived metrics afterwards since physiology feeds every model.
func (q *QueryService) SaveProfile(p *store.Profile) error {
	return q.store.SaveProfile(p)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
