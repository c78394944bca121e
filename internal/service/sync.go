package service

import (
	"context"
	"fmt"
	"time"

	"runlab/internal/config"
	"runlab/internal/engine"
	"runlab/internal/store"
	"runlab/internal/strava"
)

// snapshotWindowDays is how far back the per-day metric snapshots reach.
// Older history still feeds the models, it just isn't charted.
const snapshotWindowDays = 120

// SyncService orchestrates pulling data from Strava and rebuilding the
// derived training metrics
type SyncService struct {
	client  *strava.Client
	store   *store.DB
	athlete config.AthleteConfig
}

// NewSyncService creates a new sync service
func NewSyncService(client *strava.Client, store *store.DB, athleteCfg config.AthleteConfig) *SyncService {
	return &SyncService{
		client:  client,
		store:   store,
		athlete: athleteCfg,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "details", "loads", "metrics"
	Total           int
	Completed       int
	CurrentActivity string
	Error           error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	DetailsFetched    int
	LoadDays          int
	SnapshotDays      int
	Errors            []error
}

// SyncAll performs a full sync: activities -> details -> derived metrics
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	// Phase 1: Sync activity summaries
	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	// Phase 2: Fetch splits and weather for activities that need them
	if err := s.syncDetails(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing details: %w", err)
	}

	// Phases 3 and 4: Rebuild daily loads and metric snapshots
	if err := s.rebuildDerived(ctx, progress, result); err != nil {
		return result, err
	}

	return result, nil
}

// RebuildDerived recomputes daily loads and metric snapshots from the
// activities already in the store, without touching the Strava API. Used
// after a profile change and by the sync pipeline itself.
func (s *SyncService) RebuildDerived(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}
	if err := s.rebuildDerived(ctx, nil, result); err != nil {
		return result, err
	}
	return result, nil
}

func (s *SyncService) rebuildDerived(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	if err := s.rebuildLoads(ctx, progress, result); err != nil {
		return fmt.Errorf("rebuilding daily loads: %w", err)
	}
	if err := s.rebuildSnapshots(ctx, progress, result); err != nil {
		return fmt.Errorf("rebuilding metric snapshots: %w", err)
	}
	return nil
}

// RateLimitStatus reports the remaining Strava API quota
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	if s.client == nil {
		return 0, 0
	}
	return s.client.RateLimitStatus()
}

// syncActivities fetches new activity summaries from Strava and stores runs
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	lastSyncStr, _ := s.store.GetSyncState("last_activity_sync")
	var after time.Time
	if lastSyncStr != "" {
		after, _ = time.Parse(time.RFC3339, lastSyncStr)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities"}
	}

	page := 1
	perPage := 100

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, perPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if a.Type != "Run" {
				continue
			}
			if err := s.store.UpsertActivity(convertActivity(a)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "activities",
				Total:     result.ActivitiesFetched,
				Completed: result.ActivitiesStored,
			}
		}

		if len(activities) < perPage {
			break // Last page
		}

		page++
	}

	s.store.SetSyncState("last_activity_sync", time.Now().Format(time.RFC3339))

	return nil
}

// syncDetails fetches the detail endpoint for stored runs that have no
// splits yet. Batched to stay inside Strava's rate limits; activities left
// over are picked up by the next sync.
func (s *SyncService) syncDetails(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	ids, err := s.store.ListActivitiesNeedingDetail(50)
	if err != nil {
		return fmt.Errorf("listing activities needing detail: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "details", Total: len(ids)}
	}

	for i, id := range ids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		detail, err := s.client.GetActivityDetail(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("activity %d: %w", id, err))
			continue
		}

		if detail.HasSplits() {
			if err := s.store.ReplaceSplits(id, convertSplits(detail.SplitsMetric)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("saving splits for %d: %w", id, err))
				continue
			}
		}

		// Strava's detail endpoint only carries temperature; humidity and
		// wind stay unknown unless a weather backfill fills them in.
		if err := s.store.SetActivityDetail(id, detail.AverageTemp, nil, nil); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("marking detail for %d: %w", id, err))
			continue
		}

		result.DetailsFetched++

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "details",
				Total:           len(ids),
				Completed:       i + 1,
				CurrentActivity: detail.Name,
			}
		}
	}

	return nil
}

// rebuildLoads recomputes the daily load table from every stored run
func (s *SyncService) rebuildLoads(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "loads"}
	}

	records, phys, err := loadEngineRecords(s.store, s.athlete)
	if err != nil {
		return err
	}

	loads := engine.BuildDailyLoads(records, phys, engine.DefaultTRIMPConfig())
	if err := s.store.ReplaceDailyLoads(toStoreLoads(loads)); err != nil {
		return fmt.Errorf("replacing daily loads: %w", err)
	}
	result.LoadDays = len(loads)

	if progress != nil {
		progress <- SyncProgress{Phase: "loads", Total: len(loads), Completed: len(loads)}
	}

	return nil
}

// rebuildSnapshots recomputes the per-day metric snapshots over the trailing
// window. CTL/ATL/TSB and ACWR are stored for every day so the trend screens
// can chart them; the risk and VO2max columns only carry current values on
// the latest day.
func (s *SyncService) rebuildSnapshots(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rows, err := s.store.ListDailyLoads()
	if err != nil {
		return fmt.Errorf("listing daily loads: %w", err)
	}
	loads := toEngineLoads(rows)
	if len(loads) == 0 {
		return nil
	}

	trend := engine.FitnessTrend(loads)
	if len(trend) > snapshotWindowDays {
		trend = trend[len(trend)-snapshotWindowDays:]
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "metrics", Total: len(trend)}
	}

	records, phys, err := loadEngineRecords(s.store, s.athlete)
	if err != nil {
		return err
	}

	riskCfg := engine.DefaultRiskConfig()
	fitness := engine.Fitness(loads)

	for i, day := range trend {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap := &store.MetricSnapshot{
			Date:       day.Date.Format(dayFormat),
			CTL:        f64(day.CTL),
			ATL:        f64(day.ATL),
			TSB:        f64(day.TSB),
			Confidence: f64(fitness.Confidence),
		}

		acwr := engine.ACWR(loadsThrough(loads, day.Date), riskCfg)
		if acwr.Confidence > 0 {
			snap.ACWR = f64(acwr.Value.Ratio)
		}

		if i == len(trend)-1 {
			risk := engine.AssessInjuryRisk(records, loads, phys, riskCfg)
			snap.RiskScore = f64(risk.Value.OverallScore)
			snap.RiskLevel = risk.Value.Level.String()
			snap.Confidence = f64(engine.CombineConfidence(fitness.Confidence, risk.Confidence))

			points := engine.VO2maxHistory(records, phys, engine.DefaultVO2maxConfig())
			if len(points) > 0 {
				snap.VO2maxRolling = f64(points[len(points)-1].Rolling)
			}
		}

		if err := s.store.UpsertMetricSnapshot(snap); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving snapshot %s: %w", snap.Date, err))
			continue
		}
		result.SnapshotDays++

		if progress != nil && (i+1)%30 == 0 {
			progress <- SyncProgress{Phase: "metrics", Total: len(trend), Completed: i + 1}
		}
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "metrics", Total: len(trend), Completed: len(trend)}
	}

	return nil
}

// loadsThrough returns the prefix of loads on or before day
func loadsThrough(loads []engine.DailyLoad, day time.Time) []engine.DailyLoad {
	for i := len(loads) - 1; i >= 0; i-- {
		if !loads[i].Date.After(day) {
			return loads[:i+1]
		}
	}
	return nil
}

func convertSplits(splits []strava.SplitMetric) []store.Split {
	out := make([]store.Split, len(splits))
	for i, sp := range splits {
		out[i] = store.Split{
			SplitIndex:          sp.Split,
			Distance:            sp.Distance,
			MovingTime:          sp.MovingTime,
			AverageHeartrate:    sp.AverageHeartrate,
			ElevationDifference: sp.ElevationDifference,
		}
	}
	return out
}

func f64(v float64) *float64 {
	return &v
}
