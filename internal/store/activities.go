package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const activityColumns = `id, athlete_id, name, type, start_date, start_date_local, timezone,
	distance, moving_time, elapsed_time, total_elevation_gain,
	average_speed, max_speed, average_heartrate, max_heartrate,
	has_heartrate, temp_c, humidity_pct, wind_kmh, detail_synced`

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(a *Activity) error {
	_, err := db.Exec(`
		INSERT INTO activities (
			id, athlete_id, name, type, start_date, start_date_local, timezone,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_speed, max_speed, average_heartrate, max_heartrate,
			has_heartrate, temp_c, humidity_pct, wind_kmh, detail_synced, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			timezone = excluded.timezone,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			max_speed = excluded.max_speed,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			has_heartrate = excluded.has_heartrate,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Type,
		a.StartDate.Format(time.RFC3339), a.StartDateLocal.Format(time.RFC3339), a.Timezone,
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
		a.AverageSpeed, a.MaxSpeed, a.AverageHeartrate, a.MaxHeartrate,
		boolToInt(a.HasHeartrate), a.TempC, a.HumidityPct, a.WindKmh, boolToInt(a.DetailSynced),
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id int64) (*Activity, error) {
	row := db.QueryRow(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE id = ?
	`, id)
	return scanActivity(row)
}

// ListActivities returns activities ordered by start date descending
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		ORDER BY start_date DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// ListActivitiesSince returns activities on or after the given time,
// ordered by start date ascending, the order the engine expects
func (db *DB) ListActivitiesSince(since time.Time) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE start_date >= ?
		ORDER BY start_date ASC
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// CountActivities returns the total number of stored activities
func (db *DB) CountActivities() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

// ListActivitiesNeedingDetail returns IDs of activities whose detail
// (splits, weather) has not been fetched yet, oldest first
func (db *DB) ListActivitiesNeedingDetail(limit int) ([]int64, error) {
	rows, err := db.Query(`
		SELECT id FROM activities
		WHERE detail_synced = 0
		ORDER BY start_date ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetActivityDetail records the weather snapshot from a detail fetch and
// marks the activity as detail-synced. Nil weather fields are stored as NULL.
func (db *DB) SetActivityDetail(id int64, tempC, humidityPct, windKmh *float64) error {
	result, err := db.Exec(`
		UPDATE activities
		SET temp_c = ?, humidity_pct = ?, wind_kmh = ?, detail_synced = 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, tempC, humidityPct, windKmh, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// ReplaceSplits replaces all split summaries for an activity in one
// transaction
func (db *DB) ReplaceSplits(activityID int64, splits []Split) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM activity_splits WHERE activity_id = ?`, activityID); err != nil {
		return err
	}
	for _, s := range splits {
		_, err := tx.Exec(`
			INSERT INTO activity_splits (
				activity_id, split_index, distance, moving_time,
				average_heartrate, elevation_difference
			) VALUES (?, ?, ?, ?, ?, ?)
		`, activityID, s.SplitIndex, s.Distance, s.MovingTime, s.AverageHeartrate, s.ElevationDifference)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSplits returns the split summaries for an activity ordered by index
func (db *DB) GetSplits(activityID int64) ([]Split, error) {
	rows, err := db.Query(`
		SELECT activity_id, split_index, distance, moving_time,
			average_heartrate, elevation_difference
		FROM activity_splits
		WHERE activity_id = ?
		ORDER BY split_index ASC
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []Split
	for rows.Next() {
		var s Split
		if err := rows.Scan(&s.ActivityID, &s.SplitIndex, &s.Distance, &s.MovingTime,
			&s.AverageHeartrate, &s.ElevationDifference); err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

// GetSplitsForActivities retrieves splits for multiple activities in a single
// query, keyed by activity ID and ordered by split index
func (db *DB) GetSplitsForActivities(activityIDs []int64) (map[int64][]Split, error) {
	result := make(map[int64][]Split)
	if len(activityIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT activity_id, split_index, distance, moving_time,
			average_heartrate, elevation_difference
		FROM activity_splits
		WHERE activity_id IN (`
	args := make([]interface{}, len(activityIDs))
	for i, id := range activityIDs {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = id
	}
	query += `) ORDER BY activity_id, split_index ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s Split
		if err := rows.Scan(&s.ActivityID, &s.SplitIndex, &s.Distance, &s.MovingTime,
			&s.AverageHeartrate, &s.ElevationDifference); err != nil {
			return nil, err
		}
		result[s.ActivityID] = append(result[s.ActivityID], s)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivityFields(row rowScanner) (*Activity, error) {
	var a Activity
	var startDate, startDateLocal string
	var timezone *string
	var totalElevationGain, averageSpeed, maxSpeed *float64
	var hasHR, detailSynced int64

	err := row.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.Type, &startDate, &startDateLocal, &timezone,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &totalElevationGain,
		&averageSpeed, &maxSpeed, &a.AverageHeartrate, &a.MaxHeartrate,
		&hasHR, &a.TempC, &a.HumidityPct, &a.WindKmh, &detailSynced,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.StartDateLocal, err = time.Parse(time.RFC3339, startDateLocal)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date_local %q: %w", startDateLocal, err)
	}

	if timezone != nil {
		a.Timezone = *timezone
	}
	if totalElevationGain != nil {
		a.TotalElevationGain = *totalElevationGain
	}
	if averageSpeed != nil {
		a.AverageSpeed = *averageSpeed
	}
	if maxSpeed != nil {
		a.MaxSpeed = *maxSpeed
	}
	a.HasHeartrate = hasHR == 1
	a.DetailSynced = detailSynced == 1

	return &a, nil
}

func scanActivity(row *sql.Row) (*Activity, error) {
	a, err := scanActivityFields(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

func collectActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		a, err := scanActivityFields(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
