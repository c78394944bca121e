package store

// ReplaceDailyLoads replaces the entire daily load history in one
// transaction. Loads are always rebuilt from scratch after a sync, never
// patched in place.
func (db *DB) ReplaceDailyLoads(loads []DailyLoad) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_loads`); err != nil {
		return err
	}
	for _, l := range loads {
		_, err := tx.Exec(`
			INSERT INTO daily_loads (date, trimp, distance, moving_time, activity_count, computed_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, l.Date, l.TRIMP, l.Distance, l.MovingTime, l.ActivityCount)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListDailyLoads returns the full daily load history ordered by date
// ascending
func (db *DB) ListDailyLoads() ([]DailyLoad, error) {
	rows, err := db.Query(`
		SELECT date, trimp, distance, moving_time, activity_count
		FROM daily_loads
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []DailyLoad
	for rows.Next() {
		var l DailyLoad
		if err := rows.Scan(&l.Date, &l.TRIMP, &l.Distance, &l.MovingTime, &l.ActivityCount); err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}
