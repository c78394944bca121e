package store

import (
	"database/sql"
	"errors"
)

// UpsertMetricSnapshot stores or updates the derived metrics for a day
func (db *DB) UpsertMetricSnapshot(s *MetricSnapshot) error {
	var level *string
	if s.RiskLevel != "" {
		level = &s.RiskLevel
	}

	_, err := db.Exec(`
		INSERT INTO metric_snapshots (
			date, ctl, atl, tsb, acwr, risk_score, risk_level,
			vo2max_rolling, confidence, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			ctl = excluded.ctl,
			atl = excluded.atl,
			tsb = excluded.tsb,
			acwr = excluded.acwr,
			risk_score = excluded.risk_score,
			risk_level = excluded.risk_level,
			vo2max_rolling = excluded.vo2max_rolling,
			confidence = excluded.confidence,
			computed_at = CURRENT_TIMESTAMP
	`, s.Date, s.CTL, s.ATL, s.TSB, s.ACWR, s.RiskScore, level,
		s.VO2maxRolling, s.Confidence)
	return err
}

// ListMetricSnapshots returns snapshots for the trailing N days ordered by
// date ascending. A non-positive limit returns the full history.
func (db *DB) ListMetricSnapshots(limit int) ([]MetricSnapshot, error) {
	query := `
		SELECT date, ctl, atl, tsb, acwr, risk_score, risk_level,
			vo2max_rolling, confidence
		FROM metric_snapshots
		ORDER BY date DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []MetricSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Flip to ascending for callers that chart the series.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}

// LatestMetricSnapshot returns the most recent snapshot, or nil when none
// have been computed yet
func (db *DB) LatestMetricSnapshot() (*MetricSnapshot, error) {
	row := db.QueryRow(`
		SELECT date, ctl, atl, tsb, acwr, risk_score, risk_level,
			vo2max_rolling, confidence
		FROM metric_snapshots
		ORDER BY date DESC
		LIMIT 1
	`)

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func scanSnapshot(row rowScanner) (*MetricSnapshot, error) {
	var s MetricSnapshot
	var level *string
	err := row.Scan(&s.Date, &s.CTL, &s.ATL, &s.TSB, &s.ACWR, &s.RiskScore, &level,
		&s.VO2maxRolling, &s.Confidence)
	if err != nil {
		return nil, err
	}
	if level != nil {
		s.RiskLevel = *level
	}
	return &s, nil
}
