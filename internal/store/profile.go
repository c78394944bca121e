package store

import (
	"database/sql"
	"errors"
	"time"
)

// GetProfile retrieves the stored athlete physiology
func (db *DB) GetProfile() (*Profile, error) {
	row := db.QueryRow(`
		SELECT resting_hr, max_hr, weight_kg, birth_year, sex, updated_at
		FROM profile
		WHERE id = 1
	`)

	var p Profile
	var birthYear *int64
	var sex *string
	var updatedAt string
	err := row.Scan(&p.RestingHR, &p.MaxHR, &p.WeightKg, &birthYear, &sex, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}

	if birthYear != nil {
		p.BirthYear = int(*birthYear)
	}
	if sex != nil {
		p.Sex = *sex
	}
	if t, err := time.Parse("2006-01-02 15:04:05", updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

// SaveProfile stores or updates the athlete physiology
func (db *DB) SaveProfile(p *Profile) error {
	var birthYear *int
	if p.BirthYear != 0 {
		birthYear = &p.BirthYear
	}
	var sex *string
	if p.Sex != "" {
		sex = &p.Sex
	}

	_, err := db.Exec(`
		INSERT INTO profile (id, resting_hr, max_hr, weight_kg, birth_year, sex, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			resting_hr = excluded.resting_hr,
			max_hr = excluded.max_hr,
			weight_kg = excluded.weight_kg,
			birth_year = excluded.birth_year,
			sex = excluded.sex,
			updated_at = CURRENT_TIMESTAMP
	`, p.RestingHR, p.MaxHR, p.WeightKg, birthYear, sex)
	return err
}
