package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"collegedunia-scraper/models"
	"collegedunia-scraper/utils"
)

// PostgresWriter mirrors the collected colleges into PostgreSQL for ad-hoc
// querying. Rows are upserted by name, so mirroring after a resumed run
// never produces duplicates.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS colleges (
			id           SERIAL PRIMARY KEY,
			cd_rank      TEXT NOT NULL DEFAULT '',
			name         TEXT UNIQUE NOT NULL,
			city         TEXT NOT NULL DEFAULT '',
			state        TEXT NOT NULL DEFAULT '',
			course_fees  TEXT NOT NULL DEFAULT '',
			placement    TEXT NOT NULL DEFAULT '',
			user_reviews TEXT NOT NULL DEFAULT '',
			ranking      TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_colleges_state ON colleges(state);
		CREATE INDEX IF NOT EXISTS idx_colleges_city  ON colleges(city);
	`)
	return err
}

// Write batch-upserts all colleges, keyed by name.
func (pw *PostgresWriter) Write(colleges []*models.College) error {
	if len(colleges) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(colleges); i += batchSize {
		end := i + batchSize
		if end > len(colleges) {
			end = len(colleges)
		}
		if err := pw.insertBatch(colleges[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.College) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*8)

	for idx, c := range batch {
		base := idx * 8
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			c.Rank, c.Name, c.City, c.State, c.Fees, c.Placement, c.Reviews, c.Ranking)
	}

	query := fmt.Sprintf(`
		INSERT INTO colleges (cd_rank, name, city, state, course_fees, placement, user_reviews, ranking)
		VALUES %s
		ON CONFLICT (name) DO UPDATE SET
			cd_rank      = EXCLUDED.cd_rank,
			city         = EXCLUDED.city,
			state        = EXCLUDED.state,
			course_fees  = EXCLUDED.course_fees,
			placement    = EXCLUDED.placement,
			user_reviews = EXCLUDED.user_reviews,
			ranking      = EXCLUDED.ranking
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
