package storage

import "collegedunia-scraper/models"

// CollegeWriter is the interface any secondary storage backend must satisfy.
// The CSV checkpoint remains the durable source of truth; writers mirror the
// final collection elsewhere (e.g. PostgreSQL) after a run.
type CollegeWriter interface {
	Write(colleges []*models.College) error
	Close() error
}
