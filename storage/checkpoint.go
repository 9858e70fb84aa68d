package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"collegedunia-scraper/models"
)

// checkpointHeader is the fixed column set of the checkpoint file. Order
// matters: rows are read and written positionally.
var checkpointHeader = []string{
	"cd_rank", "college_name", "city", "state",
	"course_fees", "placement", "user_reviews", "ranking",
}

// Checkpoint durably writes the full collection to the store's CSV file.
// The previous checkpoint is replaced atomically (write to a temp file in
// the same directory, then rename), so a crash mid-write never corrupts the
// prior snapshot.
func (s *Store) Checkpoint() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("checkpoint: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".colleges-*.csv")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeColleges(tmp, s.colleges); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: write %q: %w", tmpName, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: sync %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: close %q: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: replace %q: %w", s.path, err)
	}
	return nil
}

func writeColleges(f *os.File, colleges []*models.College) error {
	w := csv.NewWriter(f)

	if err := w.Write(checkpointHeader); err != nil {
		return err
	}
	for _, c := range colleges {
		row := []string{c.Rank, c.Name, c.City, c.State, c.Fees, c.Placement, c.Reviews, c.Ranking}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// Load reconstructs a store from the checkpoint at path, rebuilding the name
// index from the loaded rows. A missing checkpoint yields an empty store.
func Load(path string) (*Store, error) {
	s := NewStore(path)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %q: %w", path, err)
	}
	if len(rows) == 0 {
		return s, nil
	}
	if len(rows[0]) != len(checkpointHeader) {
		return nil, fmt.Errorf("checkpoint: %q has %d columns, want %d",
			path, len(rows[0]), len(checkpointHeader))
	}

	for _, row := range rows[1:] {
		s.Merge([]*models.College{{
			Rank:      row[0],
			Name:      row[1],
			City:      row[2],
			State:     row[3],
			Fees:      row[4],
			Placement: row[5],
			Reviews:   row[6],
			Ranking:   row[7],
		}})
	}
	return s, nil
}
