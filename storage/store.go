package storage

import (
	"strings"

	"collegedunia-scraper/models"
)

// Store holds the set of accepted colleges in first-seen order, plus a name
// index used for deduplication. The slice and the index are always
// consistent: no name appears twice.
//
// Store is not safe for concurrent use; collection runs are strictly
// sequential and a checkpoint file must be owned by a single run at a time.
type Store struct {
	path     string
	colleges []*models.College
	index    map[string]struct{}
}

// NewStore creates an empty store that checkpoints to path.
func NewStore(path string) *Store {
	return &Store{
		path:  path,
		index: make(map[string]struct{}),
	}
}

// Merge folds candidates into the store, skipping records whose name is
// empty or already present. Re-merging rows from overlapping pages is a
// no-op. Returns how many candidates were newly accepted.
func (s *Store) Merge(candidates []*models.College) int {
	accepted := 0
	for _, c := range candidates {
		if c == nil || strings.TrimSpace(c.Name) == "" {
			continue
		}
		if _, dup := s.index[c.Name]; dup {
			continue
		}
		s.index[c.Name] = struct{}{}
		s.colleges = append(s.colleges, c)
		accepted++
	}
	return accepted
}

// Contains reports whether a college with the given name has been accepted.
func (s *Store) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of accepted colleges.
func (s *Store) Len() int {
	return len(s.colleges)
}

// Colleges returns the accepted colleges in first-seen order. The returned
// slice is shared with the store and must not be mutated.
func (s *Store) Colleges() []*models.College {
	return s.colleges
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}
