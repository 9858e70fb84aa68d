package services

import (
	"strings"
	"unicode"

	"collegedunia-scraper/models"
	"collegedunia-scraper/utils"
)

// Cleaner normalizes candidate colleges before they are merged, so cosmetic
// whitespace differences between pages never defeat deduplication.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean normalizes every field of each candidate and drops rows whose name
// is empty after normalization. It satisfies the collector's Normalizer
// contract.
func (c *Cleaner) Clean(candidates []*models.College) []*models.College {
	result := make([]*models.College, 0, len(candidates))
	dropped := 0

	for _, col := range candidates {
		if col == nil {
			continue
		}
		col.Rank = normaliseText(col.Rank)
		col.Name = normaliseText(col.Name)
		col.City = normaliseText(col.City)
		col.State = normaliseText(col.State)
		col.Fees = normaliseText(col.Fees)
		col.Placement = normaliseText(col.Placement)
		col.Reviews = normaliseText(col.Reviews)
		col.Ranking = normaliseText(col.Ranking)

		if col.Name == "" {
			dropped++
			continue
		}
		result = append(result, col)
	}

	if dropped > 0 {
		c.logger.Debug("[cleaner] Dropped %d rows without a college name", dropped)
	}
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
