// Package collector drives a resumable collection run over a paginated
// listing: fetch page, extract candidates, merge into the store, checkpoint,
// and decide when to stop. It is the only place with retry and termination
// policy; fetching and parsing are pluggable collaborators.
package collector

import (
	"context"
	"errors"

	"collegedunia-scraper/models"
)

// FetchKind classifies the outcome of fetching one listing page.
type FetchKind int

const (
	FetchOK FetchKind = iota
	FetchTimeout
	FetchBadStatus
	FetchConnError
)

func (k FetchKind) String() string {
	switch k {
	case FetchOK:
		return "ok"
	case FetchTimeout:
		return "timeout"
	case FetchBadStatus:
		return "non-success status"
	case FetchConnError:
		return "connection error"
	default:
		return "unknown"
	}
}

// FetchResult is the outcome of fetching one page. Content is set only when
// Kind is FetchOK; Status carries the HTTP status for FetchBadStatus.
type FetchResult struct {
	Kind    FetchKind
	Status  int
	Content []byte
}

// OK reports whether the page was fetched successfully.
func (r FetchResult) OK() bool { return r.Kind == FetchOK }

// Fetcher retrieves one listing page. Implementations must not retry —
// the controller recovers from transient failures by moving to the next
// page, never by re-fetching the same index.
type Fetcher interface {
	Fetch(ctx context.Context, page int) FetchResult
}

// Parser extracts candidate colleges from raw page content. valid is false
// when no listing table was found at all, which is distinct from a table
// with zero rows.
type Parser interface {
	Parse(content []byte) (candidates []*models.College, valid bool)
}

// Normalizer cleans candidate records before they are merged.
type Normalizer interface {
	Clean(candidates []*models.College) []*models.College
}

// Store is the subset of the entity store the controller drives.
type Store interface {
	Merge(candidates []*models.College) (accepted int)
	Checkpoint() error
	Len() int
}

// Reason explains why a run terminated.
type Reason string

const (
	ReasonEmptyStreak    Reason = "EMPTY_STREAK"
	ReasonTargetReached  Reason = "TARGET_REACHED"
	ReasonPageLimit      Reason = "PAGE_LIMIT"
	ReasonSourceChanged  Reason = "SOURCE_STRUCTURE_CHANGED"
	ReasonStorageFailure Reason = "STORAGE_FAILURE"
	ReasonCancelled      Reason = "CANCELLED"
)

// Fatal reports whether the reason aborts the run with an error, as opposed
// to the listing simply being exhausted or capped.
func (r Reason) Fatal() bool {
	return r == ReasonSourceChanged || r == ReasonStorageFailure
}

// ErrSourceChanged is returned when the first fetched page of a run has no
// listing table at all: the source's page contract has changed and
// continuing would silently collect nothing.
var ErrSourceChanged = errors.New("collector: no listing table on first page")
