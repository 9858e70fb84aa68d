package models

import "time"

// College is one record extracted from a listing page. All fields carry the
// source's display text verbatim — numeric-looking fields (rank, fees) are
// kept as strings because the source formats them inconsistently.
type College struct {
	Rank      string
	Name      string // uniqueness key; records with an empty Name are never accepted
	City      string
	State     string
	Fees      string
	Placement string
	Reviews   string
	Ranking   string
}

// SessionSummary is the outcome of a single collection run, exposed for
// logging and CLI display. It is never persisted — only the accepted
// colleges in the store are durable.
type SessionSummary struct {
	ListingURL   string
	StartPage    int
	LastPage     int
	PagesVisited int
	Accepted     int // newly accepted this run
	StoreTotal   int // store size after the run, including prior checkpoints
	Reason       string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Elapsed returns the wall-clock duration of the run.
func (s *SessionSummary) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunReport holds the computed analytics over the collected dataset.
type RunReport struct {
	TotalColleges   int
	WithFees        int
	WithRanking     int
	WithReviews     int
	TopRanked       []*College
	CollegesByState map[string]int
}
