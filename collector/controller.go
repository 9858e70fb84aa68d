package collector

import (
	"context"
	"fmt"
	"time"

	"collegedunia-scraper/models"
	"collegedunia-scraper/utils"
)

// emptyStreakLimit is how many consecutive pages may contribute zero new
// colleges before the listing is considered exhausted. One empty page can be
// a transient failure or a fully-deduplicated page on a resumed run; three
// in a row is treated as the end of the listing.
const emptyStreakLimit = 3

// Options configure a collection run.
type Options struct {
	ListingURL  string
	StartPage   int // first page index to fetch; default 1
	MaxPages    int // stop after this page index; 0 = unbounded
	TargetCount int // stop once this many colleges were accepted this run; 0 = unbounded
	SleepMin    time.Duration
	SleepMax    time.Duration
}

func (o Options) withDefaults() Options {
	if o.StartPage < 1 {
		o.StartPage = 1
	}
	return o
}

// Controller owns the page sequence and the stopping policy of a run.
// A run is strictly sequential: one page at a time, paced by a politeness
// delay, merging into a store that is exclusively owned by this run.
type Controller struct {
	opts       Options
	fetcher    Fetcher
	parser     Parser
	store      Store
	normalizer Normalizer
	pacer      *utils.Pacer
	logger     *utils.Logger
}

// New creates a Controller. normalizer may be nil to merge candidates as
// parsed.
func New(opts Options, fetcher Fetcher, parser Parser, store Store, normalizer Normalizer, logger *utils.Logger) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		opts:       opts,
		fetcher:    fetcher,
		parser:     parser,
		store:      store,
		normalizer: normalizer,
		pacer:      utils.NewPacer(opts.SleepMin, opts.SleepMax),
		logger:     logger,
	}
}

// Run executes the collection loop until a termination condition is met or
// ctx is cancelled. The returned summary always carries an explicit reason;
// err is non-nil only for the fatal reasons (source structure changed,
// storage failure), in which case the last successful checkpoint is left
// untouched.
func (c *Controller) Run(ctx context.Context) (*models.SessionSummary, error) {
	sum := &models.SessionSummary{
		ListingURL: c.opts.ListingURL,
		StartPage:  c.opts.StartPage,
		StartedAt:  time.Now(),
	}

	c.logger.Info("[collector] Starting run — url: %s | start page: %d | max pages: %d | target: %d | store: %d",
		c.opts.ListingURL, c.opts.StartPage, c.opts.MaxPages, c.opts.TargetCount, c.store.Len())

	streak := 0
	page := c.opts.StartPage

	for {
		// Politeness delay before every fetch; doubles as the external
		// stop check at the top of each iteration.
		if err := c.pacer.Wait(ctx); err != nil {
			return c.finish(sum, page, ReasonCancelled), nil
		}

		newCount, fatal, err := c.step(ctx, page)
		if fatal != "" {
			return c.finish(sum, page, fatal), err
		}

		sum.PagesVisited++
		if newCount == 0 {
			streak++
		} else {
			streak = 0
			sum.Accepted += newCount
		}

		switch {
		case streak >= emptyStreakLimit:
			return c.finish(sum, page, ReasonEmptyStreak), nil
		case c.opts.TargetCount > 0 && sum.Accepted >= c.opts.TargetCount:
			return c.finish(sum, page, ReasonTargetReached), nil
		case c.opts.MaxPages > 0 && page >= c.opts.MaxPages:
			return c.finish(sum, page, ReasonPageLimit), nil
		}

		page++
	}
}

// step fetches and processes a single page. It returns the number of newly
// accepted colleges, and a non-empty fatal reason (with its error) when the
// run must abort.
func (c *Controller) step(ctx context.Context, page int) (int, Reason, error) {
	res := c.fetcher.Fetch(ctx, page)
	if !res.OK() {
		// Transient fetch failure counts as an empty page; the next
		// index is equally likely to succeed, so never re-fetch.
		if res.Kind == FetchBadStatus {
			c.logger.Warn("[collector] Page %d returned status %d — skipping to next page", page, res.Status)
		} else {
			c.logger.Warn("[collector] Page %d fetch failed (%s) — skipping to next page", page, res.Kind)
		}
		return 0, "", nil
	}

	candidates, valid := c.parser.Parse(res.Content)
	if !valid {
		if page == c.opts.StartPage {
			c.logger.Error("[collector] No listing table on first page %d — aborting run", page)
			return 0, ReasonSourceChanged, ErrSourceChanged
		}
		// Past the first page the source may legitimately end
		// pagination by omitting the table.
		c.logger.Info("[collector] Page %d has no listing table — treating as empty", page)
		return 0, "", nil
	}

	if c.normalizer != nil {
		candidates = c.normalizer.Clean(candidates)
	}

	newCount := c.store.Merge(candidates)
	if newCount > 0 {
		// Write-through: checkpoint after every page that contributed
		// something, so a crash loses at most the in-flight page.
		if err := c.store.Checkpoint(); err != nil {
			c.logger.Error("[collector] Checkpoint after page %d failed: %v", page, err)
			return 0, ReasonStorageFailure, fmt.Errorf("collector: checkpoint after page %d: %w", page, err)
		}
	}

	c.logger.Info("[collector] Page %d: %d candidates, %d new (store total: %d)",
		page, len(candidates), newCount, c.store.Len())
	return newCount, "", nil
}

func (c *Controller) finish(sum *models.SessionSummary, page int, reason Reason) *models.SessionSummary {
	sum.LastPage = page
	sum.Reason = string(reason)
	sum.StoreTotal = c.store.Len()
	sum.FinishedAt = time.Now()

	c.logger.Info("[collector] Run finished — reason: %s | pages visited: %d | new this run: %d | store total: %d | elapsed: %s",
		reason, sum.PagesVisited, sum.Accepted, sum.StoreTotal, sum.Elapsed().Round(time.Millisecond))
	return sum
}
