package collector

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"collegedunia-scraper/models"
	"collegedunia-scraper/storage"
	"collegedunia-scraper/utils"
)

// fakeSource scripts both the fetcher and the parser: Fetch encodes the page
// index into the content, Parse looks the page back up. Pages missing from
// the script fetch fine and parse as a valid table with zero rows.
type fakeSource struct {
	pages   map[int]fakePage
	fetched []int
}

type fakePage struct {
	fetch   FetchKind // zero value is FetchOK
	status  int
	names   []string
	invalid bool // listing table absent
}

func (f *fakeSource) Fetch(_ context.Context, page int) FetchResult {
	f.fetched = append(f.fetched, page)
	p := f.pages[page]
	if p.fetch != FetchOK {
		return FetchResult{Kind: p.fetch, Status: p.status}
	}
	return FetchResult{Kind: FetchOK, Content: []byte(strconv.Itoa(page))}
}

func (f *fakeSource) Parse(content []byte) ([]*models.College, bool) {
	page, _ := strconv.Atoi(string(content))
	p := f.pages[page]
	if p.invalid {
		return nil, false
	}
	out := make([]*models.College, 0, len(p.names))
	for _, n := range p.names {
		out = append(out, &models.College{Name: n})
	}
	return out, true
}

// spyStore counts checkpoints and can be made to fail them.
type spyStore struct {
	*storage.Store
	checkpoints    int
	failCheckpoint bool
}

func (s *spyStore) Checkpoint() error {
	if s.failCheckpoint {
		return errors.New("disk full")
	}
	s.checkpoints++
	return nil
}

func newSpyStore(t *testing.T) *spyStore {
	t.Helper()
	return &spyStore{Store: storage.NewStore(filepath.Join(t.TempDir(), "colleges.csv"))}
}

func runController(t *testing.T, opts Options, src *fakeSource, store Store) (*models.SessionSummary, error) {
	t.Helper()
	c := New(opts, src, src, store, nil, utils.NewLogger())
	return c.Run(context.Background())
}

func TestEmptyStreakTermination(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A", "B"}},
		// pages 2-4 are valid but contribute nothing new
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{}, src, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Reason != string(ReasonEmptyStreak) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonEmptyStreak)
	}
	if sum.PagesVisited != 4 {
		t.Errorf("visited %d pages, want 4 (1 productive + exactly 3 empty)", sum.PagesVisited)
	}
	if sum.Accepted != 2 || store.Len() != 2 {
		t.Errorf("accepted %d (store %d), want 2", sum.Accepted, store.Len())
	}
}

func TestTransientFailuresCountTowardStreak(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
		2: {fetch: FetchTimeout},
		3: {fetch: FetchBadStatus, status: 503},
		4: {fetch: FetchConnError},
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{}, src, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Reason != string(ReasonEmptyStreak) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonEmptyStreak)
	}
	if sum.LastPage != 4 {
		t.Errorf("stopped at page %d, want 4", sum.LastPage)
	}
	// Failed pages are skipped, never re-fetched.
	for i, p := range src.fetched {
		if p != i+1 {
			t.Fatalf("fetch sequence %v is not strictly increasing", src.fetched)
		}
	}
}

func TestStreakResetsOnNewColleges(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
		2: {fetch: FetchTimeout},
		3: {fetch: FetchTimeout},
		4: {names: []string{"B"}}, // resets the streak at 2
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{}, src, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Reason != string(ReasonEmptyStreak) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonEmptyStreak)
	}
	if sum.LastPage != 7 {
		t.Errorf("stopped at page %d, want 7 (streak must reset on page 4)", sum.LastPage)
	}
	if sum.Accepted != 2 {
		t.Errorf("accepted %d, want 2", sum.Accepted)
	}
}

func TestTargetReachedWholePageGranularity(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A", "B", "C"}},
		2: {names: []string{"D", "E", "F"}},
		3: {names: []string{"G", "H", "I"}},
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{TargetCount: 5}, src, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Reason != string(ReasonTargetReached) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonTargetReached)
	}
	if sum.LastPage != 2 {
		t.Errorf("stopped at page %d, want 2", sum.LastPage)
	}
	// Acceptance is whole-page granular: the store keeps all 6, not 5.
	if store.Len() != 6 {
		t.Errorf("store size %d, want 6", store.Len())
	}
}

func TestPageLimitTermination(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
		2: {names: []string{"B"}},
		3: {names: []string{"C"}},
		4: {names: []string{"D"}},
		5: {names: []string{"E"}},
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{MaxPages: 4}, src, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Reason != string(ReasonPageLimit) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonPageLimit)
	}
	if sum.LastPage != 4 || store.Len() != 4 {
		t.Errorf("stopped at page %d with %d colleges, want page 4 with 4", sum.LastPage, store.Len())
	}
}

func TestFirstPageStructuralBreakIsFatal(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {invalid: true},
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{MaxPages: 100}, src, store)
	if !errors.Is(err, ErrSourceChanged) {
		t.Fatalf("err = %v, want ErrSourceChanged", err)
	}
	if sum.Reason != string(ReasonSourceChanged) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonSourceChanged)
	}
	if store.Len() != 0 || store.checkpoints != 0 {
		t.Errorf("fatal first page must write nothing: %d colleges, %d checkpoints",
			store.Len(), store.checkpoints)
	}
	if len(src.fetched) != 1 {
		t.Errorf("fetched %d pages, want 1 (abort immediately)", len(src.fetched))
	}
}

func TestLaterStructuralBreakIsEmptyPage(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
		2: {invalid: true},
		3: {invalid: true},
		4: {invalid: true},
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{}, src, store)
	if err != nil {
		t.Fatalf("Run: %v (structural break past the first page is not fatal)", err)
	}
	if sum.Reason != string(ReasonEmptyStreak) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonEmptyStreak)
	}
}

func TestFirstPageOfResumedRunGuardsStructure(t *testing.T) {
	// A resumed run starting at page 7 must treat page 7 as its first page.
	src := &fakeSource{pages: map[int]fakePage{
		7: {invalid: true},
	}}
	store := newSpyStore(t)

	sum, err := runController(t, Options{StartPage: 7}, src, store)
	if !errors.Is(err, ErrSourceChanged) {
		t.Fatalf("err = %v, want ErrSourceChanged", err)
	}
	if sum.StartPage != 7 || sum.LastPage != 7 {
		t.Errorf("summary pages = %d..%d, want 7..7", sum.StartPage, sum.LastPage)
	}
}

func TestCheckpointFailureAbortsRun(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
	}}
	store := newSpyStore(t)
	store.failCheckpoint = true

	sum, err := runController(t, Options{}, src, store)
	if err == nil {
		t.Fatal("Run should fail when the checkpoint cannot be written")
	}
	if sum.Reason != string(ReasonStorageFailure) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonStorageFailure)
	}
	if len(src.fetched) != 1 {
		t.Errorf("fetched %d pages after storage failure, want 1", len(src.fetched))
	}
}

func TestCheckpointOnlyAfterProductivePages(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
		2: {},                     // valid, zero rows
		3: {names: []string{"A"}}, // duplicates only
	}}
	store := newSpyStore(t)

	if _, err := runController(t, Options{}, src, store); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.checkpoints != 1 {
		t.Errorf("%d checkpoints, want 1 (only page 1 contributed)", store.checkpoints)
	}
}

func TestResumedRunAcceptsOnlyNewColleges(t *testing.T) {
	store := newSpyStore(t)
	store.Merge([]*models.College{{Name: "A"}, {Name: "B"}})

	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A", "B", "C"}},
	}}

	sum, err := runController(t, Options{}, src, store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Accepted != 1 {
		t.Errorf("accepted %d this run, want 1 (only C is new)", sum.Accepted)
	}
	if store.Len() != 3 {
		t.Errorf("store size %d, want 3", store.Len())
	}
}

func TestCancellationStopsRunPromptly(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"A"}},
	}}
	store := newSpyStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Options{SleepMin: time.Hour, SleepMax: time.Hour}, src, src, store, nil, utils.NewLogger())

	done := make(chan struct{})
	var sum *models.SessionSummary
	var err error
	go func() {
		sum, err = c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop promptly after cancellation")
	}
	if err != nil {
		t.Fatalf("Run: %v (cancellation is not a fatal error)", err)
	}
	if sum.Reason != string(ReasonCancelled) {
		t.Errorf("reason = %s, want %s", sum.Reason, ReasonCancelled)
	}
	if len(src.fetched) != 0 {
		t.Errorf("fetched %d pages after pre-cancelled context, want 0", len(src.fetched))
	}
}

func TestNormalizerRunsBeforeMerge(t *testing.T) {
	src := &fakeSource{pages: map[int]fakePage{
		1: {names: []string{"  A  "}},
		2: {names: []string{"A"}},
	}}
	store := newSpyStore(t)

	c := New(Options{}, src, src, store, trimNormalizer{}, utils.NewLogger())
	sum, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Accepted != 1 {
		t.Errorf("accepted %d, want 1 (normalized names must deduplicate)", sum.Accepted)
	}
}

type trimNormalizer struct{}

func (trimNormalizer) Clean(candidates []*models.College) []*models.College {
	for _, c := range candidates {
		c.Name = strings.TrimSpace(c.Name)
	}
	return candidates
}
