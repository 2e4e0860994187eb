package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
	"github.com/user/imagewatch/pkg/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// memoryStore is an in-memory record store that enforces the same uniqueness and
// monotonicity rules as the SQL store.
type memoryStore struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int64

	sources []*entity.Source
	links   []*entity.Link
	images  []*entity.Image

	pollUpdates map[int64]int
	failInsert  func(item entity.NewItem) error
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{now: now, pollUpdates: make(map[int64]int)}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) InsertSource(_ context.Context, source *entity.Source) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.URL == source.URL {
			s.Title, s.Type = source.Title, source.Type
			return s.ID, nil
		}
	}
	cp := *source
	cp.ID = m.id()
	m.sources = append(m.sources, &cp)
	return cp.ID, nil
}

func (m *memoryStore) ListSources(_ context.Context) ([]*entity.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*entity.Source, 0, len(m.sources))
	for _, s := range m.sources {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memoryStore) UpdateSourcePollTime(_ context.Context, sourceID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.ID == sourceID {
			s.LastUpdated = m.now()
			m.pollUpdates[sourceID]++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memoryStore) InsertLink(_ context.Context, sourceID int64, url, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLinkLocked(sourceID, url, title)
}

func (m *memoryStore) insertLinkLocked(sourceID int64, url, title string) (int64, error) {
	for _, l := range m.links {
		if l.SourceID == sourceID && l.URL == url {
			return 0, repository.ErrDuplicateKey
		}
	}
	link := &entity.Link{
		ID:          m.id(),
		SourceID:    sourceID,
		URL:         url,
		Title:       title,
		Status:      entity.StatusPending,
		LastUpdated: m.now(),
	}
	m.links = append(m.links, link)
	return link.ID, nil
}

func (m *memoryStore) InsertLinkWithImage(_ context.Context, item entity.NewItem) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInsert != nil {
		if err := m.failInsert(item); err != nil {
			return 0, 0, err
		}
	}
	linkID, err := m.insertLinkLocked(item.SourceID, item.LinkURL, item.LinkTitle)
	if err != nil {
		return 0, 0, err
	}
	image := &entity.Image{
		ID:          m.id(),
		LinkID:      linkID,
		SourceID:    item.SourceID,
		URL:         item.ImageURL,
		Status:      entity.StatusPending,
		LastUpdated: m.now(),
	}
	m.images = append(m.images, image)
	return linkID, image.ID, nil
}

func (m *memoryStore) ListLinksByStatus(_ context.Context, status entity.Status) ([]*entity.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Link
	for _, l := range m.links {
		if l.Status == status {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateLinkStatusAndContent(_ context.Context, id int64, title, text string, status entity.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.links {
		if l.ID != id {
			continue
		}
		if !l.Status.CanTransitionTo(status) {
			return repository.ErrInvalidStatusTransition
		}
		l.Title, l.Text, l.Status, l.LastUpdated = title, text, status, m.now()
		return nil
	}
	return repository.ErrNotFound
}

func (m *memoryStore) InsertImage(_ context.Context, linkID, sourceID int64, url string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, i := range m.images {
		if i.LinkID == linkID {
			return 0, repository.ErrDuplicateKey
		}
	}
	image := &entity.Image{
		ID:          m.id(),
		LinkID:      linkID,
		SourceID:    sourceID,
		URL:         url,
		Status:      entity.StatusPending,
		LastUpdated: m.now(),
	}
	m.images = append(m.images, image)
	return image.ID, nil
}

func (m *memoryStore) ListImagesByStatus(_ context.Context, status entity.Status) ([]*entity.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Image
	for _, i := range m.images {
		if i.Status == status {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateImageStatus(_ context.Context, id int64, status entity.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, i := range m.images {
		if i.ID != id {
			continue
		}
		if !i.Status.CanTransitionTo(status) {
			return repository.ErrInvalidStatusTransition
		}
		i.Status, i.LastUpdated = status, m.now()
		return nil
	}
	return repository.ErrNotFound
}

func (m *memoryStore) SelectReportItems(_ context.Context, watermark time.Time) ([]entity.ReportItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	linksByID := make(map[int64]*entity.Link, len(m.links))
	for _, l := range m.links {
		linksByID[l.ID] = l
	}
	sourcesByID := make(map[int64]*entity.Source, len(m.sources))
	for _, s := range m.sources {
		sourcesByID[s.ID] = s
	}

	items := []entity.ReportItem{}
	for _, i := range m.images {
		l := linksByID[i.LinkID]
		if i.Status != entity.StatusActive || l == nil || l.Status != entity.StatusActive {
			continue
		}
		if i.LastUpdated.Before(watermark) {
			continue
		}
		s := sourcesByID[l.SourceID]
		items = append(items, entity.ReportItem{
			Title:       l.Title,
			URL:         l.URL,
			LastUpdated: l.LastUpdated,
			ImageID:     i.ID,
			SourceTitle: s.Title,
			SourceURL:   s.URL,
		})
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].LastUpdated.After(items[b].LastUpdated)
	})
	return items, nil
}

// activateLinks marks every pending link Active, standing in for enrichment.
func (m *memoryStore) activateLinks() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.links {
		if l.Status == entity.StatusPending {
			l.Status = entity.StatusActive
		}
	}
}

func (m *memoryStore) imageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}

// fakeFetcher serves canned bodies keyed by URL and records every request.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: make(map[string][]byte), errs: make(map[string]error)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if body, ok := f.bodies[url]; ok {
		return body, nil
	}
	return nil, &repository.FetchError{Kind: repository.FetchErrorHTTPStatus, URL: url, StatusCode: 404}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeExtractor returns the candidates registered for a base URL, ignoring the body.
type fakeExtractor struct {
	candidates map[string][]entity.Candidate
	err        error
}

func (f *fakeExtractor) ExtractCandidates(baseURL string, _ []byte) ([]entity.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates[baseURL], nil
}

func (f *fakeExtractor) ExtractTitleAndText(_ []byte) (entity.PageMeta, error) {
	return entity.PageMeta{}, nil
}

// fakeAssetStore keeps saved payloads in memory.
type fakeAssetStore struct {
	mu    sync.Mutex
	saved map[int64][]byte
	err   error
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{saved: make(map[int64][]byte)}
}

func (f *fakeAssetStore) Save(_ context.Context, imageID int64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.saved[imageID] = data
	return nil
}

// recordingEmitter captures what it was given and optionally fails.
type recordingEmitter struct {
	name string
	err  error

	mu    sync.Mutex
	calls [][]entity.ReportItem
}

func (e *recordingEmitter) Name() string { return e.name }

func (e *recordingEmitter) Emit(_ context.Context, items []entity.ReportItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, items)
	return e.err
}

func (e *recordingEmitter) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// fakeLock is a single-holder lock.
type fakeLock struct {
	mu       sync.Mutex
	held     bool
	unlocked int
	err      error
}

func (l *fakeLock) TryLock(_ context.Context, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return false, l.err
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Unlock(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = false
	l.unlocked++
	return nil
}

var errBoom = errors.New("boom")

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mutableClock is a clock the test can move between phases.
type mutableClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMutableClock(t time.Time) *mutableClock {
	return &mutableClock{now: t}
}

func (c *mutableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mutableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
