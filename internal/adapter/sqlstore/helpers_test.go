package sqlstore_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/imagewatch/internal/adapter/sqlstore"
	"github.com/user/imagewatch/internal/entity"
)

// testClock is a manually advanced clock shared with the store under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*sqlstore.Store, *testClock) {
	t.Helper()

	clock := newTestClock()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, path, sqlstore.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func insertTestSource(t *testing.T, s *sqlstore.Store, title, url string) int64 {
	t.Helper()

	id, err := s.InsertSource(context.Background(), &entity.Source{
		Title: title,
		URL:   url,
		Type:  entity.SourceTypeImagesAndLinks,
	})
	require.NoError(t, err)
	return id
}
