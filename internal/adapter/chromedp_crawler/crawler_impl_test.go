package chromedp_crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/repository"
)

func TestChromedpFetcher_CancelledContext(t *testing.T) {
	f := NewChromedpFetcher("test-agent", time.Second, zap.NewNop())
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "http://127.0.0.1:1/")
	require.Error(t, err)

	var fetchErr *repository.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "http://127.0.0.1:1/", fetchErr.URL)
}
