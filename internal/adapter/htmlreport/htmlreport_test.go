package htmlreport

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/imagewatch/internal/entity"
)

func TestImageURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"../", "../images/3.jpg"},
		{"", "images/3.jpg"},
		{"https://watch.example.com/", "https://watch.example.com/images/3.jpg"},
		{"https://watch.example.com/static/", "https://watch.example.com/static/images/3.jpg"},
		{"https://watch.example.com/reports/index.html", "https://watch.example.com/reports/images/3.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			base, err := url.Parse(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ImageURL(base, 3))
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer("https://watch.example.com/")
	require.NoError(t, err)

	doc, err := r.Render([]entity.ReportItem{
		{Title: "Cats & Dogs", URL: "http://x#http://x/i.jpg", ImageID: 5},
		{Title: "Second", URL: "http://x/2", ImageID: 6},
	})
	require.NoError(t, err)

	out := string(doc)
	assert.Contains(t, out, `<a href="http://x#http://x/i.jpg"><img src="https://watch.example.com/images/5.jpg" /><span class="title">Cats &amp; Dogs</span></a>`)
	assert.Contains(t, out, `<img src="https://watch.example.com/images/6.jpg" />`)
	assert.Less(t, strings.Index(out, "5.jpg"), strings.Index(out, "6.jpg"))
}

func TestRenderer_EscapesUnsafeLinks(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	doc, err := r.Render([]entity.ReportItem{{Title: "<b>x</b>", URL: "javascript:alert(1)", ImageID: 1}})
	require.NoError(t, err)

	out := string(doc)
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "<b>")
}

func TestRenderer_Empty(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	doc, err := r.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "<div>\n</div>\n", string(doc))
}

func TestWriter_WriteUpdatesLatest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	w := NewWriter(dir, func() time.Time { return now })

	first, err := w.Write(context.Background(), []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-10-15T09:30:00.000Z.html"), first)

	now = now.Add(time.Hour)
	second, err := w.Write(context.Background(), []byte("second"))
	require.NoError(t, err)

	latest, err := os.ReadFile(filepath.Join(dir, LatestName))
	require.NoError(t, err)
	assert.Equal(t, "second", string(latest))

	target, err := os.Readlink(filepath.Join(dir, LatestName))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(second), target)

	old, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(old))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
