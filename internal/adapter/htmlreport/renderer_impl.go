// Package htmlreport renders report items to HTML and publishes the result as
// timestamped files in a reports directory.
package htmlreport

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

// DefaultBaseURL places images next to the reports directory.
const DefaultBaseURL = "../"

const reportTemplate = `<div>{{range .}}
<div><a href="{{.URL}}"><img src="{{imageURL .ImageID}}" /><span class="title">{{.Title}}</span></a></div>{{end}}
</div>
`

// Renderer turns report items into an HTML fragment. Each item is an anchor to the
// link wrapping the downloaded image and the link title.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer that points image sources at <baseURL>images/<id>.jpg.
func NewRenderer(baseURL string) (*Renderer, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"imageURL": func(imageID int64) string {
			return ImageURL(base, imageID)
		},
	}).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(items []entity.ReportItem) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, items); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrRender, err)
	}
	return buf.Bytes(), nil
}

// ImageURL resolves images/<id>.jpg against base. Relative bases stay relative.
func ImageURL(base *url.URL, imageID int64) string {
	ref := "images/" + strconv.FormatInt(imageID, 10) + ".jpg"
	if base.IsAbs() {
		return base.ResolveReference(&url.URL{Path: ref}).String()
	}

	raw := base.String()
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		return raw[:i+1] + ref
	}
	return ref
}
