package goquery_extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/pkg/utils"
)

// Extractor parses HTML documents with goquery.
type Extractor struct{}

// NewExtractor creates a new goquery-backed extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractCandidates returns one candidate per <img src> (paired with its closest
// enclosing <a href>, if any) followed by one per <a href> that contains no image.
// Relative URLs are resolved against baseURL.
func (e *Extractor) ExtractCandidates(baseURL string, document []byte) ([]entity.Candidate, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var candidates []entity.Candidate

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		imageURL, err := utils.ToAbsoluteURL(base, src)
		if err != nil {
			return
		}

		title := s.AttrOr("title", "")
		if title == "" {
			title = s.AttrOr("alt", "")
		}

		candidate := entity.Candidate{Image: &entity.CandidateImage{URL: imageURL, Title: title}}
		if href, ok := s.Closest("a").Attr("href"); ok && href != "" {
			if linkURL, err := utils.ToAbsoluteURL(base, href); err == nil {
				candidate.Link = &entity.CandidateLink{URL: linkURL, Title: title}
			}
		}
		candidates = append(candidates, candidate)
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		if s.Find("img").Length() > 0 {
			return
		}
		linkURL, err := utils.ToAbsoluteURL(base, href)
		if err != nil {
			return
		}
		candidates = append(candidates, entity.Candidate{
			Link: &entity.CandidateLink{URL: linkURL, Title: collapseSpace(s.Text())},
		})
	})

	return candidates, nil
}

// ExtractTitleAndText returns the document title and its body text with every
// whitespace run collapsed to a single space.
func (e *Extractor) ExtractTitleAndText(document []byte) (entity.PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return entity.PageMeta{}, fmt.Errorf("failed to parse document: %w", err)
	}

	doc.Find("script, style").Remove()

	return entity.PageMeta{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  collapseSpace(doc.Find("body").Text()),
	}, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
