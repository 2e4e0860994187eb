package entity

// CandidateImage is an <img> found on a source page.
type CandidateImage struct {
	URL   string
	Title string
}

// CandidateLink is an <a href> found on a source page.
type CandidateLink struct {
	URL   string
	Title string
}

// Candidate is a tentative image/link pair produced by extraction.
// Either side may be missing.
type Candidate struct {
	Image *CandidateImage
	Link  *CandidateLink
}

// NewItem is a classified candidate ready to be persisted as a Link and its Image.
type NewItem struct {
	SourceID  int64
	LinkURL   string
	LinkTitle string
	ImageURL  string
}

// PageMeta is the title and flattened body text of a fetched page.
type PageMeta struct {
	Title string
	Text  string
}
