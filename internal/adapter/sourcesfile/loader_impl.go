// Package sourcesfile reads the list of watched sources from YAML.
package sourcesfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

type fileSource struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Type  string `yaml:"type"`
}

type document struct {
	Sources []fileSource `yaml:"sources"`
}

// Load parses a file of the form:
//
//	sources:
//	  - title: Example
//	    url: https://example.com/gallery
//	    type: images-and-links
func Load(path string) ([]entity.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sources file: %w", repository.ErrConfiguration, err)
	}
	return Parse(data)
}

// Parse decodes and validates a sources document.
func Parse(data []byte) ([]entity.Source, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse sources file: %w", repository.ErrConfiguration, err)
	}

	sources := make([]entity.Source, 0, len(doc.Sources))
	for i, s := range doc.Sources {
		if s.URL == "" {
			return nil, fmt.Errorf("%w: source %d has no url", repository.ErrConfiguration, i)
		}
		source := entity.Source{Title: s.Title, URL: s.URL, Type: entity.SourceType(s.Type)}
		if !source.Type.Valid() {
			return nil, fmt.Errorf("source %d (%s) has type %q: %w", i, s.URL, s.Type, repository.ErrUnknownSourceType)
		}
		if source.Title == "" {
			source.Title = source.URL
		}
		sources = append(sources, source)
	}
	return sources, nil
}
