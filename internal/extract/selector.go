package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Candidate is a named CSS pattern for a content region. Candidates are
// evaluated in slice order, most specific first.
type Candidate struct {
	Name     string
	Selector string
}

type compiledCandidate struct {
	Candidate
	matcher cascadia.Selector
}

// RegionSelector picks the subtree most likely to hold an article body.
type RegionSelector struct {
	candidates []compiledCandidate
	strip      cascadia.Selector
}

// NewRegionSelector compiles the ranked candidate list.
func NewRegionSelector(candidates []Candidate) (*RegionSelector, error) {
	compiled := make([]compiledCandidate, 0, len(candidates))
	for _, c := range candidates {
		m, err := cascadia.Compile(c.Selector)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.Name, err)
		}
		name := c.Name
		if name == "" {
			name = c.Selector
		}
		compiled = append(compiled, compiledCandidate{
			Candidate: Candidate{Name: name, Selector: c.Selector},
			matcher:   m,
		})
	}

	return &RegionSelector{
		candidates: compiled,
		strip:      cascadia.MustCompile("script, style"),
	}, nil
}

// StripScripts removes script and style elements so their text cannot leak
// into any later match.
func (r *RegionSelector) StripScripts(doc *goquery.Document) {
	doc.FindMatcher(r.strip).Remove()
}

// Select returns the first candidate match in rank order. ok is false when
// no candidate matched.
func (r *RegionSelector) Select(doc *goquery.Document) (region *goquery.Selection, matched Candidate, ok bool) {
	for _, c := range r.candidates {
		found := doc.FindMatcher(c.matcher).First()
		if found.Length() > 0 {
			return found, c.Candidate, true
		}
	}
	return nil, Candidate{}, false
}
