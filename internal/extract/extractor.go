package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"AdvisoryDigest/internal/domain"
	"AdvisoryDigest/internal/ports"
)

// DefaultTextTags are the elements whose text makes up an article body.
var DefaultTextTags = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "strong", "em"}

// Options configures an Extractor.
type Options struct {
	Candidates []Candidate
	Regions    []RegionPattern
	Phrases    []Phrase
	TextTags   []string
	Logger     *slog.Logger
}

// Extractor composes the region selector and boilerplate filter into a
// cleaned text blob for one page.
type Extractor struct {
	selector  *RegionSelector
	filter    *BoilerplateFilter
	textTags  cascadia.Selector
	tagSet    map[string]struct{}
	paragraph cascadia.Selector
	logger    *slog.Logger
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// New validates and compiles extraction options.
func New(opts Options) (*Extractor, error) {
	if len(opts.Candidates) == 0 {
		return nil, errors.New("no content candidates configured")
	}

	selector, err := NewRegionSelector(opts.Candidates)
	if err != nil {
		return nil, err
	}

	filter, err := NewBoilerplateFilter(opts.Regions, opts.Phrases)
	if err != nil {
		return nil, err
	}

	tags := opts.TextTags
	if len(tags) == 0 {
		tags = DefaultTextTags
	}
	tagSet := make(map[string]struct{}, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := tagSet[t]; dup {
			continue
		}
		tagSet[t] = struct{}{}
		names = append(names, t)
	}
	textTags, err := cascadia.Compile(strings.Join(names, ", "))
	if err != nil {
		return nil, fmt.Errorf("text tags: %w", err)
	}

	return &Extractor{
		selector:  selector,
		filter:    filter,
		textTags:  textTags,
		tagSet:    tagSet,
		paragraph: cascadia.MustCompile("p"),
		logger:    opts.Logger,
	}, nil
}

// Extract returns the cleaned body of doc. When no candidate matches, the
// whole page is filtered instead; callers treat a short body as a miss.
// The document is modified: script and style elements are removed.
func (e *Extractor) Extract(doc *goquery.Document) domain.ExtractedText {
	if doc == nil {
		return domain.ExtractedText{SourceSelector: domain.WholePageSelector}
	}

	e.selector.StripScripts(doc)

	scope := doc.Selection
	source := domain.WholePageSelector
	if region, candidate, ok := e.selector.Select(doc); ok {
		scope = region
		source = candidate.Name
	} else {
		e.debug("no content region matched, filtering whole page")
	}

	body := e.collect(scope)
	paragraphs := e.paragraphs(scope)
	if len(paragraphs) == 0 && source != domain.WholePageSelector {
		paragraphs = e.paragraphs(doc.Selection)
	}

	result := domain.ExtractedText{
		Body:           body,
		SourceSelector: source,
		LengthChars:    utf8.RuneCountInString(body),
		Paragraphs:     paragraphs,
	}

	e.debug("content extracted", "selector", source, "chars", result.LengthChars, "paragraphs", len(result.Paragraphs))
	return result
}

func (e *Extractor) collect(scope *goquery.Selection) string {
	var root *html.Node
	if scope.Length() > 0 {
		root = scope.Get(0)
	}

	parts := make([]string, 0)
	scope.FindMatcher(e.textTags).Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if e.nested(node, root) {
			return
		}

		text := nodeText(s)
		if text == "" {
			return
		}
		if !e.filter.Keep(node, text) {
			return
		}
		parts = append(parts, text)
	})

	return strings.TrimSpace(strings.Join(parts, " "))
}

// nested reports whether node sits inside another text element below root,
// whose text already covers it.
func (e *Extractor) nested(node, root *html.Node) bool {
	for p := node.Parent; p != nil && p != root; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if _, ok := e.tagSet[strings.ToLower(p.Data)]; ok {
			return true
		}
	}
	return false
}

func (e *Extractor) paragraphs(scope *goquery.Selection) []string {
	var out []string
	scope.FindMatcher(e.paragraph).Each(func(_ int, s *goquery.Selection) {
		text := nodeText(s)
		if text != "" && e.filter.Keep(s.Get(0), text) {
			out = append(out, text)
		}
	})
	return out
}

func nodeText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
