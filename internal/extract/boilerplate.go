package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// RegionPattern matches the class list of a container that only holds
// navigation, legal or contact material.
type RegionPattern struct {
	Name string
	Expr string
}

// Phrase is a boilerplate fragment matched case-insensitively against node text.
type Phrase struct {
	Name string
	Text string
}

type compiledRegion struct {
	name string
	expr *regexp.Regexp
}

type foldedPhrase struct {
	name   string
	folded string
}

// BoilerplateFilter decides whether a text node is page furniture.
// A node is dropped when either the structural or the lexical check fires.
type BoilerplateFilter struct {
	regions []compiledRegion
	phrases []foldedPhrase
}

// NewBoilerplateFilter compiles region patterns (case-insensitive) and folds phrases.
func NewBoilerplateFilter(regions []RegionPattern, phrases []Phrase) (*BoilerplateFilter, error) {
	f := &BoilerplateFilter{
		regions: make([]compiledRegion, 0, len(regions)),
		phrases: make([]foldedPhrase, 0, len(phrases)),
	}

	for _, r := range regions {
		expr, err := regexp.Compile("(?i)" + r.Expr)
		if err != nil {
			return nil, fmt.Errorf("region pattern %s: %w", r.Name, err)
		}
		f.regions = append(f.regions, compiledRegion{name: r.Name, expr: expr})
	}

	for _, p := range phrases {
		folded := fold(strings.TrimSpace(p.Text))
		if folded == "" {
			continue
		}
		f.phrases = append(f.phrases, foldedPhrase{name: p.Name, folded: folded})
	}

	return f, nil
}

// Keep reports whether text taken from node belongs to the article body.
func (f *BoilerplateFilter) Keep(node *html.Node, text string) bool {
	if _, hit := f.RegionMatch(node); hit {
		return false
	}
	if _, hit := f.PhraseMatch(text); hit {
		return false
	}
	return true
}

// RegionMatch walks the ancestors of node and returns the name of the first
// region pattern matching an ancestor's class list.
func (f *BoilerplateFilter) RegionMatch(node *html.Node) (string, bool) {
	if node == nil || len(f.regions) == 0 {
		return "", false
	}
	for p := node.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		classes := classList(p)
		if classes == "" {
			continue
		}
		for _, r := range f.regions {
			if r.expr.MatchString(classes) {
				return r.name, true
			}
		}
	}
	return "", false
}

// PhraseMatch returns the name of the first configured phrase contained in text.
func (f *BoilerplateFilter) PhraseMatch(text string) (string, bool) {
	if text == "" || len(f.phrases) == 0 {
		return "", false
	}
	folded := fold(text)
	for _, p := range f.phrases {
		if strings.Contains(folded, p.folded) {
			return p.name, true
		}
	}
	return "", false
}

func classList(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, "class") {
			return strings.Join(strings.Fields(attr.Val), " ")
		}
	}
	return ""
}

// fold builds a fresh Caser per call; a Caser must not be shared.
func fold(s string) string {
	return cases.Fold().String(s)
}
