package glossary

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// Lookup is the single capability the inference engine requires from the
// glossary collaborator: given free text, return every known term found in
// it, in a deterministic order, each with its full metadata.
//
// Implementations may match by substring, trie, or anything else; they must
// be deterministic for fixed glossary content and must return terms in a
// stable order so downstream results are reproducible.
type Lookup interface {
	FindTermsInText(text string) ([]Term, error)
}

// Glossary is the in-memory Lookup implementation: a slice of validated
// terms matched against text by case-insensitive whole-word search.  It is
// immutable after construction and therefore safe for concurrent use.
type Glossary struct {
	terms []Term
}

// New builds a Glossary from terms, validating each entry.  Term order is
// preserved: FindTermsInText reports matches in curation order, and
// duplicate entries produce duplicate matches (the engine deliberately does
// not deduplicate).
func New(terms []Term) (*Glossary, error) {
	for i, t := range terms {
		if err := t.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeGlossaryLoadFailed, "invalid glossary term").
				WithDetail("index=" + strconv.Itoa(i))
		}
	}
	out := make([]Term, len(terms))
	copy(out, terms)
	return &Glossary{terms: out}, nil
}

// Size returns the number of curated terms.
func (g *Glossary) Size() int {
	return len(g.terms)
}

// Terms returns a copy of the curated term list.
func (g *Glossary) Terms() []Term {
	out := make([]Term, len(g.terms))
	copy(out, g.terms)
	return out
}

// FindTermsInText returns every term whose name or any synonym occurs in
// text as a whole word, case-insensitively.  Each glossary entry yields at
// most one match per call regardless of how many of its names occur.
func (g *Glossary) FindTermsInText(text string) ([]Term, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	lower := strings.ToLower(text)

	var matches []Term
	for _, t := range g.terms {
		if containsWord(lower, strings.ToLower(t.Name)) {
			matches = append(matches, t)
			continue
		}
		for _, syn := range t.Synonyms {
			if containsWord(lower, strings.ToLower(syn)) {
				matches = append(matches, t)
				break
			}
		}
	}
	return matches, nil
}

// containsWord reports whether word occurs in text delimited by non-letter,
// non-digit runes (or the text edges).  Both arguments must already be
// lower-cased.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r := rune(text[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r := rune(text[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
