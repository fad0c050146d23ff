// Package matcher locates occurrences of a lemmatized concept phrase inside
// a transcript, tolerating morphological variants, merged or split tokens,
// and a bounded number of intervening filler words.
package matcher

import (
	"strings"

	"github.com/lexivid/annotator-backend/internal/transcript"
)

// MaxToleranceWords is the number of unmatched filler tokens the matcher
// will skip while still searching for the next concept word.
const MaxToleranceWords = 8

// ConceptToken is one word of the concept phrase as returned by the
// lemmatization service.
type ConceptToken struct {
	Word   string
	Lemma  string
	Number transcript.Number
	Gender transcript.Gender
}

// Concept is the lemmatized phrase to locate. HeadIndex identifies the
// grammatical head token within Tokens.
type Concept struct {
	Tokens    []ConceptToken
	HeadIndex int
}

// ID is the identifier used for tagging: the lemma words joined by
// underscores.
func (c Concept) ID() string {
	parts := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		parts[i] = t.Lemma
	}
	return strings.Join(parts, "_")
}

// LemmaPhrase is the space-separated lemma form used for display and as the
// vocabulary key.
func (c Concept) LemmaPhrase() string {
	return strings.ReplaceAll(c.ID(), "_", " ")
}

// Span is one accepted occurrence of the concept.
type Span struct {
	Tokens       []*transcript.Token
	Text         string // concatenated surface text of the consumed tokens
	HeadSingular bool   // the concept's head word appeared in singular number
	HeadLemma    string // lemma of the transcript token aligned with the head word
}

// Result reports all accepted spans plus the canonical form chosen among
// them.
type Result struct {
	ID        string // underscore-joined identifier tagged onto tokens
	Canonical string // canonical lemma/occurrence form, space separated
	Spans     []Span
}

// Found reports whether at least one span was accepted.
func (r *Result) Found() bool { return r != nil && len(r.Spans) > 0 }

// canonicalFold uppercases the first letter only: casing is treated as
// insignificant at the start of a word and significant elsewhere.
func canonicalFold(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func equalFold(a, b string) bool {
	return canonicalFold(a) == canonicalFold(b)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	// First-letter folding only helps at the start of the haystack; a needle
	// buried mid-token must match with its original casing.
	return strings.Contains(haystack, needle) ||
		strings.Contains(canonicalFold(haystack), canonicalFold(needle))
}

// tokenMatches reports whether the transcript token's surface or lemma equals
// the concept word's surface or lemma.
func tokenMatches(tok *transcript.Token, cw ConceptToken) bool {
	return equalFold(tok.Surface, cw.Word) ||
		equalFold(tok.Surface, cw.Lemma) ||
		equalFold(tok.Lemma, cw.Word) ||
		equalFold(tok.Lemma, cw.Lemma)
}

// isOwnWord reports whether the token matches any word of the concept: while
// skipping filler, hitting one of the concept's own words signals that a
// different, overlapping occurrence began, so the current span is abandoned.
func isOwnWord(tok *transcript.Token, c Concept) bool {
	for _, cw := range c.Tokens {
		if tokenMatches(tok, cw) {
			return true
		}
	}
	return false
}

// Match finds all occurrences of the concept in the transcript and tags every
// token of every accepted span with the concept identifier. Tagging is
// idempotent: re-running for an already tagged concept adds nothing.
func Match(c Concept, tr *transcript.Transcript) *Result {
	res := &Result{ID: c.ID()}
	if len(c.Tokens) == 0 || tr == nil {
		return res
	}
	if c.HeadIndex < 0 || c.HeadIndex >= len(c.Tokens) {
		c.HeadIndex = 0
	}
	if len(c.Tokens) == 1 {
		matchSingle(c, tr, res)
	} else {
		matchMulti(c, tr, res)
	}
	if len(res.Spans) == 0 {
		return res
	}
	res.Canonical = chooseCanonical(c, res.Spans)
	for _, span := range res.Spans {
		for _, tok := range span.Tokens {
			tok.AddConcept(res.ID)
		}
	}
	return res
}

func matchSingle(c Concept, tr *transcript.Transcript, res *Result) {
	cw := c.Tokens[0]
	tr.ForEachPosition(func(_ transcript.Position, tok *transcript.Token) {
		if !tokenMatches(tok, cw) {
			return
		}
		res.Spans = append(res.Spans, Span{
			Tokens:       []*transcript.Token{tok},
			Text:         tok.Surface,
			HeadSingular: tok.Number == transcript.NumberSingular,
			HeadLemma:    tok.Lemma,
		})
	})
}

func matchMulti(c Concept, tr *transcript.Transcript, res *Result) {
	first := c.Tokens[0]
	tr.ForEachPosition(func(p transcript.Position, tok *transcript.Token) {
		// Compound tokens may carry the first concept word as a prefix.
		if !tokenMatches(tok, first) && !containsFold(tok.Surface, first.Word) {
			return
		}
		if span, ok := walkSpan(c, tr, p); ok {
			res.Spans = append(res.Spans, span)
		}
	})
}
