package transcript

import (
	"sort"
	"strings"
)

// Number is the grammatical number carried by a token, as tagged by the
// upstream NLP feed.
type Number int

const (
	NumberUnspecified Number = iota
	NumberSingular
	NumberPlural
)

// Gender is the grammatical gender carried by a token.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMasculine
	GenderFeminine
)

func ParseNumber(s string) Number {
	switch strings.TrimSpace(s) {
	case "Sing", "sing", "s":
		return NumberSingular
	case "Plur", "plur", "p":
		return NumberPlural
	default:
		return NumberUnspecified
	}
}

func ParseGender(s string) Gender {
	switch strings.TrimSpace(s) {
	case "Masc", "masc", "m":
		return GenderMasculine
	case "Fem", "fem", "f":
		return GenderFeminine
	default:
		return GenderUnspecified
	}
}

// Token is one word of the transcript. The linguistic payload is immutable
// after load; only the concept membership set mutates.
type Token struct {
	Surface   string
	Lemma     string
	POS       string // coarse tag, e.g. "NOUN", "VERB", "PUNCT"
	FinePOS   string // fine tag; verb forms "Inf"/"Ger" stay out of the clause-break rule
	Number    Number
	Gender    Gender
	StartTime float64
	EndTime   float64
	SentID    int
	WordID    int

	concepts map[string]struct{}
}

// AddConcept records membership of the token in the given concept.
// Returns false when the token already carried it.
func (t *Token) AddConcept(id string) bool {
	if t.concepts == nil {
		t.concepts = make(map[string]struct{})
	}
	if _, ok := t.concepts[id]; ok {
		return false
	}
	t.concepts[id] = struct{}{}
	return true
}

func (t *Token) HasConcept(id string) bool {
	_, ok := t.concepts[id]
	return ok
}

func (t *Token) RemoveConcept(id string) {
	delete(t.concepts, id)
}

// Concepts returns the token's concept memberships in lexical order.
func (t *Token) Concepts() []string {
	if len(t.concepts) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.concepts))
	for id := range t.concepts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsTerminalPunct reports whether the token ends a sentence-like clause.
func (t *Token) IsTerminalPunct() bool {
	switch t.Surface {
	case ".", "!", "?":
		return true
	}
	return false
}

func (t *Token) IsComma() bool {
	return t.Surface == ","
}

// IsFiniteVerb reports whether the token is a finite verb form, which the
// matcher treats as the start of a new clause. Infinitives and gerunds do not
// break a span.
func (t *Token) IsFiniteVerb() bool {
	if t.POS != "VERB" && t.POS != "V" {
		return false
	}
	switch t.FinePOS {
	case "Inf", "Ger", "VF", "VG":
		return false
	}
	return true
}

// Sentence is an ordered run of tokens with the time span they cover.
type Sentence struct {
	StartTime float64
	EndTime   float64
	Tokens    []*Token
}

// Transcript is the ordered sentence sequence built once at document load.
type Transcript struct {
	Sentences []*Sentence
}

// Position addresses a token by sentence and word offset.
type Position struct {
	Sent int
	Word int
}

func (t *Transcript) TokenAt(p Position) *Token {
	if p.Sent < 0 || p.Sent >= len(t.Sentences) {
		return nil
	}
	s := t.Sentences[p.Sent]
	if p.Word < 0 || p.Word >= len(s.Tokens) {
		return nil
	}
	return s.Tokens[p.Word]
}

// Next advances to the following token, hopping to the first token of the
// next non-empty sentence when the current one is exhausted.
func (t *Transcript) Next(p Position) (Position, bool) {
	if p.Sent < 0 || p.Sent >= len(t.Sentences) {
		return Position{}, false
	}
	if p.Word+1 < len(t.Sentences[p.Sent].Tokens) {
		return Position{Sent: p.Sent, Word: p.Word + 1}, true
	}
	for s := p.Sent + 1; s < len(t.Sentences); s++ {
		if len(t.Sentences[s].Tokens) > 0 {
			return Position{Sent: s, Word: 0}, true
		}
	}
	return Position{}, false
}

// ForEachPosition visits every token position in document order.
func (t *Transcript) ForEachPosition(fn func(Position, *Token)) {
	for si, s := range t.Sentences {
		for wi, tok := range s.Tokens {
			fn(Position{Sent: si, Word: wi}, tok)
		}
	}
}

// AllLemmas returns every distinct lemma in first-seen order.
func (t *Transcript) AllLemmas() []string {
	seen := make(map[string]struct{})
	var out []string
	t.ForEachPosition(func(_ Position, tok *Token) {
		if _, ok := seen[tok.Lemma]; !ok {
			seen[tok.Lemma] = struct{}{}
			out = append(out, tok.Lemma)
		}
	})
	return out
}

// WordLemmas maps each surface form to its lemma (first occurrence wins).
func (t *Transcript) WordLemmas() map[string]string {
	out := make(map[string]string)
	t.ForEachPosition(func(_ Position, tok *Token) {
		if _, ok := out[tok.Surface]; !ok {
			out[tok.Surface] = tok.Lemma
		}
	})
	return out
}

// RemoveConceptTags strips the concept from every token of the transcript.
func (t *Transcript) RemoveConceptTags(id string) {
	t.ForEachPosition(func(_ Position, tok *Token) {
		tok.RemoveConcept(id)
	})
}

// ConceptAnchor locates the sentence and word ids of the first occurrence of
// the concept at or after the given time, falling back to the nearest
// occurrence before it, and finally to the last token of the transcript.
func (t *Transcript) ConceptAnchor(atSeconds float64, conceptID string) (sentID, wordID int) {
	var before, after *Token
	t.ForEachPosition(func(p Position, tok *Token) {
		if !tok.HasConcept(conceptID) {
			return
		}
		sent := t.Sentences[p.Sent]
		if sent.StartTime >= atSeconds {
			if after == nil {
				after = tok
			}
		} else {
			before = tok
		}
	})
	if after != nil {
		return after.SentID, after.WordID
	}
	if before != nil {
		return before.SentID, before.WordID
	}
	if last := t.lastToken(); last != nil {
		return last.SentID, last.WordID
	}
	return 0, 0
}

func (t *Transcript) lastToken() *Token {
	for i := len(t.Sentences) - 1; i >= 0; i-- {
		toks := t.Sentences[i].Tokens
		if len(toks) > 0 {
			return toks[len(toks)-1]
		}
	}
	return nil
}
