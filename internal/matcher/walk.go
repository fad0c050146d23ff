package matcher

import (
	"strings"

	"github.com/lexivid/annotator-backend/internal/transcript"
)

// The alignment of each transcript token against the next expected concept
// word is classified into one of these states. SKIPPING decides between
// consuming tolerance and aborting; the other states consume the token.
type state int

const (
	stateMatching state = iota
	stateSkipping
	stateSplitRecovery
	stateMergeRecovery
	stateFailed
)

func classify(tok *transcript.Token, cw ConceptToken) state {
	switch {
	case tokenMatches(tok, cw):
		return stateMatching
	case containsFold(tok.Surface, cw.Word):
		return stateSplitRecovery
	case containsFold(cw.Word, tok.Surface):
		return stateMergeRecovery
	default:
		return stateSkipping
	}
}

// walkSpan attempts to align the whole concept starting from the transcript
// token at start. It consumes exactly one transcript token per iteration, so
// it always terminates.
func walkSpan(c Concept, tr *transcript.Transcript, start transcript.Position) (Span, bool) {
	var span Span

	recordHead := func(j int, tok *transcript.Token) {
		if j == c.HeadIndex {
			span.HeadSingular = tok.Number == transcript.NumberSingular
			span.HeadLemma = tok.Lemma
		}
	}

	pos := start
	tok := tr.TokenAt(pos)
	if tok == nil {
		return span, false
	}

	j := 0
	if tokenMatches(tok, c.Tokens[0]) {
		span.Tokens = append(span.Tokens, tok)
		recordHead(0, tok)
		j = 1
	} else {
		// Merged first token: consume every concept word the surface covers.
		for j < len(c.Tokens) && containsFold(tok.Surface, c.Tokens[j].Word) {
			recordHead(j, tok)
			j++
		}
		if j == 0 {
			return span, false
		}
		span.Tokens = append(span.Tokens, tok)
	}

	tolerance := MaxToleranceWords
	var fragments string // accumulated surface of merge-recovery fragments

	for j < len(c.Tokens) {
		next, ok := tr.Next(pos)
		if !ok {
			return span, false
		}
		pos = next
		tok = tr.TokenAt(pos)
		cw := c.Tokens[j]

		switch classify(tok, cw) {
		case stateMatching:
			span.Tokens = append(span.Tokens, tok)
			recordHead(j, tok)
			j++
			tolerance = MaxToleranceWords
			fragments = ""

		case stateSplitRecovery:
			// One transcript token covering several concept words.
			span.Tokens = append(span.Tokens, tok)
			for j < len(c.Tokens) && containsFold(tok.Surface, c.Tokens[j].Word) {
				recordHead(j, tok)
				j++
			}
			tolerance = MaxToleranceWords
			fragments = ""

		case stateMergeRecovery:
			// One concept word split across several transcript tokens:
			// consume fragments until they cover the expected word.
			span.Tokens = append(span.Tokens, tok)
			fragments += tok.Surface
			if equalFold(fragments, cw.Word) || equalFold(fragments, cw.Lemma) {
				recordHead(j, tok)
				j++
				tolerance = MaxToleranceWords
				fragments = ""
			}

		case stateSkipping:
			fragments = ""
			// A concept word out of order signals a different, overlapping
			// occurrence; terminal punctuation or a finite verb signals a
			// new clause. Either way this span is not a match.
			if isOwnWord(tok, c) || tok.IsTerminalPunct() || tok.IsFiniteVerb() {
				return span, false
			}
			if tok.IsComma() {
				continue
			}
			if tolerance == 0 {
				return span, false
			}
			tolerance--
		}
	}

	surfaces := make([]string, len(span.Tokens))
	for i, t := range span.Tokens {
		surfaces[i] = t.Surface
	}
	span.Text = strings.Join(surfaces, " ")
	return span, true
}
