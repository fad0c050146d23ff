package matcher

import "github.com/lexivid/annotator-backend/internal/transcript"

// chooseCanonical picks the single canonical form the spans collapse to.
//
// Multi-word concepts: an occurrence whose head word appeared singular wins,
// shortest surface text breaking ties; with no singular-head occurrence the
// most frequent occurrence string wins, ties broken by containment of the raw
// head lemma, then by document order.
//
// Single-word concepts: the most frequent surface form wins, ties broken by
// singular number, then masculine gender, then document order.
func chooseCanonical(c Concept, spans []Span) string {
	if len(c.Tokens) == 1 {
		return chooseSingle(spans)
	}
	return chooseMulti(c, spans)
}

func chooseSingle(spans []Span) string {
	counts := make(map[string]int)
	for _, s := range spans {
		counts[s.Tokens[0].Surface]++
	}
	best := -1
	for i, s := range spans {
		if best < 0 {
			best = i
			continue
		}
		bt, st := spans[best].Tokens[0], s.Tokens[0]
		switch {
		case counts[st.Surface] > counts[bt.Surface]:
			best = i
		case counts[st.Surface] < counts[bt.Surface]:
		case st.Number == transcript.NumberSingular && bt.Number != transcript.NumberSingular:
			best = i
		case st.Number != transcript.NumberSingular || bt.Number != transcript.NumberSingular:
		case st.Gender == transcript.GenderMasculine && bt.Gender != transcript.GenderMasculine:
			best = i
		}
	}
	chosen := spans[best].Tokens[0]
	if chosen.Lemma != "" {
		return chosen.Lemma
	}
	return chosen.Surface
}

func chooseMulti(c Concept, spans []Span) string {
	best := -1
	for i, s := range spans {
		if !s.HeadSingular {
			continue
		}
		if best < 0 || len(s.Text) < len(spans[best].Text) {
			best = i
		}
	}
	if best >= 0 {
		return spans[best].Text
	}

	headLemma := c.Tokens[c.HeadIndex].Lemma
	counts := make(map[string]int)
	for _, s := range spans {
		counts[s.Text]++
	}
	for i, s := range spans {
		if best < 0 {
			best = i
			continue
		}
		b := spans[best]
		switch {
		case counts[s.Text] > counts[b.Text]:
			best = i
		case counts[s.Text] < counts[b.Text]:
		case containsFold(s.Text, headLemma) && !containsFold(b.Text, headLemma):
			best = i
		}
	}
	return spans[best].Text
}
