package matcher

import (
	"testing"

	"github.com/lexivid/annotator-backend/internal/transcript"
)

func buildTranscript(t *testing.T, sentences ...[]transcript.FeedToken) *transcript.Transcript {
	t.Helper()
	feed := make([]transcript.FeedSentence, 0, len(sentences))
	for si, words := range sentences {
		for wi := range words {
			words[wi].SentID = si
			words[wi].WordID = wi
		}
		feed = append(feed, transcript.FeedSentence{Start: float64(si), End: float64(si + 1), Words: words})
	}
	tr, err := transcript.FromFeed(feed)
	if err != nil {
		t.Fatalf("FromFeed: %v", err)
	}
	return tr
}

func tok(word, lemma string, extra ...string) transcript.FeedToken {
	ft := transcript.FeedToken{Word: word, Lemma: lemma}
	for i := 0; i+1 < len(extra); i += 2 {
		switch extra[i] {
		case "cpos":
			ft.CPOS = extra[i+1]
		case "pos":
			ft.POS = extra[i+1]
		case "num":
			ft.Num = extra[i+1]
		case "gen":
			ft.Gen = extra[i+1]
		}
	}
	return ft
}

func concept(headIdx int, pairs ...string) Concept {
	c := Concept{HeadIndex: headIdx}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Tokens = append(c.Tokens, ConceptToken{Word: pairs[i], Lemma: pairs[i+1]})
	}
	return c
}

func TestMatchAdjacentSpan(t *testing.T) {
	tr := buildTranscript(t, []transcript.FeedToken{
		tok("the", "the"), tok("concave", "concave"), tok("polygon", "polygon"),
		tok("is", "be", "cpos", "VERB"), tok("always", "always"), tok("and", "and"),
		tok("only", "only"), tok("concave", "concave"), tok(".", ".", "cpos", "PUNCT"),
	})

	res := Match(concept(1, "concave", "concave", "polygon", "polygon"), tr)
	if !res.Found() {
		t.Fatal("expected a match")
	}
	if len(res.Spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(res.Spans))
	}
	if res.Spans[0].Text != "concave polygon" {
		t.Fatalf("span text = %q", res.Spans[0].Text)
	}
	if res.ID != "concave_polygon" {
		t.Fatalf("id = %q", res.ID)
	}
	for _, tk := range res.Spans[0].Tokens {
		if !tk.HasConcept("concave_polygon") {
			t.Fatalf("token %q not tagged", tk.Surface)
		}
	}
}

func TestMatchToleranceSkip(t *testing.T) {
	// "the polygon is always and only concave": the matcher must skip the
	// filler between "polygon" and "concave" while staying within the
	// tolerance budget.
	tr := buildTranscript(t, []transcript.FeedToken{
		tok("the", "the"), tok("polygon", "polygon"),
		tok("is", "be", "cpos", "VERB", "pos", "Inf"),
		tok("always", "always"), tok("and", "and"), tok("only", "only"),
		tok("concave", "concave"),
	})

	res := Match(concept(0, "polygon", "polygon", "concave", "concave"), tr)
	if !res.Found() {
		t.Fatal("expected a match across filler words")
	}
	if got := res.Spans[0].Text; got != "polygon concave" {
		t.Fatalf("span text = %q", got)
	}
}

func TestMatchAbortConditions(t *testing.T) {
	cases := []struct {
		name   string
		filler transcript.FeedToken
	}{
		{name: "terminal_punctuation", filler: tok(".", ".", "cpos", "PUNCT")},
		{name: "finite_verb", filler: tok("says", "say", "cpos", "VERB")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := buildTranscript(t, []transcript.FeedToken{
				tok("polygon", "polygon"), tc.filler, tok("concave", "concave"),
			})
			res := Match(concept(0, "polygon", "polygon", "concave", "concave"), tr)
			if res.Found() {
				t.Fatalf("expected no match with filler %q", tc.filler.Word)
			}
		})
	}
}

func TestMatchOverlappingOccurrenceAborts(t *testing.T) {
	// While skipping filler, hitting one of the concept's own words means a
	// different occurrence started there: the first span is abandoned and
	// only the later one is kept.
	tr := buildTranscript(t, []transcript.FeedToken{
		tok("polygon", "polygon"), tok("polygon", "polygon"), tok("concave", "concave"),
	})
	res := Match(concept(0, "polygon", "polygon", "concave", "concave"), tr)
	if len(res.Spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(res.Spans))
	}
	if got := res.Spans[0].Tokens[0].WordID; got != 1 {
		t.Fatalf("span starts at word %d, want 1", got)
	}
}

func TestMatchCommaDoesNotConsumeTolerance(t *testing.T) {
	words := []transcript.FeedToken{tok("polygon", "polygon")}
	// MaxToleranceWords fillers plus commas interleaved: the commas must not
	// count against the budget.
	for i := 0; i < MaxToleranceWords; i++ {
		words = append(words, tok("very", "very"), tok(",", ","))
	}
	words = append(words, tok("concave", "concave"))
	tr := buildTranscript(t, words)

	res := Match(concept(0, "polygon", "polygon", "concave", "concave"), tr)
	if !res.Found() {
		t.Fatal("expected commas to be exempt from the tolerance budget")
	}
}

func TestMatchToleranceExhausted(t *testing.T) {
	words := []transcript.FeedToken{tok("polygon", "polygon")}
	for i := 0; i < MaxToleranceWords+1; i++ {
		words = append(words, tok("very", "very"))
	}
	words = append(words, tok("concave", "concave"))
	tr := buildTranscript(t, words)

	res := Match(concept(0, "polygon", "polygon", "concave", "concave"), tr)
	if res.Found() {
		t.Fatal("expected failure once the tolerance budget is exhausted")
	}
}

func TestMatchCrossesSentenceBoundary(t *testing.T) {
	tr := buildTranscript(t,
		[]transcript.FeedToken{tok("a", "a"), tok("concave", "concave")},
		[]transcript.FeedToken{tok("polygon", "polygon"), tok("appears", "appear", "cpos", "VERB")},
	)
	res := Match(concept(1, "concave", "concave", "polygon", "polygon"), tr)
	if !res.Found() {
		t.Fatal("expected match across the sentence boundary")
	}
}

func TestMatchSplitToken(t *testing.T) {
	// Transcript merged "3D" while the concept lists "3" and "D" separately.
	tr := buildTranscript(t, []transcript.FeedToken{
		tok("a", "a"), tok("3D", "3D"), tok("model", "model"),
	})
	res := Match(concept(2, "3", "3", "D", "D", "model", "model"), tr)
	if !res.Found() {
		t.Fatal("expected split-token recovery to match")
	}
	if got := res.Spans[0].Text; got != "3D model" {
		t.Fatalf("span text = %q", got)
	}
}

func TestMatchMergedToken(t *testing.T) {
	// Transcript split "database" into "data" and "base".
	tr := buildTranscript(t, []transcript.FeedToken{
		tok("relational", "relational"), tok("data", "data"), tok("base", "base"),
	})
	res := Match(concept(1, "relational", "relational", "database", "database"), tr)
	if !res.Found() {
		t.Fatal("expected merge-token recovery to match")
	}
	if got := res.Spans[0].Text; got != "relational data base" {
		t.Fatalf("span text = %q", got)
	}
}

func TestMatchNotFound(t *testing.T) {
	tr := buildTranscript(t, []transcript.FeedToken{tok("totally", "totally"), tok("unrelated", "unrelated")})
	res := Match(concept(0, "polygon", "polygon"), tr)
	if res.Found() {
		t.Fatal("expected no match")
	}
}

func TestMatchIdempotentTagging(t *testing.T) {
	tr := buildTranscript(t, []transcript.FeedToken{
		tok("concave", "concave"), tok("polygon", "polygon"),
	})
	c := concept(1, "concave", "concave", "polygon", "polygon")
	Match(c, tr)
	Match(c, tr)
	tr.ForEachPosition(func(_ transcript.Position, tk *transcript.Token) {
		ids := tk.Concepts()
		if len(ids) != 1 || ids[0] != "concave_polygon" {
			t.Fatalf("token %q concepts = %v", tk.Surface, ids)
		}
	})
}

func TestCanonicalPrefersSingularHead(t *testing.T) {
	tr := buildTranscript(t,
		[]transcript.FeedToken{
			tok("concave", "concave"), tok("polygons", "polygon", "num", "Plur"),
		},
		[]transcript.FeedToken{
			tok("concave", "concave"), tok("polygon", "polygon", "num", "Sing"),
		},
	)
	res := Match(concept(1, "concave", "concave", "polygon", "polygon"), tr)
	if len(res.Spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(res.Spans))
	}
	if res.Canonical != "concave polygon" {
		t.Fatalf("canonical = %q, want the singular-head occurrence", res.Canonical)
	}
}

func TestCanonicalFallsBackToFrequency(t *testing.T) {
	tr := buildTranscript(t,
		[]transcript.FeedToken{tok("concave", "concave"), tok("polygons", "polygon", "num", "Plur")},
		[]transcript.FeedToken{tok("concave", "concave"), tok("polygons", "polygon", "num", "Plur")},
		[]transcript.FeedToken{tok("concave", "concave"), tok("polygonal", "polygon", "num", "Plur")},
	)
	res := Match(concept(1, "concave", "concave", "polygon", "polygon"), tr)
	if res.Canonical != "concave polygons" {
		t.Fatalf("canonical = %q, want the most frequent occurrence", res.Canonical)
	}
}

func singleSpan(surface, lemma string, num transcript.Number, gen transcript.Gender) Span {
	tk := &transcript.Token{Surface: surface, Lemma: lemma, Number: num, Gender: gen}
	return Span{Tokens: []*transcript.Token{tk}, Text: surface}
}

func TestSingleWordCanonicalSelection(t *testing.T) {
	cases := []struct {
		name  string
		spans []Span
		want  string
	}{
		{
			name: "frequency_wins",
			spans: []Span{
				singleSpan("ran", "run", transcript.NumberUnspecified, transcript.GenderUnspecified),
				singleSpan("ran", "run", transcript.NumberUnspecified, transcript.GenderUnspecified),
				singleSpan("running", "running", transcript.NumberUnspecified, transcript.GenderUnspecified),
			},
			want: "run",
		},
		{
			name: "singular_breaks_frequency_tie",
			spans: []Span{
				singleSpan("polygons", "polygons", transcript.NumberPlural, transcript.GenderUnspecified),
				singleSpan("polygon", "polygon", transcript.NumberSingular, transcript.GenderUnspecified),
			},
			want: "polygon",
		},
		{
			name: "masculine_breaks_singular_tie",
			spans: []Span{
				singleSpan("polygona", "polygona", transcript.NumberSingular, transcript.GenderFeminine),
				singleSpan("polygono", "polygono", transcript.NumberSingular, transcript.GenderMasculine),
			},
			want: "polygono",
		},
		{
			name: "first_found_when_identical",
			spans: []Span{
				singleSpan("polygon", "polygon", transcript.NumberSingular, transcript.GenderMasculine),
				singleSpan("polygono", "polygono", transcript.NumberSingular, transcript.GenderMasculine),
			},
			want: "polygon",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := chooseSingle(tc.spans)
			if got != tc.want {
				t.Fatalf("chooseSingle = %q, want %q", got, tc.want)
			}
		})
	}
}
