package lemmatizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/transcript"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLemmatizeTerm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lemmatize_term" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["lang"] != "en" || req["concept"] != "convex polygons" {
			t.Errorf("request = %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "convex polygons",
			"lemmatization_data": {
				"tokens": [
					{"word": "convex", "lemma": "convex", "num": "", "gen": ""},
					{"word": "polygons", "lemma": "polygon", "num": "Plur", "gen": "Masc"}
				],
				"head_indx": 1
			}
		}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(testLogger(t), srv.URL, 2*time.Second)
	got, err := c.LemmatizeTerm(context.Background(), "en", "convex polygons")
	if err != nil {
		t.Fatalf("LemmatizeTerm: %v", err)
	}
	if got.LemmaPhrase() != "convex polygon" {
		t.Fatalf("LemmaPhrase() = %q", got.LemmaPhrase())
	}
	if got.HeadIndex != 1 {
		t.Fatalf("HeadIndex = %d, want 1", got.HeadIndex)
	}
	head := got.Tokens[1]
	if head.Number != transcript.NumberPlural || head.Gender != transcript.GenderMasculine {
		t.Fatalf("head features = (%v,%v)", head.Number, head.Gender)
	}
}

func TestLemmatizeTermEmptyAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(testLogger(t), srv.URL, 2*time.Second)
	_, err := c.LemmatizeTerm(context.Background(), "en", "qwzx")
	if !errors.Is(err, ErrNotAnalyzable) {
		t.Fatalf("err = %v, want ErrNotAnalyzable", err)
	}
}

func TestLemmatizeTermHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWithBaseURL(testLogger(t), srv.URL, 2*time.Second)
	if _, err := c.LemmatizeTerm(context.Background(), "en", "node"); err == nil {
		t.Fatalf("expected error on http 500")
	}
}

func TestLemmatizeTermHeadIndexClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "node",
			"lemmatization_data": {
				"tokens": [{"word": "node", "lemma": "node", "num": "Sing", "gen": ""}],
				"head_indx": 7
			}
		}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(testLogger(t), srv.URL, 2*time.Second)
	got, err := c.LemmatizeTerm(context.Background(), "en", "node")
	if err != nil {
		t.Fatalf("LemmatizeTerm: %v", err)
	}
	if got.HeadIndex != 0 {
		t.Fatalf("HeadIndex = %d, want clamped to 0", got.HeadIndex)
	}
}
