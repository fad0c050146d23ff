// Package lemmatizer talks to the NLP sidecar that analyzes annotator-typed
// terms: per-word lemmas, grammatical number and gender, and the index of
// the syntactic head word.
package lemmatizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/matcher"
	"github.com/lexivid/annotator-backend/internal/transcript"
)

// ErrNotAnalyzable is returned when the service answers with an empty
// analysis, meaning the term could not be parsed in the requested language.
var ErrNotAnalyzable = errors.New("term could not be analyzed")

type Client interface {
	LemmatizeTerm(ctx context.Context, lang, term string) (matcher.Concept, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimSpace(os.Getenv("LEMMATIZER_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing LEMMATIZER_BASE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 15
	if v := os.Getenv("LEMMATIZER_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("service", "LemmatizerClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

// NewWithBaseURL bypasses the environment, used by callers that already
// resolved configuration (and by tests).
func NewWithBaseURL(log *logger.Logger, baseURL string, timeout time.Duration) Client {
	return &client{
		log:        log.With("service", "LemmatizerClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type lemmatizeRequest struct {
	Lang    string `json:"lang"`
	Concept string `json:"concept"`
}

type termToken struct {
	Word  string `json:"word"`
	Lemma string `json:"lemma"`
	Num   string `json:"num"`
	Gen   string `json:"gen"`
}

type termResponse struct {
	Text              string `json:"text"`
	LemmatizationData *struct {
		Tokens    []termToken `json:"tokens"`
		HeadIndex int         `json:"head_indx"`
	} `json:"lemmatization_data"`
}

func (c *client) LemmatizeTerm(ctx context.Context, lang, term string) (matcher.Concept, error) {
	payload, err := json.Marshal(lemmatizeRequest{Lang: lang, Concept: term})
	if err != nil {
		return matcher.Concept{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lemmatize_term", bytes.NewReader(payload))
	if err != nil {
		return matcher.Concept{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return matcher.Concept{}, fmt.Errorf("lemmatizer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return matcher.Concept{}, err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("lemmatizer non-200", "status", resp.StatusCode, "body", string(body))
		return matcher.Concept{}, fmt.Errorf("lemmatizer http %d", resp.StatusCode)
	}

	var tr termResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return matcher.Concept{}, fmt.Errorf("lemmatizer response: %w", err)
	}
	// the service signals an unparseable term with an empty object
	if tr.LemmatizationData == nil || len(tr.LemmatizationData.Tokens) == 0 {
		return matcher.Concept{}, fmt.Errorf("%q: %w", term, ErrNotAnalyzable)
	}

	toks := make([]matcher.ConceptToken, len(tr.LemmatizationData.Tokens))
	for i, t := range tr.LemmatizationData.Tokens {
		toks[i] = matcher.ConceptToken{
			Word:   t.Word,
			Lemma:  t.Lemma,
			Number: transcript.ParseNumber(t.Num),
			Gender: transcript.ParseGender(t.Gen),
		}
	}
	head := tr.LemmatizationData.HeadIndex
	if head < 0 || head >= len(toks) {
		head = len(toks) - 1
	}
	return matcher.Concept{Tokens: toks, HeadIndex: head}, nil
}
