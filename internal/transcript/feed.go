package transcript

import (
	"encoding/json"
	"fmt"
	"io"
)

// FeedToken mirrors one token of the external lemmatization feed.
type FeedToken struct {
	Word      string  `json:"word"`
	Lemma     string  `json:"lemma"`
	CPOS      string  `json:"cpos"`
	POS       string  `json:"pos"`
	Gen       string  `json:"gen"`
	Num       string  `json:"num"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	SentID    int     `json:"sent_id"`
	WordID    int     `json:"word_id"`
}

// FeedSentence mirrors one timed sentence of the feed.
type FeedSentence struct {
	Start float64     `json:"start"`
	End   float64     `json:"end"`
	Words []FeedToken `json:"words"`
}

// FromFeed builds the immutable transcript from the external feed.
func FromFeed(sentences []FeedSentence) (*Transcript, error) {
	if len(sentences) == 0 {
		return nil, fmt.Errorf("transcript feed has no sentences")
	}
	tr := &Transcript{Sentences: make([]*Sentence, 0, len(sentences))}
	for si, fs := range sentences {
		sent := &Sentence{StartTime: fs.Start, EndTime: fs.End}
		for wi, fw := range fs.Words {
			if fw.Word == "" {
				return nil, fmt.Errorf("transcript feed: empty word at sentence %d index %d", si, wi)
			}
			coarse := fw.CPOS
			if coarse == "" {
				coarse = fw.POS
			}
			sentID := fw.SentID
			if sentID == 0 {
				sentID = si
			}
			wordID := fw.WordID
			if wordID == 0 {
				wordID = wi
			}
			sent.Tokens = append(sent.Tokens, &Token{
				Surface:   fw.Word,
				Lemma:     fw.Lemma,
				POS:       coarse,
				FinePOS:   fw.POS,
				Number:    ParseNumber(fw.Num),
				Gender:    ParseGender(fw.Gen),
				StartTime: fw.StartTime,
				EndTime:   fw.EndTime,
				SentID:    sentID,
				WordID:    wordID,
			})
		}
		tr.Sentences = append(tr.Sentences, sent)
	}
	return tr, nil
}

// Decode reads a JSON feed (an array of timed sentences) into a transcript.
func Decode(r io.Reader) (*Transcript, error) {
	var sentences []FeedSentence
	if err := json.NewDecoder(r).Decode(&sentences); err != nil {
		return nil, fmt.Errorf("decode transcript feed: %w", err)
	}
	return FromFeed(sentences)
}
