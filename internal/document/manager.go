package document

import (
	"context"
	"errors"
	"sync"

	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/transcript"
	"github.com/lexivid/annotator-backend/internal/types"
)

var ErrNotOpen = errors.New("no open document for this video and annotator")

// SnapshotStore loads the last saved snapshot for a (video, annotator)
// pair. The second return is false when nothing was ever saved.
type SnapshotStore interface {
	Latest(ctx context.Context, videoID, annotator string) (types.AnnotationSnapshot, bool, error)
}

// Manager keeps one live document per (video, annotator) pair. Opening is
// idempotent: a second open of the same pair returns the existing document
// so two tabs cannot diverge.
type Manager struct {
	mu   sync.RWMutex
	docs map[string]*Document

	log        *logger.Logger
	lemmatizer Lemmatizer
	saver      Saver
	store      SnapshotStore
}

func NewManager(lem Lemmatizer, saver Saver, store SnapshotStore, baseLog *logger.Logger) *Manager {
	return &Manager{
		docs:       make(map[string]*Document),
		log:        baseLog.With("component", "DocumentManager"),
		lemmatizer: lem,
		saver:      saver,
		store:      store,
	}
}

func docKey(videoID, annotator string) string {
	return videoID + "\x00" + annotator
}

// Open builds (or returns) the live document for the pair. When a stored
// snapshot exists it is restored and the transcript re-tagged, otherwise an
// empty document starts from the supplied feed.
func (m *Manager) Open(ctx context.Context, videoID, annotator, language string, feed []transcript.FeedSentence) (*Document, error) {
	key := docKey(videoID, annotator)

	m.mu.RLock()
	if doc, ok := m.docs[key]; ok {
		m.mu.RUnlock()
		return doc, nil
	}
	m.mu.RUnlock()

	tr, err := transcript.FromFeed(feed)
	if err != nil {
		return nil, err
	}

	var doc *Document
	if m.store != nil {
		snap, found, err := m.store.Latest(ctx, videoID, annotator)
		if err != nil {
			return nil, err
		}
		if found {
			doc = Load(snap, tr, m.lemmatizer, m.saver, m.log)
		}
	}
	if doc == nil {
		doc = New(videoID, annotator, language, tr, m.lemmatizer, m.saver, m.log)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.docs[key]; ok {
		// lost the race to another open, keep the first one
		return existing, nil
	}
	m.docs[key] = doc
	m.log.Info("document opened", "video_id", videoID, "annotator", annotator)
	return doc, nil
}

// Get returns the live document, or ErrNotOpen when the client skipped the
// open call.
func (m *Manager) Get(videoID, annotator string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[docKey(videoID, annotator)]
	if !ok {
		return nil, ErrNotOpen
	}
	return doc, nil
}

// Close drops the live document, keeping whatever was last saved.
func (m *Manager) Close(videoID, annotator string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, docKey(videoID, annotator))
}
