// Package document ties the transcript, the concept vocabulary, the
// prerequisite graph and the description store together into one annotation
// session. All mutations funnel through here so that every accepted change
// leaves the in-memory state and the persisted snapshot in agreement.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lexivid/annotator-backend/internal/descriptions"
	"github.com/lexivid/annotator-backend/internal/graph"
	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/matcher"
	"github.com/lexivid/annotator-backend/internal/timeutil"
	"github.com/lexivid/annotator-backend/internal/transcript"
	"github.com/lexivid/annotator-backend/internal/types"
	"github.com/lexivid/annotator-backend/internal/vocabulary"
)

// Lemmatizer resolves a raw term typed by the annotator into its analyzed
// form (per-word lemmas, number, gender and the syntactic head).
type Lemmatizer interface {
	LemmatizeTerm(ctx context.Context, lang, term string) (matcher.Concept, error)
}

// Saver persists the full snapshot after each accepted mutation.
type Saver interface {
	Save(ctx context.Context, snap types.AnnotationSnapshot) error
}

var (
	ErrEmptyTerm       = errors.New("term must be non-empty")
	ErrUnknownConcept  = errors.New("not a concept")
	ErrRelationMissing = errors.New("relation endpoints must be selected")
)

// ConceptInUseError reports a concept deletion blocked by prerequisite
// relations that still reference it.
type ConceptInUseError struct {
	Concept    string
	Dependents []string
}

func (e *ConceptInUseError) Error() string {
	return fmt.Sprintf("concept %q is referenced by relations with: %s",
		e.Concept, strings.Join(e.Dependents, ", "))
}

// Document is one open annotation session for a video. A single mutex
// serializes mutations; reads copy out so handlers never hold internal state.
type Document struct {
	mu sync.Mutex

	log        *logger.Logger
	lemmatizer Lemmatizer
	saver      Saver

	videoID   string
	annotator string
	language  string
	completed bool

	tr    *transcript.Transcript
	vocab *vocabulary.Vocabulary
	rels  *graph.Graph
	descs *descriptions.Store

	// analyzed term per concept name, kept so re-matching after a reload
	// does not need another lemmatizer round-trip
	terms   map[string]matcher.Concept
	results map[string]*matcher.Result

	addGroup singleflight.Group
}

// New opens an empty document over a transcript.
func New(videoID, annotator, language string, tr *transcript.Transcript, lem Lemmatizer, saver Saver, baseLog *logger.Logger) *Document {
	return &Document{
		log:        baseLog.With("component", "Document", "video_id", videoID),
		lemmatizer: lem,
		saver:      saver,
		videoID:    videoID,
		annotator:  annotator,
		language:   language,
		tr:         tr,
		vocab:      vocabulary.New(),
		rels:       graph.New(),
		descs:      descriptions.NewStore(),
		terms:      make(map[string]matcher.Concept),
		results:    make(map[string]*matcher.Result),
	}
}

// Load restores a document from a previously saved snapshot and re-tags the
// transcript from the vocabulary. Concept names in a snapshot are already
// lemma phrases, so the tagging pass runs without the lemmatizer.
func Load(snap types.AnnotationSnapshot, tr *transcript.Transcript, lem Lemmatizer, saver Saver, baseLog *logger.Logger) *Document {
	d := New(snap.ID, snap.Annotator, snap.Language, tr, lem, saver, baseLog)
	d.completed = snap.IsCompleted
	d.vocab.Load(snap.ConceptVocabulary)
	d.rels.Load(snap.Relations)
	d.descs.Load(snap.Definitions)
	for _, name := range d.vocab.Concepts() {
		c := conceptFromPhrase(name)
		d.terms[name] = c
		d.results[name] = matcher.Match(c, tr)
	}
	return d
}

// conceptFromPhrase rebuilds a matcher concept from a stored lemma phrase.
// Morphological features are unknown at this point; the matcher treats zero
// values as "unspecified" so occurrence tagging still works.
func conceptFromPhrase(name string) matcher.Concept {
	words := strings.Fields(name)
	toks := make([]matcher.ConceptToken, len(words))
	for i, w := range words {
		toks[i] = matcher.ConceptToken{Word: w, Lemma: w}
	}
	return matcher.Concept{Tokens: toks, HeadIndex: len(toks) - 1}
}

func (d *Document) VideoID() string   { return d.videoID }
func (d *Document) Annotator() string { return d.annotator }
func (d *Document) Language() string  { return d.language }

func (d *Document) Completed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.completed
}

func (d *Document) Concepts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vocab.Concepts()
}

func (d *Document) ConceptVocabulary() map[string][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vocab.Synonyms()
}

func (d *Document) Relations() []graph.Relation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rels.Relations()
}

func (d *Document) Definitions() []descriptions.Description {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.descs.All()
}

func (d *Document) Transcript() *transcript.Transcript { return d.tr }

// Occurrences returns the match result recorded when the concept was added,
// or nil when the concept never appeared in the transcript.
func (d *Document) Occurrences(name string) *matcher.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results[name]
}

// Snapshot assembles the full wire form of the current state.
func (d *Document) Snapshot() types.AnnotationSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Document) snapshotLocked() types.AnnotationSnapshot {
	return types.AnnotationSnapshot{
		ID:                d.videoID,
		Relations:         d.rels.Relations(),
		Definitions:       d.descs.All(),
		Annotator:         d.annotator,
		ConceptVocabulary: d.vocab.Synonyms(),
		Language:          d.language,
		IsCompleted:       d.completed,
	}
}

func (d *Document) saveLocked(ctx context.Context, op string) error {
	if d.saver == nil {
		return nil
	}
	if err := d.saver.Save(ctx, d.snapshotLocked()); err != nil {
		d.log.Error("snapshot save failed", "op", op, "error", err)
		return fmt.Errorf("save after %s: %w", op, err)
	}
	return nil
}

// AddConcept lemmatizes the typed term, adds the resulting lemma phrase to
// the vocabulary and tags every occurrence in the transcript. Concurrent
// adds of the same term share one lemmatizer round-trip.
func (d *Document) AddConcept(ctx context.Context, term string) (*matcher.Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	key := strings.ToLower(term)
	v, err, _ := d.addGroup.Do(key, func() (interface{}, error) {
		c, err := d.lemmatizer.LemmatizeTerm(ctx, d.language, term)
		if err != nil {
			return nil, fmt.Errorf("lemmatize %q: %w", term, err)
		}
		return d.addAnalyzed(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return v.(*matcher.Result), nil
}

func (d *Document) addAnalyzed(ctx context.Context, c matcher.Concept) (*matcher.Result, error) {
	name := c.LemmaPhrase()
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.vocab.Add(name); err != nil {
		return nil, err
	}
	res := matcher.Match(c, d.tr)
	d.terms[name] = c
	d.results[name] = res
	if err := d.saveLocked(ctx, "add concept"); err != nil {
		return nil, err
	}
	d.log.Info("concept added", "concept", name, "occurrences", len(res.Spans))
	return res, nil
}

// DeleteConcept removes a concept with no remaining relation references.
// Descriptions of the concept are removed along with it; relations block the
// deletion and are reported back so the annotator can detach them first.
func (d *Document) DeleteConcept(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.vocab.Has(name) {
		return ErrUnknownConcept
	}
	if refs := d.rels.References(name); len(refs) > 0 {
		deps := make(map[string]struct{}, len(refs))
		for _, r := range refs {
			other := r.Prerequisite
			if other == name {
				other = r.Target
			}
			deps[other] = struct{}{}
		}
		list := make([]string, 0, len(deps))
		for dep := range deps {
			list = append(list, dep)
		}
		sort.Strings(list)
		return &ConceptInUseError{Concept: name, Dependents: list}
	}
	if err := d.vocab.Delete(name); err != nil {
		return err
	}
	d.descs.RemoveConcept(name)
	d.tr.RemoveConceptTags(conceptTag(name))
	delete(d.terms, name)
	delete(d.results, name)
	if err := d.saveLocked(ctx, "delete concept"); err != nil {
		return err
	}
	d.log.Info("concept deleted", "concept", name)
	return nil
}

// conceptTag is the token-level identifier, the lemma phrase with spaces
// collapsed to underscores.
func conceptTag(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// AddSynonym lemmatizes the typed word and declares it a synonym of every
// member of the selected concept's synonym set.
func (d *Document) AddSynonym(ctx context.Context, setOf, raw string) error {
	name, err := d.resolveTerm(ctx, raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.vocab.AddSynonym(setOf, name); err != nil {
		return err
	}
	return d.saveLocked(ctx, "add synonym")
}

// RemoveSynonym detaches the typed word from the selected concept's synonym
// set.
func (d *Document) RemoveSynonym(ctx context.Context, setOf, raw string) error {
	name, err := d.resolveTerm(ctx, raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.vocab.RemoveSynonym(setOf, name); err != nil {
		return err
	}
	return d.saveLocked(ctx, "remove synonym")
}

// SynonymSet reports the full synonym set the concept belongs to, the
// concept itself included.
func (d *Document) SynonymSet(name string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vocab.SynonymSet(name)
}

// resolveTerm turns raw annotator input into the lemma phrase used as a
// vocabulary key. Terms whose analyzed form is already in the vocabulary
// reuse the cached analysis.
func (d *Document) resolveTerm(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyTerm
	}
	d.mu.Lock()
	if d.vocab.Has(raw) {
		d.mu.Unlock()
		return raw, nil
	}
	d.mu.Unlock()
	c, err := d.lemmatizer.LemmatizeTerm(ctx, d.language, raw)
	if err != nil {
		return "", fmt.Errorf("lemmatize %q: %w", raw, err)
	}
	return c.LemmaPhrase(), nil
}

// AddRelation validates and inserts a prerequisite edge. A missing sentence
// anchor is recovered from the target's nearest tagged occurrence at the
// relation's timestamp.
func (d *Document) AddRelation(ctx context.Context, rel graph.Relation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.anchorLocked(&rel)
	normalizeWeight(&rel)
	if err := d.rels.Add(rel, d.vocab.Has); err != nil {
		return err
	}
	if err := d.saveLocked(ctx, "add relation"); err != nil {
		return err
	}
	d.log.Info("relation added", "prerequisite", rel.Prerequisite, "target", rel.Target, "weight", rel.Weight)
	return nil
}

// ReplaceRelation swaps the relation at index i for a corrected one,
// revalidating as if the old edge were absent.
func (d *Document) ReplaceRelation(ctx context.Context, i int, rel graph.Relation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.anchorLocked(&rel)
	normalizeWeight(&rel)
	if err := d.rels.Replace(i, rel, d.vocab.Has); err != nil {
		return err
	}
	return d.saveLocked(ctx, "replace relation")
}

// DeleteRelation removes the edge matching the identifying tuple.
func (d *Document) DeleteRelation(ctx context.Context, prerequisite, target string, weight graph.Weight, time string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rels.Delete(prerequisite, target, weight, time); err != nil {
		return err
	}
	return d.saveLocked(ctx, "delete relation")
}

// ChangeWeight flips the weight of an existing edge in place.
func (d *Document) ChangeWeight(ctx context.Context, prerequisite, target, time string, weight graph.Weight) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rels.ChangeWeight(prerequisite, target, time, weight); err != nil {
		return err
	}
	return d.saveLocked(ctx, "change weight")
}

func (d *Document) anchorLocked(rel *graph.Relation) {
	if rel.SentID != 0 || rel.Time == "" {
		return
	}
	at := timeutil.ClockToSeconds(rel.Time)
	rel.SentID, rel.WordID = d.tr.ConceptAnchor(at, conceptTag(rel.Target))
}

func normalizeWeight(rel *graph.Relation) {
	switch strings.ToLower(string(rel.Weight)) {
	case "weak":
		rel.Weight = graph.WeightWeak
	default:
		rel.Weight = graph.WeightStrong
	}
}

// AddDescription records a definition or in-depth segment for a concept.
func (d *Document) AddDescription(ctx context.Context, concept, start, end string, startSentID, endSentID int, typ descriptions.Type) (descriptions.Description, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.vocab.Has(concept) {
		return descriptions.Description{}, ErrUnknownConcept
	}
	desc, err := d.descs.Add(concept, start, end, startSentID, endSentID, typ)
	if err != nil {
		return descriptions.Description{}, err
	}
	if err := d.saveLocked(ctx, "add description"); err != nil {
		return descriptions.Description{}, err
	}
	return desc, nil
}

// EditDescription rewrites the description identified by its composite key.
func (d *Document) EditDescription(ctx context.Context, concept, start, end string, upd descriptions.Description) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.descs.Edit(concept, start, end, upd); err != nil {
		return err
	}
	return d.saveLocked(ctx, "edit description")
}

// DeleteDescription removes the description identified by its composite key.
func (d *Document) DeleteDescription(ctx context.Context, concept, start, end string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.descs.Delete(concept, start, end); err != nil {
		return err
	}
	return d.saveLocked(ctx, "delete description")
}

// SortDescriptions applies a persisted sort preference and returns both the
// sorted copy and the preference actually applied.
func (d *Document) SortDescriptions(pref string) ([]descriptions.Description, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	applied := d.descs.ApplySortPref(pref)
	return d.descs.All(), applied
}

// SortRelations returns the relation list ordered by the requested column.
func (d *Document) SortRelations(key graph.SortKey, ascending bool) []graph.Relation {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rels.Sort(key, ascending, timeutil.ClockToSeconds)
	return d.rels.Relations()
}

// SetCompleted toggles the review flag carried with the snapshot.
func (d *Document) SetCompleted(ctx context.Context, completed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completed = completed
	return d.saveLocked(ctx, "set completed")
}
