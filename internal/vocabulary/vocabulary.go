// Package vocabulary maintains the ordered concept list and the synonym
// cliques declared among concepts.
//
// The synonym map is kept symmetric: whenever B lists A, A lists B. Adding a
// synonym unions the two cliques into a fully connected one; removing a
// member only detaches it, since the remaining members never depended on it
// for their own mutual links.
package vocabulary

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyConcept     = errors.New("concept must be non-empty")
	ErrNotAConcept      = errors.New("not a concept")
	ErrDuplicateConcept = errors.New("concept already present")
	ErrAlreadySynonym   = errors.New("already in the synonym set")
	ErrNotInSynonymSet  = errors.New("not in the selected synonym set")
)

type Vocabulary struct {
	concepts []string // sorted
	synonyms map[string][]string
}

func New() *Vocabulary {
	return &Vocabulary{synonyms: make(map[string][]string)}
}

// Load replaces the vocabulary wholesale from a stored snapshot.
func (v *Vocabulary) Load(synonyms map[string][]string) {
	v.concepts = v.concepts[:0]
	v.synonyms = make(map[string][]string, len(synonyms))
	for concept, syns := range synonyms {
		v.concepts = append(v.concepts, concept)
		v.synonyms[concept] = append([]string(nil), syns...)
	}
	sort.Strings(v.concepts)
}

func (v *Vocabulary) Has(concept string) bool {
	_, ok := v.synonyms[concept]
	return ok
}

// Concepts returns the known concepts in lexical order.
func (v *Vocabulary) Concepts() []string {
	return append([]string(nil), v.concepts...)
}

// Synonyms returns a copy of the full concept→synonyms mapping.
func (v *Vocabulary) Synonyms() map[string][]string {
	out := make(map[string][]string, len(v.synonyms))
	for concept, syns := range v.synonyms {
		out[concept] = append([]string(nil), syns...)
	}
	return out
}

// Add registers a new concept with an empty synonym list.
func (v *Vocabulary) Add(concept string) error {
	if concept == "" {
		return ErrEmptyConcept
	}
	if v.Has(concept) {
		return ErrDuplicateConcept
	}
	v.synonyms[concept] = nil
	v.concepts = append(v.concepts, concept)
	sort.Strings(v.concepts)
	return nil
}

// SynonymSet returns the concept's clique including the concept itself: the
// set a subsequent AddSynonym or RemoveSynonym operates on.
func (v *Vocabulary) SynonymSet(concept string) ([]string, error) {
	if concept == "" {
		return nil, ErrEmptyConcept
	}
	syns, ok := v.synonyms[concept]
	if !ok {
		return nil, fmt.Errorf("%q: %w", concept, ErrNotAConcept)
	}
	return append([]string{concept}, syns...), nil
}

func appendMissing(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func remove(list []string, item string) []string {
	kept := list[:0]
	for _, existing := range list {
		if existing != item {
			kept = append(kept, existing)
		}
	}
	return kept
}

// AddSynonym declares synonym a member of setOf's clique. Both cliques are
// unioned: every member of each becomes a synonym of every member of the
// other, so the result is again fully connected.
func (v *Vocabulary) AddSynonym(setOf, synonym string) error {
	if synonym == "" {
		return ErrEmptyConcept
	}
	selected, err := v.SynonymSet(setOf)
	if err != nil {
		return err
	}
	if !v.Has(synonym) {
		return fmt.Errorf("%q: %w", synonym, ErrNotAConcept)
	}
	for _, member := range selected {
		if member == synonym {
			return fmt.Errorf("%q: %w", synonym, ErrAlreadySynonym)
		}
	}

	for _, other := range v.synonyms[synonym] {
		for _, member := range selected {
			v.synonyms[member] = appendMissing(v.synonyms[member], other)
			v.synonyms[other] = appendMissing(v.synonyms[other], member)
		}
	}
	for _, member := range selected {
		v.synonyms[member] = appendMissing(v.synonyms[member], synonym)
		v.synonyms[synonym] = appendMissing(v.synonyms[synonym], member)
	}
	return nil
}

// RemoveSynonym detaches synonym from setOf's clique: its own list is
// cleared and every other member drops it. The remaining members keep their
// mutual links.
func (v *Vocabulary) RemoveSynonym(setOf, synonym string) error {
	if synonym == "" {
		return ErrEmptyConcept
	}
	selected, err := v.SynonymSet(setOf)
	if err != nil {
		return err
	}
	if !v.Has(synonym) {
		return fmt.Errorf("%q: %w", synonym, ErrNotAConcept)
	}
	found := false
	for _, member := range selected {
		if member == synonym {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%q: %w", synonym, ErrNotInSynonymSet)
	}

	v.synonyms[synonym] = nil
	for _, member := range selected {
		if member != synonym {
			v.synonyms[member] = remove(v.synonyms[member], synonym)
		}
	}
	return nil
}

// Delete removes the concept entirely: its own entry, its appearance in
// every other concept's synonym list, and its slot in the concept list.
// Referential-integrity checks against relations and descriptions are the
// caller's responsibility.
func (v *Vocabulary) Delete(concept string) error {
	if !v.Has(concept) {
		return fmt.Errorf("%q: %w", concept, ErrNotAConcept)
	}
	delete(v.synonyms, concept)
	for other := range v.synonyms {
		v.synonyms[other] = remove(v.synonyms[other], concept)
	}
	v.concepts = remove(v.concepts, concept)
	return nil
}
