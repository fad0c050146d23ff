// Package descriptions stores the timestamped definition/expansion records
// attached to concepts, with the multi-key sorting the annotation list view
// offers.
package descriptions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lexivid/annotator-backend/internal/timeutil"
)

// Type classifies a description record.
type Type string

const (
	TypeDefinition Type = "Definition"
	TypeExpansion  Type = "Expansion"
)

// Description is one timestamped annotation. Start and End are clock
// strings on the video time axis; identity for edit and delete is the
// composite (Concept, Start, End).
type Description struct {
	Concept         string `json:"concept"`
	Start           string `json:"start"`
	End             string `json:"end"`
	ID              int    `json:"id"`
	StartSentID     int    `json:"start_sent_id"`
	EndSentID       int    `json:"end_sent_id"`
	DescriptionType Type   `json:"description_type"`
}

var (
	ErrEmptyConcept = errors.New("concept must be non-empty")
	ErrMissingType  = errors.New("description type must be selected")
	ErrNotFound     = errors.New("description not found")
)

type Store struct {
	items  []Description
	nextID int
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the stored records, e.g. when restoring a snapshot, and
// advances the ID counter past the highest loaded ID.
func (s *Store) Load(items []Description) {
	s.items = append([]Description(nil), items...)
	s.nextID = 0
	for _, d := range s.items {
		if d.ID >= s.nextID {
			s.nextID = d.ID + 1
		}
	}
}

// All returns a copy of the records in their current order.
func (s *Store) All() []Description {
	return append([]Description(nil), s.items...)
}

func (s *Store) Len() int { return len(s.items) }

// ForConcept returns the records attached to the concept. Used for
// referential-integrity checks before concept deletion.
func (s *Store) ForConcept(concept string) []Description {
	var out []Description
	for _, d := range s.items {
		if d.Concept == concept {
			out = append(out, d)
		}
	}
	return out
}

// RemoveConcept drops every record attached to the concept.
func (s *Store) RemoveConcept(concept string) int {
	kept := s.items[:0]
	removed := 0
	for _, d := range s.items {
		if d.Concept == concept {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	s.items = kept
	return removed
}

// Add appends a record, assigning the next synthetic ID.
func (s *Store) Add(concept, start, end string, startSentID, endSentID int, typ Type) (Description, error) {
	if concept == "" {
		return Description{}, ErrEmptyConcept
	}
	if typ != TypeDefinition && typ != TypeExpansion {
		return Description{}, fmt.Errorf("%q: %w", typ, ErrMissingType)
	}
	d := Description{
		Concept:         concept,
		Start:           start,
		End:             end,
		ID:              s.nextID,
		StartSentID:     startSentID,
		EndSentID:       endSentID,
		DescriptionType: typ,
	}
	s.nextID++
	s.items = append(s.items, d)
	return d, nil
}

// Edit rewrites the record identified by the composite key in place.
func (s *Store) Edit(concept, start, end string, upd Description) error {
	for i, d := range s.items {
		if d.Concept == concept && d.Start == start && d.End == end {
			upd.Concept = d.Concept
			upd.ID = d.ID
			s.items[i] = upd
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes the record identified by the composite key.
func (s *Store) Delete(concept, start, end string) error {
	for i, d := range s.items {
		if d.Concept == concept && d.Start == start && d.End == end {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SortKey selects the comparator for Sort.
type SortKey string

const (
	SortByConcept SortKey = "Concept"
	SortByStart   SortKey = "Start"
	SortByEnd     SortKey = "End"
	SortByType    SortKey = "Type"
)

// Sort orders the records in place. Type sorts break ties by concept
// ascending; the sort is stable, so equal keys keep their insertion order.
func (s *Store) Sort(key SortKey, ascending bool) {
	var less func(a, b Description) bool
	switch key {
	case SortByConcept:
		less = func(a, b Description) bool {
			if ascending {
				return a.Concept < b.Concept
			}
			return a.Concept > b.Concept
		}
	case SortByStart:
		less = func(a, b Description) bool {
			at, bt := timeutil.ClockToSeconds(a.Start), timeutil.ClockToSeconds(b.Start)
			if ascending {
				return at < bt
			}
			return at > bt
		}
	case SortByEnd:
		less = func(a, b Description) bool {
			at, bt := timeutil.ClockToSeconds(a.End), timeutil.ClockToSeconds(b.End)
			if ascending {
				return at < bt
			}
			return at > bt
		}
	case SortByType:
		less = func(a, b Description) bool {
			if a.DescriptionType != b.DescriptionType {
				if ascending {
					return a.DescriptionType < b.DescriptionType
				}
				return a.DescriptionType > b.DescriptionType
			}
			return a.Concept < b.Concept
		}
	default:
		return
	}
	sort.SliceStable(s.items, func(i, j int) bool { return less(s.items[i], s.items[j]) })
}
