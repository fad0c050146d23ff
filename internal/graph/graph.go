// Package graph maintains the prerequisite relation set over concepts as a
// directed acyclic graph. Acyclicity is enforced at insertion time: the graph
// has no other gate, so every edge must come in through Add or Replace.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Weight qualifies how strongly the prerequisite is needed.
type Weight string

const (
	WeightStrong Weight = "Strong"
	WeightWeak   Weight = "Weak"
)

// Relation is one prerequisite edge. Time, SentID and WordID anchor the edge
// to the moment and transcript position it was drawn at; XYWH optionally
// carries a percent-encoded bounding box on the video frame.
type Relation struct {
	Prerequisite string `json:"prerequisite"`
	Target       string `json:"target"`
	Weight       Weight `json:"weight"`
	Time         string `json:"time"`
	SentID       int    `json:"sent_id"`
	WordID       int    `json:"word_id"`
	XYWH         string `json:"xywh"`
}

var (
	ErrEmptyConcept   = errors.New("relation concepts must be non-empty")
	ErrSelfLoop       = errors.New("a concept cannot be a prerequisite of itself")
	ErrCycle          = errors.New("relation would create a cycle")
	ErrDuplicateEdge  = errors.New("relation already exists")
	ErrNotFound       = errors.New("relation not found")
	ErrUnknownConcept = errors.New("not a concept")
)

// Graph is the mutable edge set.
type Graph struct {
	relations []Relation
}

func New() *Graph {
	return &Graph{}
}

// Load replaces the edge set wholesale, e.g. when restoring a stored
// snapshot. The caller is trusted to hand over an acyclic set.
func (g *Graph) Load(relations []Relation) {
	g.relations = append([]Relation(nil), relations...)
}

// Relations returns a copy of the edge set.
func (g *Graph) Relations() []Relation {
	return append([]Relation(nil), g.relations...)
}

func (g *Graph) Len() int { return len(g.relations) }

// References reports whether the concept appears as either endpoint of any
// edge. Used for referential-integrity checks before concept deletion.
func (g *Graph) References(concept string) []Relation {
	var out []Relation
	for _, r := range g.relations {
		if r.Prerequisite == concept || r.Target == concept {
			out = append(out, r)
		}
	}
	return out
}

// RemoveConcept drops every edge touching the concept. Returns the number of
// edges removed.
func (g *Graph) RemoveConcept(concept string) int {
	kept := g.relations[:0]
	removed := 0
	for _, r := range g.relations {
		if r.Prerequisite == concept || r.Target == concept {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	g.relations = kept
	return removed
}

func (g *Graph) validate(rel Relation, known func(string) bool, skipIdx int) error {
	if rel.Prerequisite == "" || rel.Target == "" {
		return ErrEmptyConcept
	}
	if known != nil {
		if !known(rel.Prerequisite) {
			return fmt.Errorf("%q: %w", rel.Prerequisite, ErrUnknownConcept)
		}
		if !known(rel.Target) {
			return fmt.Errorf("%q: %w", rel.Target, ErrUnknownConcept)
		}
	}
	if rel.Prerequisite == rel.Target {
		return ErrSelfLoop
	}
	if g.reaches(rel.Target, rel.Prerequisite, skipIdx) {
		return ErrCycle
	}
	for i, r := range g.relations {
		if i == skipIdx {
			continue
		}
		if r.Prerequisite == rel.Prerequisite && r.Target == rel.Target &&
			r.SentID == rel.SentID && r.WordID == rel.WordID {
			return ErrDuplicateEdge
		}
	}
	return nil
}

// Add inserts the edge after validating endpoints, self-loop, cycle and
// exact duplication. known, when non-nil, gates endpoints against the set of
// known concepts.
func (g *Graph) Add(rel Relation, known func(string) bool) error {
	if err := g.validate(rel, known, -1); err != nil {
		return err
	}
	g.relations = append(g.relations, rel)
	return nil
}

// Replace swaps the edge at index i for an edit-in-place flow, running the
// same validations with the replaced edge excluded.
func (g *Graph) Replace(i int, rel Relation, known func(string) bool) error {
	if i < 0 || i >= len(g.relations) {
		return ErrNotFound
	}
	if err := g.validate(rel, known, i); err != nil {
		return err
	}
	g.relations[i] = rel
	return nil
}

// Delete removes the first edge matching the full identifying tuple.
func (g *Graph) Delete(prerequisite, target string, weight Weight, time string) error {
	for i, r := range g.relations {
		if r.Prerequisite == prerequisite && r.Target == target &&
			r.Weight == weight && r.Time == time {
			g.relations = append(g.relations[:i], g.relations[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ChangeWeight mutates the weight of the edge identified by endpoints and
// time.
func (g *Graph) ChangeWeight(prerequisite, target, time string, weight Weight) error {
	for i, r := range g.relations {
		if r.Prerequisite == prerequisite && r.Target == target && r.Time == time {
			g.relations[i].Weight = weight
			return nil
		}
	}
	return ErrNotFound
}

// neighbors returns every concept reachable via a single prerequisite edge
// from the given concept.
func (g *Graph) neighbors(concept string, skipIdx int) []string {
	var out []string
	for i, r := range g.relations {
		if i == skipIdx {
			continue
		}
		if r.Prerequisite == concept {
			out = append(out, r.Target)
		}
	}
	return out
}

// reaches reports whether to is reachable from from. Depth-first with a
// visited set: reachability is the only property needed, and the visited set
// guarantees termination even on a corrupted edge set.
func (g *Graph) reaches(from, to string, skipIdx int) bool {
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.neighbors(curr, skipIdx) {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// SortKey selects the comparator for Sort.
type SortKey string

const (
	SortByConcept      SortKey = "Concept"
	SortByPrerequisite SortKey = "Prerequisite"
	SortByWeight       SortKey = "Weight"
	SortByStartTime    SortKey = "Start time"
)

// Sort orders the edge set in place. Ties break by the companion endpoint
// ascending, regardless of direction.
func (g *Graph) Sort(key SortKey, ascending bool, clockToSeconds func(string) float64) {
	less := func(a, b Relation) bool { return false }
	switch key {
	case SortByConcept:
		less = func(a, b Relation) bool {
			if a.Target != b.Target {
				if ascending {
					return a.Target < b.Target
				}
				return a.Target > b.Target
			}
			return a.Prerequisite < b.Prerequisite
		}
	case SortByPrerequisite:
		less = func(a, b Relation) bool {
			if a.Prerequisite != b.Prerequisite {
				if ascending {
					return a.Prerequisite < b.Prerequisite
				}
				return a.Prerequisite > b.Prerequisite
			}
			return a.Target < b.Target
		}
	case SortByWeight:
		less = func(a, b Relation) bool {
			if a.Weight != b.Weight {
				if ascending {
					return a.Weight < b.Weight
				}
				return a.Weight > b.Weight
			}
			return a.Target < b.Target
		}
	case SortByStartTime:
		less = func(a, b Relation) bool {
			at, bt := clockToSeconds(a.Time), clockToSeconds(b.Time)
			if ascending {
				return at < bt
			}
			return at > bt
		}
	}
	sort.SliceStable(g.relations, func(i, j int) bool { return less(g.relations[i], g.relations[j]) })
}
