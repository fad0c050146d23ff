package descriptions

import (
	"errors"
	"testing"
)

func seed(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	add := func(concept, start, end string, typ Type) {
		t.Helper()
		if _, err := s.Add(concept, start, end, 0, 0, typ); err != nil {
			t.Fatalf("Add(%q): %v", concept, err)
		}
	}
	add("polygon", "00:01:00", "00:02:00", TypeDefinition)
	add("angle", "00:01:00", "00:03:00", TypeExpansion)
	add("vertex", "00:05:00", "00:06:00", TypeDefinition)
	return s
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	s := seed(t)
	items := s.All()
	for i, d := range items {
		if d.ID != i {
			t.Fatalf("item %d has id %d", i, d.ID)
		}
	}
}

func TestAddValidations(t *testing.T) {
	s := NewStore()
	if _, err := s.Add("", "00:00:01", "00:00:02", 0, 0, TypeDefinition); !errors.Is(err, ErrEmptyConcept) {
		t.Fatalf("err = %v, want empty concept", err)
	}
	if _, err := s.Add("a", "00:00:01", "00:00:02", 0, 0, Type("")); !errors.Is(err, ErrMissingType) {
		t.Fatalf("err = %v, want missing type", err)
	}
}

func TestEditPreservesIdentity(t *testing.T) {
	s := seed(t)
	err := s.Edit("polygon", "00:01:00", "00:02:00", Description{
		Start:           "00:01:30",
		End:             "00:02:30",
		StartSentID:     2,
		EndSentID:       3,
		DescriptionType: TypeExpansion,
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	var got Description
	for _, d := range s.All() {
		if d.Concept == "polygon" {
			got = d
		}
	}
	if got.ID != 0 || got.Start != "00:01:30" || got.DescriptionType != TypeExpansion {
		t.Fatalf("edited = %+v", got)
	}

	if err := s.Edit("polygon", "00:01:00", "00:02:00", Description{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDeleteByCompositeKey(t *testing.T) {
	s := seed(t)
	if err := s.Delete("angle", "00:01:00", "00:03:00"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	if err := s.Delete("angle", "00:01:00", "00:03:00"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSortStartAscendingTieBreaksByInsertion(t *testing.T) {
	s := seed(t)
	s.Sort(SortByStart, true)
	items := s.All()
	// polygon and angle share the start time; stable sort keeps insertion
	// order between them.
	if items[0].Concept != "polygon" || items[1].Concept != "angle" || items[2].Concept != "vertex" {
		t.Fatalf("order = %v %v %v", items[0].Concept, items[1].Concept, items[2].Concept)
	}
}

func TestSortConceptThenStartTieBreak(t *testing.T) {
	s := seed(t)
	// Sorting by Start then by Concept: equal start times end up ordered by
	// concept because the second sort is stable over the first.
	s.Sort(SortByStart, true)
	s.Sort(SortByConcept, true)
	items := s.All()
	if items[0].Concept != "angle" || items[1].Concept != "polygon" || items[2].Concept != "vertex" {
		t.Fatalf("order = %v %v %v", items[0].Concept, items[1].Concept, items[2].Concept)
	}
}

func TestSortTypeTieBreaksByConcept(t *testing.T) {
	s := seed(t)
	s.Sort(SortByType, true)
	items := s.All()
	if items[0].DescriptionType != TypeDefinition || items[0].Concept != "polygon" {
		t.Fatalf("first = %+v", items[0])
	}
	if items[1].Concept != "vertex" {
		t.Fatalf("second = %+v", items[1])
	}
	if items[2].DescriptionType != TypeExpansion {
		t.Fatalf("third = %+v", items[2])
	}
}

func TestSortPrefRoundTrip(t *testing.T) {
	cases := []struct {
		key SortKey
		asc bool
	}{
		{SortByConcept, true},
		{SortByStart, false},
		{SortByEnd, true},
		{SortByType, false},
	}
	for _, tc := range cases {
		pref := EncodeSortPref(tc.key, tc.asc)
		key, asc, err := DecodeSortPref(pref)
		if err != nil {
			t.Fatalf("DecodeSortPref(%q): %v", pref, err)
		}
		if key != tc.key || asc != tc.asc {
			t.Fatalf("round trip %q -> %v %v", pref, key, asc)
		}
	}
}

func TestApplySortPrefFallsBack(t *testing.T) {
	s := seed(t)
	if got := s.ApplySortPref("bogus"); got != DefaultSortPref {
		t.Fatalf("applied = %q, want default", got)
	}
	items := s.All()
	if items[0].Concept != "polygon" {
		t.Fatalf("default order first = %q", items[0].Concept)
	}
}
