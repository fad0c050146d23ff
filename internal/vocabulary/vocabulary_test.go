package vocabulary

import (
	"errors"
	"reflect"
	"sort"
	"testing"
)

func seed(t *testing.T, concepts ...string) *Vocabulary {
	t.Helper()
	v := New()
	for _, c := range concepts {
		if err := v.Add(c); err != nil {
			t.Fatalf("Add(%q): %v", c, err)
		}
	}
	return v
}

func sorted(list []string) []string {
	out := append([]string(nil), list...)
	sort.Strings(out)
	return out
}

func TestAddConcept(t *testing.T) {
	v := seed(t, "polygon")
	if err := v.Add("polygon"); !errors.Is(err, ErrDuplicateConcept) {
		t.Fatalf("err = %v, want duplicate", err)
	}
	if err := v.Add(""); !errors.Is(err, ErrEmptyConcept) {
		t.Fatalf("err = %v, want empty", err)
	}
	if got := v.Concepts(); !reflect.DeepEqual(got, []string{"polygon"}) {
		t.Fatalf("concepts = %v", got)
	}
}

func TestSynonymSetErrors(t *testing.T) {
	v := seed(t, "a")
	if _, err := v.SynonymSet("missing"); !errors.Is(err, ErrNotAConcept) {
		t.Fatalf("err = %v, want not a concept", err)
	}
	set, err := v.SynonymSet("a")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(set, []string{"a"}) {
		t.Fatalf("set = %v", set)
	}
}

func TestAddSynonymCliqueClosure(t *testing.T) {
	// B is a synonym of A; adding C to A's set must connect C to B too.
	v := seed(t, "a", "b", "c")
	if err := v.AddSynonym("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := v.AddSynonym("a", "c"); err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{
		"a": {"b", "c"},
		"b": {"a", "c"},
		"c": {"a", "b"},
	}
	got := v.Synonyms()
	for concept, syns := range want {
		if !reflect.DeepEqual(sorted(got[concept]), syns) {
			t.Fatalf("synonyms[%q] = %v, want %v", concept, got[concept], syns)
		}
	}
}

func TestAddSynonymUnionsTwoCliques(t *testing.T) {
	v := seed(t, "a", "b", "c", "d")
	if err := v.AddSynonym("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := v.AddSynonym("c", "d"); err != nil {
		t.Fatal(err)
	}
	// Union {a,b} with {c,d} through one call.
	if err := v.AddSynonym("a", "c"); err != nil {
		t.Fatal(err)
	}
	got := v.Synonyms()
	for _, concept := range []string{"a", "b", "c", "d"} {
		if len(got[concept]) != 3 {
			t.Fatalf("synonyms[%q] = %v, want the other three", concept, got[concept])
		}
	}
}

func TestAddSynonymValidations(t *testing.T) {
	v := seed(t, "a", "b")
	if err := v.AddSynonym("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := v.AddSynonym("a", "b"); !errors.Is(err, ErrAlreadySynonym) {
		t.Fatalf("err = %v, want already synonym", err)
	}
	if err := v.AddSynonym("a", "zz"); !errors.Is(err, ErrNotAConcept) {
		t.Fatalf("err = %v, want not a concept", err)
	}
}

func TestRemoveSynonymDetachesOnlyThatMember(t *testing.T) {
	v := seed(t, "a", "b", "c")
	if err := v.AddSynonym("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := v.AddSynonym("a", "c"); err != nil {
		t.Fatal(err)
	}
	if err := v.RemoveSynonym("a", "c"); err != nil {
		t.Fatal(err)
	}
	got := v.Synonyms()
	if len(got["c"]) != 0 {
		t.Fatalf("synonyms[c] = %v, want empty", got["c"])
	}
	if !reflect.DeepEqual(sorted(got["a"]), []string{"b"}) || !reflect.DeepEqual(sorted(got["b"]), []string{"a"}) {
		t.Fatalf("remaining clique broken: a=%v b=%v", got["a"], got["b"])
	}

	if err := v.RemoveSynonym("a", "c"); !errors.Is(err, ErrNotInSynonymSet) {
		t.Fatalf("err = %v, want not in set", err)
	}
}

func TestDeleteConcept(t *testing.T) {
	v := seed(t, "a", "b", "c")
	if err := v.AddSynonym("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := v.Delete("b"); err != nil {
		t.Fatal(err)
	}
	if v.Has("b") {
		t.Fatal("b still known")
	}
	got := v.Synonyms()
	for concept, syns := range got {
		for _, s := range syns {
			if s == "b" {
				t.Fatalf("synonyms[%q] still lists deleted concept", concept)
			}
		}
	}
	if got := v.Concepts(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("concepts = %v", got)
	}
	if err := v.Delete("b"); !errors.Is(err, ErrNotAConcept) {
		t.Fatalf("err = %v, want not a concept", err)
	}
}
