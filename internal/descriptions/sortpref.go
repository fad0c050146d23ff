package descriptions

import (
	"fmt"
	"strings"
)

// DefaultSortPref is applied when no preference was stored yet.
const DefaultSortPref = "StartA"

// EncodeSortPref renders a sort preference as the persisted string form:
// the key name followed by "A" (ascending) or "D" (descending).
func EncodeSortPref(key SortKey, ascending bool) string {
	if ascending {
		return string(key) + "A"
	}
	return string(key) + "D"
}

// DecodeSortPref parses a persisted preference string.
func DecodeSortPref(pref string) (SortKey, bool, error) {
	pref = strings.TrimSpace(pref)
	if len(pref) < 2 {
		return "", false, fmt.Errorf("malformed sort preference %q", pref)
	}
	dir := pref[len(pref)-1]
	key := SortKey(pref[:len(pref)-1])
	switch key {
	case SortByConcept, SortByStart, SortByEnd, SortByType:
	default:
		return "", false, fmt.Errorf("unknown sort key in preference %q", pref)
	}
	switch dir {
	case 'A':
		return key, true, nil
	case 'D':
		return key, false, nil
	}
	return "", false, fmt.Errorf("malformed sort direction in preference %q", pref)
}

// ApplySortPref sorts the store by a persisted preference string, falling
// back to the default ordering when the preference is unreadable.
func (s *Store) ApplySortPref(pref string) string {
	key, asc, err := DecodeSortPref(pref)
	if err != nil {
		key, asc, _ = DecodeSortPref(DefaultSortPref)
		s.Sort(key, asc)
		return DefaultSortPref
	}
	s.Sort(key, asc)
	return pref
}
