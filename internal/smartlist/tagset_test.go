package smartlist

import (
	"reflect"
	"testing"
)

func TestTagSetUnionKeepsOrderAndDedupes(t *testing.T) {
	s := NewTagSet("House", "", "Deep", "House")
	got := s.Union("Dub", "Deep").Names()
	want := []string{"House", "Deep", "Dub"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestTagSetUnionDoesNotShareStorage(t *testing.T) {
	base := NewTagSet("House")
	// Extra capacity in base must not let siblings see each other's additions.
	base = base.Union("Deep")

	left := base.Union("Dub")
	right := base.Union("Minimal")

	if left.Contains("Minimal") || right.Contains("Dub") {
		t.Fatalf("branches leaked: left=%v right=%v", left.Names(), right.Names())
	}
	if base.Len() != 2 {
		t.Fatalf("base mutated: %v", base.Names())
	}
}

func TestTagSetNamesIsCopy(t *testing.T) {
	s := NewTagSet("A", "B")
	names := s.Names()
	names[0] = "Z"
	if s.Names()[0] != "A" {
		t.Fatal("Names returned shared storage")
	}
	if (TagSet{}).Names() != nil {
		t.Fatal("empty set should return nil")
	}
}

func TestTagSetMerge(t *testing.T) {
	got := NewTagSet("A").Merge(NewTagSet("B", "A", "C")).Names()
	if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("Merge = %v", got)
	}
}
