package strata

import "testing"

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()
	if len(id1) != 36 {
		t.Errorf("expected 36 chars (UUIDv7), got %d: %s", len(id1), id1)
	}
	if id1 == id2 {
		t.Error("two IDs should be unique")
	}
	if id1 >= id2 {
		t.Error("sequential UUIDv7s should be time-ordered")
	}
}

func TestRecordIDDeterministic(t *testing.T) {
	a := RecordID("doc-1", 0)
	b := RecordID("doc-1", 0)
	if a != b {
		t.Error("same document and index should produce the same record ID")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d: %s", len(a), a)
	}
}

func TestRecordIDDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, doc := range []string{"doc-1", "doc-2"} {
		for i := 0; i < 5; i++ {
			id := RecordID(doc, i)
			if seen[id] {
				t.Errorf("duplicate record ID for %s index %d", doc, i)
			}
			seen[id] = true
		}
	}
}

func TestRecordIDNoIndexCollision(t *testing.T) {
	// "doc:1" + index 0 must not collide with "doc" + index 10 or
	// similar concatenation ambiguities.
	if RecordID("doc", 12) == RecordID("doc:1", 2) {
		t.Error("record IDs collide across document/index boundaries")
	}
}
