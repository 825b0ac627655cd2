package ids

import "testing"

func TestMangleDeterministic(t *testing.T) {
	a := Mangle("id", "id(u8)")
	b := Mangle("id", "id(u8)")
	if a != b {
		t.Fatalf("mangling the same key twice must be identical: %q vs %q", a, b)
	}
	c := Mangle("id", "id(i16)")
	if a == c {
		t.Fatal("different keys must mangle differently")
	}
}

func TestDebugCorrelationIDUnique(t *testing.T) {
	a := DebugCorrelationID()
	b := DebugCorrelationID()
	if a == b {
		t.Fatal("debug correlation ids should not collide across calls")
	}
}
