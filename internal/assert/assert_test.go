package assert

import "testing"

func TestThatReturnsCondition(t *testing.T) {
	if !That(true, "ok") {
		t.Fatal("That(true) = false")
	}
	if Enabled {
		defer func() {
			if recover() == nil {
				t.Fatal("debug build did not panic")
			}
		}()
	}
	if That(false, "broken") {
		t.Fatal("That(false) = true")
	}
}

func TestThatfFormatsOnlyOnFailure(t *testing.T) {
	if Enabled {
		t.Skip("release semantics only")
	}
	calls := 0
	arg := stringer(func() string { calls++; return "x" })
	Thatf(true, "%s", arg)
	if calls != 0 {
		t.Fatalf("message built %d times for a passing check", calls)
	}
	Thatf(false, "%s", arg)
	if calls != 1 {
		t.Fatalf("message built %d times for a failing check", calls)
	}
}

type stringer func() string

func (s stringer) String() string { return s() }
