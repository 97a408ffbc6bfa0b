package entropy

import "testing"

func TestSourceDeterministic(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for i := 0; i < 100; i++ {
		x, y := a.Intn("test", 10), b.Intn("test", 10)
		if x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
		if x < 0 || x >= 10 {
			t.Fatalf("draw %d out of range: %d", i, x)
		}
	}
	if a.Draws() != 100 {
		t.Errorf("draws = %d, want 100", a.Draws())
	}
}

func TestIntnEmptyRange(t *testing.T) {
	s := NewSource(1)
	if got := s.Intn("empty", 0); got != 0 {
		t.Errorf("Intn(0) = %d, want 0", got)
	}
	if s.Draws() != 0 {
		t.Error("empty range consumed a draw")
	}
	if got := s.Pick("empty", 0); got != -1 {
		t.Errorf("Pick(0) = %d, want -1", got)
	}
}

func TestNewSeedWithoutClient(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatal("nil client enabled")
	}
	if NewSeed(c) < 0 {
		t.Error("seed must be non-negative")
	}
	if NewClient("") != nil {
		t.Error("empty key should give a nil client")
	}
}
