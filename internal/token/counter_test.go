package token

import "testing"

func TestCountBasics(t *testing.T) {
	c := NewHeuristic()
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"hi", 1},
		{"word", 1},
		{"words", 2},
		{"two words", 3},
		{"a, b", 3},
		{"hello, world!", 6},
	}
	for _, tc := range cases {
		if got := c.Count(tc.in); got != tc.want {
			t.Errorf("Count(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCountDeterministic(t *testing.T) {
	c := NewHeuristic()
	s := "The quick brown fox jumps over the lazy dog."
	a := c.Count(s)
	for i := 0; i < 5; i++ {
		if b := c.Count(s); b != a {
			t.Fatalf("non-deterministic count: %d vs %d", a, b)
		}
	}
	if a < 9 {
		t.Fatalf("count %d implausibly low for %q", a, s)
	}
}
