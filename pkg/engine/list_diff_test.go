package engine

import "testing"

func keysOf(ss ...string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestDiffKeysSwapIsSingleMove(t *testing.T) {
	d, err := diffKeys(keysOf("a", "b", "c", "d"), keysOf("a", "c", "b", "d"))
	if err != nil {
		t.Fatalf("diffKeys: %v", err)
	}
	if d.builds != 0 || len(d.razed) != 0 {
		t.Fatalf("builds=%d razed=%v, want none", d.builds, d.razed)
	}
	if d.moves != 1 {
		t.Fatalf("moves = %d, want 1", d.moves)
	}
	want := []int{0, 2, 1, 3}
	for i, p := range d.match {
		if p != want[i] {
			t.Errorf("match[%d] = %d, want %d", i, p, want[i])
		}
	}
}

func TestDiffKeysRetainAndReplace(t *testing.T) {
	d, err := diffKeys(keysOf("a", "b", "c"), keysOf("b", "d"))
	if err != nil {
		t.Fatalf("diffKeys: %v", err)
	}
	if d.builds != 1 {
		t.Errorf("builds = %d, want 1", d.builds)
	}
	if len(d.razed) != 2 || d.razed[0] != 0 || d.razed[1] != 2 {
		t.Errorf("razed = %v, want [0 2]", d.razed)
	}
	if d.match[0] != 1 || d.match[1] != -1 {
		t.Errorf("match = %v, want [1 -1]", d.match)
	}
	if d.moves != 0 {
		t.Errorf("moves = %d, want 0", d.moves)
	}
}

func TestDiffKeysAppendOnly(t *testing.T) {
	d, err := diffKeys(keysOf("a", "b", "c"), keysOf("a", "b", "c", "d", "e"))
	if err != nil {
		t.Fatalf("diffKeys: %v", err)
	}
	if d.builds != 2 || len(d.razed) != 0 || d.moves != 0 {
		t.Fatalf("builds=%d razed=%v moves=%d, want 2/none/0", d.builds, d.razed, d.moves)
	}
}

func TestDiffKeysReversal(t *testing.T) {
	// Reversing n items keeps one spine element; the rest move.
	d, err := diffKeys(keysOf("a", "b", "c", "d"), keysOf("d", "c", "b", "a"))
	if err != nil {
		t.Fatalf("diffKeys: %v", err)
	}
	if d.moves != 3 {
		t.Errorf("moves = %d, want 3", d.moves)
	}
	if d.builds != 0 || len(d.razed) != 0 {
		t.Errorf("builds=%d razed=%v, want none", d.builds, d.razed)
	}
}

func TestDiffKeysEmptySides(t *testing.T) {
	d, err := diffKeys(nil, keysOf("a", "b"))
	if err != nil {
		t.Fatalf("diffKeys: %v", err)
	}
	if d.builds != 2 || len(d.razed) != 0 {
		t.Fatalf("builds=%d razed=%v, want 2/none", d.builds, d.razed)
	}

	d, err = diffKeys(keysOf("a", "b"), nil)
	if err != nil {
		t.Fatalf("diffKeys: %v", err)
	}
	if d.builds != 0 || len(d.razed) != 2 {
		t.Fatalf("builds=%d razed=%v, want 0/[0 1]", d.builds, d.razed)
	}
}

func TestDiffKeysDuplicateIsError(t *testing.T) {
	if _, err := diffKeys(keysOf("a", "b"), keysOf("x", "x")); err == nil {
		t.Fatal("duplicate next key: want error")
	}
	if _, err := diffKeys(keysOf("a", "a"), keysOf("b")); err == nil {
		t.Fatal("duplicate prev key: want error")
	}
}

func TestDiffKeysUnhashableIsError(t *testing.T) {
	if _, err := diffKeys(nil, []any{[]int{1}}); err == nil {
		t.Fatal("slice key: want error")
	}
	if _, err := diffKeys(nil, []any{nil}); err == nil {
		t.Fatal("nil key: want error")
	}
}

func TestLongestIncreasing(t *testing.T) {
	cases := []struct {
		name string
		in   []int
		want int // spine length
	}{
		{"sorted", []int{1, 2, 3, 4}, 4},
		{"reversed", []int{4, 3, 2, 1}, 1},
		{"interleaved", []int{2, 1, 4, 3, 6, 5}, 3},
		{"single", []int{7}, 1},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			marked := longestIncreasing(tc.in, func(v int) int { return v })
			got := 0
			last := -1
			for i, m := range marked {
				if !m {
					continue
				}
				got++
				if tc.in[i] <= last {
					t.Errorf("marked subsequence not increasing at %d", i)
				}
				last = tc.in[i]
			}
			if got != tc.want {
				t.Errorf("spine length = %d, want %d", got, tc.want)
			}
		})
	}
}
