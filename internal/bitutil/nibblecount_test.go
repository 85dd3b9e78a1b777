package bitutil

import "testing"

func TestNibbleCount(t *testing.T) {
	cases := []struct {
		x    uint32
		want int
	}{
		{0, 1},
		{1, 1},
		{15, 1},
		{16, 2},
		{255, 2},
		{256, 3},
		{0xffffffff, 8},
	}
	for _, c := range cases {
		if got := NibbleCount(c.x); got != c.want {
			t.Errorf("NibbleCount(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}
