package level

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		points int
		want   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{900, 4},
		{-10, 1},
	}
	for _, c := range cases {
		if got := Level(c.points); got != c.want {
			t.Errorf("Level(%d) = %d, want %d", c.points, got, c.want)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	for p := 1; p <= 2000; p++ {
		cur := Level(p)
		if cur < prev {
			t.Fatalf("Level decreased at %d points: %d -> %d", p, prev, cur)
		}
		prev = cur
	}
}

func TestXPForLevel(t *testing.T) {
	cases := []struct {
		lvl  int
		want int
	}{
		{1, 0},
		{2, 100},
		{3, 400},
		{4, 900},
	}
	for _, c := range cases {
		if got := XPForLevel(c.lvl); got != c.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", c.lvl, got, c.want)
		}
	}
}

func TestForPoints(t *testing.T) {
	p := ForPoints(150)
	if p.Level != 2 {
		t.Errorf("level = %d, want 2", p.Level)
	}
	if p.CurrentXP != 50 {
		t.Errorf("currentXp = %d, want 50", p.CurrentXP)
	}
	if p.NextLevelXP != 300 {
		t.Errorf("nextLevelXp = %d, want 300", p.NextLevelXP)
	}
}
