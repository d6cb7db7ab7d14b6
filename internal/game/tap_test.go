package game

import "testing"

func TestTapEarnings_FloorsAndNeverZero(t *testing.T) {
	cases := []struct {
		name     string
		power    int64
		boost    float64
		prestige float64
		want     int64
	}{
		{"plain", 5, 1.0, 1.0, 5},
		{"boosted", 5, 1.5, 1.0, 7},
		{"prestiged", 10, 1.0, 1.21, 12},
		{"stacked", 10, 2.0, 1.1, 22},
		{"fraction floors to minimum", 1, 0.5, 1.0, 1},
	}
	for _, tc := range cases {
		if got := TapEarnings(tc.power, tc.boost, tc.prestige); got != tc.want {
			t.Errorf("%s: TapEarnings(%d, %f, %f) = %d, want %d",
				tc.name, tc.power, tc.boost, tc.prestige, got, tc.want)
		}
	}
}

func TestPrestigeMultiplier_CompoundsPerRun(t *testing.T) {
	if m := PrestigeMultiplier(0, 1.1); m != 1 {
		t.Fatalf("no prestige should mean no bonus, got %f", m)
	}
	one := PrestigeMultiplier(1, 1.1)
	two := PrestigeMultiplier(2, 1.1)
	if one != 1.1 {
		t.Fatalf("first prestige: got %f", one)
	}
	if two <= one {
		t.Fatalf("multiplier should compound: run1=%f run2=%f", one, two)
	}
}

func TestPrestigePoints_TenLevelsPerPoint(t *testing.T) {
	if got := PrestigePoints(100); got != 10 {
		t.Fatalf("level 100: got %d points", got)
	}
	if got := PrestigePoints(109); got != 10 {
		t.Fatalf("level 109 should still grant 10, got %d", got)
	}
}
