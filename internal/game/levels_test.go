package game

import "testing"

func TestApplyExperience_NoLevelUp(t *testing.T) {
	level, exp, gained := ApplyExperience(1, 0, 50, 100)
	if level != 1 || exp != 50 || gained != 0 {
		t.Fatalf("got level=%d exp=%d gained=%d", level, exp, gained)
	}
}

func TestApplyExperience_ExactThreshold(t *testing.T) {
	// level 1 threshold is 100: hitting it exactly levels up with 0 remainder
	level, exp, gained := ApplyExperience(1, 90, 10, 100)
	if level != 2 {
		t.Fatalf("expected level 2, got %d", level)
	}
	if exp != 0 {
		t.Fatalf("expected exp 0, got %d", exp)
	}
	if gained != 1 {
		t.Fatalf("expected 1 level gained, got %d", gained)
	}
}

func TestApplyExperience_CarriesRemainder(t *testing.T) {
	level, exp, _ := ApplyExperience(1, 0, 130, 100)
	if level != 2 || exp != 30 {
		t.Fatalf("got level=%d exp=%d, want 2/30", level, exp)
	}
}

func TestApplyExperience_MultipleLevels(t *testing.T) {
	// 100 (level 1) + 200 (level 2) = 300 cleared, 10 remain
	level, exp, gained := ApplyExperience(1, 0, 310, 100)
	if level != 3 || exp != 10 || gained != 2 {
		t.Fatalf("got level=%d exp=%d gained=%d", level, exp, gained)
	}
}

func TestTapExperience(t *testing.T) {
	cases := []struct {
		earned, divisor, want int64
	}{
		{10, 10, 1},
		{95, 10, 9},
		{3, 10, 1},  // floors below 1 are clamped up
		{50, 0, 1},  // zero divisor selects flat +1
		{500, 10, 50},
	}
	for _, c := range cases {
		if got := TapExperience(c.earned, c.divisor); got != c.want {
			t.Errorf("TapExperience(%d, %d) = %d, want %d", c.earned, c.divisor, got, c.want)
		}
	}
}
