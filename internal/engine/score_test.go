package engine

import "testing"

func TestScoreForComment(t *testing.T) {
	if got := ScoreForComment(true); got != 15 {
		t.Errorf("building comment delta = %d, want 15", got)
	}
	if got := ScoreForComment(false); got != 5 {
		t.Errorf("ordinary comment delta = %d, want 5", got)
	}
}

func TestScoreForUpvote(t *testing.T) {
	if got := ScoreForUpvote(); got != 2 {
		t.Errorf("upvote delta = %d, want 2", got)
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		raw  int
		want int
	}{
		{-5, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{101, 100},
		{400, 100},
	}
	for _, tc := range cases {
		if got := ClampScore(tc.raw); got != tc.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
