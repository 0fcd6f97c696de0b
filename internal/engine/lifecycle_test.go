package engine

import (
	"errors"
	"testing"
	"time"
)

func newTestFragment(t *testing.T) Fragment {
	t.Helper()
	fragment, err := NewFragment("frag_1", "Dana", "Shorter discharge paperwork", "Discharge forms repeat the same fields four times.", "Patient Experience", "Hillcrest", time.Now())
	if err != nil {
		t.Fatalf("NewFragment failed: %v", err)
	}
	return fragment
}

func TestNewFragmentInitialState(t *testing.T) {
	fragment := newTestFragment(t)
	if fragment.Status != StatusIncubating {
		t.Errorf("initial status = %q, want %q", fragment.Status, StatusIncubating)
	}
	if fragment.MaturityScore != 0 {
		t.Errorf("initial maturity = %d, want 0", fragment.MaturityScore)
	}
	if len(fragment.Comments) != 0 || fragment.Upvotes != 0 {
		t.Errorf("fresh fragment has comments=%d upvotes=%d, want zero", len(fragment.Comments), fragment.Upvotes)
	}
}

func TestNewFragmentValidation(t *testing.T) {
	if _, err := NewFragment("frag_1", "Dana", "   ", "thought", "", "", time.Now()); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := NewFragment("frag_1", "Dana", "Title", "", "", "", time.Now()); err == nil {
		t.Error("expected error for blank rough thought")
	}
	fragment, err := NewFragment("frag_1", "  ", "Title", "thought", "", "", time.Now())
	if err != nil {
		t.Fatalf("NewFragment failed: %v", err)
	}
	if fragment.SubmitterName != "Anonymous" {
		t.Errorf("blank submitter = %q, want Anonymous", fragment.SubmitterName)
	}
}

func TestApplyCommentDeltas(t *testing.T) {
	fragment := newTestFragment(t)

	if _, err := fragment.ApplyComment("cmt_1", "Ray", "RN", "Agreed, the forms are painful.", false, time.Now()); err != nil {
		t.Fatalf("ApplyComment failed: %v", err)
	}
	if fragment.MaturityScore != 5 {
		t.Errorf("after ordinary comment maturity = %d, want 5", fragment.MaturityScore)
	}

	if _, err := fragment.ApplyComment("cmt_2", "Kim", "", "We could prefill from the chart.", true, time.Now()); err != nil {
		t.Fatalf("ApplyComment failed: %v", err)
	}
	if fragment.MaturityScore != 20 {
		t.Errorf("after builds-on comment maturity = %d, want 20", fragment.MaturityScore)
	}
	if len(fragment.Comments) != 2 {
		t.Errorf("comment count = %d, want 2", len(fragment.Comments))
	}
}

func TestApplyCommentEmptyContent(t *testing.T) {
	fragment := newTestFragment(t)
	if _, err := fragment.ApplyComment("cmt_1", "Ray", "", "   \t ", false, time.Now()); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
	if fragment.MaturityScore != 0 || len(fragment.Comments) != 0 {
		t.Error("rejected comment must not change fragment state")
	}
}

func TestApplyUpvote(t *testing.T) {
	fragment := newTestFragment(t)
	if err := fragment.ApplyUpvote(); err != nil {
		t.Fatalf("ApplyUpvote failed: %v", err)
	}
	if fragment.Upvotes != 1 {
		t.Errorf("upvotes = %d, want 1", fragment.Upvotes)
	}
	if fragment.MaturityScore != 2 {
		t.Errorf("maturity = %d, want 2", fragment.MaturityScore)
	}
}

func TestApplyUpvoteOnPromotedFragment(t *testing.T) {
	fragment := newTestFragment(t)
	fragment.MaturityScore = 85
	fragment.Status = StatusForScore(fragment.MaturityScore)
	if err := fragment.MarkPromoted("idea_1"); err != nil {
		t.Fatalf("MarkPromoted failed: %v", err)
	}
	if err := fragment.ApplyUpvote(); !errors.Is(err, ErrFragmentPromoted) {
		t.Errorf("expected ErrFragmentPromoted, got %v", err)
	}
	if fragment.Upvotes != 0 {
		t.Errorf("upvotes = %d after rejected upvote, want 0", fragment.Upvotes)
	}
}

func TestStatusForScore(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, StatusIncubating},
		{39, StatusIncubating},
		{40, StatusMaturing},
		{79, StatusMaturing},
		{80, StatusReadyToPromote},
		{100, StatusReadyToPromote},
	}
	for _, tc := range cases {
		if got := StatusForScore(tc.score); got != tc.want {
			t.Errorf("StatusForScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestScoreMonotonicUnderActivity(t *testing.T) {
	fragment := newTestFragment(t)
	previous := 0
	for i := 0; i < 30; i++ {
		building := i%3 == 0
		if _, err := fragment.ApplyComment("cmt", "Ray", "", "more input", building, time.Now()); err != nil {
			t.Fatalf("ApplyComment failed: %v", err)
		}
		if err := fragment.ApplyUpvote(); err != nil {
			t.Fatalf("ApplyUpvote failed: %v", err)
		}
		if fragment.MaturityScore < previous {
			t.Fatalf("maturity decreased from %d to %d", previous, fragment.MaturityScore)
		}
		if fragment.MaturityScore < 0 || fragment.MaturityScore > 100 {
			t.Fatalf("maturity %d out of range", fragment.MaturityScore)
		}
		previous = fragment.MaturityScore
	}
	if fragment.MaturityScore != 100 {
		t.Errorf("maturity = %d after heavy activity, want capped at 100", fragment.MaturityScore)
	}
	if fragment.Status != StatusReadyToPromote {
		t.Errorf("status = %q, want %q", fragment.Status, StatusReadyToPromote)
	}
	if len(fragment.Comments) != 30 {
		t.Errorf("comment count = %d, want 30 even after score cap", len(fragment.Comments))
	}
}

func TestStatusNeverRegressesPrePromotion(t *testing.T) {
	fragment := newTestFragment(t)
	rank := map[string]int{StatusIncubating: 0, StatusMaturing: 1, StatusReadyToPromote: 2}
	previous := rank[fragment.Status]
	for i := 0; i < 20; i++ {
		if _, err := fragment.ApplyComment("cmt", "Ray", "", "input", i%2 == 0, time.Now()); err != nil {
			t.Fatalf("ApplyComment failed: %v", err)
		}
		if rank[fragment.Status] < previous {
			t.Fatalf("status regressed to %q", fragment.Status)
		}
		previous = rank[fragment.Status]
	}
}

func TestCheckPromotable(t *testing.T) {
	fragment := newTestFragment(t)

	fragment.MaturityScore = 39
	if err := fragment.CheckPromotable(); !errors.Is(err, ErrInsufficientMaturity) {
		t.Errorf("score 39: expected ErrInsufficientMaturity, got %v", err)
	}

	fragment.MaturityScore = 40
	if err := fragment.CheckPromotable(); err != nil {
		t.Errorf("score 40: expected promotable, got %v", err)
	}
	if !fragment.LowConfidencePromotion() {
		t.Error("score 40 should be a low-confidence promotion")
	}

	fragment.MaturityScore = 100
	if err := fragment.CheckPromotable(); err != nil {
		t.Errorf("score 100: expected promotable, got %v", err)
	}
	if fragment.LowConfidencePromotion() {
		t.Error("score 100 should not be low confidence")
	}
}

func TestMarkPromotedIsTerminal(t *testing.T) {
	fragment := newTestFragment(t)
	fragment.MaturityScore = 82
	fragment.Status = StatusForScore(fragment.MaturityScore)

	if err := fragment.MarkPromoted("idea_1"); err != nil {
		t.Fatalf("MarkPromoted failed: %v", err)
	}
	if fragment.Status != StatusPromoted {
		t.Errorf("status = %q, want %q", fragment.Status, StatusPromoted)
	}
	if fragment.PromotedIdeaID != "idea_1" {
		t.Errorf("promotedIdeaId = %q, want idea_1", fragment.PromotedIdeaID)
	}
	if err := fragment.MarkPromoted("idea_2"); !errors.Is(err, ErrFragmentPromoted) {
		t.Errorf("second promotion: expected ErrFragmentPromoted, got %v", err)
	}
	if fragment.PromotedIdeaID != "idea_1" {
		t.Errorf("promotedIdeaId changed to %q on rejected promotion", fragment.PromotedIdeaID)
	}
}

func TestPromotedOverridesScoreMapping(t *testing.T) {
	fragment := newTestFragment(t)
	fragment.MaturityScore = 45
	fragment.Status = StatusForScore(fragment.MaturityScore)
	if err := fragment.MarkPromoted("idea_1"); err != nil {
		t.Fatalf("MarkPromoted failed: %v", err)
	}

	// A promoted fragment can still receive comments for the historical
	// record; the terminal status must not flip back to the score ladder.
	if _, err := fragment.ApplyComment("cmt_9", "Ray", "", "late addition", true, time.Now()); err != nil {
		t.Fatalf("ApplyComment failed: %v", err)
	}
	if fragment.Status != StatusPromoted {
		t.Errorf("status = %q after post-promotion comment, want %q", fragment.Status, StatusPromoted)
	}
}

func TestBuildingComments(t *testing.T) {
	fragment := newTestFragment(t)
	fragment.ApplyComment("cmt_1", "A", "", "first", false, time.Now())
	fragment.ApplyComment("cmt_2", "B", "", "second", true, time.Now())
	fragment.ApplyComment("cmt_3", "C", "", "third", true, time.Now())

	building := fragment.BuildingComments()
	if len(building) != 2 {
		t.Fatalf("building comments = %d, want 2", len(building))
	}
	if building[0].ID != "cmt_2" || building[1].ID != "cmt_3" {
		t.Error("building comments out of arrival order")
	}
}
