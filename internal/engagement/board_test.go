package engagement

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestBoard(t *testing.T) (*Board, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	board, err := NewBoard("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create board: %v", err)
	}
	return board, s
}

func TestNewBoard(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	board, err := NewBoard("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	defer board.Close()

	ctx := context.Background()
	if err := board.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestTopIdeasOrdering(t *testing.T) {
	board, s := setupTestBoard(t)
	defer board.Close()
	defer s.Close()

	ctx := context.Background()
	board.RecordIdeaUpvotes(ctx, "idea-1", "Bedside tablets", "Orlando", 3)
	board.RecordIdeaUpvotes(ctx, "idea-2", "Valet robots", "Tampa", 12)
	board.RecordIdeaUpvotes(ctx, "idea-3", "Quiet hours", "Orlando", 7)

	top, err := board.TopIdeas(ctx, 10)
	if err != nil {
		t.Fatalf("TopIdeas failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 ranked ideas, got %d", len(top))
	}
	if top[0].IdeaID != "idea-2" || top[0].Upvotes != 12 {
		t.Errorf("expected idea-2 with 12 upvotes first, got %s with %d", top[0].IdeaID, top[0].Upvotes)
	}
	if top[1].IdeaID != "idea-3" || top[2].IdeaID != "idea-1" {
		t.Errorf("unexpected ordering: %s, %s", top[1].IdeaID, top[2].IdeaID)
	}
	if top[0].Title != "Valet robots" || top[0].Hospital != "Tampa" {
		t.Errorf("metadata not resolved: %+v", top[0])
	}
}

func TestRecordIdeaUpvotesOverwrites(t *testing.T) {
	board, s := setupTestBoard(t)
	defer board.Close()
	defer s.Close()

	ctx := context.Background()
	board.RecordIdeaUpvotes(ctx, "idea-1", "Bedside tablets", "", 5)
	board.RecordIdeaUpvotes(ctx, "idea-1", "Bedside tablets", "", 6)
	board.RecordIdeaUpvotes(ctx, "idea-1", "Bedside tablets", "", 6)

	top, err := board.TopIdeas(ctx, 1)
	if err != nil {
		t.Fatalf("TopIdeas failed: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected 1 ranked idea, got %d", len(top))
	}
	if top[0].Upvotes != 6 {
		t.Errorf("replayed updates must not inflate the score, got %d", top[0].Upvotes)
	}
}

func TestTopIdeasLimit(t *testing.T) {
	board, s := setupTestBoard(t)
	defer board.Close()
	defer s.Close()

	ctx := context.Background()
	board.RecordIdeaUpvotes(ctx, "idea-1", "A", "", 1)
	board.RecordIdeaUpvotes(ctx, "idea-2", "B", "", 2)
	board.RecordIdeaUpvotes(ctx, "idea-3", "C", "", 3)

	top, err := board.TopIdeas(ctx, 2)
	if err != nil {
		t.Fatalf("TopIdeas failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 ranked ideas, got %d", len(top))
	}
	if top[0].IdeaID != "idea-3" {
		t.Errorf("expected idea-3 first, got %s", top[0].IdeaID)
	}
}

func TestTopIdeasEmpty(t *testing.T) {
	board, s := setupTestBoard(t)
	defer board.Close()
	defer s.Close()

	top, err := board.TopIdeas(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopIdeas failed: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("expected empty leaderboard, got %d rows", len(top))
	}
}

func TestRemoveIdea(t *testing.T) {
	board, s := setupTestBoard(t)
	defer board.Close()
	defer s.Close()

	ctx := context.Background()
	board.RecordIdeaUpvotes(ctx, "idea-1", "A", "", 4)
	board.RecordIdeaUpvotes(ctx, "idea-2", "B", "", 9)

	if err := board.RemoveIdea(ctx, "idea-2"); err != nil {
		t.Fatalf("RemoveIdea failed: %v", err)
	}

	top, err := board.TopIdeas(ctx, 10)
	if err != nil {
		t.Fatalf("TopIdeas failed: %v", err)
	}
	if len(top) != 1 || top[0].IdeaID != "idea-1" {
		t.Errorf("expected only idea-1 to remain, got %+v", top)
	}
}
