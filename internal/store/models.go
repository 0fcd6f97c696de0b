package store

import (
	"time"

	"launchpad/api/internal/engine"
)

// Fragment is the persisted form of an idea fragment aggregate. Version backs
// the optimistic concurrency check on engagement updates; promotion uses a
// status compare-and-swap instead.
type Fragment struct {
	ID             string
	SubmitterName  string
	Title          string
	RoughThought   string
	Category       string
	Hospital       string
	Upvotes        int
	MaturityScore  int
	Status         string
	PromotedIdeaID string
	Version        int
	CreatedAt      time.Time
	Comments       []FragmentComment
	CommentCount   int
}

// FragmentComment is an append-only community contribution on a fragment.
type FragmentComment struct {
	ID           string
	FragmentID   string
	AuthorName   string
	AuthorRole   string
	Content      string
	Upvotes      int
	IsBuildingOn bool
	CreatedAt    time.Time
}

// Idea is a promoted (or directly submitted) first-class idea. The rubric
// dimensions are the ground truth; value/effort/quadrant are derived and
// rewritten in the same statement whenever any dimension changes.
type Idea struct {
	ID               string
	SubmitterName    string
	Title            string
	ProblemStatement string
	ProposedSolution string
	ExpectedBenefit  string
	Category         string
	Hospital         string
	Track            string
	Phase            string
	Status           string
	Dimensions       engine.DimensionScores
	ValueScore       float64
	EffortScore      float64
	Quadrant         string
	Upvotes          int
	CommentCount     int
	LowConfidence    bool
	Version          int
	CreatedAt        time.Time
}

// IdeaComment is community feedback on a promoted idea. Kept separate from
// fragment comments; promotion is a fresh start for engagement.
type IdeaComment struct {
	ID         string
	IdeaID     string
	AuthorName string
	AuthorRole string
	Content    string
	CreatedAt  time.Time
}

// IdeaFilter narrows ListIdeas.
type IdeaFilter struct {
	Track    string
	Status   string
	Category string
	SortBy   string
	Limit    int
}

// DashboardStats aggregates counts for the analytics endpoint.
type DashboardStats struct {
	TotalIdeas     int
	TotalFragments int
	TotalUpvotes   int
	ByQuadrant     map[string]int
	ByStatus       map[string]int
}

// LeaderboardRow is one hospital's engagement rollup.
type LeaderboardRow struct {
	Hospital string
	Ideas    int
	Upvotes  int
}
