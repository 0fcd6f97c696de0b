// Package engine holds the pure business rules for fragment maturation,
// promotion eligibility, and rubric-based quadrant classification. Nothing in
// this package touches storage or transport; every function is deterministic
// over its inputs.
package engine

// Maturity score deltas. A builds-on comment signals the community is
// extending the idea, not just reacting to it, so it moves the needle harder.
const (
	BuildingCommentDelta = 15
	CommentDelta         = 5
	UpvoteDelta          = 2

	MaxMaturityScore = 100
)

// ScoreForComment returns the maturity delta a new comment contributes.
func ScoreForComment(isBuildingOn bool) int {
	if isBuildingOn {
		return BuildingCommentDelta
	}
	return CommentDelta
}

// ScoreForUpvote returns the maturity delta a single upvote contributes.
func ScoreForUpvote() int {
	return UpvoteDelta
}

// ClampScore caps an accumulated raw score to the [0, 100] maturity range.
// The cap is a ceiling, not a reset: once a fragment hits 100, further
// activity is still recorded but has no numeric effect.
func ClampScore(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > MaxMaturityScore {
		return MaxMaturityScore
	}
	return raw
}
