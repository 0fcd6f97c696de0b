package engine

import (
	"errors"
	"strings"
	"time"
)

// Fragment status values. A fragment climbs incubating → maturing →
// ready-to-promote as its maturity score grows; promoted is terminal and is
// only ever set through promotion, never by the score mapping.
const (
	StatusIncubating     = "incubating"
	StatusMaturing       = "maturing"
	StatusReadyToPromote = "ready-to-promote"
	StatusPromoted       = "promoted"
)

// Status thresholds on the maturity score.
const (
	MaturingFloor  = 40
	ReadyFloor     = 80
	PromotionFloor = MaturingFloor
)

var (
	// ErrEmptyContent is returned when a comment has no non-whitespace text.
	ErrEmptyContent = errors.New("comment content is empty")
	// ErrFragmentPromoted is returned when a mutation is attempted on a
	// fragment that has already been promoted.
	ErrFragmentPromoted = errors.New("fragment is already promoted")
	// ErrInsufficientMaturity is returned when promotion is attempted below
	// the maturing floor.
	ErrInsufficientMaturity = errors.New("fragment maturity below promotion floor")
)

// Fragment is the mutable aggregate the lifecycle rules operate on. The
// service layer owns loading and persisting it; this package only transforms
// it.
type Fragment struct {
	ID             string
	SubmitterName  string
	Title          string
	RoughThought   string
	Category       string
	Hospital       string
	Comments       []Comment
	Upvotes        int
	MaturityScore  int
	Status         string
	PromotedIdeaID string
	CreatedAt      time.Time
}

// Comment is a community contribution attached to a fragment. Immutable after
// creation except for its own upvote counter.
type Comment struct {
	ID           string
	AuthorName   string
	AuthorRole   string
	Content      string
	Upvotes      int
	IsBuildingOn bool
	CreatedAt    time.Time
}

// StatusForScore maps a maturity score onto the pre-promotion status ladder.
func StatusForScore(score int) string {
	switch {
	case score >= ReadyFloor:
		return StatusReadyToPromote
	case score >= MaturingFloor:
		return StatusMaturing
	default:
		return StatusIncubating
	}
}

// NewFragment builds a fresh fragment in its initial state.
func NewFragment(id, submitterName, title, roughThought, category, hospital string, now time.Time) (Fragment, error) {
	if strings.TrimSpace(title) == "" {
		return Fragment{}, errors.New("title is empty")
	}
	if strings.TrimSpace(roughThought) == "" {
		return Fragment{}, errors.New("rough thought is empty")
	}
	if strings.TrimSpace(submitterName) == "" {
		submitterName = "Anonymous"
	}
	return Fragment{
		ID:            id,
		SubmitterName: submitterName,
		Title:         title,
		RoughThought:  roughThought,
		Category:      category,
		Hospital:      hospital,
		Comments:      []Comment{},
		Status:        StatusIncubating,
		CreatedAt:     now,
	}, nil
}

// ApplyComment appends a comment, applies its score delta, and recomputes the
// status. The fragment is mutated in place; the created comment is returned.
func (f *Fragment) ApplyComment(commentID, authorName, authorRole, content string, isBuildingOn bool, now time.Time) (Comment, error) {
	if strings.TrimSpace(content) == "" {
		return Comment{}, ErrEmptyContent
	}
	comment := Comment{
		ID:           commentID,
		AuthorName:   authorName,
		AuthorRole:   authorRole,
		Content:      content,
		IsBuildingOn: isBuildingOn,
		CreatedAt:    now,
	}
	f.Comments = append(f.Comments, comment)
	f.applyDelta(ScoreForComment(isBuildingOn))
	return comment, nil
}

// ApplyUpvote increments the upvote counter and applies its score delta.
// Upvotes on a promoted fragment are rejected; support for a promoted idea is
// recorded against the idea instead.
func (f *Fragment) ApplyUpvote() error {
	if f.Status == StatusPromoted {
		return ErrFragmentPromoted
	}
	f.Upvotes++
	f.applyDelta(ScoreForUpvote())
	return nil
}

// CheckPromotable validates promotion eligibility without mutating anything.
func (f *Fragment) CheckPromotable() error {
	if f.Status == StatusPromoted {
		return ErrFragmentPromoted
	}
	if f.MaturityScore < PromotionFloor {
		return ErrInsufficientMaturity
	}
	return nil
}

// MarkPromoted freezes the fragment in its terminal state and records the
// back-link to the idea it became. The link is a lookup reference only; the
// idea does not own or cascade to the fragment.
func (f *Fragment) MarkPromoted(ideaID string) error {
	if err := f.CheckPromotable(); err != nil {
		return err
	}
	f.Status = StatusPromoted
	f.PromotedIdeaID = ideaID
	return nil
}

// LowConfidencePromotion reports whether a promotion at the fragment's current
// score is the early path (eligible, but below the ready threshold).
func (f *Fragment) LowConfidencePromotion() bool {
	return f.MaturityScore >= PromotionFloor && f.MaturityScore < ReadyFloor
}

func (f *Fragment) applyDelta(delta int) {
	f.MaturityScore = ClampScore(f.MaturityScore + delta)
	if f.Status != StatusPromoted {
		f.Status = StatusForScore(f.MaturityScore)
	}
}

// BuildingComments returns the subset of comments flagged as building on the
// idea, in arrival order.
func (f *Fragment) BuildingComments() []Comment {
	var building []Comment
	for _, c := range f.Comments {
		if c.IsBuildingOn {
			building = append(building, c)
		}
	}
	return building
}
