package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"launchpad/api/internal/advisor"
	"launchpad/api/internal/archive"
	"launchpad/api/internal/config"
	"launchpad/api/internal/engagement"
	"launchpad/api/internal/engine"
	"launchpad/api/internal/search"
	"launchpad/api/internal/store"
	"launchpad/api/internal/util"
)

// optimisticAttempts bounds the retry loop when a version check fails against
// an out-of-process writer. In-process callers are already serialized by the
// per-aggregate locks.
const optimisticAttempts = 3

const (
	TrackLaunchpad = "innovation-launchpad"

	PhaseDefine    = "define"
	IdeaInReview   = "in-review"
	defaultListCap = 50
)

type CreateFragmentInput struct {
	Title         string `json:"title"`
	RoughThought  string `json:"roughThought"`
	SubmitterName string `json:"submitterName"`
	Category      string `json:"category"`
	Hospital      string `json:"hospital"`
}

type CommentInput struct {
	AuthorName   string `json:"authorName"`
	AuthorRole   string `json:"authorRole"`
	Content      string `json:"content"`
	IsBuildingOn bool   `json:"isBuildingOn"`
}

type CreateIdeaInput struct {
	Title            string `json:"title"`
	ProblemStatement string `json:"problemStatement"`
	ProposedSolution string `json:"proposedSolution"`
	ExpectedBenefit  string `json:"expectedBenefit"`
	SubmitterName    string `json:"submitterName"`
	Category         string `json:"category"`
	Hospital         string `json:"hospital"`
	Track            string `json:"track"`
}

type RubricUpdateInput struct {
	Scores   engine.DimensionScores `json:"scores"`
	ScoredBy string                 `json:"scoredBy"`
}

type dataStore interface {
	InsertFragment(ctx context.Context, fragment store.Fragment) error
	GetFragment(ctx context.Context, fragmentID string) (store.Fragment, error)
	ListFragments(ctx context.Context, status string, limit int) ([]store.Fragment, error)
	UpdateFragmentEngagement(ctx context.Context, fragmentID string, upvotes, maturityScore int, status string, version int) (bool, error)
	ApplyFragmentComment(ctx context.Context, comment store.FragmentComment, maturityScore int, status string, version int) (bool, error)
	PromoteFragment(ctx context.Context, fragmentID string, idea store.Idea) (bool, error)
	UpvoteComment(ctx context.Context, fragmentID, commentID string) (int, error)
	InsertIdea(ctx context.Context, idea store.Idea) error
	GetIdea(ctx context.Context, ideaID string) (store.Idea, error)
	ListIdeas(ctx context.Context, filter store.IdeaFilter) ([]store.Idea, error)
	UpdateIdeaRubric(ctx context.Context, ideaID string, dims engine.DimensionScores, valueScore, effortScore float64, quadrant string, version int) (bool, error)
	UpvoteIdea(ctx context.Context, ideaID string) (int, error)
	InsertIdeaComment(ctx context.Context, comment store.IdeaComment) error
	ListIdeaComments(ctx context.Context, ideaID string) ([]store.IdeaComment, error)
	DashboardCounts(ctx context.Context) (store.DashboardStats, error)
	HospitalLeaderboard(ctx context.Context, limit int) ([]store.LeaderboardRow, error)
	Ping(ctx context.Context) error
}

type rubricAdvisor interface {
	SuggestScores(ctx context.Context, idea advisor.IdeaContext) (engine.DimensionScores, error)
}

type promotionArchiver interface {
	ArchivePromotion(snapshot archive.FragmentSnapshot)
}

type searchIndex interface {
	IndexIdea(record search.IdeaRecord)
	IndexFragment(record search.FragmentRecord)
	Search(q search.Query) search.Response
}

type engagementBoard interface {
	RecordIdeaUpvotes(ctx context.Context, ideaID, title, hospital string, upvotes int)
	TopIdeas(ctx context.Context, limit int) ([]engagement.RankedIdea, error)
}

type Service struct {
	cfg     config.Config
	store   dataStore
	advisor rubricAdvisor
	archive promotionArchiver
	search  searchIndex
	board   engagementBoard

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires the service. advisor, archive, search, and board collaborators
// are optional; the engine runs without them.
func New(cfg config.Config, dataStore *store.PostgresStore, rubricAdvisor *advisor.Client, archiveService *archive.Service, searchService *search.Service, board *engagement.Board) *Service {
	s := &Service{
		cfg:   cfg,
		store: dataStore,
		locks: make(map[string]*sync.Mutex),
	}
	if rubricAdvisor != nil {
		s.advisor = rubricAdvisor
	}
	if archiveService != nil {
		s.archive = archiveService
	}
	if searchService != nil {
		s.search = searchService
	}
	if board != nil {
		s.board = board
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// lockEntity serializes in-process mutations per aggregate id. Returns the
// unlock func.
func (s *Service) lockEntity(id string) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// ---- fragments ----

func (s *Service) CreateFragment(ctx context.Context, input CreateFragmentInput) (map[string]any, error) {
	fragment, err := engine.NewFragment(util.NewID("frag"), input.SubmitterName, strings.TrimSpace(input.Title), strings.TrimSpace(input.RoughThought), input.Category, input.Hospital, time.Now().UTC())
	if err != nil {
		return nil, validationError(err.Error())
	}

	record := store.Fragment{
		ID:            fragment.ID,
		SubmitterName: fragment.SubmitterName,
		Title:         fragment.Title,
		RoughThought:  fragment.RoughThought,
		Category:      fragment.Category,
		Hospital:      fragment.Hospital,
		Status:        fragment.Status,
		CreatedAt:     fragment.CreatedAt,
	}
	if err := s.store.InsertFragment(ctx, record); err != nil {
		return nil, err
	}
	if s.search != nil {
		s.search.IndexFragment(search.FragmentRecord{
			ID:           record.ID,
			Title:        record.Title,
			RoughThought: record.RoughThought,
			Category:     record.Category,
			Hospital:     record.Hospital,
			Status:       record.Status,
		})
	}
	return fragmentPayload(record), nil
}

func (s *Service) GetFragment(ctx context.Context, fragmentID string) (map[string]any, error) {
	fragment, err := s.store.GetFragment(ctx, fragmentID)
	if err != nil {
		return nil, err
	}
	return fragmentPayload(fragment), nil
}

func (s *Service) ListFragments(ctx context.Context, status string, limit int) (map[string]any, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListCap
	}
	fragments, err := s.store.ListFragments(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(fragments))
	for _, fragment := range fragments {
		items = append(items, fragmentPayload(fragment))
	}
	return map[string]any{"fragments": items, "total": len(items)}, nil
}

// AddComment appends a community comment, applies its maturity delta, and
// recomputes the lifecycle status, all under the fragment's write lock.
func (s *Service) AddComment(ctx context.Context, fragmentID string, input CommentInput) (map[string]any, error) {
	if strings.TrimSpace(input.AuthorName) == "" {
		return nil, validationError("authorName is required")
	}

	unlock := s.lockEntity(fragmentID)
	defer unlock()

	for attempt := 0; attempt < optimisticAttempts; attempt++ {
		record, err := s.store.GetFragment(ctx, fragmentID)
		if err != nil {
			return nil, err
		}

		fragment := toEngineFragment(record)
		comment, err := fragment.ApplyComment(util.NewID("cmt"), input.AuthorName, input.AuthorRole, input.Content, input.IsBuildingOn, time.Now().UTC())
		if err != nil {
			if err == engine.ErrEmptyContent {
				return nil, validationError("content is required")
			}
			return nil, validationError(err.Error())
		}

		changed, err := s.store.ApplyFragmentComment(ctx, store.FragmentComment{
			ID:           comment.ID,
			FragmentID:   fragmentID,
			AuthorName:   comment.AuthorName,
			AuthorRole:   comment.AuthorRole,
			Content:      comment.Content,
			IsBuildingOn: comment.IsBuildingOn,
			CreatedAt:    comment.CreatedAt,
		}, fragment.MaturityScore, fragment.Status, record.Version)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}

		return map[string]any{
			"comment":       commentPayload(store.FragmentComment{ID: comment.ID, FragmentID: fragmentID, AuthorName: comment.AuthorName, AuthorRole: comment.AuthorRole, Content: comment.Content, IsBuildingOn: comment.IsBuildingOn, CreatedAt: comment.CreatedAt}),
			"maturityScore": fragment.MaturityScore,
			"status":        fragment.Status,
		}, nil
	}
	return nil, conflictError()
}

// UpvoteFragment increments the upvote counter and applies the upvote delta.
// Upvotes on a promoted fragment are rejected; the caller should upvote the
// linked idea instead.
func (s *Service) UpvoteFragment(ctx context.Context, fragmentID string) (map[string]any, error) {
	unlock := s.lockEntity(fragmentID)
	defer unlock()

	for attempt := 0; attempt < optimisticAttempts; attempt++ {
		record, err := s.store.GetFragment(ctx, fragmentID)
		if err != nil {
			return nil, err
		}

		fragment := toEngineFragment(record)
		if err := fragment.ApplyUpvote(); err != nil {
			return nil, invalidStateError("Fragment is promoted; upvote the idea instead", map[string]any{
				"ideaId": record.PromotedIdeaID,
			})
		}

		changed, err := s.store.UpdateFragmentEngagement(ctx, fragmentID, fragment.Upvotes, fragment.MaturityScore, fragment.Status, record.Version)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}

		return map[string]any{
			"upvotes":       fragment.Upvotes,
			"maturityScore": fragment.MaturityScore,
			"status":        fragment.Status,
		}, nil
	}
	return nil, conflictError()
}

func (s *Service) UpvoteComment(ctx context.Context, fragmentID, commentID string) (map[string]any, error) {
	upvotes, err := s.store.UpvoteComment(ctx, fragmentID, commentID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"upvotes": upvotes}, nil
}

// PromoteFragment performs the one-way fragment-to-idea conversion. Exactly
// one promotion can succeed per fragment: the store applies the terminal
// status flip and the idea insert in a single compare-and-swap transaction.
func (s *Service) PromoteFragment(ctx context.Context, fragmentID string) (map[string]any, error) {
	unlock := s.lockEntity(fragmentID)
	defer unlock()

	record, err := s.store.GetFragment(ctx, fragmentID)
	if err != nil {
		return nil, err
	}

	fragment := toEngineFragment(record)
	if err := fragment.CheckPromotable(); err != nil {
		switch err {
		case engine.ErrFragmentPromoted:
			return nil, alreadyPromotedError(record.PromotedIdeaID)
		case engine.ErrInsufficientMaturity:
			return nil, insufficientMaturityError(record.MaturityScore)
		default:
			return nil, err
		}
	}

	idea := buildPromotedIdea(&fragment, record)
	won, err := s.store.PromoteFragment(ctx, fragmentID, idea)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent caller promoted first; report the existing idea.
		current, err := s.store.GetFragment(ctx, fragmentID)
		if err != nil {
			return nil, err
		}
		return nil, alreadyPromotedError(current.PromotedIdeaID)
	}

	if s.archive != nil {
		s.archive.ArchivePromotion(promotionSnapshot(record, idea.ID))
	}
	if s.search != nil {
		s.search.IndexIdea(ideaRecord(idea))
	}

	payload := ideaPayload(idea)
	return map[string]any{
		"message":    "Fragment promoted to idea",
		"fragmentId": fragmentID,
		"ideaId":     idea.ID,
		"idea":       payload,
		"crowdsourcingStats": map[string]any{
			"totalComments":  len(record.Comments),
			"buildsOnCount":  len(fragment.BuildingComments()),
			"fragmentVotes":  record.Upvotes,
			"maturityScore":  record.MaturityScore,
			"lowConfidence":  idea.LowConfidence,
		},
	}, nil
}

// buildPromotedIdea seeds a first-class idea from the matured fragment. The
// rubric starts at the midpoint pending explicit scoring, and engagement
// counters start fresh; fragment history stays on the fragment.
func buildPromotedIdea(fragment *engine.Fragment, record store.Fragment) store.Idea {
	building := fragment.BuildingComments()
	proposedSolution := "To be refined through rubric scoring and pilot planning"
	if len(building) > 0 {
		parts := make([]string, 0, 5)
		for i, comment := range building {
			if i == 5 {
				break
			}
			parts = append(parts, comment.Content)
		}
		proposedSolution = "Based on crowdsourced input: " + strings.Join(parts, " | ")
	}

	dims := engine.DefaultDimensionScores()
	classification := engine.Classify(dims)

	return store.Idea{
		ID:               util.NewID("idea"),
		SubmitterName:    record.SubmitterName,
		Title:            record.Title,
		ProblemStatement: record.RoughThought,
		ProposedSolution: proposedSolution,
		ExpectedBenefit:  fmt.Sprintf("Crowdsourced idea with %d contributions and %d upvotes", len(record.Comments), record.Upvotes),
		Category:         record.Category,
		Hospital:         record.Hospital,
		Track:            TrackLaunchpad,
		Phase:            PhaseDefine,
		Status:           IdeaInReview,
		Dimensions:       dims,
		ValueScore:       classification.ValueScore,
		EffortScore:      classification.EffortScore,
		Quadrant:         classification.Quadrant,
		LowConfidence:    fragment.LowConfidencePromotion(),
		CreatedAt:        time.Now().UTC(),
	}
}

func promotionSnapshot(record store.Fragment, ideaID string) archive.FragmentSnapshot {
	comments := make([]archive.CommentSnapshot, 0, len(record.Comments))
	for _, comment := range record.Comments {
		comments = append(comments, archive.CommentSnapshot{
			ID:           comment.ID,
			AuthorName:   comment.AuthorName,
			AuthorRole:   comment.AuthorRole,
			Content:      comment.Content,
			Upvotes:      comment.Upvotes,
			IsBuildingOn: comment.IsBuildingOn,
			CreatedAt:    comment.CreatedAt,
		})
	}
	return archive.FragmentSnapshot{
		FragmentID:    record.ID,
		IdeaID:        ideaID,
		Title:         record.Title,
		RoughThought:  record.RoughThought,
		SubmitterName: record.SubmitterName,
		Upvotes:       record.Upvotes,
		MaturityScore: record.MaturityScore,
		Comments:      comments,
		PromotedAt:    time.Now().UTC(),
	}
}

// ---- ideas ----

func (s *Service) CreateIdea(ctx context.Context, input CreateIdeaInput) (map[string]any, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationError("title is required")
	}
	if strings.TrimSpace(input.ProblemStatement) == "" {
		return nil, validationError("problemStatement is required")
	}
	if strings.TrimSpace(input.ProposedSolution) == "" {
		return nil, validationError("proposedSolution is required")
	}
	submitter := strings.TrimSpace(input.SubmitterName)
	if submitter == "" {
		submitter = "Anonymous"
	}
	track := strings.TrimSpace(input.Track)
	if track == "" {
		track = TrackLaunchpad
	}

	dims := engine.DefaultDimensionScores()
	classification := engine.Classify(dims)
	idea := store.Idea{
		ID:               util.NewID("idea"),
		SubmitterName:    submitter,
		Title:            strings.TrimSpace(input.Title),
		ProblemStatement: strings.TrimSpace(input.ProblemStatement),
		ProposedSolution: strings.TrimSpace(input.ProposedSolution),
		ExpectedBenefit:  strings.TrimSpace(input.ExpectedBenefit),
		Category:         input.Category,
		Hospital:         input.Hospital,
		Track:            track,
		Phase:            PhaseDefine,
		Status:           IdeaInReview,
		Dimensions:       dims,
		ValueScore:       classification.ValueScore,
		EffortScore:      classification.EffortScore,
		Quadrant:         classification.Quadrant,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.InsertIdea(ctx, idea); err != nil {
		return nil, err
	}
	if s.search != nil {
		s.search.IndexIdea(ideaRecord(idea))
	}
	return ideaPayload(idea), nil
}

func (s *Service) GetIdea(ctx context.Context, ideaID string) (map[string]any, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListIdeaComments(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	payload := ideaPayload(idea)
	items := make([]map[string]any, 0, len(comments))
	for _, comment := range comments {
		items = append(items, map[string]any{
			"id":         comment.ID,
			"authorName": comment.AuthorName,
			"authorRole": comment.AuthorRole,
			"content":    comment.Content,
			"createdAt":  comment.CreatedAt,
		})
	}
	payload["comments"] = items
	return payload, nil
}

func (s *Service) ListIdeas(ctx context.Context, filter store.IdeaFilter, searchText string) (map[string]any, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = defaultListCap
	}
	if searchText != "" && s.search != nil {
		response := s.search.Search(search.Query{Text: searchText, FilterType: search.ResultIdea, Limit: filter.Limit})
		return map[string]any{"results": response.Results, "total": response.Total, "query": response.Query}, nil
	}
	ideas, err := s.store.ListIdeas(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(ideas))
	for _, idea := range ideas {
		items = append(items, ideaPayload(idea))
	}
	return map[string]any{"ideas": items, "total": len(items)}, nil
}

// UpvoteIdea records support for a promoted idea. The counter only ever
// grows; per-user dedup is a front-end concern while there is no durable
// identity model.
func (s *Service) UpvoteIdea(ctx context.Context, ideaID string) (map[string]any, error) {
	unlock := s.lockEntity(ideaID)
	defer unlock()

	upvotes, err := s.store.UpvoteIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if s.board != nil {
		s.board.RecordIdeaUpvotes(ctx, idea.ID, idea.Title, idea.Hospital, upvotes)
	}
	return ideaPayload(idea), nil
}

func (s *Service) AddIdeaComment(ctx context.Context, ideaID string, input CommentInput) (map[string]any, error) {
	if strings.TrimSpace(input.AuthorName) == "" {
		return nil, validationError("authorName is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, validationError("content is required")
	}
	if _, err := s.store.GetIdea(ctx, ideaID); err != nil {
		return nil, err
	}
	comment := store.IdeaComment{
		ID:         util.NewID("cmt"),
		IdeaID:     ideaID,
		AuthorName: input.AuthorName,
		AuthorRole: input.AuthorRole,
		Content:    input.Content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertIdeaComment(ctx, comment); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":         comment.ID,
		"ideaId":     comment.IdeaID,
		"authorName": comment.AuthorName,
		"authorRole": comment.AuthorRole,
		"content":    comment.Content,
		"createdAt":  comment.CreatedAt,
	}, nil
}

// ---- rubric ----

// UpdateRubric replaces the six dimension scores and recomputes the derived
// classification. The derived values never persist independently of the
// dimensions that produced them.
func (s *Service) UpdateRubric(ctx context.Context, ideaID string, input RubricUpdateInput) (map[string]any, error) {
	if err := input.Scores.Validate(); err != nil {
		return nil, validationError(err.Error())
	}

	unlock := s.lockEntity(ideaID)
	defer unlock()

	for attempt := 0; attempt < optimisticAttempts; attempt++ {
		idea, err := s.store.GetIdea(ctx, ideaID)
		if err != nil {
			return nil, err
		}
		classification := engine.Classify(input.Scores)
		changed, err := s.store.UpdateIdeaRubric(ctx, ideaID, input.Scores, classification.ValueScore, classification.EffortScore, classification.Quadrant, idea.Version)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}
		return map[string]any{
			"ideaId":     ideaID,
			"scores":     input.Scores,
			"calculated": classification,
		}, nil
	}
	return nil, conflictError()
}

func (s *Service) GetRubric(ctx context.Context, ideaID string) (map[string]any, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"ideaId":    idea.ID,
		"ideaTitle": idea.Title,
		"scores":    idea.Dimensions,
		"calculated": engine.Classification{
			ValueScore:  idea.ValueScore,
			EffortScore: idea.EffortScore,
			Quadrant:    idea.Quadrant,
		},
		"thresholds": map[string]any{
			"highValue":  engine.HighValueThreshold,
			"highEffort": engine.HighEffortThreshold,
		},
	}, nil
}

// SuggestRubric asks the external advisor for proposed dimension scores. The
// proposal is clamped into range and persisted through the same path as
// manual scoring; an advisor failure changes nothing.
func (s *Service) SuggestRubric(ctx context.Context, ideaID string) (map[string]any, error) {
	if s.advisor == nil {
		return nil, domainError(http.StatusServiceUnavailable, "ADVISOR_UNAVAILABLE", "Rubric advisor is not configured", nil)
	}

	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	proposed, err := s.advisor.SuggestScores(ctx, advisor.IdeaContext{
		Title:            idea.Title,
		Category:         idea.Category,
		ProblemStatement: idea.ProblemStatement,
		ProposedSolution: idea.ProposedSolution,
		ExpectedBenefit:  idea.ExpectedBenefit,
	})
	if err != nil {
		return nil, domainError(http.StatusBadGateway, "ADVISOR_FAILED", "Rubric advisor request failed", nil)
	}

	scores := proposed.Clamp()
	result, err := s.UpdateRubric(ctx, ideaID, RubricUpdateInput{Scores: scores, ScoredBy: "advisor"})
	if err != nil {
		return nil, err
	}
	result["advisorPowered"] = true
	return result, nil
}

// ---- analytics ----

func (s *Service) Dashboard(ctx context.Context) (map[string]any, error) {
	stats, err := s.store.DashboardCounts(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.store.ListIdeas(ctx, store.IdeaFilter{SortBy: "upvotes", Limit: 5})
	if err != nil {
		return nil, err
	}
	topItems := make([]map[string]any, 0, len(top))
	for _, idea := range top {
		topItems = append(topItems, map[string]any{
			"id":       idea.ID,
			"title":    idea.Title,
			"quadrant": idea.Quadrant,
			"upvotes":  idea.Upvotes,
		})
	}
	return map[string]any{
		"totalIdeas":     stats.TotalIdeas,
		"totalFragments": stats.TotalFragments,
		"totalUpvotes":   stats.TotalUpvotes,
		"byQuadrant":     stats.ByQuadrant,
		"fragmentStatus": stats.ByStatus,
		"topIdeas":       topItems,
	}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) (map[string]any, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	hospitals, err := s.store.HospitalLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	hospitalItems := make([]map[string]any, 0, len(hospitals))
	for _, row := range hospitals {
		hospitalItems = append(hospitalItems, map[string]any{
			"hospital": row.Hospital,
			"ideas":    row.Ideas,
			"upvotes":  row.Upvotes,
		})
	}

	payload := map[string]any{"hospitals": hospitalItems}

	if s.board != nil {
		if ranked, err := s.board.TopIdeas(ctx, limit); err == nil {
			rankedItems := make([]map[string]any, 0, len(ranked))
			for _, idea := range ranked {
				rankedItems = append(rankedItems, map[string]any{
					"ideaId":  idea.IdeaID,
					"title":   idea.Title,
					"upvotes": idea.Upvotes,
				})
			}
			payload["topIdeas"] = rankedItems
		}
	}
	return payload, nil
}

func (s *Service) SearchAll(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// ---- payload helpers ----

func toEngineFragment(record store.Fragment) engine.Fragment {
	comments := make([]engine.Comment, 0, len(record.Comments))
	for _, comment := range record.Comments {
		comments = append(comments, engine.Comment{
			ID:           comment.ID,
			AuthorName:   comment.AuthorName,
			AuthorRole:   comment.AuthorRole,
			Content:      comment.Content,
			Upvotes:      comment.Upvotes,
			IsBuildingOn: comment.IsBuildingOn,
			CreatedAt:    comment.CreatedAt,
		})
	}
	return engine.Fragment{
		ID:             record.ID,
		SubmitterName:  record.SubmitterName,
		Title:          record.Title,
		RoughThought:   record.RoughThought,
		Category:       record.Category,
		Hospital:       record.Hospital,
		Comments:       comments,
		Upvotes:        record.Upvotes,
		MaturityScore:  record.MaturityScore,
		Status:         record.Status,
		PromotedIdeaID: record.PromotedIdeaID,
		CreatedAt:      record.CreatedAt,
	}
}

func fragmentPayload(fragment store.Fragment) map[string]any {
	comments := make([]map[string]any, 0, len(fragment.Comments))
	for _, comment := range fragment.Comments {
		comments = append(comments, commentPayload(comment))
	}
	payload := map[string]any{
		"id":            fragment.ID,
		"submitterName": fragment.SubmitterName,
		"title":         fragment.Title,
		"roughThought":  fragment.RoughThought,
		"category":      fragment.Category,
		"hospital":      fragment.Hospital,
		"upvotes":       fragment.Upvotes,
		"maturityScore": fragment.MaturityScore,
		"status":        fragment.Status,
		"commentCount":  fragment.CommentCount,
		"comments":      comments,
		"createdAt":     fragment.CreatedAt,
	}
	if fragment.PromotedIdeaID != "" {
		payload["promotedIdeaId"] = fragment.PromotedIdeaID
	} else {
		payload["promotedIdeaId"] = nil
	}
	return payload
}

func commentPayload(comment store.FragmentComment) map[string]any {
	return map[string]any{
		"id":           comment.ID,
		"authorName":   comment.AuthorName,
		"authorRole":   comment.AuthorRole,
		"content":      comment.Content,
		"upvotes":      comment.Upvotes,
		"isBuildingOn": comment.IsBuildingOn,
		"createdAt":    comment.CreatedAt,
	}
}

func ideaPayload(idea store.Idea) map[string]any {
	return map[string]any{
		"id":               idea.ID,
		"submitterName":    idea.SubmitterName,
		"title":            idea.Title,
		"problemStatement": idea.ProblemStatement,
		"proposedSolution": idea.ProposedSolution,
		"expectedBenefit":  idea.ExpectedBenefit,
		"category":         idea.Category,
		"hospital":         idea.Hospital,
		"track":            idea.Track,
		"phase":            idea.Phase,
		"status":           idea.Status,
		"scores":           idea.Dimensions,
		"valueScore":       idea.ValueScore,
		"effortScore":      idea.EffortScore,
		"quadrant":         idea.Quadrant,
		"upvotes":          idea.Upvotes,
		"commentCount":     idea.CommentCount,
		"lowConfidence":    idea.LowConfidence,
		"createdAt":        idea.CreatedAt,
	}
}

func ideaRecord(idea store.Idea) search.IdeaRecord {
	return search.IdeaRecord{
		ID:               idea.ID,
		Title:            idea.Title,
		ProblemStatement: idea.ProblemStatement,
		ProposedSolution: idea.ProposedSolution,
		Category:         idea.Category,
		Hospital:         idea.Hospital,
		Track:            idea.Track,
		Quadrant:         idea.Quadrant,
		Status:           idea.Status,
	}
}
