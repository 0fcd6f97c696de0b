package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"launchpad/api/internal/engine"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- fragments ----

func (s *PostgresStore) InsertFragment(ctx context.Context, fragment Fragment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fragments (id, submitter_name, title, rough_thought, category, hospital, upvotes, maturity_score, status, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, fragment.ID, fragment.SubmitterName, fragment.Title, fragment.RoughThought, fragment.Category, fragment.Hospital,
		fragment.Upvotes, fragment.MaturityScore, fragment.Status, fragment.Version, fragment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fragment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFragment(ctx context.Context, fragmentID string) (Fragment, error) {
	var item Fragment
	var promotedIdeaID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, submitter_name, title, rough_thought, COALESCE(category, ''), COALESCE(hospital, ''),
			upvotes, maturity_score, status, promoted_idea_id, version, created_at
		FROM fragments
		WHERE id=$1
	`, fragmentID).Scan(&item.ID, &item.SubmitterName, &item.Title, &item.RoughThought, &item.Category, &item.Hospital,
		&item.Upvotes, &item.MaturityScore, &item.Status, &promotedIdeaID, &item.Version, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Fragment{}, err
		}
		return Fragment{}, fmt.Errorf("get fragment: %w", err)
	}
	item.PromotedIdeaID = promotedIdeaID.String

	comments, err := s.listFragmentComments(ctx, fragmentID)
	if err != nil {
		return Fragment{}, err
	}
	item.Comments = comments
	item.CommentCount = len(comments)
	return item, nil
}

func (s *PostgresStore) ListFragments(ctx context.Context, status string, limit int) ([]Fragment, error) {
	query := `
		SELECT f.id, f.submitter_name, f.title, f.rough_thought, COALESCE(f.category, ''), COALESCE(f.hospital, ''),
			f.upvotes, f.maturity_score, f.status, f.promoted_idea_id, f.version, f.created_at,
			(SELECT COUNT(*) FROM fragment_comments c WHERE c.fragment_id = f.id)
		FROM fragments f
	`
	args := []any{}
	if status != "" {
		query += ` WHERE f.status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY f.created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	defer rows.Close()

	items := make([]Fragment, 0)
	for rows.Next() {
		var item Fragment
		var promotedIdeaID sql.NullString
		if err := rows.Scan(&item.ID, &item.SubmitterName, &item.Title, &item.RoughThought, &item.Category, &item.Hospital,
			&item.Upvotes, &item.MaturityScore, &item.Status, &promotedIdeaID, &item.Version, &item.CreatedAt, &item.CommentCount); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		item.PromotedIdeaID = promotedIdeaID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragments: %w", err)
	}
	return items, nil
}

// UpdateFragmentEngagement writes back upvotes, maturity, and status for one
// fragment, guarded by the version read at load time. Returns false when the
// version no longer matches and the caller must retry against fresh state.
func (s *PostgresStore) UpdateFragmentEngagement(ctx context.Context, fragmentID string, upvotes, maturityScore int, status string, version int) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fragments
		SET upvotes=$2, maturity_score=$3, status=$4, version=version+1
		WHERE id=$1 AND version=$5 AND status <> 'promoted'
	`, fragmentID, upvotes, maturityScore, status, version)
	if err != nil {
		return false, fmt.Errorf("update fragment engagement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update fragment engagement: %w", err)
	}
	return affected == 1, nil
}

// PromoteFragment flips a fragment into its terminal state and creates the
// idea record in one transaction. The status compare-and-swap means at most
// one caller can win; losers get false and no idea row is written.
func (s *PostgresStore) PromoteFragment(ctx context.Context, fragmentID string, idea Idea) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin promote tx: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE fragments
		SET status='promoted', promoted_idea_id=$2, version=version+1
		WHERE id=$1 AND status <> 'promoted'
	`, fragmentID, idea.ID)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("promote fragment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("promote fragment: %w", err)
	}
	if affected != 1 {
		_ = tx.Rollback()
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ideas (id, submitter_name, title, problem_statement, proposed_solution, expected_benefit,
			category, hospital, track, phase, status,
			emotional_needs, revenue_impact, drastic_change, pilot_complexity, people_build, technology_capex,
			value_score, effort_score, quadrant, upvotes, low_confidence, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`, idea.ID, idea.SubmitterName, idea.Title, idea.ProblemStatement, idea.ProposedSolution, idea.ExpectedBenefit,
		idea.Category, idea.Hospital, idea.Track, idea.Phase, idea.Status,
		idea.Dimensions.EmotionalNeeds, idea.Dimensions.RevenueImpact, idea.Dimensions.DrasticChange,
		idea.Dimensions.PilotComplexity, idea.Dimensions.PeopleBuild, idea.Dimensions.TechnologyCapex,
		idea.ValueScore, idea.EffortScore, idea.Quadrant, idea.Upvotes, idea.LowConfidence, idea.Version, idea.CreatedAt); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("insert promoted idea: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit promote tx: %w", err)
	}
	return true, nil
}

// ApplyFragmentComment appends a comment and writes the recomputed maturity
// and status in one transaction, guarded by the fragment version. A false
// return means the aggregate moved underneath the caller; nothing is applied.
func (s *PostgresStore) ApplyFragmentComment(ctx context.Context, comment FragmentComment, maturityScore int, status string, version int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin comment tx: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE fragments
		SET maturity_score=$2, status=$3, version=version+1
		WHERE id=$1 AND version=$4
	`, comment.FragmentID, maturityScore, status, version)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("update fragment maturity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("update fragment maturity: %w", err)
	}
	if affected != 1 {
		_ = tx.Rollback()
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO fragment_comments (id, fragment_id, author_name, author_role, content, upvotes, is_building_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, comment.ID, comment.FragmentID, comment.AuthorName, comment.AuthorRole, comment.Content, comment.Upvotes, comment.IsBuildingOn, comment.CreatedAt); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("insert comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit comment tx: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) UpvoteComment(ctx context.Context, fragmentID, commentID string) (int, error) {
	var upvotes int
	err := s.db.QueryRowContext(ctx, `
		UPDATE fragment_comments
		SET upvotes=upvotes+1
		WHERE id=$1 AND fragment_id=$2
		RETURNING upvotes
	`, commentID, fragmentID).Scan(&upvotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("upvote comment: %w", err)
	}
	return upvotes, nil
}

func (s *PostgresStore) listFragmentComments(ctx context.Context, fragmentID string) ([]FragmentComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fragment_id, author_name, COALESCE(author_role, ''), content, upvotes, is_building_on, created_at
		FROM fragment_comments
		WHERE fragment_id=$1
		ORDER BY created_at ASC, id ASC
	`, fragmentID)
	if err != nil {
		return nil, fmt.Errorf("list fragment comments: %w", err)
	}
	defer rows.Close()

	items := make([]FragmentComment, 0)
	for rows.Next() {
		var item FragmentComment
		if err := rows.Scan(&item.ID, &item.FragmentID, &item.AuthorName, &item.AuthorRole, &item.Content, &item.Upvotes, &item.IsBuildingOn, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fragment comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragment comments: %w", err)
	}
	return items, nil
}

// ---- ideas ----

func (s *PostgresStore) InsertIdea(ctx context.Context, idea Idea) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, submitter_name, title, problem_statement, proposed_solution, expected_benefit,
			category, hospital, track, phase, status,
			emotional_needs, revenue_impact, drastic_change, pilot_complexity, people_build, technology_capex,
			value_score, effort_score, quadrant, upvotes, low_confidence, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`, idea.ID, idea.SubmitterName, idea.Title, idea.ProblemStatement, idea.ProposedSolution, idea.ExpectedBenefit,
		idea.Category, idea.Hospital, idea.Track, idea.Phase, idea.Status,
		idea.Dimensions.EmotionalNeeds, idea.Dimensions.RevenueImpact, idea.Dimensions.DrasticChange,
		idea.Dimensions.PilotComplexity, idea.Dimensions.PeopleBuild, idea.Dimensions.TechnologyCapex,
		idea.ValueScore, idea.EffortScore, idea.Quadrant, idea.Upvotes, idea.LowConfidence, idea.Version, idea.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

const ideaColumns = `
	i.id, i.submitter_name, i.title, i.problem_statement, i.proposed_solution, i.expected_benefit,
	COALESCE(i.category, ''), COALESCE(i.hospital, ''), i.track, i.phase, i.status,
	i.emotional_needs, i.revenue_impact, i.drastic_change, i.pilot_complexity, i.people_build, i.technology_capex,
	i.value_score, i.effort_score, i.quadrant, i.upvotes, i.low_confidence, i.version, i.created_at,
	(SELECT COUNT(*) FROM idea_comments c WHERE c.idea_id = i.id)
`

func scanIdea(row interface{ Scan(...any) error }) (Idea, error) {
	var item Idea
	err := row.Scan(&item.ID, &item.SubmitterName, &item.Title, &item.ProblemStatement, &item.ProposedSolution, &item.ExpectedBenefit,
		&item.Category, &item.Hospital, &item.Track, &item.Phase, &item.Status,
		&item.Dimensions.EmotionalNeeds, &item.Dimensions.RevenueImpact, &item.Dimensions.DrasticChange,
		&item.Dimensions.PilotComplexity, &item.Dimensions.PeopleBuild, &item.Dimensions.TechnologyCapex,
		&item.ValueScore, &item.EffortScore, &item.Quadrant, &item.Upvotes, &item.LowConfidence, &item.Version, &item.CreatedAt,
		&item.CommentCount)
	return item, err
}

func (s *PostgresStore) GetIdea(ctx context.Context, ideaID string) (Idea, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas i WHERE i.id=$1`, ideaID)
	item, err := scanIdea(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Idea{}, err
		}
		return Idea{}, fmt.Errorf("get idea: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) ListIdeas(ctx context.Context, filter IdeaFilter) ([]Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas i`
	args := []any{}
	where := ""
	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, value)
		where += fmt.Sprintf("i.%s = $%d", column, len(args))
	}
	addFilter("track", filter.Track)
	addFilter("status", filter.Status)
	addFilter("category", filter.Category)
	query += where

	switch filter.SortBy {
	case "valueScore":
		query += ` ORDER BY i.value_score DESC`
	case "createdAt":
		query += ` ORDER BY i.created_at DESC`
	default:
		query += ` ORDER BY i.upvotes DESC`
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	items := make([]Idea, 0)
	for rows.Next() {
		item, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}
	return items, nil
}

// UpdateIdeaRubric rewrites the six dimensions together with the derived
// scores and quadrant, guarded by the idea version. The derived columns only
// ever change in lockstep with the dimensions that produced them.
func (s *PostgresStore) UpdateIdeaRubric(ctx context.Context, ideaID string, dims engine.DimensionScores, valueScore, effortScore float64, quadrant string, version int) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ideas
		SET emotional_needs=$2, revenue_impact=$3, drastic_change=$4, pilot_complexity=$5, people_build=$6, technology_capex=$7,
			value_score=$8, effort_score=$9, quadrant=$10, version=version+1
		WHERE id=$1 AND version=$11
	`, ideaID, dims.EmotionalNeeds, dims.RevenueImpact, dims.DrasticChange, dims.PilotComplexity, dims.PeopleBuild, dims.TechnologyCapex,
		valueScore, effortScore, quadrant, version)
	if err != nil {
		return false, fmt.Errorf("update idea rubric: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update idea rubric: %w", err)
	}
	return affected == 1, nil
}

// UpvoteIdea increments the idea's upvote counter. The counter never
// decreases; the increment is atomic in the database.
func (s *PostgresStore) UpvoteIdea(ctx context.Context, ideaID string) (int, error) {
	var upvotes int
	err := s.db.QueryRowContext(ctx, `
		UPDATE ideas SET upvotes=upvotes+1, version=version+1 WHERE id=$1 RETURNING upvotes
	`, ideaID).Scan(&upvotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("upvote idea: %w", err)
	}
	return upvotes, nil
}

func (s *PostgresStore) InsertIdeaComment(ctx context.Context, comment IdeaComment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO idea_comments (id, idea_id, author_name, author_role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, comment.IdeaID, comment.AuthorName, comment.AuthorRole, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert idea comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListIdeaComments(ctx context.Context, ideaID string) ([]IdeaComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, idea_id, author_name, COALESCE(author_role, ''), content, created_at
		FROM idea_comments
		WHERE idea_id=$1
		ORDER BY created_at ASC, id ASC
	`, ideaID)
	if err != nil {
		return nil, fmt.Errorf("list idea comments: %w", err)
	}
	defer rows.Close()

	items := make([]IdeaComment, 0)
	for rows.Next() {
		var item IdeaComment
		if err := rows.Scan(&item.ID, &item.IdeaID, &item.AuthorName, &item.AuthorRole, &item.Content, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan idea comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate idea comments: %w", err)
	}
	return items, nil
}

// ---- analytics ----

func (s *PostgresStore) DashboardCounts(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{
		ByQuadrant: map[string]int{},
		ByStatus:   map[string]int{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM ideas),
			(SELECT COUNT(*) FROM fragments),
			(SELECT COALESCE(SUM(upvotes), 0) FROM ideas) + (SELECT COALESCE(SUM(upvotes), 0) FROM fragments)
	`).Scan(&stats.TotalIdeas, &stats.TotalFragments, &stats.TotalUpvotes)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard totals: %w", err)
	}

	quadrantRows, err := s.db.QueryContext(ctx, `SELECT quadrant, COUNT(*) FROM ideas GROUP BY quadrant`)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard quadrants: %w", err)
	}
	defer quadrantRows.Close()
	for quadrantRows.Next() {
		var quadrant string
		var count int
		if err := quadrantRows.Scan(&quadrant, &count); err != nil {
			return DashboardStats{}, fmt.Errorf("scan quadrant count: %w", err)
		}
		stats.ByQuadrant[quadrant] = count
	}
	if err := quadrantRows.Err(); err != nil {
		return DashboardStats{}, fmt.Errorf("iterate quadrant counts: %w", err)
	}

	statusRows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM fragments GROUP BY status`)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard statuses: %w", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status string
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			return DashboardStats{}, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := statusRows.Err(); err != nil {
		return DashboardStats{}, fmt.Errorf("iterate status counts: %w", err)
	}

	return stats, nil
}

func (s *PostgresStore) HospitalLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hospital, COUNT(*), COALESCE(SUM(upvotes), 0)
		FROM ideas
		WHERE hospital IS NOT NULL AND hospital <> ''
		GROUP BY hospital
		ORDER BY COALESCE(SUM(upvotes), 0) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("hospital leaderboard: %w", err)
	}
	defer rows.Close()

	items := make([]LeaderboardRow, 0)
	for rows.Next() {
		var item LeaderboardRow
		if err := rows.Scan(&item.Hospital, &item.Ideas, &item.Upvotes); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return items, nil
}
