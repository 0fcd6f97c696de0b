package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true — if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across ideas and fragments using
// plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultIdea {
		ideaWhere := "i.fts @@ " + tsQuery
		if q.FilterHospital != "" {
			ideaWhere += fmt.Sprintf(" AND i.hospital = $%d", argN)
			args = append(args, q.FilterHospital)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'idea'::text AS type, i.id, i.title,
				ts_headline('english', coalesce(i.problem_statement, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				coalesce(i.hospital, '') AS hospital, coalesce(i.category, '') AS category,
				i.quadrant, i.status,
				ts_rank(i.fts, %s) AS rank
			FROM ideas i
			WHERE %s`, tsQuery, tsQuery, ideaWhere))
	}

	if q.FilterType == "" || q.FilterType == ResultFragment {
		fragmentWhere := "f.fts @@ " + tsQuery
		if q.FilterHospital != "" {
			fragmentWhere += fmt.Sprintf(" AND f.hospital = $%d", argN)
			args = append(args, q.FilterHospital)
			argN++
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'fragment'::text AS type, f.id, f.title,
				ts_headline('english', coalesce(f.rough_thought, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				coalesce(f.hospital, '') AS hospital, coalesce(f.category, '') AS category,
				''::text AS quadrant, f.status,
				ts_rank(f.fts, %s) AS rank
			FROM fragments f
			WHERE %s`, tsQuery, tsQuery, fragmentWhere))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, hospital, category, quadrant, status
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.Hospital, &r.Category, &r.Quadrant, &r.Status); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]IdeaRecord, []FragmentRecord, error) {
	ideaRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, problem_statement, proposed_solution,
			coalesce(category, ''), coalesce(hospital, ''), track, quadrant, status
		FROM ideas
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load ideas: %w", err)
	}
	defer ideaRows.Close()

	ideas := make([]IdeaRecord, 0)
	for ideaRows.Next() {
		var idea IdeaRecord
		if err := ideaRows.Scan(&idea.ID, &idea.Title, &idea.ProblemStatement, &idea.ProposedSolution,
			&idea.Category, &idea.Hospital, &idea.Track, &idea.Quadrant, &idea.Status); err != nil {
			return nil, nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := ideaRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate ideas: %w", err)
	}

	fragmentRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, rough_thought, coalesce(category, ''), coalesce(hospital, ''), status
		FROM fragments
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load fragments: %w", err)
	}
	defer fragmentRows.Close()

	fragments := make([]FragmentRecord, 0)
	for fragmentRows.Next() {
		var fragment FragmentRecord
		if err := fragmentRows.Scan(&fragment.ID, &fragment.Title, &fragment.RoughThought,
			&fragment.Category, &fragment.Hospital, &fragment.Status); err != nil {
			return nil, nil, fmt.Errorf("scan fragment: %w", err)
		}
		fragments = append(fragments, fragment)
	}
	if err := fragmentRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate fragments: %w", err)
	}

	return ideas, fragments, nil
}
