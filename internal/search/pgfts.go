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

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across tasks, submissions, and
// comments using plainto_tsquery and ts_rank, with ts_headline for
// snippets. Rows are always restricted to the caller's pets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" || len(q.PetIDs) == 0 {
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

	petIDs := q.PetIDs
	if q.FilterPetID != "" {
		petIDs = []string{q.FilterPetID}
	}
	placeholders := make([]string, len(petIDs))
	for i, id := range petIDs {
		placeholders[i] = fmt.Sprintf("$%d", argN)
		args = append(args, id)
		argN++
	}
	petSet := "(" + strings.Join(placeholders, ", ") + ")"

	var subQueries []string

	// Tasks sub-query
	if q.FilterType == "" || q.FilterType == ResultTask {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'task'::text AS type, t.id, t.title,
				ts_headline('english', coalesce(t.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				t.pet_id, t.id AS task_id,
				ts_rank(t.fts, %s) AS rank
			FROM tasks t
			WHERE t.fts @@ %s AND t.pet_id IN %s`, tsQuery, tsQuery, tsQuery, petSet))
	}

	// Submissions sub-query
	if q.FilterType == "" || q.FilterType == ResultSubmission {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'submission'::text AS type, s.id, t.title,
				ts_headline('english', coalesce(s.note, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				t.pet_id, t.id AS task_id,
				ts_rank(s.fts, %s) AS rank
			FROM submissions s
			JOIN tasks t ON t.id = s.task_id
			WHERE s.fts @@ %s AND t.pet_id IN %s`, tsQuery, tsQuery, tsQuery, petSet))
	}

	// Comments sub-query
	if q.FilterType == "" || q.FilterType == ResultComment {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'comment'::text AS type, c.id, 'Trainer feedback'::text AS title,
				ts_headline('english', coalesce(c.body, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				t.pet_id, t.id AS task_id,
				ts_rank(c.fts, %s) AS rank
			FROM comments c
			JOIN submissions s ON s.id = c.submission_id
			JOIN tasks t ON t.id = s.task_id
			WHERE c.fts @@ %s AND t.pet_id IN %s`, tsQuery, tsQuery, tsQuery, petSet))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, pet_id, task_id
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
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.PetID, &r.TaskID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]TaskRecord, []SubmissionRecord, []CommentRecord, error) {
	taskRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, coalesce(description, ''), pet_id
		FROM tasks
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load tasks: %w", err)
	}
	defer taskRows.Close()

	tasks := make([]TaskRecord, 0)
	for taskRows.Next() {
		var t TaskRecord
		if err := taskRows.Scan(&t.ID, &t.Title, &t.Description, &t.PetID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := taskRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate tasks: %w", err)
	}

	subRows, err := p.db.QueryContext(ctx, `
		SELECT s.id, coalesce(s.note, ''), s.task_id, t.title, t.pet_id
		FROM submissions s
		JOIN tasks t ON t.id = s.task_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load submissions: %w", err)
	}
	defer subRows.Close()

	submissions := make([]SubmissionRecord, 0)
	for subRows.Next() {
		var s SubmissionRecord
		if err := subRows.Scan(&s.ID, &s.Note, &s.TaskID, &s.TaskTitle, &s.PetID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err := subRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate submissions: %w", err)
	}

	commentRows, err := p.db.QueryContext(ctx, `
		SELECT c.id, c.body, c.submission_id, t.id, t.pet_id
		FROM comments c
		JOIN submissions s ON s.id = c.submission_id
		JOIN tasks t ON t.id = s.task_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load comments: %w", err)
	}
	defer commentRows.Close()

	comments := make([]CommentRecord, 0)
	for commentRows.Next() {
		var c CommentRecord
		if err := commentRows.Scan(&c.ID, &c.Body, &c.SubmissionID, &c.TaskID, &c.PetID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := commentRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate comments: %w", err)
	}

	return tasks, submissions, comments, nil
}
