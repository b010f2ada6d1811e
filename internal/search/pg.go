package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PgSearch implements Searcher with ILIKE matching as a fallback when
// Meilisearch is unreachable.
type PgSearch struct {
	db *sql.DB
}

// NewPgSearch creates a Postgres-backed searcher.
func NewPgSearch(db *sql.DB) *PgSearch {
	return &PgSearch{db: db}
}

// Healthy always returns true — if Postgres is down, the whole app is down.
func (p *PgSearch) Healthy() bool {
	return true
}

// Search runs a UNION ALL over spaces and moments with substring matching.
func (p *PgSearch) Search(q Query) ([]Result, int, error) {
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

	pattern := "%" + q.Text + "%"

	var subQueries []string
	if q.FilterType == "" || q.FilterType == ResultSpace {
		subQueries = append(subQueries, `
			SELECT 'space'::text AS type, s.id, s.title, s.description AS snippet, ''::text AS author
			FROM spaces s
			WHERE s.title ILIKE $1 OR s.description ILIKE $1 OR s.tags::text ILIKE $1`)
	}
	if q.FilterType == "" || q.FilterType == ResultMoment {
		subQueries = append(subQueries, `
			SELECT 'moment'::text AS type, m.id, m.title, left(m.content, 200) AS snippet, m.author
			FROM moments m
			WHERE m.title ILIKE $1 OR m.content ILIKE $1`)
	}
	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	query := strings.Join(subQueries, " UNION ALL ") + fmt.Sprintf(" ORDER BY title LIMIT %d OFFSET %d", limit, offset)

	rows, err := p.db.QueryContext(context.Background(), query, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("pg search: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var r Result
		var rtyp string
		if err := rows.Scan(&rtyp, &r.ID, &r.Title, &r.Snippet, &r.Author); err != nil {
			return nil, 0, fmt.Errorf("scan search result: %w", err)
		}
		r.Type = ResultType(rtyp)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search results: %w", err)
	}

	return results, len(results), nil
}

// LoadAllRecords reads every Space and Moment for bulk reindexing.
func (p *PgSearch) LoadAllRecords(ctx context.Context) ([]SpaceRecord, []MomentRecord, error) {
	spaceRows, err := p.db.QueryContext(ctx, `SELECT id, title, description, tags FROM spaces`)
	if err != nil {
		return nil, nil, fmt.Errorf("load spaces: %w", err)
	}
	defer spaceRows.Close()

	var spaces []SpaceRecord
	for spaceRows.Next() {
		var record SpaceRecord
		var tags []byte
		if err := spaceRows.Scan(&record.ID, &record.Title, &record.Description, &tags); err != nil {
			return nil, nil, fmt.Errorf("scan space record: %w", err)
		}
		record.Tags = decodeTagList(tags)
		spaces = append(spaces, record)
	}
	if err := spaceRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate space records: %w", err)
	}

	momentRows, err := p.db.QueryContext(ctx, `SELECT id, title, content, author FROM moments`)
	if err != nil {
		return nil, nil, fmt.Errorf("load moments: %w", err)
	}
	defer momentRows.Close()

	var moments []MomentRecord
	for momentRows.Next() {
		var record MomentRecord
		if err := momentRows.Scan(&record.ID, &record.Title, &record.Content, &record.Author); err != nil {
			return nil, nil, fmt.Errorf("scan moment record: %w", err)
		}
		moments = append(moments, record)
	}
	if err := momentRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate moment records: %w", err)
	}

	return spaces, moments, nil
}

// decodeTagList parses the jsonb tags column; a decode failure just means no
// tags get indexed for that row.
func decodeTagList(raw []byte) []string {
	var tags []string
	if len(raw) == 0 {
		return tags
	}
	_ = json.Unmarshal(raw, &tags)
	return tags
}
