package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
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

// ── Users ──

// UpsertUser inserts the user on first sign-in and leaves an existing row
// untouched; the identity provider owns the profile.
func (s *PostgresStore) UpsertUser(ctx context.Context, user User) (User, error) {
	const query = `
		INSERT INTO users (id, name, email, image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Image); err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetUser(ctx, user.ID)
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, image, created_at FROM users WHERE id=$1
	`, userID).Scan(&user.ID, &user.Name, &user.Email, &user.Image, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, filters []Filter) ([]User, error) {
	where, args := compileFilters(filters)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, image, created_at FROM users
	`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		var item User
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Image, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return items, nil
}

// ── Spaces ──

func (s *PostgresStore) InsertSpace(ctx context.Context, space Space) error {
	contributors, tags, moments, err := marshalSpaceLists(space.Contributors, space.Tags, space.Moments)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO spaces (id, title, image, description, contributors, tags, moments, layout)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, space.ID, space.Title, space.Image, space.Description, contributors, tags, moments, space.Layout)
	if err != nil {
		return fmt.Errorf("insert space: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSpace(ctx context.Context, spaceID string) (Space, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, image, description, contributors, tags, moments, layout, created_at
		FROM spaces
		WHERE id=$1
	`, spaceID)
	return scanSpace(row)
}

func (s *PostgresStore) SpaceTitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM spaces WHERE title=$1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check space title: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListSpaces(ctx context.Context, filters []Filter) ([]Space, error) {
	where, args := compileFilters(filters)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, image, description, contributors, tags, moments, layout, created_at
		FROM spaces
	`+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	items := make([]Space, 0)
	for rows.Next() {
		item, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateSpace(ctx context.Context, spaceID string, patch SpacePatch) error {
	return updateSpaceExec(ctx, s.db, spaceID, patch)
}

func (s *PostgresStore) DeleteSpace(ctx context.Context, spaceID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM spaces WHERE id=$1`, spaceID); err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	return nil
}

// ── Moments ──

func (s *PostgresStore) InsertMoment(ctx context.Context, moment Moment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moments (id, title, author, content)
		VALUES ($1, $2, $3, $4)
	`, moment.ID, moment.Title, moment.Author, moment.Content)
	if err != nil {
		return fmt.Errorf("insert moment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMoment(ctx context.Context, momentID string) (Moment, error) {
	var item Moment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, content, created_at, modified_at
		FROM moments
		WHERE id=$1
	`, momentID).Scan(&item.ID, &item.Title, &item.Author, &item.Content, &item.CreatedAt, &item.ModifiedAt)
	if err != nil {
		return Moment{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListMoments(ctx context.Context, filters []Filter) ([]Moment, error) {
	where, args := compileFilters(filters)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, content, created_at, modified_at
		FROM moments
	`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list moments: %w", err)
	}
	defer rows.Close()

	items := make([]Moment, 0)
	for rows.Next() {
		var item Moment
		if err := rows.Scan(&item.ID, &item.Title, &item.Author, &item.Content, &item.CreatedAt, &item.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan moment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateMoment(ctx context.Context, momentID string, patch MomentPatch) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE moments
		SET title=COALESCE($2, title), content=COALESCE($3, content), modified_at=NOW()
		WHERE id=$1
	`, momentID, patch.Title, patch.Content)
	if err != nil {
		return fmt.Errorf("update moment: %w", err)
	}
	return nil
}

// ListSpacesContainingMoment scans the spaces collection for membership; no
// reverse index is persisted.
func (s *PostgresStore) ListSpacesContainingMoment(ctx context.Context, momentID string) ([]Space, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, image, description, contributors, tags, moments, layout, created_at
		FROM spaces
		WHERE moments @> jsonb_build_array($1::text)
		ORDER BY created_at
	`, momentID)
	if err != nil {
		return nil, fmt.Errorf("list spaces containing moment: %w", err)
	}
	defer rows.Close()

	items := make([]Space, 0)
	for rows.Next() {
		item, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return items, nil
}

// DeleteMomentCascade removes the Moment ID from every Space that lists it and
// deletes the Moment document, all inside one transaction so a failure cannot
// leave the membership lists half-cleaned.
func (s *PostgresStore) DeleteMomentCascade(ctx context.Context, momentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, moments FROM spaces
		WHERE moments @> jsonb_build_array($1::text)
		FOR UPDATE
	`, momentID)
	if err != nil {
		return fmt.Errorf("select referencing spaces: %w", err)
	}

	type spaceMoments struct {
		id      string
		moments []string
	}
	var referencing []spaceMoments
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return fmt.Errorf("scan referencing space: %w", err)
		}
		var moments []string
		if err := json.Unmarshal(raw, &moments); err != nil {
			rows.Close()
			return fmt.Errorf("decode moments list: %w", err)
		}
		referencing = append(referencing, spaceMoments{id: id, moments: moments})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate referencing spaces: %w", err)
	}
	rows.Close()

	for _, space := range referencing {
		remaining := make([]string, 0, len(space.moments))
		for _, id := range space.moments {
			if id != momentID {
				remaining = append(remaining, id)
			}
		}
		encoded, err := json.Marshal(remaining)
		if err != nil {
			return fmt.Errorf("encode moments list: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE spaces SET moments=$2 WHERE id=$1`, space.id, encoded); err != nil {
			return fmt.Errorf("detach moment from space %s: %w", space.id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM moments WHERE id=$1`, momentID); err != nil {
		return fmt.Errorf("delete moment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade tx: %w", err)
	}
	return nil
}

// ── helpers ──

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpace(row rowScanner) (Space, error) {
	var item Space
	var contributors, tags, moments []byte
	err := row.Scan(&item.ID, &item.Title, &item.Image, &item.Description, &contributors, &tags, &moments, &item.Layout, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Space{}, err
		}
		return Space{}, fmt.Errorf("scan space: %w", err)
	}
	if err := json.Unmarshal(contributors, &item.Contributors); err != nil {
		return Space{}, fmt.Errorf("decode contributors: %w", err)
	}
	if err := json.Unmarshal(tags, &item.Tags); err != nil {
		return Space{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(moments, &item.Moments); err != nil {
		return Space{}, fmt.Errorf("decode moments: %w", err)
	}
	return item, nil
}

func marshalSpaceLists(contributors, tags, moments []string) ([]byte, []byte, []byte, error) {
	encodedContributors, err := json.Marshal(nonNilList(contributors))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode contributors: %w", err)
	}
	encodedTags, err := json.Marshal(nonNilList(tags))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	encodedMoments, err := json.Marshal(nonNilList(moments))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode moments: %w", err)
	}
	return encodedContributors, encodedTags, encodedMoments, nil
}

func nonNilList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateSpaceExec(ctx context.Context, db execer, spaceID string, patch SpacePatch) error {
	var contributors, tags, moments []byte
	var err error
	if patch.Contributors != nil {
		if contributors, err = json.Marshal(nonNilList(*patch.Contributors)); err != nil {
			return fmt.Errorf("encode contributors: %w", err)
		}
	}
	if patch.Tags != nil {
		if tags, err = json.Marshal(nonNilList(*patch.Tags)); err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
	}
	if patch.Moments != nil {
		if moments, err = json.Marshal(nonNilList(*patch.Moments)); err != nil {
			return fmt.Errorf("encode moments: %w", err)
		}
	}

	_, err = db.ExecContext(ctx, `
		UPDATE spaces
		SET title=COALESCE($2, title),
			image=COALESCE($3, image),
			description=COALESCE($4, description),
			contributors=COALESCE($5, contributors),
			tags=COALESCE($6, tags),
			moments=COALESCE($7, moments),
			layout=COALESCE($8, layout)
		WHERE id=$1
	`, spaceID, patch.Title, patch.Image, patch.Description, contributors, tags, moments, patch.Layout)
	if err != nil {
		return fmt.Errorf("update space: %w", err)
	}
	return nil
}
