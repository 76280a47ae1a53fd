package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type SlugRepository struct {
	db *sqlx.DB
}

func NewSlugRepository(db *sqlx.DB) *SlugRepository {
	return &SlugRepository{db: db}
}

func (r *SlugRepository) Exists(ctx context.Context, slug string) (bool, error) {
	const op = "adapter.repository.postgres.SlugRepository.Exists"
	const query = `SELECT EXISTS(SELECT 1 FROM slugs WHERE slug = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("%s: failed to query slugs table: %w", op, err)
	}

	return exists, nil
}

// Save inserts the urls row and then the slugs row pointing at it in one
// transaction. A taken slug rolls both back and returns entity.ErrSlugConflict.
func (r *SlugRepository) Save(ctx context.Context, slug, longURL string) (*entity.SlugRecord, error) {
	const op = "adapter.repository.postgres.SlugRepository.Save"
	const insertURL = `INSERT INTO urls(slug, long_url) VALUES ($1, $2) RETURNING id`
	const insertSlug = `INSERT INTO slugs(slug, url_id) VALUES ($1, $2) RETURNING *`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var urlID string

	if err := tx.GetContext(ctx, &urlID, insertURL, slug, longURL); err != nil {
		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	var rec slugDB

	if err := tx.GetContext(ctx, &rec, insertSlug, slug, urlID); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugConflict)
		}

		return nil, fmt.Errorf("%s: failed to insert into slugs table: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return rec.toEntity(), nil
}

func (r *SlugRepository) RetrieveURLID(ctx context.Context, slug string) (string, error) {
	const op = "adapter.repository.postgres.SlugRepository.RetrieveURLID"
	const query = `SELECT url_id FROM slugs WHERE slug = $1`

	var urlID string

	if err := r.db.GetContext(ctx, &urlID, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrSlugNotFound)
		}

		return "", fmt.Errorf("%s: failed to get row from slugs table: %w", op, err)
	}

	return urlID, nil
}
