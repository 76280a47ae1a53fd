package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) RetrieveByID(ctx context.Context, id string) (*entity.URLRecord, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByID"
	const query = `SELECT * FROM urls WHERE id = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidIDError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

// AppendVisit appends the visit to visitor_details and increments visit_count
// in a single UPDATE, so concurrent visits never overwrite each other.
func (r *URLRepository) AppendVisit(ctx context.Context, id string, visit entity.VisitEvent) (string, error) {
	const op = "adapter.repository.postgres.URLRepository.AppendVisit"
	const query = `UPDATE urls
		SET visit_count = visit_count + 1,
			visitor_details = visitor_details || jsonb_build_array($2::jsonb),
			updated_at = NOW()
		WHERE id = $1
		RETURNING long_url`

	event, err := json.Marshal(visit)
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode visit: %w", op, err)
	}

	var longURL string

	if err := r.db.GetContext(ctx, &longURL, query, id, string(event)); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidIDError(err) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return "", fmt.Errorf("%s: failed to update urls table row: %w", op, err)
	}

	return longURL, nil
}
