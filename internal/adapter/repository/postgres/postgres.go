// Package postgres implements the slug and URL stores on top of PostgreSQL.
package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	uniqueViolationErrCode       = "23505"
	invalidTextRepresentationErr = "22P02"
)

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

// isInvalidIDError reports whether Postgres rejected a value that is not a valid uuid.
func isInvalidIDError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == invalidTextRepresentationErr
}

type slugDB struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	URLID     string    `db:"url_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *slugDB) toEntity() *entity.SlugRecord {
	return &entity.SlugRecord{
		ID:        s.ID,
		Slug:      s.Slug,
		URLID:     s.URLID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type urlDB struct {
	ID             string         `db:"id"`
	Slug           string         `db:"slug"`
	LongURL        string         `db:"long_url"`
	VisitCount     int64          `db:"visit_count"`
	VisitorDetails visitorDetails `db:"visitor_details"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (u *urlDB) toEntity() *entity.URLRecord {
	history := []entity.VisitEvent(u.VisitorDetails)
	if history == nil {
		history = []entity.VisitEvent{}
	}

	return &entity.URLRecord{
		ID:           u.ID,
		Slug:         u.Slug,
		LongURL:      u.LongURL,
		VisitCount:   u.VisitCount,
		VisitHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// visitorDetails is the jsonb array of visits embedded in a urls row.
type visitorDetails []entity.VisitEvent

func (v *visitorDetails) Scan(src any) error {
	var data []byte

	switch src := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		data = src
	case string:
		data = []byte(src)
	default:
		return fmt.Errorf("unsupported visitor_details type %T", src)
	}

	return json.Unmarshal(data, (*[]entity.VisitEvent)(v))
}
