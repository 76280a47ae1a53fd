// Package usecase holds the business rules of the shortener: slug creation and
// resolution, visit recording and page metadata extraction.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/shortlink/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// SlugAlphabet is the url-safe alphabet generated slugs are drawn from.
	SlugAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"
	// MinSlugLength and MaxSlugLength bound the length of generated slugs.
	MinSlugLength = 7
	MaxSlugLength = 14

	maxAttempts = 10
)

// ErrMaxRetriesExceeded is returned when every generated slug candidate collided.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating slug")

type slugRepository interface {
	Exists(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, slug, longURL string) (*entity.SlugRecord, error)
	RetrieveURLID(ctx context.Context, slug string) (string, error)
}

type slugCache interface {
	Get(ctx context.Context, slug string) (urlID string, ok bool, err error)
	Set(ctx context.Context, slug, urlID string) error
}

// SlugUseCase owns the mapping from slugs to URL records.
type SlugUseCase struct {
	slugLength int
	generate   func(length int) (string, error)
	slugRepo   slugRepository
	cache      slugCache
	logger     *slog.Logger
}

// NewSlugUseCase creates a SlugUseCase. The cache is optional and may be nil.
func NewSlugUseCase(slugLength int, slugRepo slugRepository, cache slugCache, logger *slog.Logger) *SlugUseCase {
	slugLength = max(MinSlugLength, min(slugLength, MaxSlugLength))

	return &SlugUseCase{
		slugLength: slugLength,
		generate:   generateSlug,
		slugRepo:   slugRepo,
		cache:      cache,
		logger:     logger,
	}
}

func generateSlug(length int) (string, error) {
	return gonanoid.Generate(SlugAlphabet, length)
}

// Create persists a new link for longURL. A non-empty requestedSlug is used as is
// and fails with entity.ErrSlugConflict when taken; otherwise a random slug is
// generated and regenerated until the store accepts it.
func (uc *SlugUseCase) Create(ctx context.Context, longURL, requestedSlug string) (*entity.SlugRecord, error) {
	const op = "usecase.SlugUseCase.Create"

	if requestedSlug != "" {
		rec, err := uc.save(ctx, requestedSlug, longURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create requested slug: %w", op, err)
		}

		return rec, nil
	}

	length := uc.slugLength

	for i := 0; i < maxAttempts; i++ {
		slug, err := uc.generate(length)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate slug: %w", op, err)
		}

		rec, err := uc.save(ctx, slug, longURL)
		if err != nil {
			if errors.Is(err, entity.ErrSlugConflict) {
				length = min(length+1, MaxSlugLength)
				continue
			}

			return nil, fmt.Errorf("%s: failed to create slug: %w", op, err)
		}

		return rec, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// save checks for an existing slug before writing. The check only saves a
// round trip; the store's unique constraint decides conflicts.
func (uc *SlugUseCase) save(ctx context.Context, slug, longURL string) (*entity.SlugRecord, error) {
	exists, err := uc.slugRepo.Exists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entity.ErrSlugConflict
	}

	rec, err := uc.slugRepo.Save(ctx, slug, longURL)
	if err != nil {
		return nil, err
	}

	uc.cacheSet(ctx, rec.Slug, rec.URLID)

	return rec, nil
}

// Resolve returns the id of the URL record the slug points to.
func (uc *SlugUseCase) Resolve(ctx context.Context, slug string) (string, error) {
	const op = "usecase.SlugUseCase.Resolve"

	if uc.cache != nil {
		urlID, ok, err := uc.cache.Get(ctx, slug)
		switch {
		case err != nil:
			uc.logger.WarnContext(ctx, "slug cache lookup failed",
				slog.String("op", op), slog.String("slug", slug), slog.Any("err", err))
		case ok:
			return urlID, nil
		}
	}

	urlID, err := uc.slugRepo.RetrieveURLID(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve slug: %w", op, err)
	}

	uc.cacheSet(ctx, slug, urlID)

	return urlID, nil
}

func (uc *SlugUseCase) cacheSet(ctx context.Context, slug, urlID string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, slug, urlID); err != nil {
		uc.logger.WarnContext(ctx, "slug cache write failed",
			slog.String("slug", slug), slog.Any("err", err))
	}
}
