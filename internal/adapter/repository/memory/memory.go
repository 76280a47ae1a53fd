// Package memory implements the slug and URL stores in process memory.
// It is meant for local development and tests; state is lost on restart and
// is not shared between processes.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type Repository struct {
	mu    sync.RWMutex
	slugs map[string]entity.SlugRecord
	urls  map[string]*entity.URLRecord
	now   func() time.Time
}

func New() *Repository {
	return &Repository{
		slugs: make(map[string]entity.SlugRecord),
		urls:  make(map[string]*entity.URLRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) Exists(ctx context.Context, slug string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.slugs[slug]
	return ok, nil
}

// Save writes the URL record and then the slug record. The slug check and both
// writes happen under one lock, so a conflicting slug leaves the store untouched.
func (r *Repository) Save(ctx context.Context, slug, longURL string) (*entity.SlugRecord, error) {
	const op = "adapter.repository.memory.Repository.Save"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slugs[slug]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugConflict)
	}

	now := r.now()

	url := &entity.URLRecord{
		ID:           uuid.NewString(),
		Slug:         slug,
		LongURL:      longURL,
		VisitHistory: []entity.VisitEvent{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.urls[url.ID] = url

	rec := entity.SlugRecord{
		ID:        uuid.NewString(),
		Slug:      slug,
		URLID:     url.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.slugs[slug] = rec

	return &rec, nil
}

func (r *Repository) RetrieveURLID(ctx context.Context, slug string) (string, error) {
	const op = "adapter.repository.memory.Repository.RetrieveURLID"

	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.slugs[slug]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, entity.ErrSlugNotFound)
	}

	return rec.URLID, nil
}

func (r *Repository) RetrieveByID(ctx context.Context, id string) (*entity.URLRecord, error) {
	const op = "adapter.repository.memory.Repository.RetrieveByID"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	cp := *url
	cp.VisitHistory = slices.Clone(url.VisitHistory)

	return &cp, nil
}

// AppendVisit adds the visit and bumps the counter under the write lock.
func (r *Repository) AppendVisit(ctx context.Context, id string, visit entity.VisitEvent) (string, error) {
	const op = "adapter.repository.memory.Repository.AppendVisit"

	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	url.VisitHistory = append(url.VisitHistory, visit)
	url.VisitCount++
	url.UpdatedAt = r.now()

	return url.LongURL, nil
}

// Len returns the number of stored slug and URL records.
func (r *Repository) Len() (slugs, urls int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.slugs), len(r.urls)
}
