package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type mockSlugRepository struct {
	mock.Mock
}

func (r *mockSlugRepository) Exists(ctx context.Context, slug string) (bool, error) {
	args := r.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (r *mockSlugRepository) Save(ctx context.Context, slug, longURL string) (*entity.SlugRecord, error) {
	args := r.Called(ctx, slug, longURL)
	rec, _ := args.Get(0).(*entity.SlugRecord)
	return rec, args.Error(1)
}

func (r *mockSlugRepository) RetrieveURLID(ctx context.Context, slug string) (string, error) {
	args := r.Called(ctx, slug)
	return args.String(0), args.Error(1)
}

type mockSlugCache struct {
	mock.Mock
}

func (c *mockSlugCache) Get(ctx context.Context, slug string) (string, bool, error) {
	args := c.Called(ctx, slug)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (c *mockSlugCache) Set(ctx context.Context, slug, urlID string) error {
	args := c.Called(ctx, slug, urlID)
	return args.Error(0)
}

type mockURLRepository struct {
	mock.Mock
}

func (r *mockURLRepository) RetrieveByID(ctx context.Context, id string) (*entity.URLRecord, error) {
	args := r.Called(ctx, id)
	url, _ := args.Get(0).(*entity.URLRecord)
	return url, args.Error(1)
}

func (r *mockURLRepository) AppendVisit(ctx context.Context, id string, visit entity.VisitEvent) (string, error) {
	args := r.Called(ctx, id, visit)
	return args.String(0), args.Error(1)
}

type mockMetadataExtractor struct {
	mock.Mock
}

func (e *mockMetadataExtractor) Extract(ctx context.Context, url string) (*entity.Metadata, error) {
	args := e.Called(ctx, url)
	md, _ := args.Get(0).(*entity.Metadata)
	return md, args.Error(1)
}
