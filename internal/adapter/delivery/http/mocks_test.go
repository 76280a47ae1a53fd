package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type mockSlugUseCase struct {
	mock.Mock
}

func (m *mockSlugUseCase) Create(ctx context.Context, longURL, requestedSlug string) (*entity.SlugRecord, error) {
	args := m.Called(ctx, longURL, requestedSlug)
	rec, _ := args.Get(0).(*entity.SlugRecord)
	return rec, args.Error(1)
}

func (m *mockSlugUseCase) Resolve(ctx context.Context, slug string) (string, error) {
	args := m.Called(ctx, slug)
	return args.String(0), args.Error(1)
}

type mockVisitUseCase struct {
	mock.Mock
}

func (m *mockVisitUseCase) RecordVisit(ctx context.Context, urlID, visitorOrigin, rawUserAgent string) (string, error) {
	args := m.Called(ctx, urlID, visitorOrigin, rawUserAgent)
	return args.String(0), args.Error(1)
}

func (m *mockVisitUseCase) GetStats(ctx context.Context, urlID string) (*entity.URLRecord, error) {
	args := m.Called(ctx, urlID)
	url, _ := args.Get(0).(*entity.URLRecord)
	return url, args.Error(1)
}

type mockMetadataUseCase struct {
	mock.Mock
}

func (m *mockMetadataUseCase) ExtractMetadata(ctx context.Context, url string) (*entity.Metadata, error) {
	args := m.Called(ctx, url)
	md, _ := args.Get(0).(*entity.Metadata)
	return md, args.Error(1)
}
