package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/pkg/device"
)

type urlRepository interface {
	RetrieveByID(ctx context.Context, id string) (*entity.URLRecord, error)
	// AppendVisit stores the visit and increments the visit counter in one
	// atomic step and returns the long URL of the record.
	AppendVisit(ctx context.Context, id string, visit entity.VisitEvent) (string, error)
}

// VisitUseCase records visits on URL records.
type VisitUseCase struct {
	urlRepo urlRepository
	now     func() time.Time
	newID   func() string
}

func NewVisitUseCase(urlRepo urlRepository) *VisitUseCase {
	return &VisitUseCase{
		urlRepo: urlRepo,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// RecordVisit appends a visit from visitorOrigin to the URL record and returns
// the URL the visitor should be redirected to.
func (uc *VisitUseCase) RecordVisit(ctx context.Context, urlID, visitorOrigin, rawUserAgent string) (string, error) {
	const op = "usecase.VisitUseCase.RecordVisit"

	visit := entity.VisitEvent{
		ID:        uc.newID(),
		Location:  visitorOrigin,
		Device:    device.Parse(rawUserAgent),
		Timestamp: uc.now(),
	}

	longURL, err := uc.urlRepo.AppendVisit(ctx, urlID, visit)
	if err != nil {
		return "", fmt.Errorf("%s: failed to record visit: %w", op, err)
	}

	return longURL, nil
}

// GetStats returns the URL record with its raw visit history.
func (uc *VisitUseCase) GetStats(ctx context.Context, urlID string) (*entity.URLRecord, error) {
	const op = "usecase.VisitUseCase.GetStats"

	url, err := uc.urlRepo.RetrieveByID(ctx, urlID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}
