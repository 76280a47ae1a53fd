package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type metadataExtractor interface {
	Extract(ctx context.Context, url string) (*entity.Metadata, error)
}

type MetadataUseCase struct {
	extractor metadataExtractor
}

func NewMetadataUseCase(extractor metadataExtractor) *MetadataUseCase {
	return &MetadataUseCase{extractor: extractor}
}

// ExtractMetadata fetches url and returns its title and Open Graph image and
// description. Failures wrap entity.ErrExtractionFailure.
func (uc *MetadataUseCase) ExtractMetadata(ctx context.Context, url string) (*entity.Metadata, error) {
	const op = "usecase.MetadataUseCase.ExtractMetadata"

	md, err := uc.extractor.Extract(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return md, nil
}
