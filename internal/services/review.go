package services

import (
	"context"
	"errors"
	"strings"

	"github.com/launchhub-app/apiserver/types"
)

// ErrInvalidReview is returned for a review missing its description or
// carrying a rating outside 1..5.
var ErrInvalidReview = errors.New("invalid review")

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID int) ([]types.Review, error)
	Create(ctx context.Context, review types.Review) (types.Review, error)
}

// ReviewService encapsulates review use-cases.
type ReviewService struct {
	repo ReviewRepository
}

func NewReviewService(repo ReviewRepository) *ReviewService {
	return &ReviewService{repo: repo}
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID int) ([]types.Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *ReviewService) Create(ctx context.Context, review types.Review) (types.Review, error) {
	if strings.TrimSpace(review.Description) == "" {
		return types.Review{}, ErrInvalidReview
	}
	if review.Rating < 1 || review.Rating > 5 {
		return types.Review{}, ErrInvalidReview
	}
	return s.repo.Create(ctx, review)
}
