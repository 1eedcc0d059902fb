package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/launchhub-app/apiserver/types"
)

// ReviewRepository handles persistence for reviews. Reviews are append
// only; there is no update or delete.
type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int) ([]types.Review, error) {
	const query = `
		SELECT id, product_id, reviewer_name, reviewer_image, description, rating, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]types.Review, 0)
	for rows.Next() {
		var review types.Review
		if err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.ReviewerName,
			&review.ReviewerImage,
			&review.Description,
			&review.Rating,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review types.Review) (types.Review, error) {
	review.CreatedAt = time.Now()

	const query = `
		INSERT INTO reviews (product_id, reviewer_name, reviewer_image, description, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		review.ProductID,
		review.ReviewerName,
		review.ReviewerImage,
		review.Description,
		review.Rating,
		review.CreatedAt,
	).Scan(&review.ID); err != nil {
		return types.Review{}, err
	}
	return review, nil
}
