package types

import "time"

// Review is a rating left on a product's detail page.
// Reviews are immutable once created.
type Review struct {
	ID int `json:"id" db:"id"`

	// ProductID is the product the review belongs to.
	ProductID int `json:"productId" db:"product_id"`

	// ReviewerName and ReviewerImage are snapshotted from the reviewer's
	// profile at creation time.
	ReviewerName  string `json:"reviewerName" db:"reviewer_name"`
	ReviewerImage string `json:"reviewerImage" db:"reviewer_image"`

	// Description is the review body.
	Description string `json:"description" db:"description"`

	// Rating is a star rating between 1 and 5 inclusive.
	Rating int `json:"rating" db:"rating"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
