package types

import "time"

// Product statuses as they move through the moderation pipeline.
const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// Product represents a tech product submitted to the platform.
// A product starts in the Pending state and becomes publicly visible
// once a moderator accepts it.
type Product struct {
	// ID is the unique identifier of the product.
	ID int `json:"id" db:"id"`

	// ProductName is the display name of the product.
	ProductName string `json:"productName" db:"product_name"`

	// Description is the product pitch shown on listing and detail pages.
	Description string `json:"description" db:"description"`

	// ProductImage is the URL (or served media path) of the product image.
	ProductImage string `json:"productImage" db:"product_image"`

	// Tags are free-form labels used for categorization and search.
	Tags []string `json:"tags" db:"tags"`

	// ExternalLinks are URLs pointing at the product's site, repo, etc.
	ExternalLinks []string `json:"externalLinks" db:"external_links"`

	// OwnerEmail is the email of the account that submitted the product.
	// The owner can never appear in VotedEmails.
	OwnerEmail string `json:"ownerEmail" db:"owner_email"`

	// Status is the moderation state: Pending, Accepted or Rejected.
	// It only changes through the moderation transition rules.
	Status string `json:"status" db:"status"`

	// Featured marks the product for the curated spotlight listing.
	// It may only be true while Status is Accepted.
	Featured bool `json:"featured" db:"featured"`

	// UpVote is the number of upvotes. It always equals the size of
	// VotedEmails; the server recomputes it on every toggle.
	UpVote int `json:"upVote" db:"up_vote"`

	// VotedEmails is the set of emails that currently upvote the product.
	// An email appears at most once.
	VotedEmails []string `json:"votedEmails" db:"voted_emails"`

	// ReportedBy is the set of emails that reported the product and have
	// not yet been cleared by a moderator.
	ReportedBy []string `json:"reportedBy" db:"reported_by"`

	// CreatedAt is the timestamp at which the product was submitted.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the product.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Reported reports whether the product currently carries any open reports.
func (p Product) Reported() bool {
	return len(p.ReportedBy) > 0
}
