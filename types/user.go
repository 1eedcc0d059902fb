package types

import "time"

// Roles resolvable for an account. Absence of a record resolves to RoleUser.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents an account in the system.
// It contains identity, role, subscription and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's email address. It is the identity key across
	// the platform: votes, reports and ownership all reference it.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// PhotoURL is the user's avatar image URL.
	PhotoURL string `json:"photoURL" db:"photo_url"`

	// Role indicates the user's authorization level within the system
	// ("user", "moderator" or "admin").
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed password for accounts created with
	// email/password. Provider-backed accounts leave it empty.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsSubscribed records whether the one-time subscription payment has
	// been confirmed. It flips to true at most once per account.
	IsSubscribed bool `json:"isSubscribed" db:"is_subscribed"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
