package types

import "time"

// Coupon is an admin-managed discount code applied to the subscription
// price. A coupon is valid while ExpiryDate has not passed.
type Coupon struct {
	ID int `json:"id" db:"id"`

	// Code is the unique coupon code entered by the user.
	Code string `json:"code" db:"code"`

	// ExpiryDate is the last instant at which the coupon is valid.
	ExpiryDate time.Time `json:"expiryDate" db:"expiry_date"`

	// Description is shown on the coupon carousel.
	Description string `json:"description" db:"description"`

	// Discount is the amount in whole dollars subtracted from the
	// subscription base price.
	Discount int `json:"discount" db:"discount"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Valid reports whether the coupon can still be redeemed at the given time.
func (c Coupon) Valid(at time.Time) bool {
	return !c.ExpiryDate.Before(at)
}
