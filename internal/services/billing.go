package services

import (
	"context"
	"errors"
	"strings"

	"github.com/launchhub-app/apiserver/config"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// SubscriptionBasePrice is the fixed subscription price in whole dollars.
const SubscriptionBasePrice = 199

var (
	// ErrPaymentsDisabled is returned when no Stripe key is configured.
	ErrPaymentsDisabled = errors.New("payments are not configured")

	// ErrInvalidCoupon is returned for an unknown or expired coupon code.
	ErrInvalidCoupon = errors.New("invalid or expired coupon")
)

// BillingService creates Stripe payment intents for the subscription
// purchase. Confirmation happens in the card client; this service only
// prices the charge and hands back the client secret.
type BillingService struct {
	coupons *CouponService
	api     *client.API
}

func NewBillingService(cfg config.StripeConfig, coupons *CouponService) *BillingService {
	s := &BillingService{coupons: coupons}
	if strings.TrimSpace(cfg.SecretKey) != "" {
		s.api = &client.API{}
		s.api.Init(cfg.SecretKey, nil)
	}
	return s
}

// SubscriptionAmount prices the subscription for an optional coupon code.
// The amount floors at zero; a fully discounted subscription is free but
// still goes through confirmation.
func (s *BillingService) SubscriptionAmount(ctx context.Context, couponCode string) (amount, discount int, err error) {
	amount = SubscriptionBasePrice
	if strings.TrimSpace(couponCode) == "" {
		return amount, 0, nil
	}

	coupon, valid, err := s.coupons.Validate(ctx, couponCode)
	if err != nil {
		return 0, 0, err
	}
	if !valid {
		return 0, 0, ErrInvalidCoupon
	}

	discount = coupon.Discount
	amount = SubscriptionBasePrice - discount
	if amount < 0 {
		amount = 0
	}
	return amount, discount, nil
}

// CreatePaymentIntent prices the subscription and opens a payment intent
// with Stripe. The returned client secret drives the card widget.
func (s *BillingService) CreatePaymentIntent(ctx context.Context, email, couponCode string) (clientSecret string, amount int, err error) {
	if s.api == nil {
		return "", 0, ErrPaymentsDisabled
	}

	amount, _, err = s.SubscriptionAmount(ctx, couponCode)
	if err != nil {
		return "", 0, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(amount) * 100),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		ReceiptEmail:       stripe.String(email),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", 0, err
	}
	return intent.ClientSecret, amount, nil
}
