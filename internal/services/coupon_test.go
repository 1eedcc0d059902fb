package services

import (
	"context"
	"testing"
	"time"

	"github.com/launchhub-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

func newCouponFixture(t *testing.T, coupons ...types.Coupon) *CouponService {
	t.Helper()

	repo := &fakeCouponRepo{coupons: map[string]types.Coupon{}}
	for _, c := range coupons {
		repo.coupons[c.Code] = c
	}
	service := NewCouponService(repo)
	service.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return service
}

func TestValidateUnknownCode(t *testing.T) {
	service := newCouponFixture(t)

	_, valid, err := service.Validate(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestValidateExpiredCode(t *testing.T) {
	service := newCouponFixture(t, types.Coupon{
		Code:       "expired",
		Discount:   20,
		ExpiryDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})

	_, valid, err := service.Validate(context.Background(), "expired")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestValidateActiveCode(t *testing.T) {
	service := newCouponFixture(t, types.Coupon{
		Code:       "active",
		Discount:   20,
		ExpiryDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})

	coupon, valid, err := service.Validate(context.Background(), "active")
	require.NoError(t, err)
	require.True(t, valid)
	require.Equal(t, 20, coupon.Discount)
}

func TestValidateOnExpiryDay(t *testing.T) {
	service := newCouponFixture(t, types.Coupon{
		Code:       "lastday",
		Discount:   10,
		ExpiryDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	_, valid, err := service.Validate(context.Background(), "lastday")
	require.NoError(t, err)
	require.True(t, valid)
}
