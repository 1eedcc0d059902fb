package services

import (
	"context"
	"errors"
	"time"

	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
)

// CouponRepository defines persistence operations for coupons.
type CouponRepository interface {
	List(ctx context.Context) ([]types.Coupon, error)
	GetByCode(ctx context.Context, code string) (types.Coupon, error)
	Create(ctx context.Context, coupon types.Coupon) (types.Coupon, error)
	Update(ctx context.Context, coupon types.Coupon) (types.Coupon, error)
	Delete(ctx context.Context, id int) error
}

// CouponService encapsulates coupon use-cases.
type CouponService struct {
	repo CouponRepository
	now  func() time.Time
}

func NewCouponService(repo CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

func (s *CouponService) List(ctx context.Context) ([]types.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *CouponService) Create(ctx context.Context, coupon types.Coupon) (types.Coupon, error) {
	return s.repo.Create(ctx, coupon)
}

func (s *CouponService) Update(ctx context.Context, coupon types.Coupon) (types.Coupon, error) {
	return s.repo.Update(ctx, coupon)
}

func (s *CouponService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Validate resolves the code to a coupon and checks it against the
// current time. An unknown or expired code reports valid=false without
// an error; only infrastructure failures surface as errors.
func (s *CouponService) Validate(ctx context.Context, code string) (types.Coupon, bool, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Coupon{}, false, nil
		}
		return types.Coupon{}, false, err
	}
	if !coupon.Valid(s.now()) {
		return types.Coupon{}, false, nil
	}
	return coupon, true, nil
}
