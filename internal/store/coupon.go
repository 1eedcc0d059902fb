package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/launchhub-app/apiserver/types"
)

// CouponRepository handles persistence for coupons.
type CouponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `id, code, expiry_date, description, discount, created_at, updated_at`

func (r *CouponRepository) List(ctx context.Context) ([]types.Coupon, error) {
	const query = `
		SELECT ` + couponColumns + `
		FROM coupons
		ORDER BY expiry_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]types.Coupon, 0)
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (types.Coupon, error) {
	const query = `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE lower(code) = lower($1)`
	coupon, err := scanCoupon(r.db.QueryRowContext(ctx, query, strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Coupon{}, ErrNotFound
		}
		return types.Coupon{}, err
	}
	return coupon, nil
}

func (r *CouponRepository) Create(ctx context.Context, coupon types.Coupon) (types.Coupon, error) {
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	const query = `
		INSERT INTO coupons (code, expiry_date, description, discount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		coupon.Code,
		coupon.ExpiryDate,
		coupon.Description,
		coupon.Discount,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	).Scan(&coupon.ID); err != nil {
		return types.Coupon{}, err
	}
	return coupon, nil
}

func (r *CouponRepository) Update(ctx context.Context, coupon types.Coupon) (types.Coupon, error) {
	coupon.UpdatedAt = time.Now()

	const query = `
		UPDATE coupons
		SET code = $1,
			expiry_date = $2,
			description = $3,
			discount = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		coupon.Code,
		coupon.ExpiryDate,
		coupon.Description,
		coupon.Discount,
		coupon.UpdatedAt,
		coupon.ID,
	)
	if err != nil {
		return types.Coupon{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Coupon{}, err
	}
	if affected == 0 {
		return types.Coupon{}, ErrNotFound
	}
	return coupon, nil
}

func (r *CouponRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM coupons WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCoupon(row rowScanner) (types.Coupon, error) {
	var coupon types.Coupon
	if err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.ExpiryDate,
		&coupon.Description,
		&coupon.Discount,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	); err != nil {
		return types.Coupon{}, err
	}
	return coupon, nil
}
