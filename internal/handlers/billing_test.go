package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/config"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

type stubCouponRepo struct{}

func (stubCouponRepo) List(ctx context.Context) ([]types.Coupon, error) {
	return nil, nil
}

func (stubCouponRepo) GetByCode(ctx context.Context, code string) (types.Coupon, error) {
	return types.Coupon{}, store.ErrNotFound
}

func (stubCouponRepo) Create(ctx context.Context, coupon types.Coupon) (types.Coupon, error) {
	return coupon, nil
}

func (stubCouponRepo) Update(ctx context.Context, coupon types.Coupon) (types.Coupon, error) {
	return coupon, nil
}

func (stubCouponRepo) Delete(ctx context.Context, id int) error {
	return nil
}

func newBillingRouter(t *testing.T, users ...types.User) *chi.Mux {
	t.Helper()

	userRepo := &stubUserRepo{users: map[string]types.User{}}
	for _, u := range users {
		userRepo.users[u.Email] = u
	}

	userService := services.NewUserService(userRepo, nil)
	couponService := services.NewCouponService(stubCouponRepo{})
	billingService := services.NewBillingService(config.StripeConfig{}, couponService)

	router := chi.NewRouter()
	BillingRouter(router, billingService, userService, RequireAuth(testSecret))
	return router
}

func TestSubscribeFlipsFlagOnce(t *testing.T) {
	router := newBillingRouter(t, types.User{ID: 1, Email: "member@example.com"})
	token := mintToken(t, "member@example.com")

	rec := doJSON(t, router, http.MethodPatch, "/user/subscribe", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var first ModifiedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, 1, first.ModifiedCount)

	rec = doJSON(t, router, http.MethodPatch, "/user/subscribe", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var second ModifiedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Zero(t, second.ModifiedCount)
}

func TestSubscribeRejectsMismatchedEmail(t *testing.T) {
	router := newBillingRouter(t, types.User{ID: 1, Email: "member@example.com"})
	token := mintToken(t, "member@example.com")

	rec := doJSON(t, router, http.MethodPatch, "/user/subscribe?email=other@example.com", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePaymentIntentWithoutStripe(t *testing.T) {
	router := newBillingRouter(t, types.User{ID: 1, Email: "member@example.com"})
	token := mintToken(t, "member@example.com")

	rec := doJSON(t, router, http.MethodPost, "/create-payment-intent", token, PaymentIntentRequest{})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
