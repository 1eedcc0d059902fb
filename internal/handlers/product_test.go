package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/internal/policy"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubProductRepo struct {
	products    map[int]*types.Product
	accepted    []types.Product
	total       int
	toggleCalls int
}

func newStubProductRepo(products ...types.Product) *stubProductRepo {
	repo := &stubProductRepo{products: map[int]*types.Product{}}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

func (s *stubProductRepo) ListModerationQueue(ctx context.Context) ([]types.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) ListAccepted(ctx context.Context, search string, offset, limit int) ([]types.Product, int, error) {
	return s.accepted, s.total, nil
}

func (s *stubProductRepo) ListFeatured(ctx context.Context, limit int) ([]types.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) ListTrending(ctx context.Context, limit int) ([]types.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) ListByOwner(ctx context.Context, email string) ([]types.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) ListReported(ctx context.Context) ([]types.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) Get(ctx context.Context, id int) (types.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return *product, nil
}

func (s *stubProductRepo) Create(ctx context.Context, product types.Product) (types.Product, error) {
	product.ID = len(s.products) + 1
	product.Status = types.StatusPending
	s.products[product.ID] = &product
	return product, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product types.Product) (types.Product, error) {
	s.products[product.ID] = &product
	return product, nil
}

func (s *stubProductRepo) SetImage(ctx context.Context, id int, imageURL string) error {
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id int) error {
	delete(s.products, id)
	return nil
}

func (s *stubProductRepo) ToggleVote(ctx context.Context, id int, email string) (types.Product, policy.VoteAction, error) {
	s.toggleCalls++
	product, ok := s.products[id]
	if !ok {
		return types.Product{}, "", store.ErrNotFound
	}
	action, err := policy.ToggleVote(product, email)
	if err != nil {
		return types.Product{}, "", err
	}
	return *product, action, nil
}

func (s *stubProductRepo) Report(ctx context.Context, id int, email string) error {
	product, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	return policy.Report(product, email)
}

func (s *stubProductRepo) IgnoreReport(ctx context.Context, id int) (bool, error) {
	product, ok := s.products[id]
	if !ok {
		return false, store.ErrNotFound
	}
	return policy.ClearReports(product), nil
}

func (s *stubProductRepo) Moderate(ctx context.Context, id int, patch policy.ModerationPatch) (bool, error) {
	product, ok := s.products[id]
	if !ok {
		return false, store.ErrNotFound
	}
	return policy.ApplyModeration(product, patch)
}

type stubUserRepo struct {
	users map[string]types.User
}

func (s *stubUserRepo) List(ctx context.Context) ([]types.User, error) {
	out := make([]types.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	s.users[strings.ToLower(user.Email)] = user
	return user, nil
}

func (s *stubUserRepo) Upsert(ctx context.Context, user types.User) (types.User, error) {
	s.users[strings.ToLower(user.Email)] = user
	return user, nil
}

func (s *stubUserRepo) SetRole(ctx context.Context, id int, role string) error {
	return nil
}

func (s *stubUserRepo) MarkSubscribed(ctx context.Context, email string) (bool, error) {
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return false, store.ErrNotFound
	}
	if user.IsSubscribed {
		return false, nil
	}
	user.IsSubscribed = true
	s.users[strings.ToLower(email)] = user
	return true, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int) error {
	return nil
}

func newTestRouter(t *testing.T, productRepo *stubProductRepo, users ...types.User) *chi.Mux {
	t.Helper()

	userRepo := &stubUserRepo{users: map[string]types.User{}}
	for _, u := range users {
		userRepo.users[strings.ToLower(u.Email)] = u
	}

	productService := services.NewProductService(productRepo, nil, nil)
	userService := services.NewUserService(userRepo, nil)

	router := chi.NewRouter()
	ProductRouter(router, productService, userService, RequireAuth(testSecret))
	return router
}

func mintToken(t *testing.T, email string) string {
	t.Helper()

	token, err := issueToken(email, []byte(testSecret), defaultTokenTTL)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpvoteRequiresToken(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusAccepted})
	router := newTestRouter(t, repo)

	rec := doJSON(t, router, http.MethodPatch, "/products/upvote/1", "", VoteRequest{Email: "voter@example.com"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, repo.toggleCalls)
}

func TestUpvoteRejectsMismatchedBodyEmail(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusAccepted})
	router := newTestRouter(t, repo)
	token := mintToken(t, "voter@example.com")

	rec := doJSON(t, router, http.MethodPatch, "/products/upvote/1", token, VoteRequest{Email: "other@example.com"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Zero(t, repo.toggleCalls)
}

func TestUpvoteTogglesDirection(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusAccepted})
	router := newTestRouter(t, repo)
	token := mintToken(t, "voter@example.com")

	rec := doJSON(t, router, http.MethodPatch, "/products/upvote/1", token, VoteRequest{Email: "voter@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var first VoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, "upvoted", first.Action)
	require.Equal(t, 1, first.UpVote)

	rec = doJSON(t, router, http.MethodPatch, "/products/upvote/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var second VoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Equal(t, "unvoted", second.Action)
	require.Equal(t, 0, second.UpVote)
}

func TestUpvoteOwnProductForbidden(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusAccepted})
	router := newTestRouter(t, repo)
	token := mintToken(t, "owner@example.com")

	rec := doJSON(t, router, http.MethodPatch, "/products/upvote/1", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, repo.products[1].VotedEmails)
}

func TestReportDuplicateAnswersSuccessFalse(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusAccepted})
	router := newTestRouter(t, repo)
	token := mintToken(t, "reporter@example.com")

	rec := doJSON(t, router, http.MethodPost, "/products/report/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var first ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.True(t, first.Success)

	rec = doJSON(t, router, http.MethodPost, "/products/report/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var second ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.False(t, second.Success)
	require.Len(t, repo.products[1].ReportedBy, 1)
}

func TestModerationRequiresModeratorRole(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusPending})
	router := newTestRouter(t, repo, types.User{ID: 1, Email: "plain@example.com", Role: types.RoleUser})
	token := mintToken(t, "plain@example.com")

	status := types.StatusAccepted
	rec := doJSON(t, router, http.MethodPatch, "/products/1", token, ProductPatchRequest{Status: &status})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, types.StatusPending, repo.products[1].Status)
}

func TestModerationSameStateIsNoOp(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusAccepted})
	router := newTestRouter(t, repo, types.User{ID: 1, Email: "mod@example.com", Role: types.RoleModerator})
	token := mintToken(t, "mod@example.com")

	status := types.StatusAccepted
	rec := doJSON(t, router, http.MethodPatch, "/products/1", token, ProductPatchRequest{Status: &status})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ModifiedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Zero(t, resp.ModifiedCount)
}

func TestModerationAcceptThenFeature(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusPending})
	router := newTestRouter(t, repo, types.User{ID: 1, Email: "mod@example.com", Role: types.RoleModerator})
	token := mintToken(t, "mod@example.com")

	status := types.StatusAccepted
	featured := true
	rec := doJSON(t, router, http.MethodPatch, "/products/1", token, ProductPatchRequest{Status: &status, Featured: &featured})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ModifiedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.ModifiedCount)
	require.Equal(t, types.StatusAccepted, repo.products[1].Status)
	require.True(t, repo.products[1].Featured)
}

func TestFeaturePendingProductConflicts(t *testing.T) {
	repo := newStubProductRepo(types.Product{ID: 1, OwnerEmail: "owner@example.com", Status: types.StatusPending})
	router := newTestRouter(t, repo, types.User{ID: 1, Email: "mod@example.com", Role: types.RoleModerator})
	token := mintToken(t, "mod@example.com")

	featured := true
	rec := doJSON(t, router, http.MethodPatch, "/products/1", token, ProductPatchRequest{Featured: &featured})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, repo.products[1].Featured)
}

func TestAcceptedProductsPagination(t *testing.T) {
	repo := newStubProductRepo()
	repo.total = 25
	for i := 1; i <= 10; i++ {
		repo.accepted = append(repo.accepted, types.Product{
			ID:          i,
			ProductName: fmt.Sprintf("tool-%d", i),
			Status:      types.StatusAccepted,
		})
	}
	router := newTestRouter(t, repo)

	rec := doJSON(t, router, http.MethodGet, "/acceptedProducts?page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AcceptedProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 10)
	require.Equal(t, 2, resp.Page)
	require.Equal(t, 25, resp.Total)
	require.Equal(t, 3, resp.TotalPages)
}
