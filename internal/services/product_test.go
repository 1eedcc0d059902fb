package services

import (
	"context"
	"testing"

	"github.com/launchhub-app/apiserver/internal/policy"
	"github.com/launchhub-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	lastLimit  int
	lastOffset int
	created    []types.Product
}

func (f *fakeProductRepo) ListModerationQueue(ctx context.Context) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListAccepted(ctx context.Context, search string, offset, limit int) ([]types.Product, int, error) {
	f.lastOffset = offset
	f.lastLimit = limit
	return nil, 0, nil
}

func (f *fakeProductRepo) ListFeatured(ctx context.Context, limit int) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListTrending(ctx context.Context, limit int) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListByOwner(ctx context.Context, email string) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListReported(ctx context.Context) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Get(ctx context.Context, id int) (types.Product, error) {
	return types.Product{ID: id}, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product types.Product) (types.Product, error) {
	product.ID = len(f.created) + 1
	product.Status = types.StatusPending
	f.created = append(f.created, product)
	return product, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product types.Product) (types.Product, error) {
	return product, nil
}

func (f *fakeProductRepo) SetImage(ctx context.Context, id int, imageURL string) error {
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id int) error {
	return nil
}

func (f *fakeProductRepo) ToggleVote(ctx context.Context, id int, email string) (types.Product, policy.VoteAction, error) {
	return types.Product{ID: id}, policy.ActionUpvoted, nil
}

func (f *fakeProductRepo) Report(ctx context.Context, id int, email string) error {
	return nil
}

func (f *fakeProductRepo) IgnoreReport(ctx context.Context, id int) (bool, error) {
	return false, nil
}

func (f *fakeProductRepo) Moderate(ctx context.Context, id int, patch policy.ModerationPatch) (bool, error) {
	return false, nil
}

func TestListAcceptedClampsLimit(t *testing.T) {
	repo := &fakeProductRepo{}
	service := NewProductService(repo, nil, nil)

	_, _, err := service.ListAccepted(context.Background(), "", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 10, repo.lastLimit)

	_, _, err = service.ListAccepted(context.Background(), "", 40, 500)
	require.NoError(t, err)
	require.Equal(t, 100, repo.lastLimit)
	require.Equal(t, 40, repo.lastOffset)
}

func TestCreateWithoutEventBroker(t *testing.T) {
	repo := &fakeProductRepo{}
	service := NewProductService(repo, nil, nil)

	created, err := service.Create(context.Background(), types.Product{
		ProductName: "launchpad",
		OwnerEmail:  "owner@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusPending, created.Status)
	require.Len(t, repo.created, 1)
}
