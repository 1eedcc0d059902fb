package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users     map[string]types.User
	upsertErr error
	upserts   int
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	out := make([]types.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.users[strings.ToLower(user.Email)] = user
	return user, nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user types.User) (types.User, error) {
	f.upserts++
	if f.upsertErr != nil {
		return types.User{}, f.upsertErr
	}
	f.users[strings.ToLower(user.Email)] = user
	return user, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, id int, role string) error {
	return nil
}

func (f *fakeUserRepo) MarkSubscribed(ctx context.Context, email string) (bool, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return false, store.ErrNotFound
	}
	if user.IsSubscribed {
		return false, nil
	}
	user.IsSubscribed = true
	f.users[strings.ToLower(email)] = user
	return true, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	return nil
}

func TestResolveRoleUnknownAccount(t *testing.T) {
	service := NewUserService(&fakeUserRepo{users: map[string]types.User{}}, nil)

	role, err := service.ResolveRole(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.Equal(t, types.RoleUser, role)
}

func TestResolveRoleReturnsStoredRole(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]types.User{
		"mod@example.com": {ID: 1, Email: "mod@example.com", Role: types.RoleModerator},
	}}
	service := NewUserService(repo, nil)

	role, err := service.ResolveRole(context.Background(), "mod@example.com")
	require.NoError(t, err)
	require.Equal(t, types.RoleModerator, role)
}

func TestResolveRoleDefaultsEmptyRole(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]types.User{
		"plain@example.com": {ID: 2, Email: "plain@example.com"},
	}}
	service := NewUserService(repo, nil)

	role, err := service.ResolveRole(context.Background(), "plain@example.com")
	require.NoError(t, err)
	require.Equal(t, types.RoleUser, role)
}

func TestEnsureAccountSwallowsUpsertFailure(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]types.User{}, upsertErr: errors.New("db down")}
	service := NewUserService(repo, nil)

	service.EnsureAccount(context.Background(), types.User{Email: "new@example.com"})
	require.Equal(t, 1, repo.upserts)
}

func TestMarkSubscribedOnlyOnce(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]types.User{
		"member@example.com": {ID: 3, Email: "member@example.com"},
	}}
	service := NewUserService(repo, nil)

	changed, err := service.MarkSubscribed(context.Background(), "member@example.com")
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = service.MarkSubscribed(context.Background(), "member@example.com")
	require.NoError(t, err)
	require.False(t, changed)
}

func TestMarkSubscribedUnknownAccount(t *testing.T) {
	service := NewUserService(&fakeUserRepo{users: map[string]types.User{}}, nil)

	_, err := service.MarkSubscribed(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
