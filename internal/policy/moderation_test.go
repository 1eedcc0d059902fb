package policy

import (
	"testing"

	"github.com/launchhub-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{types.StatusPending, types.StatusAccepted, true},
		{types.StatusPending, types.StatusRejected, true},
		{types.StatusAccepted, types.StatusRejected, true},
		{types.StatusRejected, types.StatusAccepted, true},
		{types.StatusAccepted, types.StatusPending, false},
		{types.StatusRejected, types.StatusPending, false},
		{types.StatusPending, types.StatusPending, false},
		{types.StatusAccepted, types.StatusAccepted, false},
		{types.StatusRejected, types.StatusRejected, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplyModerationSameStateIsNoOp(t *testing.T) {
	product := types.Product{Status: types.StatusAccepted}

	changed, err := ApplyModeration(&product, ModerationPatch{Status: strPtr(types.StatusAccepted)})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, types.StatusAccepted, product.Status)
}

func TestApplyModerationAcceptAndReject(t *testing.T) {
	product := types.Product{Status: types.StatusPending}

	changed, err := ApplyModeration(&product, ModerationPatch{Status: strPtr(types.StatusAccepted)})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, types.StatusAccepted, product.Status)

	changed, err = ApplyModeration(&product, ModerationPatch{Status: strPtr(types.StatusRejected)})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, types.StatusRejected, product.Status)
}

func TestApplyModerationRejectsUnknownStatus(t *testing.T) {
	product := types.Product{Status: types.StatusPending}

	_, err := ApplyModeration(&product, ModerationPatch{Status: strPtr("Published")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestApplyModerationFeatureRequiresAccepted(t *testing.T) {
	product := types.Product{Status: types.StatusPending}

	_, err := ApplyModeration(&product, ModerationPatch{Featured: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotAccepted)

	// Accepting and featuring in one patch is fine.
	changed, err := ApplyModeration(&product, ModerationPatch{
		Status:   strPtr(types.StatusAccepted),
		Featured: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, product.Featured)
}

func TestApplyModerationRejectionClearsFeatured(t *testing.T) {
	product := types.Product{Status: types.StatusAccepted, Featured: true}

	changed, err := ApplyModeration(&product, ModerationPatch{Status: strPtr(types.StatusRejected)})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, product.Featured)
}

func TestApplyModerationUnfeatureAlwaysAllowed(t *testing.T) {
	product := types.Product{Status: types.StatusAccepted, Featured: true}

	changed, err := ApplyModeration(&product, ModerationPatch{Featured: boolPtr(false)})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, product.Featured)

	// Unfeaturing an unfeatured product is a no-op, not an error.
	changed, err = ApplyModeration(&product, ModerationPatch{Featured: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, changed)
}
