package policy

import (
	"errors"
	"fmt"

	"github.com/launchhub-app/apiserver/types"
)

var (
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrNotAccepted is returned when featuring a product that is not
	// currently Accepted.
	ErrNotAccepted = errors.New("only accepted products can be featured")
)

// ModerationPatch is a moderator-requested change. Nil fields are left
// untouched; a patch naming the state the product already holds is a no-op.
type ModerationPatch struct {
	Status   *string
	Featured *bool
}

// ValidStatus reports whether s names a moderation state.
func ValidStatus(s string) bool {
	switch s {
	case types.StatusPending, types.StatusAccepted, types.StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether status may move from one state to the other.
// Pending moves to Accepted or Rejected; moderators may also reverse a
// decision between Accepted and Rejected. Nothing moves back to Pending.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch from {
	case types.StatusPending:
		return to == types.StatusAccepted || to == types.StatusRejected
	case types.StatusAccepted:
		return to == types.StatusRejected
	case types.StatusRejected:
		return to == types.StatusAccepted
	}
	return false
}

// ApplyModeration applies the patch to the product under the transition
// rules. It returns whether anything changed; same-state requests report
// changed=false without an error so callers can answer modifiedCount 0.
func ApplyModeration(product *types.Product, patch ModerationPatch) (bool, error) {
	changed := false

	if patch.Status != nil {
		target := *patch.Status
		if !ValidStatus(target) {
			return false, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
		}
		if target != product.Status {
			if !CanTransition(product.Status, target) {
				return false, fmt.Errorf("%w: cannot move %s to %s", ErrInvalidStatus, product.Status, target)
			}
			product.Status = target
			if target == types.StatusRejected {
				// Rejection revokes the spotlight.
				product.Featured = false
			}
			changed = true
		}
	}

	if patch.Featured != nil && *patch.Featured != product.Featured {
		if *patch.Featured && product.Status != types.StatusAccepted {
			return false, ErrNotAccepted
		}
		product.Featured = *patch.Featured
		changed = true
	}

	return changed, nil
}
