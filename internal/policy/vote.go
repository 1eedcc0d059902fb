// Package policy holds the canonical voting and moderation rules.
//
// The rules are pure functions over types.Product so that every call site
// (HTTP handlers, repositories, tests) shares one definition of who may
// vote, how a toggle resolves, and which moderation transitions exist.
package policy

import (
	"errors"
	"strings"

	"github.com/launchhub-app/apiserver/types"
)

// VoteAction is the server-confirmed direction of a toggle.
type VoteAction string

const (
	ActionUpvoted VoteAction = "upvoted"
	ActionUnvoted VoteAction = "unvoted"
)

var (
	// ErrNoIdentity is returned when an action requires a signed-in identity.
	ErrNoIdentity = errors.New("identity required")

	// ErrOwnVote is returned when an owner tries to vote for their own product.
	ErrOwnVote = errors.New("owners cannot vote for their own product")

	// ErrAlreadyReported is returned when an identity reports a product twice.
	ErrAlreadyReported = errors.New("already reported")
)

// CanVote reports whether the identity may toggle a vote on the product.
// Self-owned products are never votable, regardless of prior vote state.
func CanVote(product types.Product, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrNoIdentity
	}
	if emailsEqual(email, product.OwnerEmail) {
		return ErrOwnVote
	}
	return nil
}

// ToggleVote applies the idempotent toggle to the product's voter set.
// Membership of VotedEmails decides the direction, UpVote is recomputed
// from the set so it can never drift negative or out of sync.
func ToggleVote(product *types.Product, email string) (VoteAction, error) {
	if err := CanVote(*product, email); err != nil {
		return "", err
	}

	action := ActionUpvoted
	if containsEmail(product.VotedEmails, email) {
		product.VotedEmails = removeEmail(product.VotedEmails, email)
		action = ActionUnvoted
	} else {
		product.VotedEmails = append(product.VotedEmails, email)
	}
	product.UpVote = len(product.VotedEmails)
	return action, nil
}

// CanReport reports whether the identity may file a report. Owners are
// allowed to report their own product; only duplicates are refused.
func CanReport(product types.Product, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrNoIdentity
	}
	if containsEmail(product.ReportedBy, email) {
		return ErrAlreadyReported
	}
	return nil
}

// Report records the identity in the product's reporter set.
func Report(product *types.Product, email string) error {
	if err := CanReport(*product, email); err != nil {
		return err
	}
	product.ReportedBy = append(product.ReportedBy, email)
	return nil
}

// ClearReports ends the current report cycle, keeping the product.
// It returns false when there was nothing to clear.
func ClearReports(product *types.Product) bool {
	if len(product.ReportedBy) == 0 {
		return false
	}
	product.ReportedBy = nil
	return true
}

func emailsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsEmail(set []string, email string) bool {
	for _, candidate := range set {
		if emailsEqual(candidate, email) {
			return true
		}
	}
	return false
}

func removeEmail(set []string, email string) []string {
	kept := set[:0]
	for _, candidate := range set {
		if !emailsEqual(candidate, email) {
			kept = append(kept, candidate)
		}
	}
	return kept
}
