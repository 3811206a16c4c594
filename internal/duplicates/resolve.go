package duplicates

import (
	"errors"
	"strings"

	"fintrack/internal/core"
)

var (
	ErrSelfDuplicate = errors.New("transaction cannot duplicate itself")
	ErrAlreadyLinked = errors.New("transaction is already linked to another original")
	ErrEmptyReason   = errors.New("empty dismissal reason")
)

// Confirm links tx to originalID. Confirming the same link twice is a no-op.
func Confirm(tx core.Transaction, originalID string) (core.Transaction, error) {
	originalID = strings.TrimSpace(originalID)
	if originalID == "" {
		return tx, core.ErrEmptyID
	}
	if originalID == tx.ID {
		return tx, ErrSelfDuplicate
	}
	if tx.IsDuplicate && tx.DuplicateOf != originalID {
		return tx, ErrAlreadyLinked
	}
	out := tx.Clone()
	out.IsDuplicate = true
	out.DuplicateOf = originalID
	return out, nil
}

// Dismiss records why tx is not a duplicate of originalID. With an empty
// originalID the dismissal covers every pair tx is part of. The first
// recorded dismissal is kept on repeated calls.
func Dismiss(tx core.Transaction, originalID, reason string) (core.Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return tx, ErrEmptyReason
	}
	originalID = strings.TrimSpace(originalID)
	if originalID != "" && originalID == tx.ID {
		return tx, ErrSelfDuplicate
	}
	if tx.IgnoredReason != "" {
		return tx, nil
	}
	out := tx.Clone()
	out.IgnoredReason = reason
	out.IgnoredAgainst = originalID
	return out, nil
}

// dismissedPair reports whether a dismissal recorded on either transaction
// covers the pair.
func dismissedPair(a, b core.Transaction) bool {
	return (a.IgnoredReason != "" && a.IgnoredAgainst == b.ID) ||
		(b.IgnoredReason != "" && b.IgnoredAgainst == a.ID)
}
