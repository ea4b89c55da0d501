package ledger

import (
	"context"
	"errors"

	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

var (
	ErrInsufficientStardust = errors.New("insufficient star dust")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
)

// Credit adds star dust to the profile and appends an "earned" ledger row.
// The balance write and the ledger append share one atomic boundary so the
// cached balance cannot drift from the transaction history. Returns the new
// balance.
func Credit(ctx context.Context, s store.Store, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}
	var balance int
	err := s.Atomic(ctx, func(tx store.Store) error {
		profile, err := tx.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		profile.StardustBalance += amount
		if err := tx.UpsertProfile(ctx, profile); err != nil {
			return err
		}
		balance = profile.StardustBalance
		return tx.AppendStardust(ctx, &models.StardustTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        models.StardustEarned,
			Description: reason,
		})
	})
	return balance, err
}

// Debit removes star dust from the profile and appends a "spent" ledger row.
// Fails with ErrInsufficientStardust, leaving state unchanged, when the
// amount exceeds the current balance. Returns the new balance.
func Debit(ctx context.Context, s store.Store, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}
	var balance int
	err := s.Atomic(ctx, func(tx store.Store) error {
		profile, err := tx.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		if amount > profile.StardustBalance {
			return ErrInsufficientStardust
		}
		profile.StardustBalance -= amount
		if err := tx.UpsertProfile(ctx, profile); err != nil {
			return err
		}
		balance = profile.StardustBalance
		return tx.AppendStardust(ctx, &models.StardustTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        models.StardustSpent,
			Description: reason,
		})
	})
	return balance, err
}
