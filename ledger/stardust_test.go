package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

func newLedgerStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenLocal(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.UpsertProfile(context.Background(), &models.Profile{
		ID:    "u1",
		Email: "stella@example.com",
	}))
	return s
}

func TestCreditAndDebit(t *testing.T) {
	ctx := context.Background()
	s := newLedgerStore(t)

	balance, err := Credit(ctx, s, "u1", 500, "Earned on order X")
	require.NoError(t, err)
	require.Equal(t, 500, balance)

	balance, err = Debit(ctx, s, "u1", 200, "Stardust discount on order Y")
	require.NoError(t, err)
	require.Equal(t, 300, balance)

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 300, profile.StardustBalance)

	txns, err := s.ListStardust(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		require.Positive(t, txn.Amount, "ledger amounts are always positive")
	}
}

func TestCreditDebitRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newLedgerStore(t)

	start, err := Credit(ctx, s, "u1", 250, "seed")
	require.NoError(t, err)

	_, err = Credit(ctx, s, "u1", 70, "earned")
	require.NoError(t, err)
	end, err := Debit(ctx, s, "u1", 70, "spent")
	require.NoError(t, err)
	require.Equal(t, start, end, "credit then debit of the same amount is a no-op on the balance")
}

func TestDebitInsufficientLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newLedgerStore(t)

	_, err := Credit(ctx, s, "u1", 100, "seed")
	require.NoError(t, err)

	_, err = Debit(ctx, s, "u1", 101, "too much")
	require.ErrorIs(t, err, ErrInsufficientStardust)

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 100, profile.StardustBalance)

	txns, err := s.ListStardust(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 1, "the failed debit must not append a ledger row")
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	ctx := context.Background()
	s := newLedgerStore(t)

	_, err := Credit(ctx, s, "u1", 0, "zero")
	require.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = Debit(ctx, s, "u1", -5, "negative")
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestLedgerTypesMatchDirection(t *testing.T) {
	ctx := context.Background()
	s := newLedgerStore(t)

	_, err := Credit(ctx, s, "u1", 300, "earned")
	require.NoError(t, err)
	_, err = Debit(ctx, s, "u1", 100, "spent")
	require.NoError(t, err)

	txns, err := s.ListStardust(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	byType := map[models.StardustType]int{}
	for _, txn := range txns {
		byType[txn.Type] += txn.Amount
	}
	require.Equal(t, 300, byType[models.StardustEarned])
	require.Equal(t, 100, byType[models.StardustSpent])
}
