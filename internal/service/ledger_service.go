package service

import (
	"context"
	"fmt"

	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/models"
	"github.com/courtside/bookingd/internal/storage"
)

// LedgerService applies monetary adjustments. The ledger append and the
// balance move commit as one storage transaction, keeping every user's
// balance equal to the sum of their entries.
type LedgerService struct {
	ledger storage.LedgerStore
	log    *logger.Logger
}

func NewLedgerService(ledger storage.LedgerStore) *LedgerService {
	return &LedgerService{
		ledger: ledger,
		log:    logger.New("ledger-service"),
	}
}

// Apply records a credit or debit of the given magnitude against a user.
// Magnitude must be positive; the direction supplies the sign. The resulting
// balance may go negative: no insufficient-funds guard exists, by policy.
func (s *LedgerService) Apply(ctx context.Context, caller Identity, userID int64, direction models.TransactionType, magnitude float64, description string) (*models.Transaction, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: transaction type must be CREDIT or DEBIT", ErrValidation)
	}
	if magnitude <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	amount := magnitude
	if direction == models.TransactionDebit {
		amount = -magnitude
	}

	entry := &models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Type:        direction,
		Description: description,
	}

	saved, ok, err := s.ledger.ApplyTransaction(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to apply transaction: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	s.log.Info("applied %s of %.2f to user %d", direction, magnitude, userID)
	return saved, nil
}

// ListAll returns every ledger entry joined with user display fields,
// most recent first.
func (s *LedgerService) ListAll(ctx context.Context, caller Identity) ([]*models.Transaction, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	entries, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return entries, nil
}

// ListForUser returns one user's entries. A non-admin caller may only read
// their own.
func (s *LedgerService) ListForUser(ctx context.Context, caller Identity, userID int64) ([]*models.Transaction, error) {
	if !caller.IsAdmin() && caller.UserID != userID {
		return nil, fmt.Errorf("%w: cannot read another user's transactions", ErrForbidden)
	}

	entries, err := s.ledger.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return entries, nil
}
