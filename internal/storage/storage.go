package storage

import (
	"context"
	"errors"

	"github.com/courtside/bookingd/internal/models"
)

// ErrDuplicateEmail is returned by CreateUser when the email is already
// registered (case-insensitive).
var ErrDuplicateEmail = errors.New("email already registered")

// Lookup methods return (nil, nil) when the row does not exist; callers decide
// whether absence is an error.
type UserStore interface {
	CreateUser(ctx context.Context, req *models.CreateUserRequest, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) (bool, error)
}

type SlotStore interface {
	CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.TimeSlot, error)
	DeleteSlot(ctx context.Context, slotID int64) (bool, error)
	GetSlot(ctx context.Context, slotID int64) (*models.TimeSlot, error)

	// BookSlot performs the conditional FREE -> BOOKED transition as one atomic
	// update. It reports false when the slot is absent or already booked;
	// under concurrent calls for the same slot at most one caller sees true.
	BookSlot(ctx context.Context, slotID, userID int64) (bool, error)

	// UnbookSlot releases the slot only if userID currently owns it.
	UnbookSlot(ctx context.Context, slotID, userID int64) (bool, error)

	ListFreeSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, error)
	ListSlotsByUser(ctx context.Context, userID int64) ([]*models.TimeSlot, error)
	ListSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, error)
}

type LedgerStore interface {
	// ApplyTransaction appends the entry and moves the user's balance by
	// tx.Amount inside a single storage transaction. Either both writes commit
	// or neither does. Reports false when the user does not exist.
	ApplyTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, bool, error)

	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID int64) ([]*models.Transaction, error)
}

type ResetTokenStore interface {
	// ReplaceResetToken deletes any earlier tokens for the user and persists
	// the new one, so at most one redeemable token exists per user.
	ReplaceResetToken(ctx context.Context, token *models.PasswordResetToken) error

	// RedeemResetToken marks an unused, unexpired token as used and swaps the
	// owner's password hash, all in one storage transaction. It reports false
	// when the token is unknown, expired, or already used; two concurrent
	// redemptions of the same token succeed at most once.
	RedeemResetToken(ctx context.Context, token, newPasswordHash string) (int64, bool, error)

	// DeleteExpiredResetTokens removes used and expired tokens and reports how
	// many rows were purged.
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)
}
