package storage

import (
	"context"
	"fmt"

	"github.com/courtside/bookingd/internal/database"
	"github.com/courtside/bookingd/internal/models"
	"github.com/jackc/pgx/v5"
)

type PostgresResetTokenStore struct {
	db *database.DBManager
}

func NewPostgresResetTokenStore(db *database.DBManager) *PostgresResetTokenStore {
	return &PostgresResetTokenStore{db: db}
}

func (s *PostgresResetTokenStore) ReplaceResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Issuing a new token supersedes every earlier one for the user.
	if _, err := tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, token.UserID); err != nil {
		return fmt.Errorf("failed to delete prior tokens: %w", err)
	}

	insertQuery := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := tx.Exec(ctx, insertQuery, token.Token, token.UserID, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RedeemResetToken marks the token used and swaps the password hash in one
// storage transaction. The used/expiry preconditions live in the UPDATE's
// WHERE clause, so concurrent redemptions of the same token race on a single
// row update and only one can win.
func (s *PostgresResetTokenStore) RedeemResetToken(ctx context.Context, token, newPasswordHash string) (int64, bool, error) {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	redeemQuery := `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1 AND used = FALSE AND expires_at > NOW()
		RETURNING user_id
	`

	var userID int64
	err = tx.QueryRow(ctx, redeemQuery, token).Scan(&userID)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to redeem reset token: %w", err)
	}

	passwordQuery := `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := tx.Exec(ctx, passwordQuery, newPasswordHash, userID); err != nil {
		return 0, false, fmt.Errorf("failed to update password: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return userID, true, nil
}

// DeleteExpiredResetTokens removes tokens that can never be redeemed again.
func (s *PostgresResetTokenStore) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool().Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE used = TRUE OR expires_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
