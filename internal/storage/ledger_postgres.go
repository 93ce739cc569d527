package storage

import (
	"context"
	"fmt"

	"github.com/courtside/bookingd/internal/database"
	"github.com/courtside/bookingd/internal/models"
)

type PostgresLedgerStore struct {
	db *database.DBManager
}

func NewPostgresLedgerStore(db *database.DBManager) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db}
}

// ApplyTransaction commits the ledger append and the balance move as one unit.
// A failure on either statement rolls back both.
func (s *PostgresLedgerStore) ApplyTransaction(ctx context.Context, entry *models.Transaction) (*models.Transaction, bool, error) {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	balanceQuery := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	cmdTag, err := tx.Exec(ctx, balanceQuery, entry.Amount, entry.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update balance: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, false, nil
	}

	insertQuery := `
		INSERT INTO transactions (user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, amount, transaction_type, description, created_at
	`

	var saved models.Transaction
	err = tx.QueryRow(ctx, insertQuery,
		entry.UserID,
		entry.Amount,
		entry.Type,
		entry.Description,
	).Scan(
		&saved.ID,
		&saved.UserID,
		&saved.Amount,
		&saved.Type,
		&saved.Description,
		&saved.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &saved, true, nil
}

func (s *PostgresLedgerStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.amount, t.transaction_type, t.description, t.created_at,
		       u.first_name || ' ' || u.last_name, u.email
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.id DESC
	`

	rows, err := s.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var entries []*models.Transaction
	for rows.Next() {
		var entry models.Transaction
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.Type,
			&entry.Description,
			&entry.CreatedAt,
			&entry.UserName,
			&entry.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

func (s *PostgresLedgerStore) ListTransactionsByUser(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, amount, transaction_type, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
	`

	rows, err := s.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var entries []*models.Transaction
	for rows.Next() {
		var entry models.Transaction
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.Type,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
