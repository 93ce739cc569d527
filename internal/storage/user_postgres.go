package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside/bookingd/internal/database"
	"github.com/courtside/bookingd/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresUserStore struct {
	db *database.DBManager
}

func NewPostgresUserStore(db *database.DBManager) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, req *models.CreateUserRequest, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, phone, password_hash, role, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, first_name, last_name, email, phone, role, balance, created_at, updated_at
	`

	var user models.User
	err := s.db.Pool().QueryRow(ctx, query,
		req.FirstName,
		req.LastName,
		strings.ToLower(strings.TrimSpace(req.Email)),
		req.Phone,
		passwordHash,
		req.Role,
		req.Balance,
	).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, password_hash, role, balance, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	var user models.User
	err := s.db.Pool().QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *PostgresUserStore) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, password_hash, role, balance, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := s.db.Pool().QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *PostgresUserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, role, balance, created_at, updated_at
		FROM users
		ORDER BY id
	`

	rows, err := s.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Phone,
			&user.Role,
			&user.Balance,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		users = append(users, &user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (s *PostgresUserStore) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, first_name, last_name, email, phone, role, balance, created_at, updated_at
	`

	var user models.User
	err := s.db.Pool().QueryRow(ctx, query,
		req.FirstName,
		req.LastName,
		strings.ToLower(strings.TrimSpace(req.Email)),
		req.Phone,
		userID,
	).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

func (s *PostgresUserStore) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) (bool, error) {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	cmdTag, err := s.db.Pool().Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update password: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}
