package service

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/bookingd/internal/auth"
	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/models"
	"github.com/courtside/bookingd/internal/notify"
	"github.com/courtside/bookingd/internal/storage"
	"github.com/courtside/bookingd/internal/validation"
	"github.com/google/uuid"
)

// Stable bcrypt hash compared against when the email is unknown, so login
// latency does not reveal whether an account exists.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthService struct {
	users      storage.UserStore
	tokens     storage.ResetTokenStore
	jwtManager *auth.JWTManager
	notifier   notify.Notifier
	resetTTL   time.Duration
	log        *logger.Logger
}

func NewAuthService(users storage.UserStore, tokens storage.ResetTokenStore, jwtManager *auth.JWTManager, notifier notify.Notifier, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtManager: jwtManager,
		notifier:   notifier,
		resetTTL:   resetTTL,
		log:        logger.New("auth-service"),
	}
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates by email and password. Unknown email and wrong password
// produce the same outcome, and the password check runs in both cases.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validation.Email(email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash := dummyPasswordHash
	if user != nil {
		passwordHash = user.PasswordHash
	}

	if !auth.VerifyPassword(password, passwordHash) || user == nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrAuth)
	}

	token, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token into a caller identity.
func (s *AuthService) Authenticate(token string) (Identity, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid or expired token", ErrAuth)
	}
	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// AdminRegister creates a user account with an opening balance.
func (s *AuthService) AdminRegister(ctx context.Context, caller Identity, req *models.CreateUserRequest) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validation.Email(req.Email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := validation.Password(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: role must be USER or ADMIN", ErrValidation)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req, passwordHash)
	if err == storage.ErrDuplicateEmail {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("registered user %d (%s)", user.ID, user.Email)
	return user, nil
}

// ForgotPassword issues a fresh reset token, superseding any earlier one for
// the account. The response is identical whether or not the email exists.
// Notification failure is logged and otherwise ignored: the token stays valid
// even if the message never arrives.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if err := validation.Email(email); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil
	}

	token := &models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.resetTTL),
	}

	if err := s.tokens.ReplaceResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.notifier.PasswordResetIssued(ctx, user.Email, token.Token, token.ExpiresAt); err != nil {
		s.log.Error("failed to send reset notification to %s: %v", user.Email, err)
	}

	return nil
}

// ResetPassword redeems a reset token and swaps the password in one atomic
// unit. A token that is unknown, expired, superseded, or already used yields
// the same conflict outcome.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}
	if err := validation.Password(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, ok, err := s.tokens.RedeemResetToken(ctx, token, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: reset token is invalid, expired, or already used", ErrConflict)
	}

	s.log.Info("password reset completed for user %d", userID)
	return nil
}

// AdminResetPassword swaps a user's password directly, without a token.
func (s *AuthService) AdminResetPassword(ctx context.Context, caller Identity, userID int64, newPassword string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := validation.Password(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ok, err := s.users.UpdatePasswordHash(ctx, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	return nil
}
