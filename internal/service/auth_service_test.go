package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/courtside/bookingd/internal/auth"
	"github.com/courtside/bookingd/internal/models"
	"github.com/courtside/bookingd/internal/storage"
)

type captureNotifier struct {
	mu     sync.Mutex
	tokens []string
	emails []string
}

func (n *captureNotifier) PasswordResetIssued(ctx context.Context, email, token string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, email)
	n.tokens = append(n.tokens, token)
	return nil
}

func (n *captureNotifier) lastToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.tokens) == 0 {
		return ""
	}
	return n.tokens[len(n.tokens)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.tokens)
}

func newAuthFixture(t *testing.T, resetTTL time.Duration) (*AuthService, *storage.MemoryStore, *captureNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	notifier := &captureNotifier{}
	jwtManager := auth.NewJWTManager("test-secret-key", time.Hour)
	return NewAuthService(store, store, jwtManager, notifier, resetTTL), store, notifier
}

func registerTestUser(t *testing.T, svc *AuthService, email, password string) *models.User {
	t.Helper()
	user, err := svc.AdminRegister(context.Background(), adminCaller, &models.CreateUserRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
		Role:      models.RoleUser,
	})
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return user
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)
	user := registerTestUser(t, svc, "player@example.com", "correctHorse1")

	result, err := svc.Login(context.Background(), "player@example.com", "correctHorse1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, result.User.ID)
	}

	caller, err := svc.Authenticate(result.Token)
	if err != nil {
		t.Fatalf("issued token should validate: %v", err)
	}
	if caller.UserID != user.ID || caller.Role != models.RoleUser {
		t.Errorf("unexpected identity from token: %+v", caller)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "correctHorse1")

	_, err := svc.Login(context.Background(), "player@example.com", "wrongPassword")
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

// Unknown email and wrong password must be indistinguishable.
func TestLogin_UnknownEmailSameOutcome(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "correctHorse1")

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "correctHorse1")
	_, errWrong := svc.Login(context.Background(), "player@example.com", "wrongPassword")

	if !errors.Is(errUnknown, ErrAuth) || !errors.Is(errWrong, ErrAuth) {
		t.Fatalf("expected ErrAuth for both, got %v and %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("outcomes should be identical, got %q and %q", errUnknown, errWrong)
	}
}

func TestLogin_MalformedEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)

	if _, err := svc.Login(context.Background(), "not-an-email", "whatever123"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)

	if _, err := svc.Authenticate("garbage"); !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

func TestAdminRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "correctHorse1")

	_, err := svc.AdminRegister(context.Background(), adminCaller, &models.CreateUserRequest{
		Email:    "Player@Example.com",
		Password: "anotherPass1",
		Role:     models.RoleUser,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestAdminRegister_RequiresAdmin(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)

	_, err := svc.AdminRegister(context.Background(), Identity{UserID: 7, Role: models.RoleUser}, &models.CreateUserRequest{
		Email:    "new@example.com",
		Password: "password123",
		Role:     models.RoleUser,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestAdminRegister_WeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)

	_, err := svc.AdminRegister(context.Background(), adminCaller, &models.CreateUserRequest{
		Email:    "new@example.com",
		Password: "short",
		Role:     models.RoleUser,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

// Forgot-password must not reveal whether an account exists.
func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	svc, _, notifier := newAuthFixture(t, 30*time.Minute)

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should not error: %v", err)
	}
	if notifier.count() != 0 {
		t.Error("no notification should be sent for an unknown email")
	}
}

func TestForgotPassword_ResetRoundTrip(t *testing.T) {
	svc, _, notifier := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "oldPassword1")

	if err := svc.ForgotPassword(context.Background(), "player@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}

	token := notifier.lastToken()
	if token == "" {
		t.Fatal("expected a reset token to be issued")
	}

	if err := svc.ResetPassword(context.Background(), token, "newPassword1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "player@example.com", "oldPassword1"); !errors.Is(err, ErrAuth) {
		t.Error("old password should no longer work")
	}
	if _, err := svc.Login(context.Background(), "player@example.com", "newPassword1"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestResetPassword_SingleUse(t *testing.T) {
	svc, _, notifier := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "oldPassword1")

	if err := svc.ForgotPassword(context.Background(), "player@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	token := notifier.lastToken()

	if err := svc.ResetPassword(context.Background(), token, "newPassword1"); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), token, "thirdPassword1"); !errors.Is(err, ErrConflict) {
		t.Errorf("second redemption should conflict, got %v", err)
	}
}

// Issuing a new token invalidates the previous one.
func TestResetPassword_Superseded(t *testing.T) {
	svc, _, notifier := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "oldPassword1")

	if err := svc.ForgotPassword(context.Background(), "player@example.com"); err != nil {
		t.Fatalf("first issuance failed: %v", err)
	}
	firstToken := notifier.lastToken()

	if err := svc.ForgotPassword(context.Background(), "player@example.com"); err != nil {
		t.Fatalf("second issuance failed: %v", err)
	}
	secondToken := notifier.lastToken()

	if firstToken == secondToken {
		t.Fatal("expected a fresh token on reissue")
	}

	if err := svc.ResetPassword(context.Background(), firstToken, "newPassword1"); !errors.Is(err, ErrConflict) {
		t.Errorf("superseded token should conflict, got %v", err)
	}
	if err := svc.ResetPassword(context.Background(), secondToken, "newPassword1"); err != nil {
		t.Errorf("current token should redeem: %v", err)
	}
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, notifier := newAuthFixture(t, -time.Minute)
	registerTestUser(t, svc, "player@example.com", "oldPassword1")

	if err := svc.ForgotPassword(context.Background(), "player@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), notifier.lastToken(), "newPassword1"); !errors.Is(err, ErrConflict) {
		t.Errorf("expired token should conflict, got %v", err)
	}
}

// Concurrent redemptions of one token succeed at most once regardless of
// timing.
func TestResetPassword_ConcurrentRedemption(t *testing.T) {
	svc, _, notifier := newAuthFixture(t, 30*time.Minute)
	registerTestUser(t, svc, "player@example.com", "oldPassword1")

	if err := svc.ForgotPassword(context.Background(), "player@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	token := notifier.lastToken()

	const attempts = 20

	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.ResetPassword(context.Background(), token, "newPassword1"); err == nil {
				successes <- struct{}{}
			} else if !errors.Is(err, ErrConflict) {
				t.Errorf("loser should see ErrConflict, got %v", err)
			}
		}()
	}
	wg.Wait()
	close(successes)

	if len(successes) != 1 {
		t.Errorf("expected exactly 1 successful redemption, got %d", len(successes))
	}
}

func TestAdminResetPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)
	user := registerTestUser(t, svc, "player@example.com", "oldPassword1")

	if err := svc.AdminResetPassword(context.Background(), adminCaller, user.ID, "newPassword1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "player@example.com", "newPassword1"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestAdminResetPassword_UnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)

	if err := svc.AdminResetPassword(context.Background(), adminCaller, 999, "newPassword1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminResetPassword_RequiresAdmin(t *testing.T) {
	svc, _, _ := newAuthFixture(t, 30*time.Minute)
	user := registerTestUser(t, svc, "player@example.com", "oldPassword1")

	err := svc.AdminResetPassword(context.Background(), Identity{UserID: user.ID, Role: models.RoleUser}, user.ID, "newPassword1")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
