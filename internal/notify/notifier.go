package notify

import (
	"context"
	"time"

	"github.com/courtside/bookingd/internal/logger"
)

// Notifier is the outbound boundary for password-reset notifications. Email
// delivery lives behind this interface; a delivery failure never rolls back
// token issuance, so implementations must not be load-bearing.
type Notifier interface {
	PasswordResetIssued(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogNotifier writes the reset link to the log. It stands in where no mail
// transport is configured.
type LogNotifier struct {
	log         *logger.Logger
	frontendURL string
}

func NewLogNotifier(frontendURL string) *LogNotifier {
	return &LogNotifier{
		log:         logger.New("notify"),
		frontendURL: frontendURL,
	}
}

func (n *LogNotifier) PasswordResetIssued(ctx context.Context, email, token string, expiresAt time.Time) error {
	n.log.Info("password reset issued for %s: %s/reset-password?token=%s (expires %s)",
		email, n.frontendURL, token, expiresAt.Format(time.RFC3339))
	return nil
}
