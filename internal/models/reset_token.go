package models

import "time"

// PasswordResetToken is single-use and expires after a configured TTL.
// Issuing a new token for a user deletes any earlier ones.
type PasswordResetToken struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
