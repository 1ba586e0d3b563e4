package domain

import "time"

// User represents an authenticated account.
// Public-facing details live on Profile so auth concerns stay separate.
type User struct {
	Entity
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	LastLoginAt  time.Time `json:"last_login_at"`
}
