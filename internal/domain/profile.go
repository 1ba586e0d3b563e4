package domain

import (
	"strings"
	"time"
)

// Profile is the public side of a user account.
// Every user has exactly one profile, created empty at signup.
type Profile struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates an empty profile for a user.
func NewProfile(userID string) *Profile {
	now := time.Now()
	return &Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayName returns the best available name for the profile.
// Falls back from full name to username to the local part of email.
func (p *Profile) DisplayName(email string) string {
	if p != nil {
		if p.FullName != "" {
			return p.FullName
		}
		if p.Username != "" {
			return p.Username
		}
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Anonymous"
}

// Initials returns up to two uppercase initials for avatar placeholders.
func Initials(name string) string {
	var initials []rune
	for f := range strings.FieldsSeq(name) {
		initials = append(initials, []rune(strings.ToUpper(f))[0])
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}
