package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"future expiry", now.Add(time.Hour), false},
		{"expires exactly now", now, true},
		{"past expiry", now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, s.IsExpired(now))
		})
	}
}

func TestSession_Touch(t *testing.T) {
	s := &Session{}
	before := time.Now()

	s.Touch()

	assert.False(t, s.LastSeenAt.Before(before))
}
