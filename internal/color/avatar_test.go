package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser_Stable(t *testing.T) {
	a := ForUser("user-abc")
	assert.Regexp(t, hexColor, a)
	assert.Equal(t, a, ForUser("user-abc"))
}

func TestForUser_VariesByUser(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range []string{"user-1", "user-2", "user-3", "user-4", "user-5"} {
		seen[ForUser(id)] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestTextOn(t *testing.T) {
	assert.Equal(t, "#000000", TextOn("#FFFFFF"))
	assert.Equal(t, "#FFFFFF", TextOn("#000000"))
	assert.Equal(t, "#FFFFFF", TextOn("not-a-color"))
}

func TestHSLToRGB_Gray(t *testing.T) {
	r, g, b := hslToRGB(120, 0, 0.5)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestForProfile(t *testing.T) {
	a := ForProfile("user-1", "JD")
	assert.Equal(t, "JD", a.Initials)
	assert.Equal(t, ForUser("user-1"), a.Background)
	assert.Regexp(t, hexColor, a.Foreground)
}
