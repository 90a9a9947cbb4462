package session_test

import (
	"regexp"
	"testing"

	"github.com/raphaelgruber/signchat/internal/session"
	"github.com/stretchr/testify/assert"
)

var tokenPattern = regexp.MustCompile(`^session_\d+_[0-9a-f]{9}$`)

func TestNewFormat(t *testing.T) {
	id := session.New()
	assert.Regexp(t, tokenPattern, id.String())
	assert.True(t, id.Valid())
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[session.ID]bool)
	for i := 0; i < 100; i++ {
		id := session.New()
		assert.False(t, seen[id], "duplicate token %s", id)
		seen[id] = true
	}
}

func TestNewLogoID(t *testing.T) {
	assert.Regexp(t, `^logo_\d+_[0-9a-f]{9}$`, session.NewLogoID())
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		id   session.ID
		want bool
	}{
		{"generated", session.New(), true},
		{"user supplied", "abc123", true},
		{"empty", "", false},
		{"path separator", "a/b", false},
		{"query", "a?b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.Valid())
		})
	}
}
