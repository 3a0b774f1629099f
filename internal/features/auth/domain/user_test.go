package domain

import (
	"strings"
	"testing"

	"microshop/internal/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, Credentials{Username: "john", Password: "john123"}.Validate())
	assert.ErrorIs(t, Credentials{Username: "john"}.Validate(), apperr.ErrValidation)
	assert.ErrorIs(t, Credentials{Username: "  ", Password: "x"}.Validate(), apperr.ErrValidation)
}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      Registration
		wantErr string
	}{
		{"Valid", Registration{Username: "jane", Email: "jane@example.com", Password: "pw"}, ""},
		{"MissingPassword", Registration{Username: "jane", Email: "jane@example.com"}, "All fields required"},
		{"MissingEmail", Registration{Username: "jane", Password: "pw"}, "All fields required"},
		{"EmailWithoutAt", Registration{Username: "jane", Email: "jane.example.com", Password: "pw"}, "Valid email is required"},
		{"LongestPassword", Registration{Username: "jane", Email: "jane@example.com", Password: strings.Repeat("a", MaxPasswordBytes)}, ""},
		{"PasswordTooLong", Registration{Username: "jane", Email: "jane@example.com", Password: strings.Repeat("a", 80)}, "Password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestNewUser_HashesPassword(t *testing.T) {
	u, err := NewUser(Registration{Username: " jane ", Email: "jane@example.com", Password: "s3cret"}, bcrypt.MinCost)
	require.NoError(t, err)

	assert.Equal(t, "jane", u.Username)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestErrors_Classified(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidCredentials, apperr.ErrUnauthorized)
	assert.ErrorIs(t, ErrUserExists, apperr.ErrConflict)
	assert.ErrorIs(t, ErrUserNotFound, apperr.ErrNotFound)
}
