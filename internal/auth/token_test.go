package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestToken_RoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := NewToken(secret, userID)
	require.NoError(t, err)

	got, err := ParseToken(secret, token)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewToken(secret, uuid.New())
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongAlgorithm(t *testing.T) {
	// Signed with a different HMAC variant; only HS256 is accepted.
	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_BadSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(secret, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}
