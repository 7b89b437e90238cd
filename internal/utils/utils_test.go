package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservationIDPattern = regexp.MustCompile(`^RES-[0-9A-Z]+-[A-Z0-9]{4}$`)

func TestNewReservationID(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewReservationID(now)
	require.Regexp(t, reservationIDPattern, id)

	parts := strings.Split(id, "-")
	ms, err := strconv.ParseInt(strings.ToLower(parts[1]), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)
}

func TestNewRegistrationNumber(t *testing.T) {
	n := NewRegistrationNumber(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^AF-2026-[A-Z0-9]{6}$`, n)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("s3cret", 42, "a@x.com", "ADMIN", 5)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseSessionToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, SessionClaims{UserID: 42, Email: "a@x.com", Role: "ADMIN"}, claims)
}

func TestParseSessionTokenRejects(t *testing.T) {
	tok, err := NewSessionToken("s3cret", 42, "a@x.com", "ADMIN", 5)
	require.NoError(t, err)

	_, err = ParseSessionToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewSessionToken("s3cret", 42, "a@x.com", "ADMIN", -5)
	require.NoError(t, err)
	_, err = ParseSessionToken("s3cret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "ADMIN"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseSessionToken("s3cret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "hunter2"))
	assert.False(t, VerifyPassword(h, "hunter3"))
}
