package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
)

const testSecret = "this-is-a-valid-access-token-secret-32-chars"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := newTokenCodec(config.AuthConfig{JWTSecret: testSecret, AccessTokenTTLMinutes: 30}, clock.Now)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenCodec(config.AuthConfig{JWTSecret: "short", AccessTokenTTLMinutes: 10})
	assert.ErrorIs(t, err, config.ErrWeakJWTSecret)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	cases := []struct {
		userID int64
		role   domain.Role
	}{
		{1, domain.RoleCustomer},
		{42, domain.RoleSeller},
		{9_000_000_001, domain.RoleAdmin},
	}
	for _, tc := range cases {
		token, exp, err := codec.Issue(tc.userID, tc.role, clock.Now())
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(30*time.Minute), exp)
		assert.Equal(t, 2, strings.Count(token, "."))

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		userID, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, tc.userID, userID)
		assert.Equal(t, string(tc.role), claims.Role)
		assert.Equal(t, clock.Now().Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, exp, err := codec.Issue(7, domain.RoleCustomer, clock.Now())
	require.NoError(t, err)

	clock.t = exp.Add(-time.Second)
	_, err = codec.Verify(token)
	require.NoError(t, err)

	clock.t = exp.Add(time.Second)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "expired", FailureReason(err))
}

func TestTokenCodec_ClaimsReadableAfterExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, exp, err := codec.Issue(7, domain.RoleSeller, clock.Now())
	require.NoError(t, err)
	clock.t = exp.Add(time.Hour)

	claims, err := codec.Claims(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "SELLER", claims.Role)
}

func TestTokenCodec_TamperedByteIsBadSignature(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, _, err := codec.Issue(11, domain.RoleCustomer, clock.Now())
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := codec.Verify(tampered)
		assert.ErrorIs(t, err, ErrTokenBadSignature, "index %d", i)
	}
}

func TestTokenCodec_EveryLastCharacterEditIsBadSignature(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, _, err := codec.Issue(11, domain.RoleCustomer, clock.Now())
	require.NoError(t, err)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_!*"
	last := token[len(token)-1]
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == last {
			continue
		}
		tampered := token[:len(token)-1] + string(alphabet[i])
		_, err := codec.Verify(tampered)
		assert.ErrorIs(t, err, ErrTokenBadSignature, "last character %q", alphabet[i])
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)
	other, err := newTokenCodec(config.AuthConfig{JWTSecret: "another-secret-that-is-long-enough-too", AccessTokenTTLMinutes: 30}, clock.Now)
	require.NoError(t, err)

	token, _, err := other.Issue(1, domain.RoleCustomer, clock.Now())
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})

	for _, token := range []string{"", "abc", "a.b", "a..c", "a.b.c.d", ".b.c", "a.b."} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, token)
		assert.Equal(t, "malformed", FailureReason(err))
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	claims := &Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestTokenCodec_MissingExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             "CUSTOMER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestClaims_UserID(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-3", "1.5"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		_, err := c.UserID()
		assert.ErrorIs(t, err, ErrTokenMalformed, sub)
	}
}
