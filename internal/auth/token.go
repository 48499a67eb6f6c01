package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
)

var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

// TokenCodec issues and verifies HS256 access tokens.
// It is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Claims describes the JWT payload: sub, role, iat and exp.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject as a numeric user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrTokenMalformed, c.Subject)
	}
	return id, nil
}

// NewTokenCodec builds a codec from the auth configuration.
func NewTokenCodec(cfg config.AuthConfig) (*TokenCodec, error) {
	return newTokenCodec(cfg, time.Now)
}

func newTokenCodec(cfg config.AuthConfig, now func() time.Time) (*TokenCodec, error) {
	if len(cfg.JWTSecret) < config.MinJWTSecretBytes {
		return nil, config.ErrWeakJWTSecret
	}
	ttl := cfg.AccessTokenTTL()
	if ttl <= 0 {
		ttl = time.Hour
	}
	tc := &TokenCodec{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    now,
	}
	tc.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return tc.now() }),
	)
	return tc, nil
}

// TTL returns the configured token lifetime.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Issue builds and signs a token for the user.
func (tc *TokenCodec) Issue(userID int64, role domain.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(tc.ttl)
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature and expiry and returns the claims.
// The signature is checked before the payload is decoded, so any edit to
// the header or payload is reported as ErrTokenBadSignature.
func (tc *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrTokenMalformed
	}

	// A signature segment that no longer decodes was edited, not malformed.
	sig, err := tc.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, ErrTokenBadSignature
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, tc.secret); err != nil {
		return nil, ErrTokenBadSignature
	}

	claims := &Claims{}
	parsed, err := tc.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	switch {
	case err == nil && parsed.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		// alg header other than HS256
		return nil, ErrTokenBadSignature
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return nil, ErrTokenMalformed
	}
}

// Claims decodes the payload without checking signature or expiry.
// The result must never be used to establish an Identity.
func (tc *TokenCodec) Claims(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := tc.parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return claims, nil
}

// FailureReason labels a Verify error for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
