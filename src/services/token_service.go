package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failure modes. A token failing any check is rejected
// wholesale; no claim field is trusted from a partially valid token.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenIssuerMismatch   = errors.New("token issuer mismatch")
	ErrTokenAudienceMismatch = errors.New("token audience mismatch")
)

// TokenPolicy parameterizes a TokenService instance. The user-session and
// admin-session services share the signing logic and diverge only here.
type TokenPolicy struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the signed claim set carried by session tokens. SessionHash is
// set only on admin tokens; it lets middleware cross-check server-side
// revocation state. TokenType is "refresh" on refresh tokens.
type Claims struct {
	Role        string `json:"role,omitempty"`
	SessionHash string `json:"sid,omitempty"`
	TokenType   string `json:"type,omitempty"`
	LoginCount  int32  `json:"login_count,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies compact claim sets. It is stateless given
// a policy and a clock; the clock is injectable for deterministic tests.
type TokenService struct {
	policy TokenPolicy
	now    func() time.Time
}

// NewTokenService creates a token service for the given policy
func NewTokenService(policy TokenPolicy) *TokenService {
	return &TokenService{policy: policy, now: time.Now}
}

// WithClock returns a copy of the service using the given clock
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	return &TokenService{policy: ts.policy, now: now}
}

// TTL returns the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.policy.TTL
}

// Issue signs a token for the given claims. Issuer, audience, issued-at,
// expiry, and a per-token random nonce are filled in from the policy and
// clock; callers set subject, role, and the admin-only fields.
func (ts *TokenService) Issue(claims Claims) (string, error) {
	now := ts.now()
	claims.Issuer = ts.policy.Issuer
	claims.Audience = jwt.ClaimStrings{ts.policy.Audience}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.policy.TTL))
	claims.ID = uuid.New().String()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.policy.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer, and audience, in that trust
// order, and returns the claims only when all checks pass.
func (ts *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return ts.policy.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ts.policy.Issuer),
		jwt.WithAudience(ts.policy.Audience),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrTokenIssuerMismatch
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrTokenAudienceMismatch
		default:
			return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}
	if !token.Valid {
		return nil, ErrTokenSignatureInvalid
	}
	return claims, nil
}

// HashToken returns the hex SHA-256 of a token. Session and single-use
// token lookups go through this hash; raw tokens are never stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewRawToken generates a cryptographically secure single-use credential
// (32 bytes, base64url)
func NewRawToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
