package security

import (
	"errors"
	"time"

	"authservice/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of an issued token. The subject is the
// user's email; the role travels with it so request gating does not need a
// store lookup.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec signs and verifies HS256 tokens with a process-wide secret.
// The secret is injected at construction and never mutated afterwards, so a
// single codec is safe for concurrent use by every request.
type TokenCodec struct {
	secret []byte
	auth   *jwtauth.JWTAuth
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{
		secret: secret,
		auth:   jwtauth.New("HS256", secret, nil),
	}
}

// JWTAuth exposes the verifier handle consumed by jwtauth.Verifier in the
// router. It shares the codec's secret.
func (c *TokenCodec) JWTAuth() *jwtauth.JWTAuth {
	return c.auth
}

// Issue builds a signed token for the subject with claims
// {sub, role, iat = now, exp = now + ttl}. Access and refresh tokens differ
// only in the TTL the caller passes.
func (c *TokenCodec) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	// Expiry is encoded in whole Unix seconds while iat truncates down, so
	// round the expiry up to the enclosing second: a positive ttl must
	// never land at or before the issuance instant.
	exp := now.Add(ttl)
	if trunc := exp.Truncate(time.Second); exp.After(trunc) {
		exp = trunc.Add(time.Second)
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies structure and signature and returns the claims. Expiry is
// deliberately not checked here: refresh handling needs to inspect expired
// tokens, so callers pair Decode with Expired.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, common.ErrTokenMalformed
		}
		return nil, common.ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, common.ErrTokenMalformed
	}

	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, common.ErrTokenMalformed
	}
	expiresAt, err := mapClaims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, common.ErrTokenMalformed
	}
	issuedAt, err := mapClaims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, common.ErrTokenMalformed
	}

	role, _ := mapClaims["role"].(string)

	return &Claims{
		Subject:   subject,
		Role:      role,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Expired reports whether the claims' expiry has passed. A token is valid
// strictly up to and excluding its expiry instant.
func (c *TokenCodec) Expired(claims *Claims) bool {
	return !time.Now().Before(claims.ExpiresAt)
}
