// Package token implements the stateless signed-token codec.
// Tokens are compact HS256 JWTs carrying a subject, a claims map and the
// issued-at / expires-at pair. Two kinds exist: access tokens embed the
// subject's role names as issued (a snapshot — later role changes do not
// affect an already-issued token), refresh tokens embed a "type" marker
// and carry no roles. Call sites that need a specific kind must check
// Claims.Kind explicitly.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers bad signatures and malformed structure.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is a semantic check layered on top of verification:
	// the signature may be perfectly valid on an expired token.
	ErrTokenExpired = errors.New("token expired")
)

// Kind discriminates the two token variants.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Kind      Kind
	Roles     []string // populated for access tokens only
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with a single symmetric key.
// Construct once at startup and inject; the key is immutable.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec decodes the base64-encoded signing secret and enforces the
// HS256 minimum key strength (256 bits).
func NewCodec(secretBase64 string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("token: decode signing secret: %w", err)
	}
	if len(key) < 32 {
		return nil, errors.New("token: signing key must be at least 32 bytes")
	}
	return &Codec{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// IssueAccess mints a short-lived access token embedding the role names.
func (c *Codec) IssueAccess(subject string, roles []string) (string, error) {
	return c.sign(subject, jwt.MapClaims{"roles": roles}, c.accessTTL)
}

// IssueRefresh mints a long-lived refresh token. No roles: they are
// reloaded from the store when the token is redeemed.
func (c *Codec) IssueRefresh(subject string) (string, error) {
	return c.sign(subject, jwt.MapClaims{"type": "refresh"}, c.refreshTTL)
}

func (c *Codec) sign(subject string, extra jwt.MapClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.key)
}

// Verify checks signature and structure, returning ErrTokenInvalid on any
// cryptographic or shape failure and ErrTokenExpired when the token is
// otherwise valid but past its expires-at. Expiry is deliberately NOT
// rejected inside the parser: it is a separate semantic check so callers
// can distinguish the two outcomes.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, ErrTokenInvalid
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{Subject: sub, Kind: KindAccess, ExpiresAt: exp.Time}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if typ, _ := mc["type"].(string); typ == "refresh" {
		claims.Kind = KindRefresh
	}
	if raw, ok := mc["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	}

	if !claims.ExpiresAt.After(time.Now()) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}
