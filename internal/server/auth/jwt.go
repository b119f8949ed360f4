// Package auth issues and decodes the signed, short-lived access tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultIssuer is used when no issuer is configured.
const DefaultIssuer = "self"

// Time claims are encoded with millisecond precision so a token's expiry is
// at most a millisecond earlier than issue time plus TTL, not a full second.
func init() {
	jwt.TimePrecision = time.Millisecond
}

// Decoded is the part of a verified access token the engine cares about.
type Decoded struct {
	ID        string
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies access tokens with an HMAC algorithm. It holds
// only immutable settings and is safe for concurrent use.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// SigningMethod resolves an algorithm name such as "HS512".
func SigningMethod(name string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(name) {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512", "":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", name)
	}
}

func NewCodec(secret []byte, algorithm, issuer string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	method, err := SigningMethod(algorithm)
	if err != nil {
		return nil, err
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		method: method,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// TTL is the configured access token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a new access token for subject valid for the configured TTL.
// Every token carries a random jti, so two tokens issued within the same
// second are still distinct values in the revocation ledger.
func (c *Codec) Issue(subject string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(c.method, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})
	return token.SignedString(c.secret)
}

// Decode verifies signature and structure. Time-based claims are not
// validated here: an expired but authentic token decodes successfully so
// the caller can tell "expired" from "forged". Verification failures wrap
// common.ErrMalformedToken.
//
// A token without an exp claim decodes with ExpiresAt = now + TTL.
func (c *Codec) Decode(tokenString string) (*Decoded, error) {
	claims := &jwt.RegisteredClaims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}
	if !token.Valid {
		return nil, common.ErrMalformedToken
	}

	d := &Decoded{ID: claims.ID, Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.IssuedAt != nil {
		d.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		d.ExpiresAt = claims.ExpiresAt.UTC()
	} else {
		d.ExpiresAt = c.now().Add(c.ttl)
	}
	return d, nil
}

func (c *Codec) DecodeSubject(tokenString string) (string, error) {
	d, err := c.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return d.Subject, nil
}

func (c *Codec) DecodeExpiry(tokenString string) (time.Time, error) {
	d, err := c.Decode(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return d.ExpiresAt, nil
}
