package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T, secret string, ttl time.Duration, now time.Time) *Codec {
	t.Helper()
	c, err := NewCodec([]byte(secret), "HS512", "", ttl, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func TestIssueAndDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "super-secret", 15*time.Minute, fixedNow)

	for _, subject := range []string{"alice", "bob@example.com", "ユーザー", ""} {
		tok, err := c.Issue(subject)
		if err != nil {
			t.Fatalf("Issue(%q) error: %v", subject, err)
		}

		got, err := c.DecodeSubject(tok)
		if err != nil {
			t.Fatalf("DecodeSubject error: %v", err)
		}
		if got != subject {
			t.Fatalf("subject mismatch: got %q want %q", got, subject)
		}

		exp, err := c.DecodeExpiry(tok)
		if err != nil {
			t.Fatalf("DecodeExpiry error: %v", err)
		}
		if exp.Before(fixedNow) || exp.After(fixedNow.Add(15*time.Minute)) {
			t.Fatalf("expiry %v outside [now, now+ttl]", exp)
		}
	}
}

func TestDecode_CarriesIssuerAndIssuedAt(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", time.Minute, fixedNow)
	tok, err := c.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	d, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if d.Issuer != DefaultIssuer {
		t.Fatalf("issuer: got %q want %q", d.Issuer, DefaultIssuer)
	}
	if !d.IssuedAt.Equal(fixedNow) {
		t.Fatalf("iat: got %v want %v", d.IssuedAt, fixedNow)
	}
	if !d.ExpiresAt.Equal(fixedNow.Add(time.Minute)) {
		t.Fatalf("exp: got %v", d.ExpiresAt)
	}
}

func TestDecode_ExpiredTokenStillDecodes(t *testing.T) {
	t.Parallel()

	issuer := newTestCodec(t, "k", time.Minute, fixedNow.Add(-time.Hour))
	tok, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	reader := newTestCodec(t, "k", time.Minute, fixedNow)
	d, err := reader.Decode(tok)
	if err != nil {
		t.Fatalf("expired but authentic token must decode, got %v", err)
	}
	if !d.ExpiresAt.Before(fixedNow) {
		t.Fatalf("expected past expiry, got %v", d.ExpiresAt)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestCodec(t, "right-secret", time.Hour, fixedNow).Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = newTestCodec(t, "wrong-secret", time.Hour, fixedNow).DecodeSubject(tok)
	if !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestDecode_MalformedString(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", time.Hour, fixedNow)
	for _, s := range []string{"", "not.a.jwt", "abc"} {
		if _, err := c.DecodeExpiry(s); !errors.Is(err, common.ErrMalformedToken) {
			t.Fatalf("%q: expected ErrMalformedToken, got %v", s, err)
		}
	}
}

func TestDecode_RejectsOtherAlgorithm(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	c := newTestCodec(t, "k", time.Hour, fixedNow)
	if _, err := c.Decode(tok); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for HS256 token, got %v", err)
	}
}

func TestDecode_MissingExpiryDefaultsToTTL(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "alice"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	c := newTestCodec(t, "k", 10*time.Minute, fixedNow)
	exp, err := c.DecodeExpiry(tok)
	if err != nil {
		t.Fatalf("DecodeExpiry error: %v", err)
	}
	if !exp.Equal(fixedNow.Add(10 * time.Minute)) {
		t.Fatalf("expected now+ttl, got %v", exp)
	}
}

func TestNewCodec_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec(nil, "HS512", "", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewCodec([]byte("k"), "HS512", "", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if _, err := NewCodec([]byte("k"), "RS256", "", time.Minute); err == nil {
		t.Fatal("expected error for non-HMAC algorithm")
	}
	c, err := NewCodec([]byte("k"), "hs256", "issuer-x", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.method != jwt.SigningMethodHS256 || c.issuer != "issuer-x" || c.TTL() != time.Minute {
		t.Fatalf("unexpected codec: %+v", c)
	}
}

func TestIssue_TokensAreUniqueWithinASecond(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, "k", time.Minute, fixedNow)
	a, err := c.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	b, err := c.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if a == b {
		t.Fatal("two tokens for the same subject and instant must differ")
	}
	d, err := c.Decode(a)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if d.ID == "" {
		t.Fatal("expected jti claim")
	}
}

func TestDecode_ExpiryKeepsSubSecondPrecision(t *testing.T) {
	t.Parallel()

	issuedAt := fixedNow.Add(900*time.Millisecond + 250*time.Microsecond)
	c := newTestCodec(t, "k", time.Minute, issuedAt)
	tok, err := c.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	exp, err := c.DecodeExpiry(tok)
	if err != nil {
		t.Fatalf("DecodeExpiry error: %v", err)
	}

	want := issuedAt.Add(time.Minute)
	if exp.After(want) {
		t.Fatalf("expiry %v is later than %v", exp, want)
	}
	if want.Sub(exp) > time.Millisecond {
		t.Fatalf("expiry %v lost more than a millisecond against %v", exp, want)
	}
	if exp.Location() != time.UTC {
		t.Fatalf("expiry must be UTC, got %v", exp.Location())
	}
}
