// Package models defines server-side data models persisted by the token engine.
package models

import "time"

// RefreshCredential is the stored form of a subject's single live refresh
// token. The plaintext secret is never part of it: SecretDigest is a salted
// one-way hash and Fingerprint a keyed deterministic tag used for indexing.
type RefreshCredential struct {
	ID           string
	Subject      string
	SecretDigest string
	Fingerprint  string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the credential is no longer usable at now.
func (c RefreshCredential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// IssuedRefreshToken is returned once, at creation or rotation time, and is
// the only place the plaintext secret exists outside the client.
type IssuedRefreshToken struct {
	Subject   string
	Secret    string
	ExpiresAt time.Time
}
