package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprinter computes a keyed, deterministic tag of a secret. The tag is
// indexable and reveals nothing about the secret without the key; it only
// narrows a lookup and must be confirmed with Hasher.Matches.
type Fingerprinter struct {
	key []byte
}

func NewFingerprinter(key []byte) *Fingerprinter {
	k := make([]byte, len(key))
	copy(k, key)
	return &Fingerprinter{key: k}
}

func (f *Fingerprinter) Fingerprint(secret string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}
