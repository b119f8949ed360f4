// Package cryptox holds the primitives behind refresh credentials: random
// secret generation, salted one-way hashing and deterministic fingerprints.
package cryptox

import (
	"encoding/base64"
	"errors"

	"github.com/dmitrijs2005/authtokens/internal/common"
)

// GenerateSecret returns byteLength random bytes encoded with URL-safe
// base64 (padded). This is the plaintext handed to the client.
func GenerateSecret(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", errors.New("secret length must be positive")
	}
	b, err := common.GenerateRandByteArray(byteLength)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return base64.URLEncoding.EncodeToString(b), nil
}

// EncodedLen is the length of a secret produced by GenerateSecret.
func EncodedLen(byteLength int) int {
	return base64.URLEncoding.EncodedLen(byteLength)
}
