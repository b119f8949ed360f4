package models

import "time"

// RevokedToken is a token value that must no longer be honoured. The value
// is kept verbatim because incoming bearer tokens are matched by equality;
// ExpiresAt is the token's own expiry.
type RevokedToken struct {
	TokenValue string
	ExpiresAt  time.Time
	RevokedAt  time.Time
}
