// Package revocations persists the ledger of access tokens that must be
// rejected before their natural expiry.
package revocations

import (
	"context"
	"time"
)

// Repository stores revoked token values. Insert is idempotent: a second
// insert of the same value leaves the first record untouched and reports
// false.
type Repository interface {
	Insert(ctx context.Context, token string, expiresAt time.Time) (bool, error)
	Exists(ctx context.Context, token string) (bool, error)
}
