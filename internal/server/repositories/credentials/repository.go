// Package credentials declares the repository contract for refresh
// credentials: at most one row per subject, looked up by fingerprint or by
// paging through all rows.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/server/models"
)

// Repository stores models.RefreshCredential rows.
type Repository interface {
	// Upsert stores c as the subject's only credential, replacing any
	// existing one in a single statement.
	Upsert(ctx context.Context, c *models.RefreshCredential) error

	// FindByFingerprint returns common.ErrorNotFound when no row matches.
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.RefreshCredential, error)

	// ListPage returns up to limit rows with id greater than afterID, ordered by id.
	ListPage(ctx context.Context, afterID string, limit int) ([]*models.RefreshCredential, error)

	// ExistsActive reports whether subject has a credential expiring after now.
	ExistsActive(ctx context.Context, subject string, now time.Time) (bool, error)

	// DeleteBySubject removes the subject's credential. Deleting nothing is not an error.
	DeleteBySubject(ctx context.Context, subject string) error

	// DeleteByID removes one row and reports whether it existed.
	DeleteByID(ctx context.Context, id string) (bool, error)
}
