package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/server/models"
)

// CredentialRepository implements credentials.Repository on a Store.
type CredentialRepository struct {
	s *Store
}

func NewCredentialRepository(s *Store) *CredentialRepository {
	return &CredentialRepository{s: s}
}

func (r *CredentialRepository) Upsert(ctx context.Context, c *models.RefreshCredential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if oldID, ok := r.s.subjects[c.Subject]; ok {
		delete(r.s.credentials, oldID)
	}
	rec := *c
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.s.credentials[rec.ID] = rec
	r.s.subjects[rec.Subject] = rec.ID
	return nil
}

func (r *CredentialRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*models.RefreshCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.credentials {
		if c.Fingerprint == fingerprint {
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *CredentialRepository) ListPage(ctx context.Context, afterID string, limit int) ([]*models.RefreshCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.credentials))
	for id := range r.s.credentials {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, strings.Compare)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	page := make([]*models.RefreshCredential, 0, len(ids))
	for _, id := range ids {
		c := r.s.credentials[id]
		page = append(page, &c)
	}
	return page, nil
}

func (r *CredentialRepository) ExistsActive(ctx context.Context, subject string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.subjects[subject]
	if !ok {
		return false, nil
	}
	c := r.s.credentials[id]
	return !c.Expired(now), nil
}

func (r *CredentialRepository) DeleteBySubject(ctx context.Context, subject string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.subjects[subject]; ok {
		delete(r.s.credentials, id)
		delete(r.s.subjects, subject)
	}
	return nil
}

func (r *CredentialRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.credentials[id]
	if !ok {
		return false, nil
	}
	delete(r.s.credentials, id)
	delete(r.s.subjects, c.Subject)
	return true, nil
}
