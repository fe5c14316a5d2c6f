// Package memory holds map-backed repositories used by tests and by
// STORE_DRIVER=memory for local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/models"
)

// LeadRepository stores leads in process memory
type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]models.Lead
}

// NewLeadRepository creates an empty repository
func NewLeadRepository() *LeadRepository {
	return &LeadRepository{leads: make(map[string]models.Lead)}
}

// Create stores lead, assigning an id when it has none
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if _, exists := r.leads[lead.ID]; exists {
		return domain.ErrDuplicate
	}
	r.leads[lead.ID] = *lead
	return nil
}

// GetByID returns the lead when it exists and belongs to ownerID
func (r *LeadRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok || l.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

// Update replaces a stored lead owned by lead.OwnerID
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.leads[lead.ID]
	if !ok || existing.OwnerID != lead.OwnerID {
		return domain.ErrNotFound
	}
	r.leads[lead.ID] = *lead
	return nil
}

// Delete removes the lead when it belongs to ownerID
func (r *LeadRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[id]
	if !ok || l.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

// List returns one page of the owner's matching leads and the match count
func (r *LeadRepository) List(ctx context.Context, ownerID string, pred filter.Predicate, page models.PageRequest) ([]models.Lead, int64, error) {
	matched := r.matching(ownerID, pred)
	total := int64(len(matched))

	page = page.Normalize()
	start := page.Offset()
	if start >= len(matched) {
		return []models.Lead{}, total, nil
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ListAll returns every matching lead in list order, capped at max when positive
func (r *LeadRepository) ListAll(ctx context.Context, ownerID string, pred filter.Predicate, max int) ([]models.Lead, error) {
	matched := r.matching(ownerID, pred)
	if max > 0 && len(matched) > max {
		matched = matched[:max]
	}
	return matched, nil
}

// CountByStatus counts leads of every owner per status
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, l := range r.leads {
		counts[l.Status]++
	}
	return counts, nil
}

func (r *LeadRepository) matching(ownerID string, pred filter.Predicate) []models.Lead {
	r.mu.RLock()
	out := make([]models.Lead, 0)
	for _, l := range r.leads {
		if l.OwnerID == ownerID && pred.Match(l) {
			out = append(out, l)
		}
	}
	r.mu.RUnlock()

	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders leads by created_at desc, then id desc
func SortNewestFirst(leads []models.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		if !leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].CreatedAt.After(leads[j].CreatedAt)
		}
		return leads[i].ID > leads[j].ID
	})
}
