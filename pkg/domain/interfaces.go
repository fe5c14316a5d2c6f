package domain

import (
	"context"
	"errors"
	"time"

	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/models"
)

// ErrNotFound is returned by repositories when a record does not exist,
// does not belong to the given owner, or the id is malformed for the store.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by repositories when a unique constraint is violated
var ErrDuplicate = errors.New("duplicate record")

// LeadRepository defines data access operations for leads.
// Every method is scoped to ownerID; callers can never reach other owners' leads.
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, ownerID, id string) error
	// List returns one page ordered by created_at desc, id desc, plus the total match count
	List(ctx context.Context, ownerID string, pred filter.Predicate, page models.PageRequest) ([]models.Lead, int64, error)
	// ListAll returns every matching lead in list order, capped at max (0 = no cap)
	ListAll(ctx context.Context, ownerID string, pred filter.Predicate, max int) ([]models.Lead, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// UserRepository defines data access operations for users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// CacheRepository defines the caching operations used by services
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, v any, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dst any) error
	DeletePattern(ctx context.Context, pattern string) error
}
