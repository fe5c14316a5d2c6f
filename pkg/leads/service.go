// Package leads implements the lead query and lead record services. Every
// operation takes the acting owner's id explicitly; repositories enforce the
// owner scope.
package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/validation"
)

// DefaultExportLimit caps the rows returned by Export
const DefaultExportLimit = 10000

// Recorder receives business metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordLeadQuery(kind string)
	RecordLeadWrite(operation string)
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

type nopRecorder struct{}

func (nopRecorder) RecordLeadQuery(string) {}
func (nopRecorder) RecordLeadWrite(string) {}
func (nopRecorder) RecordCacheHit(string)  {}
func (nopRecorder) RecordCacheMiss(string) {}

// Config tunes the service
type Config struct {
	// CacheTTL is how long list and preview results stay cached; 0 disables caching
	CacheTTL    time.Duration
	ExportLimit int
}

// Service handles lead business logic
type Service struct {
	repo      domain.LeadRepository
	cache     domain.CacheRepository
	compiler  *filter.Compiler
	cfg       Config
	metrics   Recorder
	validator *validator.Validate
	logger    logger.Logger
	now       func() time.Time
}

// NewService creates a new lead service. cache may be nil.
func NewService(repo domain.LeadRepository, cache domain.CacheRepository, compiler *filter.Compiler, cfg Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if compiler == nil {
		compiler = filter.NewCompiler(time.Local)
	}
	if cfg.ExportLimit <= 0 {
		cfg.ExportLimit = DefaultExportLimit
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		compiler:  compiler,
		cfg:       cfg,
		metrics:   nopRecorder{},
		validator: validation.New(),
		logger:    log.With("component", "leads"),
		now:       time.Now,
	}
}

// WithMetrics attaches a metrics recorder
func (s *Service) WithMetrics(r Recorder) *Service {
	if r != nil {
		s.metrics = r
	}
	return s
}

// ParseFilters decodes the raw filters query parameter
func ParseFilters(raw string) (filter.Spec, error) {
	spec, err := filter.Parse(raw)
	if err != nil {
		return nil, domain.NewMalformedFilterError(err)
	}
	return spec, nil
}

// List returns one page of the owner's leads matching spec
func (s *Service) List(ctx context.Context, ownerID string, spec filter.Spec, page, limit int) (*models.LeadPage, error) {
	req := models.PageRequest{Page: page, Limit: limit}.Normalize()
	s.metrics.RecordLeadQuery("list")

	cacheKey := fmt.Sprintf("leads:list:%s:%s:%d:%d", ownerID, specHash(spec), req.Page, req.Limit)
	var cached models.LeadPage
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	pred := s.compiler.Compile(spec)
	items, total, err := s.repo.List(ctx, ownerID, pred, req)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to list leads: %w", err))
	}
	if items == nil {
		items = []models.Lead{}
	}

	result := &models.LeadPage{
		Data:       items,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: models.TotalPagesFor(total, req.Limit),
	}
	s.setCached(ctx, cacheKey, result)
	return result, nil
}

// Preview summarises every owner lead matching spec. The predicate is
// evaluated in memory with the same semantics the repositories use.
func (s *Service) Preview(ctx context.Context, ownerID string, spec filter.Spec) (*models.LeadPreview, error) {
	s.metrics.RecordLeadQuery("preview")

	cacheKey := fmt.Sprintf("leads:preview:%s:%s", ownerID, specHash(spec))
	var cached models.LeadPreview
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	all, err := s.repo.ListAll(ctx, ownerID, filter.Predicate{}, 0)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to load leads: %w", err))
	}

	preview := summarize(s.compiler.Compile(spec).Filter(all))
	s.setCached(ctx, cacheKey, preview)
	return preview, nil
}

// Export returns up to the configured export limit of matching leads in list order
func (s *Service) Export(ctx context.Context, ownerID string, spec filter.Spec) ([]models.Lead, error) {
	s.metrics.RecordLeadQuery("export")

	items, err := s.repo.ListAll(ctx, ownerID, s.compiler.Compile(spec), s.cfg.ExportLimit)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to export leads: %w", err))
	}
	return items, nil
}

// Create validates input and stores a new lead for ownerID
func (s *Service) Create(ctx context.Context, ownerID string, in models.LeadInput) (*models.Lead, error) {
	lead := models.Lead{
		OwnerID:     ownerID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		Company:     in.Company,
		City:        in.City,
		State:       in.State,
		Source:      in.Source,
		Status:      in.Status,
		Score:       int(in.Score.Value),
		LeadValue:   in.LeadValue.Value,
		IsQualified: in.IsQualified.Value,
	}
	normalizeLead(&lead)

	fields := checkLead(s.validator, lead)
	if !in.Score.Present {
		fields["score"] = "is required"
	}
	if !in.LeadValue.Present {
		fields["lead_value"] = "is required"
	}
	checkScore(in.Score, fields)
	checkLeadValue(in.LeadValue, fields)
	if len(fields) > 0 {
		return nil, domain.NewFieldValidationError("Invalid lead data", fields)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	lead.CreatedAt = now
	lead.UpdatedAt = now
	lead.LastActivityAt = now

	if err := s.repo.Create(ctx, &lead); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to create lead: %w", err))
	}

	s.metrics.RecordLeadWrite("create")
	s.invalidate(ctx, ownerID)
	s.logger.Info("lead created", "lead_id", lead.ID, "owner_id", ownerID)
	return &lead, nil
}

// GetByID returns the lead when it exists and belongs to ownerID
func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error) {
	lead, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err, "get")
	}
	return lead, nil
}

// Update applies patch to an owned lead and re-validates the merged record
func (s *Service) Update(ctx context.Context, ownerID, id string, patch models.LeadPatch) (*models.Lead, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("No fields to update")
	}

	lead, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err, "get")
	}

	patch.Apply(lead)
	normalizeLead(lead)

	fields := checkLead(s.validator, *lead)
	checkScore(patch.Score, fields)
	checkLeadValue(patch.LeadValue, fields)
	if len(fields) > 0 {
		return nil, domain.NewFieldValidationError("Invalid lead data", fields)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	lead.UpdatedAt = now
	lead.LastActivityAt = now

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, storeError(err, "update")
	}

	s.metrics.RecordLeadWrite("update")
	s.invalidate(ctx, ownerID)
	return lead, nil
}

// Delete removes an owned lead
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return storeError(err, "delete")
	}

	s.metrics.RecordLeadWrite("delete")
	s.invalidate(ctx, ownerID)
	s.logger.Info("lead deleted", "lead_id", id, "owner_id", ownerID)
	return nil
}

func storeError(err error, op string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError("lead")
	}
	return domain.NewInternalError(fmt.Errorf("failed to %s lead: %w", op, err))
}

// cache helpers; failures are logged and otherwise ignored

func (s *Service) getCached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return false
	}
	if err := s.cache.GetJSON(ctx, key, dst); err != nil {
		s.metrics.RecordCacheMiss("leads")
		return false
	}
	s.metrics.RecordCacheHit("leads")
	return true
}

func (s *Service) setCached(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, v, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache leads", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("leads:*:%s:*", ownerID)); err != nil {
		s.logger.Warn("failed to invalidate lead cache", "owner_id", ownerID, "error", err)
	}
}

func specHash(spec filter.Spec) string {
	sum := sha256.Sum256([]byte(spec.Key()))
	return hex.EncodeToString(sum[:8])
}

func summarize(leads []models.Lead) *models.LeadPreview {
	p := &models.LeadPreview{
		Total:    len(leads),
		ByStatus: make(map[string]int, len(models.Statuses)),
		BySource: make(map[string]int, len(models.Sources)),
	}
	for _, st := range models.Statuses {
		p.ByStatus[st] = 0
	}
	for _, src := range models.Sources {
		p.BySource[src] = 0
	}

	var scoreSum int
	for _, l := range leads {
		if l.IsQualified {
			p.Qualified++
		}
		scoreSum += l.Score
		p.TotalValue += l.LeadValue
		p.ByStatus[l.Status]++
		p.BySource[l.Source]++
	}
	if len(leads) > 0 {
		p.AverageScore = math.Round(float64(scoreSum)/float64(len(leads))*100) / 100
	}
	p.TotalValue = math.Round(p.TotalValue*100) / 100
	return p
}
