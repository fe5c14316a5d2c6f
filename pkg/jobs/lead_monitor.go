package jobs

import (
	"context"
	"fmt"

	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
)

// StatusGauge publishes per-status lead counts. *metrics.Metrics satisfies it.
type StatusGauge interface {
	SetLeadsByStatus(statuses []string, counts map[string]int64)
}

// StatusSnapshot is one pass of the lead monitor
type StatusSnapshot struct {
	Counts map[string]int64
	Total  int64
	// Empty lists pipeline statuses that currently hold no leads
	Empty []string
}

// LeadMonitor counts stored leads per status across all owners
type LeadMonitor struct {
	repo   domain.LeadRepository
	gauge  StatusGauge
	logger logger.Logger
}

// NewLeadMonitor creates a new lead monitor; gauge may be nil
func NewLeadMonitor(repo domain.LeadRepository, gauge StatusGauge, log logger.Logger) *LeadMonitor {
	if log == nil {
		log = logger.Nop()
	}
	return &LeadMonitor{
		repo:   repo,
		gauge:  gauge,
		logger: log.With("component", "lead_monitor"),
	}
}

// Collect counts leads per status and publishes the result
func (m *LeadMonitor) Collect(ctx context.Context) (*StatusSnapshot, error) {
	counts, err := m.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by status: %w", err)
	}

	snap := &StatusSnapshot{Counts: make(map[string]int64, len(models.Statuses))}
	for _, status := range models.Statuses {
		n := counts[status]
		snap.Counts[status] = n
		snap.Total += n
		if n == 0 {
			snap.Empty = append(snap.Empty, status)
		}
	}

	if m.gauge != nil {
		m.gauge.SetLeadsByStatus(models.Statuses, snap.Counts)
	}

	m.logger.Debug("lead status snapshot", "total", snap.Total, "empty_statuses", snap.Empty)
	return snap, nil
}
