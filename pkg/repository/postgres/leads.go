package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/lib/pq"
)

const leadColumns = `id, owner_id, first_name, last_name, email, phone, company, city, state,
	source, status, score, lead_value, is_qualified, created_at, updated_at, last_activity_at`

const uniqueViolation = "23505"

type leadRow struct {
	ID             string    `db:"id"`
	OwnerID        string    `db:"owner_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          string    `db:"email"`
	Phone          string    `db:"phone"`
	Company        string    `db:"company"`
	City           string    `db:"city"`
	State          string    `db:"state"`
	Source         string    `db:"source"`
	Status         string    `db:"status"`
	Score          int       `db:"score"`
	LeadValue      float64   `db:"lead_value"`
	IsQualified    bool      `db:"is_qualified"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	LastActivityAt time.Time `db:"last_activity_at"`
}

func fromLead(l *models.Lead) leadRow {
	return leadRow{
		ID: l.ID, OwnerID: l.OwnerID,
		FirstName: l.FirstName, LastName: l.LastName, Email: l.Email, Phone: l.Phone,
		Company: l.Company, City: l.City, State: l.State,
		Source: l.Source, Status: l.Status, Score: l.Score, LeadValue: l.LeadValue, IsQualified: l.IsQualified,
		CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt, LastActivityAt: l.LastActivityAt,
	}
}

func (r leadRow) toModel() models.Lead {
	return models.Lead{
		ID: r.ID, OwnerID: r.OwnerID,
		FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone,
		Company: r.Company, City: r.City, State: r.State,
		Source: r.Source, Status: r.Status, Score: r.Score, LeadValue: r.LeadValue, IsQualified: r.IsQualified,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(), LastActivityAt: r.LastActivityAt.UTC(),
	}
}

// LeadRepository stores leads in the leads table
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository creates a repository on db
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts lead, generating a UUID when it has no id
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO leads (`+leadColumns+`) VALUES (
		:id, :owner_id, :first_name, :last_name, :email, :phone, :company, :city, :state,
		:source, :status, :score, :lead_value, :is_qualified, :created_at, :updated_at, :last_activity_at)`,
		fromLead(lead))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// GetByID returns the lead if it exists and belongs to ownerID
func (r *LeadRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Lead, error) {
	if !validIDs(ownerID, id) {
		return nil, domain.ErrNotFound
	}

	var row leadRow
	err := r.db.GetContext(ctx, &row, `SELECT `+leadColumns+` FROM leads WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	l := row.toModel()
	return &l, nil
}

// Update overwrites the mutable columns of a lead owned by lead.OwnerID
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	if !validIDs(lead.OwnerID, lead.ID) {
		return domain.ErrNotFound
	}

	res, err := r.db.NamedExecContext(ctx, `UPDATE leads SET
		first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		company = :company, city = :city, state = :state, source = :source, status = :status,
		score = :score, lead_value = :lead_value, is_qualified = :is_qualified,
		updated_at = :updated_at, last_activity_at = :last_activity_at
		WHERE id = :id AND owner_id = :owner_id`, fromLead(lead))
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return requireAffected(res)
}

// Delete removes the lead if it belongs to ownerID
func (r *LeadRepository) Delete(ctx context.Context, ownerID, id string) error {
	if !validIDs(ownerID, id) {
		return domain.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return requireAffected(res)
}

// List returns one page of matching leads plus the total match count
func (r *LeadRepository) List(ctx context.Context, ownerID string, pred filter.Predicate, page models.PageRequest) ([]models.Lead, int64, error) {
	if !validIDs(ownerID) {
		return []models.Lead{}, 0, nil
	}
	where, args := BuildWhere(ownerID, pred)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM leads WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	page = page.Normalize()
	if int64(page.Offset()) >= total {
		return []models.Lead{}, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		leadColumns, where, page.Limit, page.Offset())

	leads, err := r.selectLeads(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListAll returns every matching lead in list order, capped at max when positive
func (r *LeadRepository) ListAll(ctx context.Context, ownerID string, pred filter.Predicate, max int) ([]models.Lead, error) {
	if !validIDs(ownerID) {
		return []models.Lead{}, nil
	}
	where, args := BuildWhere(ownerID, pred)

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if max > 0 {
		query += fmt.Sprintf(" LIMIT %d", max)
	}
	return r.selectLeads(ctx, query, args)
}

// CountByStatus counts every owner's leads per status
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM leads GROUP BY status`); err != nil {
		return nil, fmt.Errorf("failed to count lead statuses: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *LeadRepository) selectLeads(ctx context.Context, query string, args []any) ([]models.Lead, error) {
	var rows []leadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}

	leads := make([]models.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toModel())
	}
	return leads, nil
}

// validIDs reports whether every id is a UUID; anything else can never match a row
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
