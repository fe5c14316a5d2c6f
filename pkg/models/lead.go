package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Lead sources
const (
	SourceWebsite     = "website"
	SourceFacebookAds = "facebook_ads"
	SourceGoogleAds   = "google_ads"
	SourceReferral    = "referral"
	SourceEvents      = "events"
	SourceOther       = "other"
)

// Lead statuses
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusLost      = "lost"
	StatusWon       = "won"
)

// Sources lists every accepted lead source in display order
var Sources = []string{SourceWebsite, SourceFacebookAds, SourceGoogleAds, SourceReferral, SourceEvents, SourceOther}

// Statuses lists every accepted lead status in pipeline order
var Statuses = []string{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}

// Lead is a sales prospect owned by exactly one user
type Lead struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Company        string    `json:"company"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Source         string    `json:"source"`
	Status         string    `json:"status"`
	Score          int       `json:"score"`
	LeadValue      float64   `json:"lead_value"`
	IsQualified    bool      `json:"is_qualified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// LeadInput is the payload accepted when creating a lead.
// Numbers and booleans may arrive as JSON strings from HTML forms.
type LeadInput struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Company     string     `json:"company"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	Score       FlexNumber `json:"score"`
	LeadValue   FlexNumber `json:"lead_value"`
	IsQualified FlexBool   `json:"is_qualified"`
}

// LeadPatch carries a partial update; nil / not-present fields are left untouched
type LeadPatch struct {
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Company     *string    `json:"company,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	Source      *string    `json:"source,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Score       FlexNumber `json:"score"`
	LeadValue   FlexNumber `json:"lead_value"`
	IsQualified FlexBool   `json:"is_qualified"`
}

// IsEmpty reports whether the patch changes nothing
func (p LeadPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil &&
		p.Company == nil && p.City == nil && p.State == nil && p.Source == nil &&
		p.Status == nil && !p.Score.Present && !p.LeadValue.Present && !p.IsQualified.Present
}

// Apply copies the patched fields onto l
func (p LeadPatch) Apply(l *Lead) {
	if p.FirstName != nil {
		l.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		l.LastName = *p.LastName
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Company != nil {
		l.Company = *p.Company
	}
	if p.City != nil {
		l.City = *p.City
	}
	if p.State != nil {
		l.State = *p.State
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Score.Present {
		l.Score = int(p.Score.Value)
	}
	if p.LeadValue.Present {
		l.LeadValue = p.LeadValue.Value
	}
	if p.IsQualified.Present {
		l.IsQualified = p.IsQualified.Value
	}
}

// FlexNumber decodes a JSON number or a numeric string.
// Present is false when the key was missing, null or an empty string.
type FlexNumber struct {
	Value   float64
	Present bool
}

// Num returns a present FlexNumber
func Num(v float64) FlexNumber {
	return FlexNumber{Value: v, Present: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("expected a number, got %s", data)
	}
	n.Value = v
	n.Present = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Present {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// FlexBool decodes a JSON boolean or the strings "true" / "false"
type FlexBool struct {
	Value   bool
	Present bool
}

// Bool returns a present FlexBool
func Bool(v bool) FlexBool {
	return FlexBool{Value: v, Present: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "null", `""`:
		return nil
	case "true", `"true"`:
		b.Value, b.Present = true, true
	case "false", `"false"`:
		b.Value, b.Present = false, true
	default:
		return fmt.Errorf("expected a boolean, got %s", data)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (b FlexBool) MarshalJSON() ([]byte, error) {
	if !b.Present {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

// PageRequest is a 1-based page window
type PageRequest struct {
	Page  int
	Limit int
}

// Pagination bounds
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage keeps (page-1)*limit within an int
	MaxPage = math.MaxInt / MaxPageLimit
)

// Normalize clamps limit to [1,100] (default 20) and page to [1,MaxPage]
func (p PageRequest) Normalize() PageRequest {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Offset is the number of records skipped before the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// LeadPage is one page of an owner's leads
type LeadPage struct {
	Data       []Lead `json:"data"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// TotalPagesFor returns ceil(total/limit)
func TotalPagesFor(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// LeadPreview summarises the leads matching a filter without paging
type LeadPreview struct {
	Total        int            `json:"total"`
	Qualified    int            `json:"qualified"`
	AverageScore float64        `json:"average_score"`
	TotalValue   float64        `json:"total_value"`
	ByStatus     map[string]int `json:"by_status"`
	BySource     map[string]int `json:"by_source"`
}

// DeleteResponse is returned after a lead is removed
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
