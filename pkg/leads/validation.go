package leads

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/validation"
)

// Score bounds
const (
	MinScore = 0
	MaxScore = 100
)

// leadRules carries the constraints shared by create and update
type leadRules struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone" validate:"required"`
	Company   string  `json:"company" validate:"required"`
	City      string  `json:"city" validate:"required"`
	State     string  `json:"state" validate:"required"`
	Source    string  `json:"source" validate:"required,oneof=website facebook_ads google_ads referral events other"`
	Status    string  `json:"status" validate:"required,oneof=new contacted qualified lost won"`
	Score     float64 `json:"score" validate:"gte=0,lte=100"`
	LeadValue float64 `json:"lead_value" validate:"gte=0"`
}

func rulesFor(l models.Lead) leadRules {
	return leadRules{
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		City:      l.City,
		State:     l.State,
		Source:    l.Source,
		Status:    l.Status,
		Score:     float64(l.Score),
		LeadValue: l.LeadValue,
	}
}

// checkLead validates l and returns field -> reason for every violation
func checkLead(v *validator.Validate, l models.Lead) map[string]string {
	fields := map[string]string{}
	if err := v.Struct(rulesFor(l)); err != nil {
		for k, r := range validation.Fields(err) {
			fields[k] = r
		}
	}
	return fields
}

// checkScore rejects fractional scores, which would otherwise be truncated
// when stored as an integer
func checkScore(n models.FlexNumber, fields map[string]string) {
	if !n.Present {
		return
	}
	if n.Value != math.Trunc(n.Value) {
		fields["score"] = "must be a whole number"
		return
	}
	if n.Value < MinScore || n.Value > MaxScore {
		fields["score"] = "must be between 0 and 100"
	}
}

func checkLeadValue(n models.FlexNumber, fields map[string]string) {
	if !n.Present {
		return
	}
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		fields["lead_value"] = "must be a number"
		return
	}
	if n.Value < 0 {
		fields["lead_value"] = "must be at least 0"
	}
}

// normalizeLead trims every text field and lower-cases the email
func normalizeLead(l *models.Lead) {
	l.FirstName = strings.TrimSpace(l.FirstName)
	l.LastName = strings.TrimSpace(l.LastName)
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	l.Phone = strings.TrimSpace(l.Phone)
	l.Company = strings.TrimSpace(l.Company)
	l.City = strings.TrimSpace(l.City)
	l.State = strings.TrimSpace(l.State)
	l.Source = strings.TrimSpace(l.Source)
	l.Status = strings.TrimSpace(l.Status)
}
