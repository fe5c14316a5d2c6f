// Package phone normalises lead phone numbers for exports
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region hint is configured
const DefaultRegion = "US"

// ErrEmpty is returned for blank input
var ErrEmpty = errors.New("phone number cannot be empty")

// Details describes a parsed phone number
type Details struct {
	Valid         bool   `json:"is_valid"`
	E164          string `json:"e164_format"`
	International string `json:"international_format"`
	Region        string `json:"country_code"`
	Type          string `json:"phone_type"`
}

// Normalizer parses numbers written without a country prefix using Region
type Normalizer struct {
	Region string
}

// NewNormalizer returns a normalizer for region; empty means DefaultRegion
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{Region: region}
}

// Describe parses raw and reports its formats, region and line type
func (n *Normalizer) Describe(raw string) (*Details, error) {
	parsed, err := n.parse(raw)
	if err != nil {
		return nil, err
	}
	return &Details{
		Valid:         phonenumbers.IsValidNumber(parsed),
		E164:          phonenumbers.Format(parsed, phonenumbers.E164),
		International: phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		Region:        phonenumbers.GetRegionCodeForNumber(parsed),
		Type:          typeName(phonenumbers.GetNumberType(parsed)),
	}, nil
}

// E164 returns raw in E.164 form, or "" when it is not a valid number
func (n *Normalizer) E164(raw string) string {
	parsed, err := n.parse(raw)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func (n *Normalizer) parse(raw string) (*phonenumbers.PhoneNumber, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmpty
	}
	region := DefaultRegion
	if n != nil && n.Region != "" {
		region = n.Region
	}
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}
	return parsed, nil
}

func typeName(t phonenumbers.PhoneNumberType) string {
	switch t {
	case phonenumbers.FIXED_LINE:
		return "FIXED_LINE"
	case phonenumbers.MOBILE:
		return "MOBILE"
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return "FIXED_LINE_OR_MOBILE"
	case phonenumbers.TOLL_FREE:
		return "TOLL_FREE"
	case phonenumbers.VOIP:
		return "VOIP"
	default:
		return "UNKNOWN"
	}
}
