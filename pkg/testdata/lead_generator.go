// Package testdata generates realistic fake leads for seeding and tests
package testdata

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jordanlanch/leadboard/pkg/models"
)

// LeadGeneratorConfig configures lead generation parameters
type LeadGeneratorConfig struct {
	Count           int
	Seed            int64   // 0 picks a random seed
	MinScore        int     // 0-100
	MaxScore        int     // 0-100
	MaxLeadValue    float64 // upper bound for lead_value
	QualifiedChance float64 // 0.0-1.0, for leads not already qualified or won
}

// DefaultLeadGeneratorConfig returns the settings used by the seeder
func DefaultLeadGeneratorConfig(count int) LeadGeneratorConfig {
	return LeadGeneratorConfig{
		Count:           count,
		MinScore:        0,
		MaxScore:        100,
		MaxLeadValue:    50000,
		QualifiedChance: 0.2,
	}
}

// LocationData maps US states to some of their major cities
var LocationData = map[string][]string{
	"CA": {"Los Angeles", "San Diego", "San Jose", "San Francisco", "Sacramento"},
	"TX": {"Houston", "San Antonio", "Dallas", "Austin", "Fort Worth"},
	"NY": {"New York", "Buffalo", "Rochester", "Albany", "Syracuse"},
	"FL": {"Miami", "Orlando", "Tampa", "Jacksonville", "Tallahassee"},
	"IL": {"Chicago", "Aurora", "Naperville", "Springfield", "Peoria"},
	"WA": {"Seattle", "Spokane", "Tacoma", "Bellevue", "Olympia"},
	"MA": {"Boston", "Worcester", "Springfield", "Cambridge", "Lowell"},
	"CO": {"Denver", "Colorado Springs", "Aurora", "Boulder", "Fort Collins"},
}

var states = []string{"CA", "TX", "NY", "FL", "IL", "WA", "MA", "CO"}

// statusWeights skews generated pipelines towards early stages
var statusWeights = []struct {
	status string
	weight int
}{
	{models.StatusNew, 40},
	{models.StatusContacted, 25},
	{models.StatusQualified, 15},
	{models.StatusLost, 10},
	{models.StatusWon, 10},
}

// LeadGenerator produces lead inputs that pass lead validation
type LeadGenerator struct {
	faker *gofakeit.Faker
	cfg   LeadGeneratorConfig
}

// NewLeadGenerator creates a generator; equal non-zero seeds give equal sequences
func NewLeadGenerator(cfg LeadGeneratorConfig) *LeadGenerator {
	if cfg.MaxScore <= 0 || cfg.MaxScore > 100 {
		cfg.MaxScore = 100
	}
	if cfg.MinScore < 0 || cfg.MinScore > cfg.MaxScore {
		cfg.MinScore = 0
	}
	if cfg.MaxLeadValue <= 0 {
		cfg.MaxLeadValue = 50000
	}
	return &LeadGenerator{faker: gofakeit.New(cfg.Seed), cfg: cfg}
}

// GenerateLead returns one random lead input
func (g *LeadGenerator) GenerateLead() models.LeadInput {
	f := g.faker

	first := f.FirstName()
	last := f.LastName()
	state := states[f.Number(0, len(states)-1)]
	cities := LocationData[state]
	status := g.pickStatus()

	qualified := status == models.StatusQualified || status == models.StatusWon
	if !qualified && status != models.StatusLost {
		qualified = f.Float64() < g.cfg.QualifiedChance
	}

	return models.LeadInput{
		FirstName:   first,
		LastName:    last,
		Email:       fmt.Sprintf("%s.%s@%s", emailPart(first), emailPart(last), f.DomainName()),
		Phone:       f.Phone(),
		Company:     f.Company(),
		City:        cities[f.Number(0, len(cities)-1)],
		State:       state,
		Source:      models.Sources[f.Number(0, len(models.Sources)-1)],
		Status:      status,
		Score:       models.Num(float64(f.Number(g.cfg.MinScore, g.cfg.MaxScore))),
		LeadValue:   models.Num(math.Round(f.Float64Range(0, g.cfg.MaxLeadValue)*100) / 100),
		IsQualified: models.Bool(qualified),
	}
}

// GenerateLeads returns cfg.Count lead inputs
func (g *LeadGenerator) GenerateLeads() []models.LeadInput {
	leads := make([]models.LeadInput, g.cfg.Count)
	for i := range leads {
		leads[i] = g.GenerateLead()
	}
	return leads
}

func (g *LeadGenerator) pickStatus() string {
	total := 0
	for _, w := range statusWeights {
		total += w.weight
	}
	n := g.faker.Number(1, total)
	for _, w := range statusWeights {
		if n <= w.weight {
			return w.status
		}
		n -= w.weight
	}
	return models.StatusNew
}

// emailPart lower-cases s and drops anything that is not a letter
func emailPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "lead"
	}
	return b.String()
}
