package testdata

import (
	"context"
	"testing"
	"time"

	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/leads"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLeads_PassValidation(t *testing.T) {
	gen := NewLeadGenerator(LeadGeneratorConfig{Count: 200, Seed: 42})
	svc := leads.NewService(memory.NewLeadRepository(), nil, filter.NewCompiler(time.UTC), leads.Config{}, nil)

	inputs := gen.GenerateLeads()
	require.Len(t, inputs, 200)

	for i, in := range inputs {
		_, err := svc.Create(context.Background(), "owner-1", in)
		require.NoError(t, err, "lead %d: %+v", i, in)
	}
}

func TestGenerateLeads_SameSeedSameLeads(t *testing.T) {
	a := NewLeadGenerator(LeadGeneratorConfig{Count: 10, Seed: 7}).GenerateLeads()
	b := NewLeadGenerator(LeadGeneratorConfig{Count: 10, Seed: 7}).GenerateLeads()
	assert.Equal(t, a, b)
}

func TestGenerateLead_Ranges(t *testing.T) {
	gen := NewLeadGenerator(LeadGeneratorConfig{Seed: 3, MinScore: 60, MaxScore: 80, MaxLeadValue: 1000})

	statuses := map[string]bool{}
	for i := 0; i < 300; i++ {
		in := gen.GenerateLead()

		assert.GreaterOrEqual(t, in.Score.Value, 60.0)
		assert.LessOrEqual(t, in.Score.Value, 80.0)
		assert.GreaterOrEqual(t, in.LeadValue.Value, 0.0)
		assert.LessOrEqual(t, in.LeadValue.Value, 1000.0)
		assert.Contains(t, LocationData[in.State], in.City)
		assert.Contains(t, models.Sources, in.Source)

		if in.Status == models.StatusQualified || in.Status == models.StatusWon {
			assert.True(t, in.IsQualified.Value)
		}
		if in.Status == models.StatusLost {
			assert.False(t, in.IsQualified.Value)
		}
		statuses[in.Status] = true
	}

	// every status shows up in a sample this size
	assert.Len(t, statuses, len(models.Statuses))
}

func TestEmailPart(t *testing.T) {
	assert.Equal(t, "obrien", emailPart("O'Brien"))
	assert.Equal(t, "maryann", emailPart("Mary Ann"))
	assert.Equal(t, "lead", emailPart("123"))
	assert.Equal(t, "jos", emailPart("José"))
}
