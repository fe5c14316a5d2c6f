package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGauge struct {
	mu     sync.Mutex
	counts map[string]int64
	calls  int
}

func (g *recordingGauge) SetLeadsByStatus(_ []string, counts map[string]int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts = counts
	g.calls++
}

func (g *recordingGauge) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func seedStatuses(t *testing.T, repo *memory.LeadRepository, statuses ...string) {
	t.Helper()
	for i, s := range statuses {
		owner := "alice"
		if i%2 == 1 {
			owner = "bob"
		}
		l := models.Lead{OwnerID: owner, Status: s, CreatedAt: time.Now()}
		require.NoError(t, repo.Create(context.Background(), &l))
	}
}

func TestLeadMonitor_Collect(t *testing.T) {
	repo := memory.NewLeadRepository()
	seedStatuses(t, repo, models.StatusNew, models.StatusNew, models.StatusWon, models.StatusLost)

	gauge := &recordingGauge{}
	snap, err := NewLeadMonitor(repo, gauge, nil).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), snap.Total)
	assert.Equal(t, int64(2), snap.Counts[models.StatusNew])
	assert.Equal(t, int64(0), snap.Counts[models.StatusContacted])
	assert.ElementsMatch(t, []string{models.StatusContacted, models.StatusQualified}, snap.Empty)

	assert.Equal(t, 1, gauge.Calls())
	assert.Equal(t, snap.Counts, gauge.counts)
}

type failingRepo struct {
	*memory.LeadRepository
}

func (failingRepo) CountByStatus(context.Context) (map[string]int64, error) {
	return nil, errors.New("store unavailable")
}

func TestLeadMonitor_CollectError(t *testing.T) {
	gauge := &recordingGauge{}
	_, err := NewLeadMonitor(failingRepo{memory.NewLeadRepository()}, gauge, nil).Collect(context.Background())
	assert.Error(t, err)
	assert.Zero(t, gauge.Calls())
}

func TestCronManager_SetupJobs(t *testing.T) {
	monitor := NewLeadMonitor(memory.NewLeadRepository(), nil, nil)

	assert.NoError(t, NewCronManager(monitor, "", nil).SetupJobs())
	assert.NoError(t, NewCronManager(monitor, "*/10 * * * *", nil).SetupJobs())
	assert.Error(t, NewCronManager(monitor, "every now and then", nil).SetupJobs())
}

func TestCronManager_StartCollectsImmediately(t *testing.T) {
	repo := memory.NewLeadRepository()
	seedStatuses(t, repo, models.StatusNew)

	gauge := &recordingGauge{}
	cm := NewCronManager(NewLeadMonitor(repo, gauge, nil), "@every 1h", nil)
	require.NoError(t, cm.SetupJobs())
	cm.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	defer cm.Stop(ctx)

	assert.Eventually(t, func() bool { return gauge.Calls() > 0 }, time.Second, 10*time.Millisecond)
}
