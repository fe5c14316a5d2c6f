//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/leadboard/pkg/database"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "leadboard",
				"POSTGRES_PASSWORD": "leadboard",
				"POSTGRES_DB":       "leadboard_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://leadboard:leadboard@%s:%s/leadboard_test?sslmode=disable", host, port.Port())
	db, err := database.ConnectPostgres(ctx, dsn, database.DefaultPoolConfig(), nil, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestRepositories_Integration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	leads := NewLeadRepository(db)

	alice := models.User{Email: "alice@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	bob := models.User{Email: "bob@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, &alice))
	require.NoError(t, users.Create(ctx, &bob))

	dup := models.User{Email: "ALICE@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, users.Create(ctx, &dup), domain.ErrDuplicate)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		l := models.Lead{
			OwnerID: alice.ID, FirstName: "Lead", LastName: fmt.Sprint(i), Email: "l@example.com",
			Phone: "555", Company: fmt.Sprintf("ACME_%d", i), City: "Austin", State: "TX",
			Source: models.SourceWebsite, Status: models.StatusNew, Score: i % 101,
			CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base, LastActivityAt: base,
		}
		require.NoError(t, leads.Create(ctx, &l))
	}
	foreign := models.Lead{OwnerID: bob.ID, Source: models.SourceOther, Status: models.StatusWon, CreatedAt: base, UpdatedAt: base, LastActivityAt: base}
	require.NoError(t, leads.Create(ctx, &foreign))

	t.Run("pagination", func(t *testing.T) {
		for page, want := range map[int]int{1: 20, 2: 20, 3: 5, 4: 0} {
			got, total, err := leads.List(ctx, alice.ID, compile(t, `{}`), models.PageRequest{Page: page, Limit: 20})
			require.NoError(t, err)
			assert.EqualValues(t, 45, total)
			assert.Len(t, got, want)
		}
	})

	t.Run("filters", func(t *testing.T) {
		got, total, err := leads.List(ctx, alice.ID, compile(t, `{"score":{"between_min":10,"between_max":20},"company":{"contains":"acme_1"}}`), models.PageRequest{Limit: 100})
		require.NoError(t, err)
		assert.EqualValues(t, 10, total)
		assert.Equal(t, 19, got[0].Score)

		_, total, err = leads.List(ctx, alice.ID, compile(t, `{"company":{"contains":"%"}}`), models.PageRequest{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("owner scoping", func(t *testing.T) {
		_, err := leads.GetByID(ctx, alice.ID, foreign.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, leads.Delete(ctx, alice.ID, foreign.ID), domain.ErrNotFound)

		got, err := leads.GetByID(ctx, bob.ID, foreign.ID)
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(base))
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := leads.CountByStatus(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 45, counts[models.StatusNew])
		assert.EqualValues(t, 1, counts[models.StatusWon])
	})
}
