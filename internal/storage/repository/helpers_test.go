package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/sportsit/internal/migrations"
	"github.com/magabrotheeeer/sportsit/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory создаёт связанные записи для тестов.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateMember(t *testing.T, email string, subscription models.Subscribe) int64 {
	t.Helper()
	uid, err := f.storage.CreateMember(context.Background(), &models.Member{
		Name:         "member " + email,
		Email:        email,
		Role:         "ROLE_HOST",
		Subscription: subscription,
	})
	require.NoError(t, err)
	return uid
}

func (f *TestDataFactory) CreateCompetition(t *testing.T, hostUID int64, name string, state models.CompetitionState, maxPlayer int) int64 {
	t.Helper()
	rs := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	re := rs.Add(96 * time.Hour)
	sd := rs.Add(216 * time.Hour)
	id, err := f.storage.CreateCompetition(context.Background(), &models.Competition{
		Name:            name,
		Slug:            "slug-" + name,
		Category:        "BODY_BUILDING",
		Type:            models.CompetitionTypeFree,
		State:           state,
		HostUID:         hostUID,
		MaxPlayer:       maxPlayer,
		RecruitingStart: &rs,
		RecruitingEnd:   &re,
		StartDate:       &sd,
	})
	require.NoError(t, err)
	return id
}
