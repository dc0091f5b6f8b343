// Package testutil provides helpers for integration tests: a real postgres
// database per test, a fully wired HTTP server, fixture builders, and a
// websocket test client.
package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/draft-together/server/internal/api"
	"github.com/draft-together/server/internal/config"
	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/registry"
	"github.com/draft-together/server/internal/repository"
	repoPostgres "github.com/draft-together/server/internal/repository/postgres"
	"github.com/draft-together/server/internal/validation"
)

// TestDB wraps a postgres container and gorm connection for testing.
type TestDB struct {
	DB        *gorm.DB
	container *tcPostgres.PostgresContainer
}

// NewTestDB starts a postgres container and returns a connected TestDB.
// The container is terminated automatically when the test finishes.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_draft_together"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	err = db.AutoMigrate(
		&domain.Champion{},
		&domain.CatalogVersion{},
		&domain.DraftRecord{},
	)
	require.NoError(t, err, "failed to migrate test database")

	tdb := &TestDB{
		DB:        db,
		container: container,
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	return tdb
}

// Truncate removes all rows from the given tables.
func (tdb *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}

// TestConfig returns a config suitable for tests. The database URL is unused
// because tests wire repositories straight to the container connection.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:          0,
		AssetsDir:     t.TempDir(),
		DatabaseURL:   "",
		DragontailDir: t.TempDir(),
		LogLevel:      "error",
	}
}

// TestServer bundles a running HTTP server with the components behind it, so
// tests can reach both the API surface and the state underneath.
type TestServer struct {
	Server    *httptest.Server
	DB        *TestDB
	Repos     *repository.Repositories
	Registry  *registry.Registry
	Validator *validation.Set
	Config    *config.Config
}

// NewTestServer starts a full server stack backed by a fresh database. The
// validation set starts empty; seed champions and call ReseedValidator (or
// Replace directly) before exercising edits.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	tdb := NewTestDB(t)
	cfg := TestConfig(t)

	repos := repoPostgres.NewRepositories(tdb.DB)
	validator := validation.NewSet()
	reg := registry.NewRegistry(repos.Draft)

	server := httptest.NewServer(api.NewRouter(repos, reg, validator, cfg))
	t.Cleanup(server.Close)

	return &TestServer{
		Server:    server,
		DB:        tdb,
		Repos:     repos,
		Registry:  reg,
		Validator: validator,
		Config:    cfg,
	}
}

// ReseedValidator reloads the validation set from the champion table, the
// same refresh the ingester performs after a catalog sync.
func (ts *TestServer) ReseedValidator(t *testing.T) {
	t.Helper()
	champions, err := ts.Repos.Champion.List(context.Background())
	require.NoError(t, err, "failed to list champions")
	ids := make([]int32, 0, len(champions))
	for _, c := range champions {
		ids = append(ids, c.ID)
	}
	ts.Validator.Replace(ids)
}

// BaseURL returns the base HTTP URL of the test server.
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// WebSocketURL returns the websocket URL for the given room.
func (ts *TestServer) WebSocketURL(roomID uuid.UUID) string {
	return fmt.Sprintf("%s/ws/%s", strings.Replace(ts.Server.URL, "http", "ws", 1), roomID)
}
