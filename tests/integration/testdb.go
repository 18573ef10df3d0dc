//go:build integration

// Package integration runs the ledger against a real PostgreSQL started with
// testcontainers and migrated with the production migration files.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/infrastructure/config"
	"github.com/inmobiliaria/backend/internal/infrastructure/migration"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	postgresImage = "postgres:16-alpine"
	dbUser        = "ledger"
	dbPassword    = "ledger"
	dbName        = "ledger_test"
)

// One container serves the whole package; tests isolate by tenant.
var pg struct {
	mu        sync.Mutex
	container *tcpostgres.PostgresContainer
	cfg       config.DatabaseConfig
}

// TestDB is a connection to the migrated test database
type TestDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewSharedTestDB opens a connection to the package container, starting and
// migrating it on first use. The connection closes when the test ends.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	pg.mu.Lock()
	defer pg.mu.Unlock()
	if pg.container == nil {
		pg.container, pg.cfg = startPostgres(t)
		migrateSchema(t, pg.cfg)
	}
	return open(t, pg.cfg)
}

// CleanupSharedContainer stops the package container. Call it from TestMain.
func CleanupSharedContainer() {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	if pg.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
	pg.container = nil
}

func startPostgres(t *testing.T) (*tcpostgres.PostgresContainer, config.DatabaseConfig) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(dbUser),
		tcpostgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return container, config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            dbUser,
		Password:        dbPassword,
		DBName:          dbName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
		LogLevel:        dbLogLevel(),
	}
}

// open connects the way the server does, so error translation and statement
// logging match production.
func open(t *testing.T, cfg config.DatabaseConfig) *TestDB {
	t.Helper()
	db, err := persistence.NewDatabase(&cfg, zap.NewNop())
	require.NoError(t, err, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })
	return &TestDB{DB: db.DB, t: t}
}

func migrateSchema(t *testing.T, cfg config.DatabaseConfig) {
	t.Helper()
	db := open(t, cfg)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(context.Background()), "apply migrations")
}

// migrationsDir walks up from this file to the module's migrations directory
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	t.Fatal("migrations directory not found")
	return ""
}

// TEST_DB_DEBUG=1 logs every statement
func dbLogLevel() string {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return "info"
	}
	return "silent"
}

// SeedProperty inserts an active property into the party registry
func (tdb *TestDB) SeedProperty(tenantID fmt.Stringer) uuid.UUID {
	tdb.t.Helper()
	return tdb.seedParty("properties", tenantID)
}

// SeedPerson inserts an active person into the party registry
func (tdb *TestDB) SeedPerson(tenantID fmt.Stringer) uuid.UUID {
	tdb.t.Helper()
	return tdb.seedParty("persons", tenantID)
}

func (tdb *TestDB) seedParty(table string, tenantID fmt.Stringer) uuid.UUID {
	id := uuid.New()
	err := tdb.DB.Exec(
		fmt.Sprintf("INSERT INTO %s (id, tenant_id, active) VALUES (?, ?, TRUE)", table),
		id.String(), tenantID.String(),
	).Error
	require.NoError(tdb.t, err, "seed %s", table)
	return id
}
