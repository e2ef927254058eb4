// Package testhelper runs integration tests against a throwaway PostgreSQL.
//
// One container serves the whole test binary. The schema is migrated once
// into a template database and every test gets its own clone.
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	postgres "github.com/heartmarshall/folio/internal/adapter/postgres"
	"github.com/heartmarshall/folio/internal/config"
)

const (
	user         = "folio"
	password     = "folio"
	templateName = "folio_template"
)

type server struct {
	host string
	port string
}

func (s server) dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, s.host, s.port, database)
}

var (
	once    sync.Once
	shared  server
	initErr error
	seq     atomic.Int64

	// Postgres refuses concurrent clones of one template.
	cloneMu sync.Mutex
)

// SetupTestDB returns a pool connected to a freshly cloned, migrated database.
// The pool is closed and the database dropped via t.Cleanup.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	once.Do(func() {
		shared, initErr = start()
	})
	if initErr != nil {
		t.Fatalf("testhelper: setup postgres: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := fmt.Sprintf("folio_test_%d", seq.Add(1))
	cloneMu.Lock()
	err := admin(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()+" TEMPLATE "+templateName)
	cloneMu.Unlock()
	if err != nil {
		t.Fatalf("testhelper: clone %s: %v", name, err)
	}

	pool, err := postgres.NewPool(ctx, config.DatabaseConfig{
		DSN:             shared.dsn(name),
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("testhelper: connect %s: %v", name, err)
	}

	t.Cleanup(func() {
		pool.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := admin(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)"); err != nil {
			t.Logf("testhelper: drop %s: %v", name, err)
		}
	})

	return pool
}

// admin runs a statement against the maintenance database.
func admin(ctx context.Context, sql string) error {
	conn, err := pgx.Connect(ctx, shared.dsn("postgres"))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, sql)
	return err
}

func start() (server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       templateName,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return server{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return server{}, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return server{}, fmt.Errorf("mapped port: %w", err)
	}

	s := server{host: host, port: port.Port()}
	if err := postgres.Migrate(ctx, s.dsn(templateName)); err != nil {
		return server{}, fmt.Errorf("migrate template: %w", err)
	}
	return s, nil
}
