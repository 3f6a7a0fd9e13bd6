package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aidar/taskmanager/internal/config"
)

// TestEnvironment содержит все ресурсы необходимые для тестов API
type TestEnvironment struct {
	PostgresContainer *postgres.PostgresContainer
	App               *App
	Server            *httptest.Server
	ctx               context.Context
}

// baseConfig возвращает конфигурацию без базы данных
func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		JWT: config.JWTConfig{
			Secret:          "test-jwt-secret-key-for-integration-tests",
			ExpirationHours: 1,
		},
		Storage:  config.StorageConfig{Driver: config.StorageDriverMemory},
		Tasks:    config.TaskConfig{DeletePolicy: config.DeletePolicyClose},
		Teams:    config.TeamConfig{JoinCodeLength: 6},
		LogLevel: "error",
	}
}

// SetupMemoryEnvironment поднимает приложение на хранилище в памяти
func SetupMemoryEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	return startApp(t, context.Background(), baseConfig(), nil)
}

// SetupPostgresEnvironment поднимает PostgreSQL в контейнере и приложение поверх него
func SetupPostgresEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("taskmanager_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	applyMigrations(t, connStr)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := baseConfig()
	cfg.Storage.Driver = config.StorageDriverPostgres
	cfg.Database = config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "test_user",
		Password: "test_password",
		Name:     "taskmanager_test",
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	return startApp(t, ctx, cfg, pgContainer)
}

func startApp(t *testing.T, ctx context.Context, cfg *config.Config, pg *postgres.PostgresContainer) *TestEnvironment {
	t.Helper()

	application, err := New(cfg)
	require.NoError(t, err, "Failed to create application")

	require.NoError(t, application.Initialize(ctx), "Failed to initialize application")

	env := &TestEnvironment{
		PostgresContainer: pg,
		App:               application,
		Server:            httptest.NewServer(application.Handler()),
		ctx:               ctx,
	}
	t.Cleanup(func() { env.Cleanup(t) })
	return env
}

// Cleanup очищает все тестовые ресурсы
func (te *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	te.Server.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = te.App.Shutdown(shutdownCtx)

	if te.PostgresContainer != nil {
		_ = te.PostgresContainer.Terminate(te.ctx)
	}
}

// applyMigrations применяет миграции БД
func applyMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("pgx/v5", connStr)
	require.NoError(t, err, "Failed to open database connection")
	defer db.Close()

	migrationPath := filepath.Join(getProjectRoot(t), "migrations", "000001_init_schema.up.sql")
	migrationSQL, err := os.ReadFile(migrationPath)
	require.NoError(t, err, "Failed to read migration file")

	_, err = db.Exec(string(migrationSQL))
	require.NoError(t, err, "Failed to apply migration")
}

// getProjectRoot возвращает корневую директорию проекта
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

// MakeRequest выполняет HTTP запрос и декодирует JSON ответ в out, если он задан
func (te *TestEnvironment) MakeRequest(t *testing.T, method, path string, body any, token string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, te.Server.URL+path, reader)
	require.NoError(t, err, "Failed to create request")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := te.Server.Client().Do(req)
	require.NoError(t, err, "Failed to make request")
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
