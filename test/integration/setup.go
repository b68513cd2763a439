package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/upstart/api/internal/adapters/handler/http"
	"github.com/upstart/api/internal/adapters/password"
	repo "github.com/upstart/api/internal/adapters/repository/postgres"
	"github.com/upstart/api/internal/adapters/token"
	"github.com/upstart/api/internal/core/ports"
	"github.com/upstart/api/internal/core/services"
)

const googleClientID = "test-client-id"

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// MockVerifier accepts the credential "valid_token" for email.
type MockVerifier struct {
	email string
	name  string
}

func (v *MockVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	if token == "valid_token" && clientID == googleClientID {
		return &ports.TokenPayload{Email: v.email, Name: v.name}, nil
	}
	return nil, fmt.Errorf("invalid google token")
}

type repositories struct {
	users     ports.UserRepository
	polls     ports.PollRepository
	answers   ports.PollAnswerRepository
	responses ports.PollResponseRepository
	loans     ports.LoanRepository
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Repos       repositories
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	repos := repositories{
		users:     repo.NewUserRepository(db),
		polls:     repo.NewPollRepository(db),
		answers:   repo.NewPollAnswerRepository(db),
		responses: repo.NewPollResponseRepository(db),
		loans:     repo.NewLoanRepository(db),
	}

	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := token.NewManager("test-secret", "upstart-api", "upstart-app", time.Hour)
	require.NoError(t, err)
	verifier := &MockVerifier{email: "google-user@example.com", name: "Grace Hopper"}

	router := handler.NewHandler(handler.Services{
		Auth:        services.NewAuthService(repos.users, repos.polls, hasher, tokens, verifier, googleClientID),
		Users:       services.NewUserService(repos.users, hasher),
		Polls:       services.NewPollService(repos.polls, repos.answers),
		PollAnswers: services.NewPollAnswerService(repos.polls, repos.answers),
		Votes:       services.NewPollResponseService(repos.polls, repos.responses),
		Loans:       services.NewLoanService(repos.loans),
	}, handler.Options{
		AllowedOrigins: []string{"*"},
		CSRFKey:        bytes.Repeat([]byte("k"), 32),
		VoteRateLimit:  1000,
		VoteRateBurst:  1000,
		Health:         db,
	})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Repos:       repos,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	session string
}

// do sends req and returns the status code, decoding the body into out when
// out is non-nil.
func (app *TestApp) do(t *testing.T, req request, out any) (int, *http.Response) {
	t.Helper()

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequest(req.method, app.Server.URL+req.path, body)
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.session != "" {
		httpReq.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: req.session})
	}

	resp, err := app.Client.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode, resp
}

func (app *TestApp) register(t *testing.T, email, session string) ports.AuthResult {
	t.Helper()
	var result ports.AuthResult
	status, _ := app.do(t, request{
		method:  http.MethodPost,
		path:    "/api/auth/register",
		body:    map[string]any{"email": email, "password": "password123"},
		session: session,
	}, &result)
	require.Equal(t, http.StatusCreated, status)
	return result
}

func sessionFrom(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == handler.SessionCookieName {
			return c.Value
		}
	}
	return ""
}
