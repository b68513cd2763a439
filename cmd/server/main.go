package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/upstart/api/internal/adapters/handler/http"
	"github.com/upstart/api/internal/adapters/oauth/google"
	"github.com/upstart/api/internal/adapters/password"
	"github.com/upstart/api/internal/adapters/repository/memory"
	"github.com/upstart/api/internal/adapters/repository/postgres"
	"github.com/upstart/api/internal/adapters/token"
	"github.com/upstart/api/internal/config"
	"github.com/upstart/api/internal/core/ports"
	"github.com/upstart/api/internal/core/services"
)

type repositories struct {
	users     ports.UserRepository
	polls     ports.PollRepository
	answers   ports.PollAnswerRepository
	responses ports.PollResponseRepository
	loans     ports.LoanRepository
}

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	var (
		repos  repositories
		health http.Pinger
	)
	switch cfg.DatabaseType {
	case config.DatabaseMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users:     memory.NewUserRepository(store),
			polls:     memory.NewPollRepository(store),
			answers:   memory.NewPollAnswerRepository(store),
			responses: memory.NewPollResponseRepository(store),
			loans:     memory.NewLoanRepository(store),
		}
	default:
		db, err := openPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		health = db
		repos = repositories{
			users:     postgres.NewUserRepository(db),
			polls:     postgres.NewPollRepository(db),
			answers:   postgres.NewPollAnswerRepository(db),
			responses: postgres.NewPollResponseRepository(db),
			loans:     postgres.NewLoanRepository(db),
		}
	}

	hasher := password.NewBcryptHasher(0)
	tokens, err := token.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	if err != nil {
		return err
	}

	var verifier ports.TokenVerifier
	if cfg.GoogleClientID != "" {
		verifier = google.NewVerifier()
	}

	handler := http.NewHandler(http.Services{
		Auth:        services.NewAuthService(repos.users, repos.polls, hasher, tokens, verifier, cfg.GoogleClientID),
		Users:       services.NewUserService(repos.users, hasher),
		Polls:       services.NewPollService(repos.polls, repos.answers),
		PollAnswers: services.NewPollAnswerService(repos.polls, repos.answers),
		Votes:       services.NewPollResponseService(repos.polls, repos.responses),
		Loans:       services.NewLoanService(repos.loans),
	}, http.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		CSRFKey:        cfg.CSRFKey,
		VoteRateLimit:  cfg.VoteRateLimit,
		VoteRateBurst:  cfg.VoteRateBurst,
		Health:         health,
	})

	server := &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "database", cfg.DatabaseType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
