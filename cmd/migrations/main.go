package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Usage: migrations [-dir path] [-db-url url] <name> [up|down]
func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	fs := flag.NewFlagSet("migrations", flag.ContinueOnError)
	basePath := fs.String("dir", filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations"), "Migrations directory")
	dbURL := fs.String("db-url", os.Getenv("DATABASE_URL"), "Database URL (defaults to POSTGRES_* env)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return errors.New("a migration name is required")
	}
	migrationName := fs.Arg(0)
	direction := "up"
	if fs.NArg() > 1 {
		direction = fs.Arg(1)
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	connStr := *dbURL
	if connStr == "" {
		connStr = dbConnString()
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return err
	}
	defer db.Close()

	fileName, fileContent, err := migrationFileContent(*basePath, migrationName, direction)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, string(fileContent)); err != nil {
		return fmt.Errorf("failed to execute %s: %w", fileName, err)
	}

	slog.Info("migration file executed successfully", "file", fileName)
	return nil
}

func migrationFileContent(basePath, migrationName, direction string) (string, []byte, error) {
	fileName, err := migrationFilePath(basePath, migrationName, direction)
	if err != nil {
		return "", nil, err
	}

	fileContent, err := os.ReadFile(filepath.Join(basePath, fileName))
	if err != nil {
		return "", nil, err
	}

	return fileName, fileContent, nil
}

func migrationFilePath(basePath, migrationName, direction string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.%s\.sql$`, regexp.QuoteMeta(migrationName), direction))
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}

		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found: %s (%s)", migrationName, direction)
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
