package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"designdesk/internal/adapter/repo"
	"designdesk/internal/infra"
	"designdesk/internal/specstore"
)

func main() {
	var (
		dirFlag  string
		fileFlag string
	)

	flag.StringVar(&dirFlag, "dir", "", "directory of markdown guideline files to ingest")
	flag.StringVar(&fileFlag, "file", "", "single markdown file to ingest")
	flag.Parse()

	_ = godotenv.Load()

	dir := strings.TrimSpace(dirFlag)
	file := strings.TrimSpace(fileFlag)
	if dir == "" && file == "" {
		exitWithError(errors.New("either -dir or -file must be provided"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "specload").Logger()
	ingestor := specstore.NewIngestor(repo.NewGuidanceRepository(pool), &logger)

	if file != "" {
		if err := ingestor.IngestFile(ctx, file); err != nil {
			exitWithError(fmt.Errorf("failed to ingest %s: %w", file, err))
		}
		fmt.Printf("ingested %s\n", file)
		return
	}

	n, err := ingestor.IngestDir(ctx, dir)
	if err != nil {
		exitWithError(fmt.Errorf("failed to ingest directory: %w", err))
	}
	fmt.Printf("ingested %d files from %s\n", n, dir)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
