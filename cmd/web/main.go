package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/nursabrinaas08/data-cleaning/internal/app"
)

func main() {
	if err := loadEnv(".env"); err != nil {
		slog.Error("Failed to load environment file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadEnv reads KEY=value files into the process environment. Missing files
// are skipped and variables already set win.
func loadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}
