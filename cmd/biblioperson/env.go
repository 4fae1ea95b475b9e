package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by the CLI.
const (
	envProfilesDir = "BIBLIOPERSON_PROFILES_DIR"
	envDedupDB     = "BIBLIOPERSON_DEDUP_DB"
	envLanguage    = "BIBLIOPERSON_LANGUAGE"
)

// settings are the environment defaults; command flags override them.
type settings struct {
	ProfilesDir string
	DedupDB     string
	Language    string
}

// loadEnv loads path into the process environment without overriding
// variables that are already set. A missing default .env is not an error;
// a missing explicit file is.
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func settingsFromEnv() settings {
	return settings{
		ProfilesDir: os.Getenv(envProfilesDir),
		DedupDB:     os.Getenv(envDedupDB),
		Language:    os.Getenv(envLanguage),
	}
}
