package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read for defaults.
const (
	envValueLabels = "SAVSTRUCT_VALUE_LABELS"
	envPreviewRows = "SAVSTRUCT_PREVIEW_ROWS"
	envEncoding    = "SAVSTRUCT_ENCODING"
)

// envConfig holds defaults taken from the environment.
type envConfig struct {
	ValueLabels *bool
	PreviewRows int
	Encoding    string
}

// loadEnvFile loads path into the environment. A missing file is not an
// error. Variables already set are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// readEnv reads the SAVSTRUCT_* variables.
func readEnv() (envConfig, error) {
	var cfg envConfig

	if s := os.Getenv(envValueLabels); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envValueLabels, err)
		}
		cfg.ValueLabels = &v
	}

	if s := os.Getenv(envPreviewRows); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("%s: invalid row count %q", envPreviewRows, s)
		}
		cfg.PreviewRows = n
	}

	cfg.Encoding = os.Getenv(envEncoding)
	return cfg, nil
}
