// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envfile loads KEY=VALUE settings from .env files so that the
// FRD_ENGINE_* configuration variables can live next to a project.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// DefaultFile is read when no file is named.
const DefaultFile = ".env"

// Load reads each file in order and merges their values; later files win.
// Missing files are skipped. Empty values are dropped.
func Load(paths ...string) (map[string]string, error) {
	if len(paths) == 0 {
		paths = []string{DefaultFile}
	}

	values := make(map[string]string)
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading env file %s: %w", path, err)
		}
		for k, v := range vars {
			if v == "" {
				continue
			}
			values[k] = v
		}
	}
	return values, nil
}

// Apply exports values into the process environment. Variables that are
// already set are left alone. It returns the applied keys in sorted order.
func Apply(values map[string]string) ([]string, error) {
	var applied []string
	for k, v := range values {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return applied, fmt.Errorf("setting %s: %w", k, err)
		}
		applied = append(applied, k)
	}
	sort.Strings(applied)
	return applied, nil
}
