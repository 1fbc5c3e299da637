// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognised key files: google-api-key, search-engine-id.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/pkg/types"
)

const (
	KeyAPIKey   = "google-api-key"
	KeyEngineID = "search-engine-id"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, l *log.Logger) (map[string]string, error) {
	l = logger.OrDiscard(l)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			l.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Credentials builds search credentials. Explicit values (flags, env,
// config file) win over the files loaded from the secrets directory.
func Credentials(loaded map[string]string, apiKey, engineID string) types.Credentials {
	c := types.Credentials{
		APIKey:   strings.TrimSpace(apiKey),
		EngineID: strings.TrimSpace(engineID),
	}
	if c.APIKey == "" {
		c.APIKey = loaded[KeyAPIKey]
	}
	if c.EngineID == "" {
		c.EngineID = loaded[KeyEngineID]
	}
	return c
}
