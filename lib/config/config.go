// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/elnforge/elnforge/lib/rocrate"
)

// DefaultOrganizationID is the author node id stamped into archives
// when no organization is configured.
const DefaultOrganizationID = "https://elnforge.dev/#organization"

// Config is the complete elnforge configuration. Everything has a
// working default; a config file only needs the fields it wants to
// change.
type Config struct {
	// Organization identifies the lab or institution recorded as the
	// author of every archive.
	Organization OrganizationConfig `json:"organization"`

	// Workers is the background pool size. Zero selects one worker per
	// CPU with a floor of two.
	Workers int `json:"workers"`

	// MathEnabled turns on $...$ and $$...$$ rendering in HTML bodies.
	MathEnabled bool `json:"math_enabled"`

	// DefaultGenre is the genre preselected for new entries:
	// "experiment" or "resource".
	DefaultGenre string `json:"default_genre"`

	// DefaultOutputDir is the directory the save prompt starts in.
	// Empty means the current working directory.
	DefaultOutputDir string `json:"default_output_dir"`
}

// OrganizationConfig names the archive author.
type OrganizationConfig struct {
	// ID is the node identifier in the metadata graph. Usually the
	// lab's homepage with an #organization fragment.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// URL is the lab's homepage.
	URL string `json:"url"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Organization: OrganizationConfig{
			ID:   DefaultOrganizationID,
			Name: "elnforge",
		},
		DefaultGenre: string(rocrate.GenreExperiment),
	}
}

// Load loads configuration from the ELNFORGE_CONFIG environment
// variable when set, and falls back to defaults when it is not. Unlike
// an explicit --config path, a missing variable is not an error: the
// editor is fully usable unconfigured.
func Load() (*Config, error) {
	path := os.Getenv("ELNFORGE_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file. The file is JSONC:
// JSON extended with // line comments, /* block comments */, and
// trailing commas, so hand-maintained configs can be annotated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	configuration := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return configuration, nil
}

// Validate checks field values that have a constrained domain.
func (configuration *Config) Validate() error {
	switch rocrate.Genre(configuration.DefaultGenre) {
	case rocrate.GenreExperiment, rocrate.GenreResource:
	default:
		return fmt.Errorf("default_genre %q: must be %q or %q",
			configuration.DefaultGenre, rocrate.GenreExperiment, rocrate.GenreResource)
	}
	if configuration.Workers < 0 {
		return fmt.Errorf("workers %d: must be zero or positive", configuration.Workers)
	}
	if configuration.Organization.ID == "" {
		return fmt.Errorf("organization.id must not be empty")
	}
	return nil
}

// RocrateOrganization converts the configured author to its metadata
// form.
func (configuration *Config) RocrateOrganization() rocrate.Organization {
	return rocrate.Organization{
		ID:   configuration.Organization.ID,
		Name: configuration.Organization.Name,
		URL:  configuration.Organization.URL,
	}
}

// Genre returns the configured default genre as its typed form.
func (configuration *Config) Genre() rocrate.Genre {
	return rocrate.Genre(configuration.DefaultGenre)
}
