package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	return LoadFs(afero.NewBasePathFs(afero.NewOsFs(), path))
}

// LoadFs loads and validates the configuration at the root of configFs.
func LoadFs(configFs afero.Fs) (*Configuration, error) {
	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	if err != nil {
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}
	out.configFs = configFs
	return &out, nil
}

// LoadOrDefault loads the configuration in path, falling back to the
// built-in one when the directory has no configuration file.
func LoadOrDefault(path string) (*Configuration, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Initialize writes the default configuration to path if none exists and
// loads it.
func Initialize(path string, log *slog.Logger) (*Configuration, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(path, 0700); err != nil {
		return nil, err
	}
	return initializeFs(afero.NewBasePathFs(osFs, path), log)
}

func initializeFs(configFs afero.Fs, log *slog.Logger) (*Configuration, error) {
	switch _, err := configFs.Stat(ConfigurationName); {
	case err == nil:
		log.Info("Configuration already exists, skipping", "file", ConfigurationName)
	case errors.Is(err, fs.ErrNotExist):
		log.Info("Writing default configuration", "file", ConfigurationName)
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return LoadFs(configFs)
}
