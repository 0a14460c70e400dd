package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory. If the directory has no
// config.yaml the built in defaults are used.
func Load(path string) (*Configuration, error) {
	return load(afero.NewOsFs(), path)
}

func load(base afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(base, filepath.Join(path, ConfigurationName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		configContents = defaultConfigData
	case err != nil:
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}

	out.configurationDir = path
	out.configFs = afero.NewBasePathFs(base, path)
	return &out, nil
}

// Initialize creates the configuration directory and writes the default
// configuration to it. An existing configuration is left alone.
func Initialize(dir string, logger *log.Logger) error {
	return initialize(afero.NewOsFs(), dir, logger)
}

func initialize(base afero.Fs, dir string, logger *log.Logger) error {
	logger.Printf("Creating configuration directory %q\n", dir)
	if err := base.MkdirAll(dir, 0700); err != nil {
		return err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	switch exists, err := afero.Exists(base, configPath); {
	case err != nil:
		return err
	case exists:
		logger.Printf("Configuration %q already exists, skipping\n", configPath)
		return nil
	}

	logger.Printf("Writing %q\n", configPath)
	return afero.WriteFile(base, configPath, defaultConfigData, 0600)
}
