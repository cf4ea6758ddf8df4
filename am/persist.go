package am

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// don't fail the save over an old backup
		logger.Warnw("Failed to delete old config backup", logger.FieldPath, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// Marshal renders cfg as TOML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// Save writes cfg to configPath as TOML, keeping up to three backups of the previous file
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", configPath)
	}

	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write config %s", configPath)
	}

	logger.Infow("Config saved", logger.FieldPath, configPath)
	return nil
}

// DefaultConfig returns the configuration SetDefaults describes, for `config init`
func DefaultConfig() *Config {
	return &Config{
		Log:     LogConfig{Theme: DefaultLogTheme},
		Catalog: CatalogConfig{Path: DefaultCatalogPath},
		Storage: StorageConfig{
			S3: S3Config{
				Region:            DefaultS3Region,
				RequestsPerSecond: DefaultS3RequestsPerSec,
				PageSize:          DefaultS3PageSize,
			},
			Watch: WatchConfig{DebounceMS: DefaultWatchDebounceMS},
		},
		Conformance: ConformanceConfig{
			FixtureURL: DefaultFixtureURL,
			CacheDir:   DefaultFixtureCacheDir,
			SkipFirst:  DefaultFixtureSkipFirst,
		},
		Templates: map[string]string{
			"ace_mag": "ace_mag_$Y_$j_to_$(Y;end)_$j.cdf",
		},
	}
}
