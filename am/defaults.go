package am

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// Default values referenced by SetDefaults and the Get* fallbacks
const (
	DefaultCatalogPath      = "uritemplate.db"
	DefaultLogTheme         = "everforest"
	DefaultS3Region         = "us-east-1"
	DefaultS3PageSize       = 1000
	DefaultS3RequestsPerSec = 10.0
	DefaultWatchDebounceMS  = 250
	DefaultFixtureURL       = "https://raw.githubusercontent.com/hapi-server/uri-templates/master/formatting.json"
	DefaultFixtureCacheDir  = ".uritemplate/fixtures"
	DefaultFixtureSkipFirst = 3
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultLogTheme)

	v.SetDefault("catalog.path", DefaultCatalogPath)

	v.SetDefault("storage.s3.region", DefaultS3Region)
	v.SetDefault("storage.s3.page_size", DefaultS3PageSize)
	v.SetDefault("storage.s3.requests_per_second", DefaultS3RequestsPerSec) // Be polite to shared buckets
	v.SetDefault("storage.watch.debounce_ms", DefaultWatchDebounceMS)

	v.SetDefault("conformance.fixture_url", DefaultFixtureURL)
	v.SetDefault("conformance.cache_dir", DefaultFixtureCacheDir)
	v.SetDefault("conformance.skip_first", DefaultFixtureSkipFirst)
	v.SetDefault("conformance.allow_private_hosts", false)
}

// BindSensitiveEnvVars explicitly binds configuration that is usually
// supplied by the environment rather than a file
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("catalog.path", "URITEMPLATE_CATALOG_PATH")
	_ = v.BindEnv("storage.s3.region", "URITEMPLATE_S3_REGION", "AWS_REGION")
	_ = v.BindEnv("storage.s3.endpoint", "URITEMPLATE_S3_ENDPOINT")
}

// GetCatalogPath returns the configured catalog path
func (c *Config) GetCatalogPath() string {
	if c.Catalog.Path == "" {
		return DefaultCatalogPath
	}
	return c.Catalog.Path
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

// GetS3Config returns the S3 configuration with defaults applied
func (c *Config) GetS3Config() S3Config {
	cfg := c.Storage.S3
	if cfg.Region == "" {
		cfg.Region = DefaultS3Region
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultS3PageSize
	}
	return cfg
}

// TemplateNames returns the configured template names, sorted
func (c *Config) TemplateNames() []string {
	names := make([]string, 0, len(c.Templates))
	for name := range c.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Catalog: %s, Log: {JSON: %t, Theme: %s}, Templates: %d}",
		c.GetCatalogPath(), c.Log.JSON, c.GetLogTheme(), len(c.Templates))
}
