// Package am loads uritemplate configuration ("am" is where the tool reads
// who it is from): logging, the catalog database, storage backends, the
// conformance fixture and a table of named templates.
package am

// Config represents the uritemplate configuration
type Config struct {
	Log         LogConfig         `mapstructure:"log" toml:"log"`
	Catalog     CatalogConfig     `mapstructure:"catalog" toml:"catalog"`
	Storage     StorageConfig     `mapstructure:"storage" toml:"storage"`
	Conformance ConformanceConfig `mapstructure:"conformance" toml:"conformance"`
	Templates   map[string]string `mapstructure:"templates" toml:"templates"` // name = "spec", used as @name
}

// LogConfig configures console and JSON logging
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json"`   // Emit zap production JSON
	Theme string `mapstructure:"theme" toml:"theme"` // Console theme: everforest, gruvbox
}

// CatalogConfig configures the SQLite catalog of scanned names
type CatalogConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// StorageConfig configures where names are listed from
type StorageConfig struct {
	S3    S3Config    `mapstructure:"s3" toml:"s3"`
	Watch WatchConfig `mapstructure:"watch" toml:"watch"`
}

// S3Config configures the S3 listing backend. Credentials come from the
// standard AWS chain, never from this file.
type S3Config struct {
	Region            string  `mapstructure:"region" toml:"region"`
	Endpoint          string  `mapstructure:"endpoint" toml:"endpoint"`                       // Custom endpoint (MinIO, localstack); empty = AWS
	PathStyle         bool    `mapstructure:"path_style" toml:"path_style"`                   // Path-style addressing for custom endpoints
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second"` // ListObjectsV2 page rate, 0 = unlimited
	PageSize          int32   `mapstructure:"page_size" toml:"page_size"`
}

// WatchConfig configures the directory watcher
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"` // Quiet period before a created file is reported
}

// ConformanceConfig configures the formatting conformance fixture
type ConformanceConfig struct {
	FixtureURL string   `mapstructure:"fixture_url" toml:"fixture_url"` // go-getter source of formatting.json
	CacheDir   string   `mapstructure:"cache_dir" toml:"cache_dir"`     // Where fetched fixtures are kept
	SkipFirst  int      `mapstructure:"skip_first" toml:"skip_first"`   // Leading cases to skip (the fixture opens with cases for other tools)
	Skip       []string `mapstructure:"skip" toml:"skip"`               // whatTests substrings to skip

	AllowPrivateHosts bool `mapstructure:"allow_private_hosts" toml:"allow_private_hosts"` // Permit http(s) fixtures on loopback or private networks
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
