package am

import (
	"strings"

	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/uritemplate"
)

// Validate checks that the configuration is valid, including that every
// named template compiles
func (c *Config) Validate() error {
	if c.Log.Theme != "" && c.Log.Theme != "everforest" && c.Log.Theme != "gruvbox" {
		return errors.Newf("log.theme must be everforest or gruvbox, got %q", c.Log.Theme)
	}

	// 0 = unlimited, negative = invalid
	if c.Storage.S3.RequestsPerSecond < 0 {
		return errors.Newf("storage.s3.requests_per_second must be >= 0, got %g", c.Storage.S3.RequestsPerSecond)
	}
	if c.Storage.S3.PageSize < 0 || c.Storage.S3.PageSize > 1000 {
		return errors.Newf("storage.s3.page_size must be between 0 and 1000, got %d", c.Storage.S3.PageSize)
	}
	if c.Storage.Watch.DebounceMS < 0 {
		return errors.Newf("storage.watch.debounce_ms must be >= 0, got %d", c.Storage.Watch.DebounceMS)
	}
	if c.Conformance.SkipFirst < 0 {
		return errors.Newf("conformance.skip_first must be >= 0, got %d", c.Conformance.SkipFirst)
	}

	for _, name := range c.TemplateNames() {
		if strings.HasPrefix(name, "@") {
			return errors.Newf("templates.%s: names are written without the @", name)
		}
		if _, err := uritemplate.Compile(c.Templates[name]); err != nil {
			return errors.Wrapf(err, "templates.%s", name)
		}
	}

	return nil
}
