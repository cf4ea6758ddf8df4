package am

import (
	"strings"

	"github.com/teranos/uritemplates/errors"
)

// Resolve returns the spec for a template argument. "@name" looks name up
// in the configured templates; anything else is returned as given.
func (c *Config) Resolve(arg string) (string, error) {
	name, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return arg, nil
	}
	if spec, ok := c.Templates[name]; ok {
		return spec, nil
	}
	// viper folds keys to lower case
	if spec, ok := c.Templates[strings.ToLower(name)]; ok {
		return spec, nil
	}
	return "", errors.WithHint(
		errors.NewNotFoundError("template %q is not configured", name),
		"add it under [templates] in am.toml")
}
