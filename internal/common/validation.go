// Package common holds small shared validation helpers used by the setup
// steps and the CLI surface.
package common

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateAbsolutePath validates that a path is absolute and clean.
func ValidateAbsolutePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	return nil
}

// ValidateChildPath validates that child is a direct child of parent.
// Both paths must be absolute.
func ValidateChildPath(parent, child string) error {
	if err := ValidateAbsolutePath(parent); err != nil {
		return err
	}
	if err := ValidateAbsolutePath(child); err != nil {
		return err
	}
	if filepath.Dir(filepath.Clean(child)) != filepath.Clean(parent) {
		return fmt.Errorf("%s is not a direct child of %s", child, parent)
	}
	return nil
}

// ValidateURL validates an http(s) URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %s", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must be http or https: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL is missing a host: %s", raw)
	}
	return nil
}
