// Package release detects the running Fedora release and maps it to the
// install parameters for the remote-desktop client. The per-release install
// scripts of old are collapsed into one registry-driven procedure.
package release

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultOSReleasePath is where os-release(5) lives on Fedora.
const DefaultOSReleasePath = "/etc/os-release"

// OSRelease holds the fields of os-release(5) the tool cares about.
type OSRelease struct {
	ID         string
	VersionID  int
	PrettyName string
}

// IsFedora reports whether the detected OS is Fedora.
func (o OSRelease) IsFedora() bool {
	return o.ID == "fedora"
}

// Detect parses the os-release file at path. Pass DefaultOSReleasePath for
// the running system.
func Detect(path string) (OSRelease, error) {
	var rel OSRelease

	file, err := os.Open(path)
	if err != nil {
		return rel, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := parts[0]
		value := unquote(parts[1])

		switch key {
		case "ID":
			rel.ID = value
		case "VERSION_ID":
			v, err := strconv.Atoi(value)
			if err != nil {
				return rel, fmt.Errorf("invalid VERSION_ID %q in %s", value, path)
			}
			rel.VersionID = v
		case "PRETTY_NAME":
			rel.PrettyName = value
		}
	}

	if err := scanner.Err(); err != nil {
		return rel, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if rel.ID == "" {
		return rel, fmt.Errorf("no ID field in %s", path)
	}
	if rel.VersionID == 0 {
		return rel, fmt.Errorf("no VERSION_ID field in %s", path)
	}

	return rel, nil
}

// unquote strips the optional single or double quotes os-release values may
// carry.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
