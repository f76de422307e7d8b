package openwith

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhalvorsen/fedora-setup/internal/configfile"
	"github.com/mhalvorsen/fedora-setup/internal/system"
)

// Fixer hides unwanted entries without deleting anything. User-scope files
// move into a .disabled directory; system-scope files get shadowed by a
// user-dir copy carrying NoDisplay=true (the freedesktop override
// mechanism, so no root privilege is needed).
type Fixer struct {
	userAppsDir string
	installer   *configfile.Installer
}

// NewFixer creates a Fixer writing overrides under the given user
// applications directory.
func NewFixer(userAppsDir string) *Fixer {
	return &Fixer{
		userAppsDir: userAppsDir,
		installer:   configfile.NewInstaller(system.NewLocalFileOps()),
	}
}

// DisableUserEntry moves a user .desktop file into the .disabled
// subdirectory, hiding it without deletion. Returns the new path.
func (f *Fixer) DisableUserEntry(path string) (string, error) {
	disabledDir := filepath.Join(f.userAppsDir, ".disabled")
	if err := os.MkdirAll(disabledDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", disabledDir, err)
	}

	dst := filepath.Join(disabledDir, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", path, err)
	}
	return dst, nil
}

// ShadowSystemEntry copies a system .desktop file into the user
// applications directory with NoDisplay=true set, which hides the system
// entry for this user. Returns the override path.
func (f *Fixer) ShadowSystemEntry(systemPath string) (string, error) {
	content, err := os.ReadFile(systemPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", systemPath, err)
	}

	dst := filepath.Join(f.userAppsDir, filepath.Base(systemPath))
	result, err := f.installer.Apply(configfile.DesiredFileState{
		Dir:     f.userAppsDir,
		Path:    dst,
		Content: []byte(setNoDisplay(string(content))),
		Perm:    0644,
	})
	if err != nil {
		return "", fmt.Errorf("failed to write override for %s: %w", systemPath, err)
	}
	return result.Path, nil
}

// setNoDisplay rewrites a desktop file's NoDisplay key to true, appending
// the key if it is absent.
func setNoDisplay(content string) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(line, "NoDisplay=") {
			lines[i] = "NoDisplay=true"
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, "NoDisplay=true")
	}
	return strings.Join(lines, "\n") + "\n"
}
