package openwith

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner walks the user and system application directories and loads
// Open-With candidate entries.
type Scanner struct {
	UserDirs   []string
	SystemDirs []string

	// CommandExists reports whether an executable can be resolved.
	// Overridable so tests don't depend on the host PATH.
	CommandExists func(cmd string) bool
}

// NewScanner creates a Scanner over the standard freedesktop application
// directories for the given home directory.
func NewScanner(home string) *Scanner {
	return &Scanner{
		UserDirs: []string{
			filepath.Join(home, ".local", "share", "applications"),
			filepath.Join(home, ".local", "share", "flatpak", "exports", "share", "applications"),
		},
		SystemDirs: []string{
			"/usr/share/applications",
			"/var/lib/flatpak/exports/share/applications",
			"/var/lib/snapd/desktop/applications",
		},
		CommandExists: defaultCommandExists,
	}
}

func defaultCommandExists(cmd string) bool {
	if cmd == "" {
		return false
	}
	if filepath.IsAbs(cmd) {
		_, err := os.Stat(cmd)
		return err == nil
	}
	_, err := exec.LookPath(cmd)
	return err == nil
}

// Scan loads all Open-With candidate entries, first user directories then
// system directories, deduplicated by path. Unreadable or malformed files
// become broken entries rather than aborting the scan.
func (s *Scanner) Scan() ([]*Entry, error) {
	var entries []*Entry
	seen := make(map[string]bool)

	scanDirs := func(dirs []string, scope Scope) error {
		for _, dir := range dirs {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				continue
			}

			matches, err := filepath.Glob(filepath.Join(dir, "*.desktop"))
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", dir, err)
			}
			sort.Strings(matches)

			for _, path := range matches {
				if seen[path] {
					continue
				}
				seen[path] = true

				entry, err := parseDesktopFile(path)
				if err != nil {
					entries = append(entries, &Entry{
						Path:      path,
						Scope:     scope,
						EntryType: "Application",
						Provider:  ProviderOther,
						Broken:    true,
						Reason:    fmt.Sprintf("Parse error: %v", err),
					})
					continue
				}
				if entry == nil {
					continue
				}

				entry.Scope = scope
				entry.Provider = s.detectProvider(entry)
				entry.Broken, entry.Reason = s.looksBroken(entry)
				entries = append(entries, entry)
			}
		}
		return nil
	}

	if err := scanDirs(s.UserDirs, ScopeUser); err != nil {
		return nil, err
	}
	if err := scanDirs(s.SystemDirs, ScopeSystem); err != nil {
		return nil, err
	}

	return entries, nil
}

// detectProvider classifies where an entry comes from based on its path and
// Exec line.
func (s *Scanner) detectProvider(e *Entry) Provider {
	low := strings.ToLower(e.Path + " " + e.ExecLine)
	if strings.Contains(low, "flatpak") {
		return ProviderFlatpak
	}
	if strings.Contains(low, "snap") {
		return ProviderSnap
	}
	if s.CommandExists(e.FirstCommand) {
		return ProviderNative
	}
	return ProviderOther
}

// looksBroken checks whether the entry's executable can still be resolved.
func (s *Scanner) looksBroken(e *Entry) (bool, string) {
	if e.TryExec != "" && !s.CommandExists(e.TryExec) {
		return true, fmt.Sprintf("TryExec not found: %s", e.TryExec)
	}

	cmd := e.FirstCommand
	if cmd == "" {
		return true, "Empty Exec"
	}

	if wrapperCommands[filepath.Base(cmd)] || wrapperCommands[cmd] {
		if !s.CommandExists(cmd) {
			return true, fmt.Sprintf("Wrapper not found in PATH: %s", cmd)
		}
		// The wrapper resolves; the wrapped app can't be verified cheaply.
		return false, ""
	}

	if !s.CommandExists(cmd) {
		return true, fmt.Sprintf("Executable not found: %s", cmd)
	}
	return false, ""
}

// BrokenEntries filters entries that look broken and are not already hidden.
func BrokenEntries(entries []*Entry) []*Entry {
	var broken []*Entry
	for _, e := range entries {
		if e.Broken && !e.Hidden {
			broken = append(broken, e)
		}
	}
	return broken
}

// DesktopIDs returns the set of known desktop-file ids, for validating
// mimeapps.list references.
func DesktopIDs(entries []*Entry) map[string]bool {
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.DesktopID()] = true
	}
	return ids
}
