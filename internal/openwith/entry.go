// Package openwith audits and cleans the freedesktop "Open With"
// application associations: .desktop files across user and system
// directories, and the user's mimeapps.list. It finds entries whose
// executables are gone, deduplicates entries that present the same
// application twice (native vs flatpak vs snap), and repairs stale
// mimeapps.list references.
package openwith

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Provider identifies how an application was installed.
type Provider string

const (
	ProviderNative  Provider = "native"
	ProviderFlatpak Provider = "flatpak"
	ProviderSnap    Provider = "snap"
	ProviderOther   Provider = "other"
)

// Scope identifies whether an entry lives in a user or system directory.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeSystem Scope = "system"
)

// Entry is one .desktop application entry that offers MIME associations.
type Entry struct {
	Path         string   `json:"path"`
	Scope        Scope    `json:"scope"`
	Name         string   `json:"name"`
	ExecLine     string   `json:"exec_line"`
	TryExec      string   `json:"tryexec"`
	MimeTypes    []string `json:"mimetypes"`
	Hidden       bool     `json:"hidden"`
	NoDisplay    bool     `json:"nodisplay"`
	EntryType    string   `json:"entry_type"`
	FirstCommand string   `json:"first_cmd"`
	Provider     Provider `json:"provider"`
	Broken       bool     `json:"broken"`
	Reason       string   `json:"reason"`
}

// DesktopID returns the desktop-file id used in mimeapps.list references.
func (e *Entry) DesktopID() string {
	idx := strings.LastIndex(e.Path, "/")
	if idx < 0 {
		return e.Path
	}
	return e.Path[idx+1:]
}

// wrapperCommands are interpreters and launchers whose presence says
// nothing about the real application, so only the wrapper itself is checked.
var wrapperCommands = map[string]bool{
	"env": true, "bash": true, "sh": true, "fish": true, "zsh": true,
	"/usr/bin/env": true, "flatpak": true, "snap": true,
	"python": true, "python3": true, "perl": true, "ruby": true,
	"java": true, "podman": true, "docker": true,
}

// parseDesktopFile reads the [Desktop Entry] section of a .desktop file.
// Returns (nil, nil) for entries that are not Open-With candidates: non
// applications and entries without MIME associations.
func parseDesktopFile(path string) (*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	values := make(map[string]string)
	inDesktopEntry := false
	sawDesktopEntry := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := line[1 : len(line)-1]
			inDesktopEntry = section == "Desktop Entry"
			if inDesktopEntry {
				sawDesktopEntry = true
			}
			continue
		}

		if !inDesktopEntry {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if _, exists := values[key]; !exists {
			values[key] = strings.TrimSpace(parts[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !sawDesktopEntry {
		return nil, nil
	}

	entryType := values["Type"]
	if entryType == "" {
		entryType = "Application"
	}
	if !strings.EqualFold(entryType, "application") {
		return nil, nil
	}

	var mimeTypes []string
	for _, m := range strings.Split(values["MimeType"], ";") {
		if m != "" {
			mimeTypes = append(mimeTypes, m)
		}
	}
	if len(mimeTypes) == 0 {
		return nil, nil
	}

	execLine := values["Exec"]
	return &Entry{
		Path:         path,
		Name:         values["Name"],
		ExecLine:     execLine,
		TryExec:      values["TryExec"],
		MimeTypes:    mimeTypes,
		Hidden:       parseDesktopBool(values["Hidden"]),
		NoDisplay:    parseDesktopBool(values["NoDisplay"]),
		EntryType:    entryType,
		FirstCommand: extractFirstCommand(execLine),
	}, nil
}

func parseDesktopBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// extractFirstCommand returns the first token of an Exec line, honoring
// single and double quotes.
func extractFirstCommand(execLine string) string {
	execLine = strings.TrimSpace(execLine)
	if execLine == "" {
		return ""
	}

	var first strings.Builder
	var quote byte
	for i := 0; i < len(execLine); i++ {
		c := execLine[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				first.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ' ' || c == '\t':
			if first.Len() > 0 {
				return first.String()
			}
		default:
			first.WriteByte(c)
		}
	}
	return first.String()
}
