package openwith

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// cleanedSections are the mimeapps.list sections whose association lists
// get deduplicated and purged of missing desktop files. Other sections are
// preserved verbatim.
var cleanedSections = map[string]bool{
	"Added Associations":   true,
	"Default Applications": true,
}

// CleanResult reports what the mimeapps cleaner removed.
type CleanResult struct {
	RemovedDuplicates int
	RemovedMissing    int
	Changed           bool
}

// CleanMimeapps removes duplicate and dangling desktop-file references from
// a mimeapps.list file. existing is the set of desktop-file ids that are
// actually installed. The file is rewritten (atomically) only when something
// changed; a missing file is not an error.
func CleanMimeapps(path string, existing map[string]bool) (CleanResult, error) {
	var result CleanResult

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var outLines []string
	currentSection := ""

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			currentSection = trimmed[1 : len(trimmed)-1]
			outLines = append(outLines, line)
			continue
		}

		if !cleanedSections[currentSection] || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			outLines = append(outLines, line)
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			outLines = append(outLines, line)
			continue
		}

		// Hand-edited files may pad the delimiter (`text/html = x.desktop;`).
		// Normalize to key=value so padded ids are not mistaken for missing.
		key := strings.TrimSpace(parts[0])
		cleaned := cleanAssociationList(parts[1], existing, &result)
		newLine := key + "=" + cleaned
		if newLine != line {
			result.Changed = true
		}
		outLines = append(outLines, newLine)
	}
	closeErr := file.Close()
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if closeErr != nil {
		return result, fmt.Errorf("failed to close %s: %w", path, closeErr)
	}

	if !result.Changed {
		return result, nil
	}

	if err := writeFileAtomic(path, strings.Join(outLines, "\n")+"\n"); err != nil {
		return result, err
	}
	return result, nil
}

// cleanAssociationList filters one semicolon-separated desktop-file list,
// dropping ids that are missing from the installed set and ids already seen.
func cleanAssociationList(value string, existing map[string]bool, result *CleanResult) string {
	seen := make(map[string]bool)
	var kept []string

	for _, id := range strings.Split(value, ";") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !existing[id] {
			result.RemovedMissing++
			continue
		}
		if seen[id] {
			result.RemovedDuplicates++
			continue
		}
		seen[id] = true
		kept = append(kept, id)
	}

	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, ";") + ";"
}

// writeFileAtomic replaces a file's contents via temp file + rename in the
// same directory.
func writeFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".mimeapps.list.tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// DefaultMimeappsPath returns the user's mimeapps.list location.
func DefaultMimeappsPath(home string) string {
	return filepath.Join(home, ".config", "mimeapps.list")
}
