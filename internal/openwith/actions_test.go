package openwith

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisableUserEntry(t *testing.T) {
	userAppsDir := t.TempDir()
	fixer := NewFixer(userAppsDir)

	path := writeDesktopFile(t, userAppsDir, "stale.desktop", "[Desktop Entry]\nType=Application\n")

	newPath, err := fixer.DisableUserEntry(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(userAppsDir, ".disabled", "stale.desktop"), newPath)

	// Moved, not deleted.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newPath)
	assert.NoError(t, err)
}

func TestShadowSystemEntry(t *testing.T) {
	systemDir := t.TempDir()
	userAppsDir := filepath.Join(t.TempDir(), "applications")
	fixer := NewFixer(userAppsDir)

	systemPath := writeDesktopFile(t, systemDir, "app.desktop", `[Desktop Entry]
Type=Application
Name=App
Exec=app
MimeType=text/plain;
`)

	overridePath, err := fixer.ShadowSystemEntry(systemPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userAppsDir, "app.desktop"), overridePath)

	content, err := os.ReadFile(overridePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "NoDisplay=true")

	// The system file is untouched.
	original, err := os.ReadFile(systemPath)
	require.NoError(t, err)
	assert.NotContains(t, string(original), "NoDisplay")
}

func TestShadowSystemEntryReplacesExistingNoDisplay(t *testing.T) {
	systemDir := t.TempDir()
	userAppsDir := filepath.Join(t.TempDir(), "applications")
	fixer := NewFixer(userAppsDir)

	systemPath := writeDesktopFile(t, systemDir, "app.desktop", `[Desktop Entry]
Type=Application
Name=App
NoDisplay=false
Exec=app
MimeType=text/plain;
`)

	overridePath, err := fixer.ShadowSystemEntry(systemPath)
	require.NoError(t, err)

	content, err := os.ReadFile(overridePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "NoDisplay=true")
	assert.NotContains(t, string(content), "NoDisplay=false")
}

func TestSetNoDisplay(t *testing.T) {
	assert.Equal(t, "[Desktop Entry]\nNoDisplay=true\n",
		setNoDisplay("[Desktop Entry]\n"))
	assert.Equal(t, "[Desktop Entry]\nNoDisplay=true\nName=A\n",
		setNoDisplay("[Desktop Entry]\nNoDisplay=false\nName=A\n"))
}
