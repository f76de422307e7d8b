package steps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhalvorsen/fedora-setup/internal/openwith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOpenWith builds a cleanup step scanning only directories under a
// temporary home, with command resolution pinned to the given set.
func testOpenWith(t *testing.T, commands ...string) (*OpenWithCleanup, string, *fakeRunner) {
	t.Helper()

	home := t.TempDir()
	userAppsDir := filepath.Join(home, ".local", "share", "applications")
	require.NoError(t, os.MkdirAll(userAppsDir, 0755))

	runner := &fakeRunner{}
	c := NewOpenWithCleanup(home, runner, testConfig(t), testUI(), testMarkers(t))

	known := make(map[string]bool, len(commands))
	for _, cmd := range commands {
		known[cmd] = true
	}
	c.scanner = &openwith.Scanner{
		UserDirs:      []string{userAppsDir},
		CommandExists: func(cmd string) bool { return known[cmd] },
	}

	return c, home, runner
}

func writeEntry(t *testing.T, home, name, content string) string {
	t.Helper()
	path := filepath.Join(home, ".local", "share", "applications", name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpenWithScanOnlyLeavesEverythingAlone(t *testing.T) {
	c, home, _ := testOpenWith(t)
	path := writeEntry(t, home, "gone.desktop", `[Desktop Entry]
Type=Application
Name=Gone
Exec=goneapp
MimeType=text/plain;
`)

	require.NoError(t, c.Run(OpenWithOptions{}))

	// Report-only pass: the broken entry stays and no marker is written.
	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.False(t, c.markers.IsComplete("openwith-cleaned"))
}

func TestOpenWithFixBrokenDisablesUserEntry(t *testing.T) {
	c, home, _ := testOpenWith(t)
	path := writeEntry(t, home, "gone.desktop", `[Desktop Entry]
Type=Application
Name=Gone
Exec=goneapp
MimeType=text/plain;
`)

	require.NoError(t, c.Run(OpenWithOptions{FixBroken: true}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	disabled := filepath.Join(home, ".local", "share", "applications", ".disabled", "gone.desktop")
	_, err = os.Stat(disabled)
	assert.NoError(t, err)

	assert.True(t, c.markers.IsComplete("openwith-cleaned"))
}

func TestOpenWithHideDuplicatesKeepsPreferred(t *testing.T) {
	c, home, _ := testOpenWith(t, "gedit")
	native := writeEntry(t, home, "a-native.desktop", `[Desktop Entry]
Type=Application
Name=Editor
Exec=gedit %U
MimeType=text/plain;
`)
	dup := writeEntry(t, home, "b-flatpak.desktop", `[Desktop Entry]
Type=Application
Name=Editor
Exec=flatpak run org.gnome.gedit
MimeType=text/plain;
`)

	require.NoError(t, c.Run(OpenWithOptions{
		HideDuplicates: true,
		Strategy:       openwith.StrategyName,
		Prefer:         openwith.ProviderNative,
	}))

	// The native entry stays; the flatpak duplicate moved to .disabled.
	_, err := os.Stat(native)
	assert.NoError(t, err)
	_, err = os.Stat(dup)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenWithFixMimeapps(t *testing.T) {
	c, home, _ := testOpenWith(t, "gedit")
	writeEntry(t, home, "gedit.desktop", `[Desktop Entry]
Type=Application
Name=Editor
Exec=gedit
MimeType=text/plain;
`)

	mimeappsPath := filepath.Join(home, ".config", "mimeapps.list")
	require.NoError(t, os.MkdirAll(filepath.Dir(mimeappsPath), 0755))
	require.NoError(t, os.WriteFile(mimeappsPath, []byte(`[Default Applications]
text/plain=gedit.desktop;gedit.desktop;removed.desktop;
`), 0644))

	require.NoError(t, c.Run(OpenWithOptions{FixMimeapps: true}))

	content, err := os.ReadFile(mimeappsPath)
	require.NoError(t, err)
	assert.Equal(t, "[Default Applications]\ntext/plain=gedit.desktop;\n", string(content))
}

func TestOpenWithFixesRefreshDesktopDatabase(t *testing.T) {
	c, home, runner := testOpenWith(t)
	writeEntry(t, home, "gone.desktop", `[Desktop Entry]
Type=Application
Name=Gone
Exec=goneapp
MimeType=text/plain;
`)

	require.NoError(t, c.Run(OpenWithOptions{FixBroken: true}))

	userAppsDir := filepath.Join(home, ".local", "share", "applications")
	assert.True(t, runner.sawCommand("update-desktop-database", userAppsDir))
	assert.True(t, runner.sawCommand("systemctl", "--user", "restart", "xdg-desktop-portal", "xdg-desktop-portal-gtk"))
}

func TestOpenWithOptionsHasFixes(t *testing.T) {
	assert.False(t, OpenWithOptions{}.HasFixes())
	assert.True(t, OpenWithOptions{FixBroken: true}.HasFixes())
	assert.True(t, OpenWithOptions{HideDuplicates: true}.HasFixes())
	assert.True(t, OpenWithOptions{FixMimeapps: true}.HasFixes())
}
