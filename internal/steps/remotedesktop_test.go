package steps

import (
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/mhalvorsen/fedora-setup/internal/configfile"
	"github.com/mhalvorsen/fedora-setup/internal/download"
	"github.com/mhalvorsen/fedora-setup/internal/release"
	"github.com/mhalvorsen/fedora-setup/internal/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpmExitOne produces a real non-zero exit error, the shape rpm -q reports
// for a package that is not installed.
func rpmExitOne(t *testing.T) error {
	t.Helper()
	err := exec.Command("false").Run()
	require.Error(t, err)
	return err
}

func testRemoteDesktop(t *testing.T, osReleaseContent string) (*RemoteDesktopSetup, *system.MockFileOps, *fakeRunner, *config.Config) {
	t.Helper()

	registry, err := release.LoadRegistry()
	require.NoError(t, err)

	mock := system.NewMockFileOps()
	runner := &fakeRunner{}
	cfg := testConfig(t)

	r := NewRemoteDesktopSetup(configfile.NewInstaller(mock), mock, runner, nil, registry, cfg, testUI(), testMarkers(t))

	if osReleaseContent != "" {
		path := filepath.Join(t.TempDir(), "os-release")
		require.NoError(t, os.WriteFile(path, []byte(osReleaseContent), 0644))
		r.SetOSReleasePath(path)
	}

	return r, mock, runner, cfg
}

func TestDetectReleaseFedora(t *testing.T) {
	r, _, _, _ := testRemoteDesktop(t, "ID=fedora\nVERSION_ID=42\nPRETTY_NAME=\"Fedora Linux 42\"\n")

	osRelease, spec, err := r.detectRelease()
	require.NoError(t, err)
	assert.Equal(t, 42, osRelease.VersionID)
	assert.Equal(t, 42, spec.Version)
}

func TestDetectReleaseRejectsNonFedora(t *testing.T) {
	r, _, _, _ := testRemoteDesktop(t, "ID=debian\nVERSION_ID=12\nPRETTY_NAME=\"Debian 12\"\n")

	_, _, err := r.detectRelease()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fedora only")
}

func TestRegisterRepo(t *testing.T) {
	r, mock, _, cfg := testRemoteDesktop(t, "")

	require.NoError(t, r.registerRepo())

	repoPath := filepath.Join("/etc/yum.repos.d", r.registry.Client.RepoFile)
	content, ok := mock.WrittenFiles[repoPath]
	require.True(t, ok, "repo definition was not written")
	assert.Equal(t, r.registry.Client.RepoDefinition, string(content))

	saved, err := cfg.Get(config.KeyRemoteDesktopRepo)
	require.NoError(t, err)
	assert.Equal(t, repoPath, saved)
}

func TestRepairSymlinksSkipsMissingTargets(t *testing.T) {
	r, mock, _, _ := testRemoteDesktop(t, "")

	spec := &release.ReleaseSpec{
		Version: 43,
		Symlinks: []release.Symlink{
			{Target: filepath.Join(t.TempDir(), "missing-target"), Link: "/usr/lib64/libpangox-1.0.so.0"},
		},
	}

	require.NoError(t, r.repairSymlinks(spec))
	assert.Empty(t, mock.Symlinks)
}

func TestRepairSymlinksCreatesLink(t *testing.T) {
	r, mock, _, _ := testRemoteDesktop(t, "")

	target := filepath.Join(t.TempDir(), "libpango-1.0.so.0")
	require.NoError(t, os.WriteFile(target, []byte{}, 0644))

	spec := &release.ReleaseSpec{
		Version: 43,
		Symlinks: []release.Symlink{
			{Target: target, Link: "/usr/lib64/libpangox-1.0.so.0"},
		},
	}

	require.NoError(t, r.repairSymlinks(spec))
	assert.Equal(t, target, mock.Symlinks["/usr/lib64/libpangox-1.0.so.0"])
}

func TestRepairSymlinksNoneNeeded(t *testing.T) {
	r, mock, _, _ := testRemoteDesktop(t, "")

	require.NoError(t, r.repairSymlinks(&release.ReleaseSpec{Version: 41}))
	assert.Empty(t, mock.Symlinks)
}

func TestRemoteDesktopRunSkipsWhenMarkerPresent(t *testing.T) {
	r, mock, runner, _ := testRemoteDesktop(t, "")
	require.NoError(t, r.markers.Create("remote-desktop-installed"))

	require.NoError(t, r.Run())
	assert.Empty(t, mock.WrittenFiles)
	assert.Empty(t, runner.commands)
}

func TestRemoteDesktopRunWithPackageAlreadyInstalled(t *testing.T) {
	// Fedora 41 has no compat symlinks, so the whole run is observable
	// through the mock and the recorded commands.
	r, mock, runner, cfg := testRemoteDesktop(t, "ID=fedora\nVERSION_ID=41\nPRETTY_NAME=\"Fedora Linux 41\"\n")
	pkg := r.registry.Client.Package
	runner.responses = map[string]fakeResult{
		"rpm -q --queryformat %{VERSION}-%{RELEASE} " + pkg: {output: "6.3.2-1\n"},
	}

	require.NoError(t, r.Run())

	repoPath := filepath.Join("/etc/yum.repos.d", r.registry.Client.RepoFile)
	assert.Contains(t, mock.WrittenFiles, repoPath)

	// Already installed, so dnf never runs.
	assert.True(t, runner.sawCommand("rpm", "-q", pkg))
	assert.False(t, runner.sawCommand("sudo", "-n", "dnf", "install", "-y", pkg))

	savedRelease, err := cfg.Get(config.KeyRemoteDesktopRelease)
	require.NoError(t, err)
	assert.Equal(t, "41", savedRelease)
	savedPackage, err := cfg.Get(config.KeyRemoteDesktopPackage)
	require.NoError(t, err)
	assert.Equal(t, pkg, savedPackage)

	assert.True(t, r.markers.IsComplete("remote-desktop-installed"))
}

func TestRemoteDesktopRunInstallsFromRepo(t *testing.T) {
	// Fedora 41 carries no direct RPM URL, so a missing package goes
	// through the vendor repository.
	r, _, runner, _ := testRemoteDesktop(t, "ID=fedora\nVERSION_ID=41\nPRETTY_NAME=\"Fedora Linux 41\"\n")
	pkg := r.registry.Client.Package
	runner.responses = map[string]fakeResult{
		"rpm -q " + pkg: {err: rpmExitOne(t)},
	}

	require.NoError(t, r.Run())

	assert.True(t, runner.sawCommand("sudo", "-n", "dnf", "makecache", "--refresh"))
	assert.True(t, runner.sawCommand("sudo", "-n", "dnf", "install", "-y", pkg))
	assert.True(t, r.markers.IsComplete("remote-desktop-installed"))
}

func TestRemoteDesktopRunInstallsDirectRPM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("rpm bytes"))
	}))
	defer server.Close()

	registry := &release.Registry{
		Client: release.ClientInfo{
			Name:           "AnyDesk",
			Package:        "anydesk",
			RepoFile:       "anydesk.repo",
			RepoDefinition: "[anydesk]\n",
		},
		Releases: []release.ReleaseSpec{
			{Version: 43, RPMURL: server.URL + "/anydesk.rpm"},
		},
	}

	mock := system.NewMockFileOps()
	runner := &fakeRunner{responses: map[string]fakeResult{
		"rpm -q anydesk": {err: rpmExitOne(t)},
	}}
	r := NewRemoteDesktopSetup(configfile.NewInstaller(mock), mock, runner, download.New(), registry, testConfig(t), testUI(), testMarkers(t))

	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("ID=fedora\nVERSION_ID=43\nPRETTY_NAME=\"Fedora Linux 43\"\n"), 0644))
	r.SetOSReleasePath(path)

	require.NoError(t, r.Run())

	// The downloaded RPM installs locally instead of through the repo.
	destPath := filepath.Join(os.TempDir(), "anydesk.rpm")
	assert.True(t, runner.sawCommand("sudo", "-n", "dnf", "install", "-y", destPath))
	assert.False(t, runner.sawCommand("sudo", "-n", "dnf", "makecache", "--refresh"))
	assert.True(t, r.markers.IsComplete("remote-desktop-installed"))
}
