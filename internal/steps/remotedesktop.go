package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/mhalvorsen/fedora-setup/internal/configfile"
	"github.com/mhalvorsen/fedora-setup/internal/download"
	"github.com/mhalvorsen/fedora-setup/internal/release"
	"github.com/mhalvorsen/fedora-setup/internal/system"
	"github.com/mhalvorsen/fedora-setup/internal/ui"
)

const remoteDesktopCompletionMarker = "remote-desktop-installed"

// yumReposDir is where dnf repo definitions live.
const yumReposDir = "/etc/yum.repos.d"

// RemoteDesktopSetup installs the proprietary remote-desktop client. One
// procedure parameterized by the detected Fedora release replaces the old
// copy-pasted per-release scripts: the release registry supplies the repo
// definition, an optional direct RPM URL, and the compat symlinks a release
// needs.
type RemoteDesktopSetup struct {
	installer     *configfile.Installer
	fileOps       system.FileOps
	runner        system.CommandRunner
	downloader    *download.Downloader
	registry      *release.Registry
	osReleasePath string
	config        *config.Config
	ui            *ui.UI
	markers       *config.Markers
}

// NewRemoteDesktopSetup creates a new RemoteDesktopSetup instance. The
// installer and fileOps must be privileged (the step writes under /etc and
// /usr/lib64).
func NewRemoteDesktopSetup(installer *configfile.Installer, fileOps system.FileOps, runner system.CommandRunner, downloader *download.Downloader, registry *release.Registry, cfg *config.Config, ui *ui.UI, markers *config.Markers) *RemoteDesktopSetup {
	return &RemoteDesktopSetup{
		installer:     installer,
		fileOps:       fileOps,
		runner:        runner,
		downloader:    downloader,
		registry:      registry,
		osReleasePath: release.DefaultOSReleasePath,
		config:        cfg,
		ui:            ui,
		markers:       markers,
	}
}

// SetOSReleasePath overrides where the Fedora release is detected from.
func (r *RemoteDesktopSetup) SetOSReleasePath(path string) {
	r.osReleasePath = path
}

// detectRelease detects the running Fedora release and resolves its install
// parameters from the registry.
func (r *RemoteDesktopSetup) detectRelease() (release.OSRelease, *release.ReleaseSpec, error) {
	osRelease, err := release.Detect(r.osReleasePath)
	if err != nil {
		return osRelease, nil, fmt.Errorf("failed to detect OS release: %w", err)
	}

	if !osRelease.IsFedora() {
		return osRelease, nil, fmt.Errorf("this step supports Fedora only, detected: %s", osRelease.PrettyName)
	}

	spec, err := r.registry.Lookup(osRelease.VersionID)
	if err != nil {
		return osRelease, nil, err
	}
	return osRelease, spec, nil
}

// registerRepo installs the vendor repo definition under /etc/yum.repos.d.
func (r *RemoteDesktopSetup) registerRepo() error {
	client := r.registry.Client
	repoPath := filepath.Join(yumReposDir, client.RepoFile)

	result, err := r.installer.Apply(configfile.DesiredFileState{
		Dir:     yumReposDir,
		Path:    repoPath,
		Content: []byte(client.RepoDefinition),
		Perm:    0644,
	})
	if err != nil {
		return fmt.Errorf("failed to register repository: %w", err)
	}

	if result.FileCreated {
		r.ui.Successf("Registered repository %s", result.Path)
	} else {
		r.ui.Successf("Refreshed repository definition %s", result.Path)
	}

	if err := r.config.Set(config.KeyRemoteDesktopRepo, repoPath); err != nil {
		return fmt.Errorf("failed to save repo path: %w", err)
	}
	return nil
}

// installPackage installs the client, either from the vendor repository or,
// when the release entry carries a direct RPM URL, by downloading and
// installing the RPM locally.
func (r *RemoteDesktopSetup) installPackage(spec *release.ReleaseSpec) error {
	pkg := r.registry.Client.Package

	installed, err := system.IsPackageInstalled(r.runner, pkg)
	if err != nil {
		return fmt.Errorf("failed to check package %s: %w", pkg, err)
	}
	if installed {
		r.ui.Infof("%s is already installed", pkg)
		return nil
	}

	if spec.RPMURL != "" {
		r.ui.Infof("Downloading %s", spec.RPMURL)

		destPath := filepath.Join(os.TempDir(), filepath.Base(spec.RPMURL))
		err := r.downloader.Fetch(context.Background(), download.Options{
			URL:      spec.RPMURL,
			DestPath: destPath,
			SHA256:   spec.SHA256,
		})
		if err != nil {
			return fmt.Errorf("failed to download client package: %w", err)
		}
		defer os.Remove(destPath)

		r.ui.Successf("Downloaded %s", destPath)
		r.ui.Info("Installing package (dnf resolves dependencies)...")
		if err := system.InstallLocalPackage(r.runner, destPath); err != nil {
			return err
		}
	} else {
		r.ui.Info("Refreshing repository metadata...")
		if err := system.RefreshRepoMetadata(r.runner); err != nil {
			return err
		}

		r.ui.Infof("Installing %s from the vendor repository...", pkg)
		if err := system.InstallPackages(r.runner, pkg); err != nil {
			return err
		}
	}

	r.ui.Successf("%s installed", pkg)
	return nil
}

// repairSymlinks creates the compat symlinks the release needs. ln -sf
// semantics: an existing link is replaced, so the repair is idempotent.
func (r *RemoteDesktopSetup) repairSymlinks(spec *release.ReleaseSpec) error {
	if len(spec.Symlinks) == 0 {
		r.ui.Info("No compatibility symlinks needed for this release")
		return nil
	}

	for _, link := range spec.Symlinks {
		if _, err := os.Stat(link.Target); os.IsNotExist(err) {
			r.ui.Warningf("Symlink target %s does not exist, skipping", link.Target)
			continue
		}

		if err := r.fileOps.Symlink(link.Target, link.Link); err != nil {
			return fmt.Errorf("failed to create compat symlink: %w", err)
		}
		r.ui.Successf("Linked %s -> %s", link.Link, link.Target)
	}
	return nil
}

// Run executes the remote-desktop client install step.
func (r *RemoteDesktopSetup) Run() error {
	exists, err := r.markers.Exists(remoteDesktopCompletionMarker)
	if err != nil {
		return fmt.Errorf("failed to check marker: %w", err)
	}
	if exists {
		r.ui.Info("Remote-desktop client already installed (marker found)")
		r.ui.Info("To re-run, remove marker: ~/.local/fedora-setup/" + remoteDesktopCompletionMarker)
		return nil
	}

	client := r.registry.Client
	r.ui.Header(fmt.Sprintf("%s Remote Desktop Client", client.Name))

	r.ui.Step("Detecting Fedora Release")
	osRelease, spec, err := r.detectRelease()
	if err != nil {
		return err
	}
	r.ui.Successf("Detected %s", osRelease.PrettyName)
	if spec.Version != osRelease.VersionID {
		r.ui.Infof("Using install parameters for Fedora %d (newest known release)", spec.Version)
	}
	if spec.Notes != "" {
		r.ui.Info(spec.Notes)
	}

	r.ui.Step("Registering Package Repository")
	if err := r.registerRepo(); err != nil {
		return err
	}

	r.ui.Step("Installing Client Package")
	if err := r.installPackage(spec); err != nil {
		return err
	}

	r.ui.Step("Repairing Compatibility Symlinks")
	if err := r.repairSymlinks(spec); err != nil {
		return err
	}

	r.ui.Step("Verifying Installation")
	version, err := system.GetPackageVersion(r.runner, client.Package)
	if err != nil {
		return fmt.Errorf("client package missing after install: %w", err)
	}
	r.ui.Successf("%s %s is installed", client.Package, version)

	if err := r.config.Set(config.KeyRemoteDesktopRelease, fmt.Sprintf("%d", osRelease.VersionID)); err != nil {
		return fmt.Errorf("failed to save release: %w", err)
	}
	if err := r.config.Set(config.KeyRemoteDesktopPackage, client.Package); err != nil {
		return fmt.Errorf("failed to save package name: %w", err)
	}

	r.ui.Print("")
	r.ui.Separator()
	r.ui.Successf("%s installed successfully", client.Name)

	if err := r.markers.Create(remoteDesktopCompletionMarker); err != nil {
		return fmt.Errorf("failed to create completion marker: %w", err)
	}

	return nil
}
