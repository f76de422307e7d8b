package system

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// IsPackageInstalled checks if an RPM package is installed. Queries do not
// need elevation, so the runner is invoked without sudo.
func IsPackageInstalled(r CommandRunner, packageName string) (bool, error) {
	_, err := r.Run("rpm", "-q", packageName)
	if err == nil {
		return true, nil
	}

	// rpm -q returns exit code 1 if package is not installed
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}

	return false, fmt.Errorf("failed to check package %s: %w", packageName, err)
}

// GetPackageVersion returns the version of an installed package
func GetPackageVersion(r CommandRunner, packageName string) (string, error) {
	output, err := r.Run("rpm", "-q", "--queryformat", "%{VERSION}-%{RELEASE}", packageName)
	if err != nil {
		return "", fmt.Errorf("failed to get version for %s: %w", packageName, err)
	}

	return strings.TrimSpace(output), nil
}

// CommandExists checks if a command is available in PATH
func CommandExists(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

// InstallPackages installs packages from the configured repositories via
// dnf. The package manager is an opaque collaborator; only its exit status
// matters.
func InstallPackages(r CommandRunner, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	args := append([]string{"install", "-y"}, packages...)
	if output, err := Sudo(r, "dnf", args...); err != nil {
		return fmt.Errorf("failed to install %s: %w\nOutput: %s", strings.Join(packages, " "), err, output)
	}
	return nil
}

// InstallLocalPackage installs a downloaded RPM file via dnf, resolving its
// dependencies from the configured repositories.
func InstallLocalPackage(r CommandRunner, rpmPath string) error {
	if output, err := Sudo(r, "dnf", "install", "-y", rpmPath); err != nil {
		return fmt.Errorf("failed to install %s: %w\nOutput: %s", rpmPath, err, output)
	}
	return nil
}

// RefreshRepoMetadata forces dnf to refetch repository metadata, picking up
// a newly registered repository definition.
func RefreshRepoMetadata(r CommandRunner) error {
	if output, err := Sudo(r, "dnf", "makecache", "--refresh"); err != nil {
		return fmt.Errorf("failed to refresh repo metadata: %w\nOutput: %s", err, output)
	}
	return nil
}
