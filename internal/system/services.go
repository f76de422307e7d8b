package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// ServiceExists checks if a systemd service unit file exists
func ServiceExists(serviceName string) (bool, error) {
	locations := []string{
		filepath.Join("/etc/systemd/system", serviceName),
		filepath.Join("/usr/lib/systemd/system", serviceName),
		filepath.Join("/lib/systemd/system", serviceName),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return true, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("error checking service at %s: %w", location, err)
		}
	}

	return false, nil
}

// RestartService restarts a system-scope service
func RestartService(r CommandRunner, serviceName string) error {
	if output, err := Sudo(r, "systemctl", "restart", serviceName); err != nil {
		return fmt.Errorf("failed to restart service %s: %w\nOutput: %s", serviceName, err, output)
	}
	return nil
}

// SystemdDaemonReload reloads systemd manager configuration
func SystemdDaemonReload(r CommandRunner) error {
	if output, err := Sudo(r, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd daemon: %w\nOutput: %s", err, output)
	}
	return nil
}

// RestartUserServices restarts user-scope services (no sudo). Failures are
// returned but callers treat a restart of desktop-integration services as
// best-effort.
func RestartUserServices(r CommandRunner, serviceNames ...string) error {
	args := append([]string{"--user", "restart"}, serviceNames...)
	if output, err := r.Run("systemctl", args...); err != nil {
		return fmt.Errorf("failed to restart user services: %w\nOutput: %s", err, output)
	}
	return nil
}

// UpdateDesktopDatabase rebuilds the desktop MIME cache for a user
// applications directory.
func UpdateDesktopDatabase(r CommandRunner, applicationsDir string) error {
	if output, err := r.Run("update-desktop-database", applicationsDir); err != nil {
		return fmt.Errorf("failed to update desktop database: %w\nOutput: %s", err, output)
	}
	return nil
}
