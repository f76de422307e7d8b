package system

import (
	"fmt"
	"os"
)

// FileOps is the file mutation capability injected into components that
// write configuration files. Production code selects a local or sudo-backed
// implementation depending on whether the target path is writable by the
// calling user; tests substitute an unprivileged implementation against a
// temporary directory.
type FileOps interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(path string, content []byte, perm os.FileMode) error
	Symlink(target, linkPath string) error
}

// LocalFileOps performs file operations directly as the calling user.
type LocalFileOps struct{}

// NewLocalFileOps returns a FileOps backed by plain os calls.
func NewLocalFileOps() *LocalFileOps {
	return &LocalFileOps{}
}

// MkdirAll creates a directory and all missing parents.
func (f *LocalFileOps) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFile writes content to a file, replacing any previous contents.
func (f *LocalFileOps) WriteFile(path string, content []byte, perm os.FileMode) error {
	return os.WriteFile(path, content, perm)
}

// Symlink creates a symbolic link, replacing an existing link at the path.
func (f *LocalFileOps) Symlink(target, linkPath string) error {
	if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(target, linkPath)
}

// SudoFileOps performs file operations with elevated privilege through
// sudo -n, for targets under root-owned directories such as /etc.
type SudoFileOps struct {
	runner CommandRunner
}

// NewSudoFileOps returns a FileOps that escalates through sudo.
func NewSudoFileOps(runner CommandRunner) *SudoFileOps {
	return &SudoFileOps{runner: runner}
}

// MkdirAll creates a directory and all missing parents with sudo.
func (f *SudoFileOps) MkdirAll(path string, perm os.FileMode) error {
	permStr := fmt.Sprintf("%o", perm)
	if output, err := Sudo(f.runner, "mkdir", "-p", "-m", permStr, path); err != nil {
		return fmt.Errorf("failed to create directory %s: %w\nOutput: %s", path, err, output)
	}
	return nil
}

// WriteFile writes content to a root-owned file. The content is staged in a
// temp file owned by the calling user, then moved into place with sudo and
// re-owned to root.
func (f *SudoFileOps) WriteFile(path string, content []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp("", "fedora-setup-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if output, err := Sudo(f.runner, "mv", tmpPath, path); err != nil {
		return fmt.Errorf("failed to move file to %s: %w\nOutput: %s", path, err, output)
	}

	// Temp file was created by the unprivileged user
	if output, err := Sudo(f.runner, "chown", "root:root", path); err != nil {
		return fmt.Errorf("failed to set ownership on %s: %w\nOutput: %s", path, err, output)
	}

	permStr := fmt.Sprintf("%o", perm)
	if output, err := Sudo(f.runner, "chmod", permStr, path); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w\nOutput: %s", path, err, output)
	}

	return nil
}

// Symlink creates a symbolic link with sudo, replacing any existing link.
func (f *SudoFileOps) Symlink(target, linkPath string) error {
	if output, err := Sudo(f.runner, "ln", "-sf", target, linkPath); err != nil {
		return fmt.Errorf("failed to create symlink %s -> %s: %w\nOutput: %s", linkPath, target, err, output)
	}
	return nil
}

// FileExists checks if a path exists as a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().IsRegular(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if file exists %s: %w", path, err)
}

// DirectoryExists checks if a path exists as a directory.
func DirectoryExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if directory exists %s: %w", path, err)
}
