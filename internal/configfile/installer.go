// Package configfile implements the idempotent configuration-file
// installer: given a desired file state (directory, path, exact content),
// Apply makes the filesystem match it and reports what changed. Repeated
// application produces the same end state; the existence checks feed
// user-facing reporting only.
package configfile

import (
	"os"

	"github.com/mhalvorsen/fedora-setup/internal/common"
)

// DesiredFileState describes the target configuration file, independent of
// the current filesystem state. Path must be a direct child of Dir; both
// must be absolute. Content is the exact bytes desired.
type DesiredFileState struct {
	Dir     string
	Path    string
	Content []byte
	Perm    os.FileMode
}

// Validate enforces the path invariants.
func (s DesiredFileState) Validate() error {
	return common.ValidateChildPath(s.Dir, s.Path)
}

// ApplyResult reports which filesystem mutations Apply performed and the
// final absolute path written.
type ApplyResult struct {
	DirectoryCreated bool
	FileCreated      bool
	Path             string
}

// Installer makes the filesystem match a DesiredFileState through an
// injected FileOps capability, so privileged targets and test sandboxes use
// the same code path.
type Installer struct {
	ops FileOps
}

// FileOps is the subset of file mutations the installer needs.
// system.LocalFileOps and system.SudoFileOps both satisfy it.
type FileOps interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(path string, content []byte, perm os.FileMode) error
}

// NewInstaller creates an Installer using the given file operations.
func NewInstaller(ops FileOps) *Installer {
	return &Installer{ops: ops}
}

// Apply ensures the directory exists, ensures the file exists, and sets the
// file's contents to exactly state.Content. The write is unconditional (a
// declarative set, not a diff); the existence checks only drive the booleans
// in the result. A failed write leaves the file in an undefined intermediate
// state; no rollback is attempted.
func (i *Installer) Apply(state DesiredFileState) (ApplyResult, error) {
	result := ApplyResult{Path: state.Path}

	if err := state.Validate(); err != nil {
		return result, err
	}

	perm := state.Perm
	if perm == 0 {
		perm = 0644
	}

	info, err := os.Stat(state.Dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return result, &PathConflictError{
				Path: state.Dir,
				Want: "directory",
				Got:  describeMode(info.Mode()),
			}
		}
	case os.IsNotExist(err):
		if err := i.ops.MkdirAll(state.Dir, 0755); err != nil {
			return result, classify("create directory", state.Dir, err)
		}
		result.DirectoryCreated = true
	default:
		return result, classify("stat", state.Dir, err)
	}

	info, err = os.Stat(state.Path)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return result, &PathConflictError{
				Path: state.Path,
				Want: "regular file",
				Got:  describeMode(info.Mode()),
			}
		}
	case os.IsNotExist(err):
		result.FileCreated = true
	default:
		return result, classify("stat", state.Path, err)
	}

	if err := i.ops.WriteFile(state.Path, state.Content, perm); err != nil {
		return result, classify("write", state.Path, err)
	}

	return result, nil
}
