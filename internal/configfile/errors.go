package configfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// PathConflictError reports that a path component exists with the wrong
// type, e.g. the target file path is occupied by a directory.
type PathConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("%s exists but is a %s, expected a %s", e.Path, e.Got, e.Want)
}

// PermissionError reports that the caller lacks privilege for a directory
// creation, file creation, or write.
type PermissionError struct {
	Op   string
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// classify wraps a filesystem error, surfacing EACCES/EPERM as a typed
// PermissionError and everything else as a plain I/O error naming the path.
func classify(op, path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return &PermissionError{Op: op, Path: path, Err: err}
	}
	return fmt.Errorf("failed to %s %s: %w", op, path, err)
}

// describeMode renders a file mode as a human-readable node type for
// conflict messages.
func describeMode(mode os.FileMode) string {
	switch {
	case mode.IsDir():
		return "directory"
	case mode.IsRegular():
		return "regular file"
	case mode&os.ModeSymlink != 0:
		return "symlink"
	default:
		return "special file"
	}
}
