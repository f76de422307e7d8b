package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records every command without executing anything.
type fakeRunner struct {
	commands [][]string
	output   string
	err      error
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	f.commands = append(f.commands, append([]string{name}, args...))
	return f.output, f.err
}

func (f *fakeRunner) joined() []string {
	var out []string
	for _, cmd := range f.commands {
		out = append(out, strings.Join(cmd, " "))
	}
	return out
}

func TestSudoPrependsNonInteractiveFlag(t *testing.T) {
	runner := &fakeRunner{}

	_, err := Sudo(runner, "systemctl", "restart", "systemd-logind")
	require.NoError(t, err)

	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{"sudo", "-n", "systemctl", "restart", "systemd-logind"}, runner.commands[0])
}

func TestLocalFileOps(t *testing.T) {
	ops := NewLocalFileOps()
	root := t.TempDir()

	dir := filepath.Join(root, "a", "b")
	require.NoError(t, ops.MkdirAll(dir, 0755))

	path := filepath.Join(dir, "file.conf")
	require.NoError(t, ops.WriteFile(path, []byte("content"), 0644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), got)

	link := filepath.Join(dir, "link")
	require.NoError(t, ops.Symlink(path, link))
	// Replacing an existing link is not an error.
	require.NoError(t, ops.Symlink(path, link))

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, path, target)
}

func TestSudoFileOpsMkdirAll(t *testing.T) {
	runner := &fakeRunner{}
	ops := NewSudoFileOps(runner)

	require.NoError(t, ops.MkdirAll("/etc/systemd/sleep.conf.d", 0755))

	require.Len(t, runner.commands, 1)
	assert.Equal(t,
		[]string{"sudo", "-n", "mkdir", "-p", "-m", "755", "/etc/systemd/sleep.conf.d"},
		runner.commands[0])
}

func TestSudoFileOpsWriteFile(t *testing.T) {
	runner := &fakeRunner{}
	ops := NewSudoFileOps(runner)

	require.NoError(t, ops.WriteFile("/etc/systemd/sleep.conf.d/nosuspend.conf", []byte("[Sleep]\n"), 0644))

	// Staged through a temp file, then mv + chown + chmod under sudo.
	joined := runner.joined()
	require.Len(t, joined, 3)
	assert.Contains(t, joined[0], "sudo -n mv ")
	assert.Contains(t, joined[0], " /etc/systemd/sleep.conf.d/nosuspend.conf")
	assert.Equal(t, "sudo -n chown root:root /etc/systemd/sleep.conf.d/nosuspend.conf", joined[1])
	assert.Equal(t, "sudo -n chmod 644 /etc/systemd/sleep.conf.d/nosuspend.conf", joined[2])
}

func TestSudoFileOpsSymlink(t *testing.T) {
	runner := &fakeRunner{}
	ops := NewSudoFileOps(runner)

	require.NoError(t, ops.Symlink("/usr/lib64/libpango-1.0.so.0", "/usr/lib64/libpangox-1.0.so.0"))

	joined := runner.joined()
	assert.Equal(t, []string{
		"sudo -n ln -sf /usr/lib64/libpango-1.0.so.0 /usr/lib64/libpangox-1.0.so.0",
	}, joined)
}

func TestFileExists(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	exists, err := FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	// A directory is not a regular file.
	exists, err = FileExists(root)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = FileExists(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDirectoryExists(t *testing.T) {
	root := t.TempDir()

	exists, err := DirectoryExists(root)
	require.NoError(t, err)
	assert.True(t, exists)

	path := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	exists, err = DirectoryExists(path)
	require.NoError(t, err)
	assert.False(t, exists)
}
