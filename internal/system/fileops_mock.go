package system

import (
	"os"
	"sync"
)

// MockFileOps captures file mutations in memory and implements FileOps.
// Used by step tests that must not touch the real filesystem.
type MockFileOps struct {
	mu           sync.Mutex
	WrittenFiles map[string][]byte
	CreatedDirs  []string
	Symlinks     map[string]string // linkPath -> target
}

// NewMockFileOps creates a new MockFileOps.
func NewMockFileOps() *MockFileOps {
	return &MockFileOps{
		WrittenFiles: make(map[string][]byte),
		Symlinks:     make(map[string]string),
	}
}

// MkdirAll records the directory that would be created.
func (m *MockFileOps) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedDirs = append(m.CreatedDirs, path)
	return nil
}

// WriteFile captures the content that would be written to a file.
func (m *MockFileOps) WriteFile(path string, content []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WrittenFiles[path] = content
	return nil
}

// Symlink records the link that would be created.
func (m *MockFileOps) Symlink(target, linkPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Symlinks[linkPath] = target
	return nil
}
