// Package testutil provides isolated environments and a fake photo provider
// for command and integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestEnv provides access to isolated test directories
type TestEnv struct {
	Home       string // Mocked HOME directory
	ProjectDir string // Site checkout, also the working directory
	GlobalDir  string // ~/.leadfive equivalent
	ProjectLF  string // .leadfive in the project
	t          *testing.T
}

// SetupTestEnv creates an isolated environment with a mocked HOME, changes
// into a fresh project directory and clears provider and storage secrets.
// Tests using it cannot run in parallel.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalDir := filepath.Join(tmpHome, ".leadfive")
	projectLF := filepath.Join(tmpProject, ".leadfive")

	for _, dir := range []string{globalDir, projectLF} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", tmpHome)
	t.Setenv("UNSPLASH_ACCESS_KEY", "")
	t.Setenv("S3_ACCESS_KEY", "")
	t.Setenv("S3_SECRET_KEY", "")
	t.Chdir(tmpProject)

	return &TestEnv{
		Home:       tmpHome,
		ProjectDir: tmpProject,
		GlobalDir:  globalDir,
		ProjectLF:  projectLF,
		t:          t,
	}
}

func (e *TestEnv) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.ProjectDir, path)
}

// CreateFile creates a file with the given content. Relative paths are
// resolved against the project directory.
func (e *TestEnv) CreateFile(path, content string) {
	e.t.Helper()

	fullPath := e.abs(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// WriteProjectConfig writes .leadfive/config.yaml in the project
func (e *TestEnv) WriteProjectConfig(yaml string) {
	e.t.Helper()
	e.CreateFile(filepath.Join(e.ProjectLF, "config.yaml"), yaml)
}

// ReadFile reads a file from the test environment
func (e *TestEnv) ReadFile(path string) string {
	e.t.Helper()

	data, err := os.ReadFile(e.abs(path))
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists in the test environment
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	_, err := os.Stat(e.abs(path))
	return err == nil
}

// ListDir returns the names in a directory, or nil if it is missing
func (e *TestEnv) ListDir(path string) []string {
	e.t.Helper()

	entries, err := os.ReadDir(e.abs(path))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
