// Package dotdir resolves the .razor/ directory that holds config.toml and
// the benchmark history database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the razor directory.
	dirName = ".razor"

	// historyFile is the default benchmark history database inside the dir.
	historyFile = "history.sqlite"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .razor/ directory.
// Order of precedence is as follows:
//  1. Provided override, created if missing
//  2. Local ./.razor/ dir
//  3. Home ~/.razor/ dir
//
// If none applies, Target returns an empty path and no error.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating razor directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, dirName)) {
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if isDir(filepath.Join(home, dirName)) {
		return filepath.Join(home, dirName), nil
	}

	return "", nil
}

// Init resolves like Target but, when nothing exists yet, creates ~/.razor/.
func (m *Manager) Init(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir = filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating razor directory %s: %w", dir, err)
	}
	return dir, nil
}

// HistoryPath returns the default benchmark history database path within
// the resolved directory, creating ~/.razor/ if needed.
func (m *Manager) HistoryPath(overrideDir string) (string, error) {
	dir, err := m.Init(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFile), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
