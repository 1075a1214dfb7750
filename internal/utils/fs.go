package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// FileExists reports whether anything exists at path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dir and any missing parents
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// EnsureParentDir creates the directory that will hold path, so the trace
// database or a config file can be created in a fresh data dir.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return EnsureDir(dir)
}

// CheckDictionaryPath returns a descriptive error when path cannot hold a
// dictionary: it must be a word list file, a chunk file, or a data dir.
func CheckDictionaryPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("dictionary %s: %w", path, err)
	}
	if info.IsDir() && !IsValidDataDir(path) {
		return fmt.Errorf("dictionary %s: no dict_*.bin chunks or %s", path, WordListName)
	}
	if !info.IsDir() && info.Size() == 0 {
		return fmt.Errorf("dictionary %s: empty file", path)
	}
	return nil
}

// WritableDir creates dir if needed and reports whether files can be created in it
func WritableDir(dir string) bool {
	if err := EnsureDir(dir); err != nil {
		log.Warnf("Cannot create directory %s: %v", dir, err)
		return false
	}
	f, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dir, err)
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

// SaveTOMLFile encodes data into path through a temp file and a rename, so
// the config watcher never reloads a half-written file.
func SaveTOMLFile(data any, path string) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	if err := toml.NewEncoder(tmp).Encode(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// AbsPath returns path made absolute, or "unknown" for an empty path
func AbsPath(path string) string {
	if path == "" {
		return "unknown"
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
