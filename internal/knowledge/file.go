package knowledge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore persists the knowledge base as a single JSON document.
//
// Save re-reads the file, merges, backs up the previous contents to
// <path>.bak and replaces the file atomically (temp file + rename), so a
// concurrent reader sees either the old or the new document, never a torn
// write. No file lock is taken.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the store file.
func (s *FileStore) Load() (*Knowledge, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}

	k, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Kind: Corrupt, Path: s.path, Err: err}
	}
	return k, nil
}

func (s *FileStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, &LoadError{Kind: NotFound, Path: s.path, Err: err}
		case os.IsPermission(err):
			return nil, &PermissionError{Path: s.path, Op: "read", Fix: permissionFix(s.path, "read"), Err: err}
		}
		return nil, fmt.Errorf("failed to read knowledge store: %w", err)
	}
	return data, nil
}

// Save merges partial into the current file contents and rewrites the file.
func (s *FileStore) Save(partial *Knowledge) error {
	current, err := s.Load()
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("overwriting corrupt knowledge store, previous contents kept in backup",
			zap.String("path", s.path),
			zap.String("backup", s.backupPath()),
			zap.Error(err),
		)
	}
	current, err = Recover(current, err)
	if err != nil {
		return err
	}
	current.Merge(partial)

	data, err := Encode(current)
	if err != nil {
		return fmt.Errorf("failed to encode knowledge store: %w", err)
	}

	if err := s.backup(); err != nil {
		// First run has nothing to back up; other failures are not fatal.
		s.logger.Warn("failed to back up knowledge store", zap.String("path", s.path), zap.Error(err))
	}

	return s.atomicWrite(data)
}

// Close is a no-op; the file is opened per operation.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) backup() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(s.backupPath(), data, 0644)
}

func (s *FileStore) backupPath() string {
	return s.path + ".bak"
}

func (s *FileStore) atomicWrite(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return s.writeError(dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return s.writeError(dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write knowledge store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write knowledge store: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write knowledge store: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return s.writeError(s.path, err)
	}
	return nil
}

func (s *FileStore) writeError(path string, err error) error {
	if os.IsPermission(err) {
		return &PermissionError{Path: path, Op: "write", Fix: permissionFix(path, "write"), Err: err}
	}
	return fmt.Errorf("failed to write knowledge store: %w", err)
}
