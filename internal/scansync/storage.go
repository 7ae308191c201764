package scansync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage caches scan documents on disk as root/<artifactID>/scan.json.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) ArtifactDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *FileStorage) ScanPath(id string) string {
	return filepath.Join(s.ArtifactDir(id), "scan.json")
}

// Has reports whether the artifact is already cached.
func (s *FileStorage) Has(id string) bool {
	if validateID(id) != nil {
		return false
	}
	_, err := os.Stat(s.ScanPath(id))
	return err == nil
}

func (s *FileStorage) Save(id string, data []byte) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.MkdirAll(s.ArtifactDir(id), 0o755); err != nil {
		return fmt.Errorf("mkdir artifact dir: %w", err)
	}

	// Write then rename so readers never see half a document.
	tmp := s.ScanPath(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write scan %s: %w", id, err)
	}
	if err := os.Rename(tmp, s.ScanPath(id)); err != nil {
		return fmt.Errorf("commit scan %s: %w", id, err)
	}
	return nil
}

func (s *FileStorage) Load(id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.ScanPath(id))
	if err != nil {
		return nil, fmt.Errorf("read scan %s: %w", id, err)
	}
	return data, nil
}

// List returns the ids of every cached artifact, sorted.
func (s *FileStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artifacts dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() && s.Has(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid artifact id %q", id)
	}
	return nil
}
