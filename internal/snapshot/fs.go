// Package snapshot persists whole-board JSON documents on disk and imports
// documents dropped into the snapshot directory back into the store.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbeckett/ideabomb/internal/models"
)

// Document is one exported board: the board record plus every node and
// edge, across all pages.
type Document struct {
	Board models.Board  `json:"board"`
	Nodes []models.Node `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

// Store reads and writes snapshot documents under a root directory.
type Store struct {
	root string // absolute path to the snapshot directory
}

// NewStore creates a snapshot store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute snapshot directory.
func (s *Store) Root() string { return s.root }

// safePath resolves a relative file name against the root and rejects any
// result that escapes it.
func (s *Store) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("snapshot: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(s.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("snapshot: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("snapshot: path escapes snapshot root: %s", rel)
	}
	return abs, nil
}

// List returns the names of every snapshot file under the root.
func (s *Store) List() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, _ := filepath.Rel(s.root, p)
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	return out, nil
}

// Read loads and decodes one snapshot document.
func (s *Store) Read(name string) (*Document, error) {
	abs, err := s.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", name, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", name, err)
	}
	return &doc, nil
}

// Write atomically persists a document as <boardID>.json:
// tmp file, fsync, rename.
func (s *Store) Write(doc *Document) (string, error) {
	if doc.Board.ID == "" {
		return "", fmt.Errorf("snapshot: document has no board id")
	}
	name := doc.Board.ID + ".json"
	abs, err := s.safePath(name)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".ideabomb-tmp-*")
	if err != nil {
		return "", fmt.Errorf("snapshot: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("snapshot: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("snapshot: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("snapshot: rename: %w", err)
	}
	success = true
	return name, nil
}
