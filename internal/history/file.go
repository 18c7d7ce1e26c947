package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"theo-discovery/internal/domain"
)

var _ domain.SnapshotHistory = (*File)(nil)

// File keeps the snapshot history in a YAML document on disk. The whole
// file is rewritten on every Append; at most MaxEntries snapshots are kept
// when MaxEntries > 0.
type File struct {
	mu         sync.Mutex
	path       string
	MaxEntries int
}

type fileDocument struct {
	Snapshots []domain.CorpusSnapshotSummary `yaml:"snapshots"`
}

// NewFile returns a history backed by path. The file is created on the
// first Append.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Append(snapshot domain.CorpusSnapshotSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return err
	}
	doc.Snapshots = append(doc.Snapshots, snapshot)
	if f.MaxEntries > 0 && len(doc.Snapshots) > f.MaxEntries {
		doc.Snapshots = recent(doc.Snapshots, f.MaxEntries)
	}
	return f.write(doc)
}

func (f *File) Recent(limit int) ([]domain.CorpusSnapshotSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return recent(doc.Snapshots, limit), nil
}

func (f *File) read() (fileDocument, error) {
	var doc fileDocument
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing snapshot history %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File) write(doc fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
