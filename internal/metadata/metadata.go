// Package metadata loads per-class static configuration: professor
// attribution, titled sessions, and Drive folder assignments.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ClassMetadata is the static configuration for one class.
type ClassMetadata struct {
	Professor     string            `yaml:"professor"`
	LectureTitles map[string]string `yaml:"lecture_titles"`
}

// TitleFor returns the configured title for a session date, or a generated
// default when no title is configured. Professor attribution is never
// defaulted; titles are.
func (m ClassMetadata) TitleFor(classCode, date string) string {
	if title, ok := m.LectureTitles[date]; ok && title != "" {
		return title
	}
	return fmt.Sprintf("%s Lecture %s", classCode, date)
}

// Reader loads class metadata files, cached for the lifetime of a run.
type Reader struct {
	dir   string
	cache map[string]ClassMetadata
}

// NewReader creates a reader over a directory of <class_code>.yaml files.
func NewReader(dir string) *Reader {
	return &Reader{
		dir:   dir,
		cache: make(map[string]ClassMetadata),
	}
}

// Load returns the metadata for a class code. A missing file or a missing
// professor field is a hard error: professor attribution must never be
// guessed, so the caller skips the file rather than defaulting.
func (r *Reader) Load(classCode string) (ClassMetadata, error) {
	if meta, ok := r.cache[classCode]; ok {
		return meta, nil
	}

	path := filepath.Join(r.dir, classCode+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return ClassMetadata{}, fmt.Errorf("no metadata for class %s: %w", classCode, err)
	}

	var meta ClassMetadata
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return ClassMetadata{}, fmt.Errorf("invalid metadata for class %s: %w", classCode, err)
	}
	if meta.Professor == "" {
		return ClassMetadata{}, fmt.Errorf("metadata for class %s has no professor", classCode)
	}

	r.cache[classCode] = meta
	return meta, nil
}

// Folders maps class codes to Drive folder identifiers.
type Folders map[string]string

// LoadFolders reads the class to Drive folder mapping file.
func LoadFolders(path string) (Folders, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder mapping %s: %w", path, err)
	}
	var folders Folders
	if err := yaml.Unmarshal(raw, &folders); err != nil {
		return nil, fmt.Errorf("invalid folder mapping %s: %w", path, err)
	}
	return folders, nil
}
