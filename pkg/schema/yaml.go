package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeDocument reads one YAML or JSON schema document. Unknown keys are rejected.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, errors.Join(ErrFailedToParseDocument, err)
	}
	return doc, nil
}

func decodeJSON(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, errors.Join(ErrFailedToParseDocument, err)
	}
	return doc, nil
}

// LoadYAML builds a static provider from one document.
func LoadYAML(r io.Reader) (*Static, error) {
	doc, err := DecodeDocument(r)
	if err != nil {
		return nil, err
	}
	s := NewStatic()
	if err := s.AddDocument(doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Load builds a static provider from a schema file, or from every .yaml,
// .yml and .json file of a directory in name order.
func Load(path string) (*Static, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadSchema, err)
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = schemaFiles(path); err != nil {
			return nil, err
		}
	}

	s := NewStatic()
	for _, file := range files {
		if err := s.addFile(file); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Static) addFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Join(ErrFailedToReadSchema, err)
	}
	defer f.Close()

	decode := DecodeDocument
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decode = decodeJSON
	}
	doc, err := decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := s.AddDocument(doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func schemaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadSchema, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isSchemaFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
