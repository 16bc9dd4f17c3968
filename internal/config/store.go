package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// storeFile is the on-disk shape of the template store.
type storeFile struct {
	Templates map[string]*Template `json:"templates"`
}

// Store is the process-wide template registry backed by a JSON file. The
// file is read once at startup and rewritten wholesale on every change.
// A missing or corrupt file is never an error: the built-in defaults are
// installed and persisted instead.
type Store struct {
	mu        sync.Mutex
	path      string
	templates map[string]*Template
}

// OpenStore loads the template store at path, falling back to defaults
// when the file is absent or unreadable. The fallback is also written
// back so the next start finds a valid file.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		var f storeFile
		if jsonErr := json.Unmarshal(data, &f); jsonErr == nil && len(f.Templates) > 0 {
			s.templates = f.Templates
			return s, nil
		}
	}

	s.templates = DefaultTemplates()
	if err := s.save(); err != nil {
		return nil, fmt.Errorf("write default templates: %w", err)
	}
	return s, nil
}

// Get returns a copy of the named template.
func (s *Store) Get(name string) (*Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[name]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Put validates and stores a template under name, rewriting the file.
func (s *Store) Put(name string, t *Template) error {
	if name == "" {
		return fmt.Errorf("模板名称不能为空")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = t.Clone()
	return s.save()
}

// Delete removes the named template and rewrites the file.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[name]; !ok {
		return fmt.Errorf("模板不存在: %s", name)
	}
	delete(s.templates, name)
	return s.save()
}

// Names returns all template names sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the full template mapping.
func (s *Store) All() map[string]*Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Template, len(s.templates))
	for name, t := range s.templates {
		out[name] = t.Clone()
	}
	return out
}

// save writes the store file, UTF-8 and indented so it stays hand-editable.
// Callers hold s.mu.
func (s *Store) save() error {
	var buf []byte
	{
		f := storeFile{Templates: s.templates}
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return fmt.Errorf("encode templates: %w", err)
		}
		buf = append(b, '\n')
	}
	if err := os.WriteFile(s.path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
