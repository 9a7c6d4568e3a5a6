package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// YAML keeps every record in one file, rewritten on each Save.
type YAML struct {
	path string

	mu      sync.Mutex
	records map[string]Record
}

type yamlFile struct {
	Devices []Record `yaml:"devices"`
}

// OpenYAML reads path if it exists; a missing file starts empty.
func OpenYAML(path string) (*YAML, error) {
	s := &YAML{path: path, records: make(map[string]Record)}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %v: %w", path, err, errs.ErrIO)
	}
	var f yamlFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, errs.ErrFormat)
	}
	for _, r := range f.Devices {
		s.records[r.Device] = r
	}
	return s, nil
}

func (s *YAML) Load(device string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[device]
	if !ok {
		return Record{}, fmt.Errorf("device %s: %w", device, errs.ErrNotFound)
	}
	return r, nil
}

func (s *YAML) Save(r Record) error {
	if err := validate(r); err != nil {
		return err
	}
	if r.Updated.IsZero() {
		r.Updated = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Device] = r
	return s.flushLocked()
}

// flushLocked writes a temp file next to path and renames it into place.
func (s *YAML) flushLocked() error {
	f := yamlFile{Devices: make([]Record, 0, len(s.records))}
	for _, r := range s.records {
		f.Devices = append(f.Devices, r)
	}
	sortRecords(f.Devices)
	b, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("mkdir for %s: %v: %w", s.path, err, errs.ErrIO)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("write %s: %v: %w", tmp, err, errs.ErrIO)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %v: %w", tmp, err, errs.ErrIO)
	}
	return nil
}

func (s *YAML) Close() error { return nil }
