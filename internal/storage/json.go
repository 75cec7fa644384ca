package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	vipFileName    = "vip_users.json"
	offsetFileName = "last_offset.json"
)

type vipRecord struct {
	VIPUsers []int64 `json:"vip_users"`
}

type offsetRecord struct {
	Offset *int `json:"offset"`
}

// JSONStore keeps each record in its own JSON file.
type JSONStore struct {
	vipPath    string
	offsetPath string
}

// NewJSONStore creates dir if needed and returns a store writing
// vip_users.json and last_offset.json inside it.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONStore{
		vipPath:    filepath.Join(dir, vipFileName),
		offsetPath: filepath.Join(dir, offsetFileName),
	}, nil
}

// LoadVIPs treats a missing or unparsable file as an empty set.
func (s *JSONStore) LoadVIPs() ([]int64, error) {
	var rec vipRecord
	found, err := readJSON(s.vipPath, &rec)
	if err != nil || !found {
		return []int64{}, err
	}
	if rec.VIPUsers == nil {
		return []int64{}, nil
	}
	return rec.VIPUsers, nil
}

func (s *JSONStore) SaveVIPs(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	return writeJSON(s.vipPath, vipRecord{VIPUsers: ids})
}

// LoadOffset treats a missing or unparsable file as no offset.
func (s *JSONStore) LoadOffset() (int, bool, error) {
	var rec offsetRecord
	found, err := readJSON(s.offsetPath, &rec)
	if err != nil || !found || rec.Offset == nil {
		return 0, false, err
	}
	return *rec.Offset, true, nil
}

func (s *JSONStore) SaveOffset(offset int) error {
	return writeJSON(s.offsetPath, offsetRecord{Offset: &offset})
}

func (s *JSONStore) Close() error { return nil }

// readJSON reports found=false for a missing or corrupt file; only other
// I/O failures are errors.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
