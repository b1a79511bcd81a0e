package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/pkg/errors"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
)

// Store keeps a catalog as a JSON array in a single file.
type Store[T model.Record] struct {
	path string
}

func New[T model.Record](path string) *Store[T] {
	return &Store[T]{path: path}
}

func (s *Store[T]) Path() string { return s.path }

func (s *Store[T]) Load(_ context.Context) ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, errors.Wrapf(err, "read %s", s.path)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(model.ErrCorruptStore, "%s: %v", s.path, err)
	}
	if records == nil {
		records = []T{}
	}
	for i, r := range records {
		if isNil(r) {
			return nil, errors.Wrapf(model.ErrCorruptStore, "%s: record %d is null", s.path, i)
		}
	}
	return records, nil
}

// isNil reports a null array element, which decodes into a nil pointer record.
func isNil[T model.Record](r T) bool {
	v := reflect.ValueOf(r)
	return !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil())
}

// Save writes to a temporary file next to the target and renames it over the
// target, so readers see either the old or the new collection.
func (s *Store[T]) Save(_ context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return errors.Wrap(err, "encode records")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "sync %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), s.path), "replace %s", s.path)
}
