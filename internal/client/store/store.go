// Package store persists a single JSON document on local disk.
//
// Writes go through filex.WriteFileAtomic, so the target file is always
// either the previous document or the new one. A file that is not valid JSON
// is copied to <path>.backup and the default document is used instead. Valid
// JSON with ill-typed fields is salvaged by documents implementing Repairer;
// the original file is backed up the same way.
//
// A JSONStore serializes its own operations. Two processes sharing one data
// directory are not coordinated.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/filex"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
)

const (
	BackupSuffix = ".backup"
	filePerm     = 0o660
)

// Normalizer is implemented by documents that need fix-ups after decoding,
// e.g. replacing null sequences with empty ones.
type Normalizer interface {
	Normalize()
}

// Repairer is implemented by documents that can salvage a file that is valid
// JSON but does not decode strictly. Repair fills the receiver with what
// decodes and lists what it dropped. An error sends the file down the
// corrupt path.
type Repairer interface {
	Repair(data []byte) (dropped []string, err error)
}

// JSONStore reads and writes one document of type T at a fixed path.
type JSONStore[T any] struct {
	mu   sync.Mutex
	path string
	def  func() T
	log  logging.Logger
}

// NewJSONStore returns a store for path. def builds the document returned
// when the file is missing or corrupt.
func NewJSONStore[T any](path string, def func() T, log logging.Logger) *JSONStore[T] {
	return &JSONStore[T]{path: path, def: def, log: log.With("store", path)}
}

func (s *JSONStore[T]) Path() string { return s.path }

// Load returns the stored document or the default one. It never fails.
func (s *JSONStore[T]) Load(ctx context.Context) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save writes v and reports whether it reached disk. The previous file is
// left untouched on failure.
func (s *JSONStore[T]) Save(ctx context.Context, v T) bool {
	return s.SaveErr(ctx, v) == nil
}

// SaveErr is Save with the failure cause.
func (s *JSONStore[T]) SaveErr(ctx context.Context, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, v)
}

// Update loads the document, applies fn and saves the result, holding the
// store lock for the whole cycle. Nothing is written when fn fails.
func (s *JSONStore[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.load(ctx))
	if err != nil {
		var zero T
		return zero, err
	}
	if err := s.save(ctx, next); err != nil {
		var zero T
		return zero, err
	}
	return next, nil
}

func (s *JSONStore[T]) load(ctx context.Context) T {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error(ctx, "read failed, using defaults", "error", err)
		}
		return s.fresh()
	}

	v := s.def()
	err = json.Unmarshal(data, &v)
	if err == nil {
		normalize(&v)
		return v
	}

	if json.Valid(data) {
		if fixed, dropped, ok := s.repair(data); ok {
			s.log.Warn(ctx, "document has ill-typed fields, keeping the rest",
				"error", err, "dropped", dropped, "backup", s.path+BackupSuffix)
			s.backup(ctx)
			return fixed
		}
	}

	s.log.Error(ctx, "document is corrupt, using defaults",
		"error", fmt.Errorf("%w: %v", common.ErrCorrupt, err),
		"backup", s.path+BackupSuffix)
	s.backup(ctx)
	return s.fresh()
}

func (s *JSONStore[T]) repair(data []byte) (T, []string, bool) {
	v := s.def()
	r, ok := any(&v).(Repairer)
	if !ok {
		return v, nil, false
	}
	dropped, err := r.Repair(data)
	if err != nil {
		return v, nil, false
	}
	normalize(&v)
	return v, dropped, true
}

// backup keeps the unreadable file next to the original until the next save
// replaces it.
func (s *JSONStore[T]) backup(ctx context.Context) {
	if err := filex.CopyFile(s.path, s.path+BackupSuffix); err != nil {
		s.log.Error(ctx, "backup failed", "error", err)
	}
}

func (s *JSONStore[T]) save(ctx context.Context, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Error(ctx, "encode failed", "error", err)
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := filex.WriteFileAtomic(s.path, append(data, '\n'), filePerm); err != nil {
		s.log.Error(ctx, "save failed", "error", err)
		return err
	}
	return nil
}

func (s *JSONStore[T]) fresh() T {
	v := s.def()
	normalize(&v)
	return v
}

func normalize[T any](v *T) {
	if n, ok := any(v).(Normalizer); ok {
		n.Normalize()
	}
}
