// Package saver writes a domain.Table to disk.
package saver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/egapool/klinedl/domain"
)

type Saver interface {
	Extension() string
	Encode(w io.Writer, t domain.Table) error
}

// New returns the saver for format (csv, parquet, json), or nil.
func New(format string) Saver {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// ForPath picks the saver from the file extension. Unknown extensions get CSV.
func ForPath(path string) Saver {
	if s := New(filepath.Ext(path)); s != nil {
		return s
	}
	return CSVSaver{}
}

// Save writes t to path with the saver chosen by ForPath.
func Save(path string, t domain.Table) error {
	return WriteFile(path, ForPath(path), t)
}

// WriteFile creates missing parent directories and replaces path atomically:
// the table is encoded into a temp file next to it and renamed on success.
func WriteFile(path string, s Saver, t domain.Table) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := s.Encode(tmp, t); err != nil {
		return fmt.Errorf("encode %s: %w", s.Extension(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
