package emit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// IndexFileName is the aggregate index written by WriteIndex.
const IndexFileName = "chunks_index.json"

// FileEmitter writes one JSONL file per document under Dir.
type FileEmitter struct {
	Dir string
}

func NewFileEmitter(dir string) *FileEmitter {
	return &FileEmitter{Dir: dir}
}

// OutputPath returns where the records of filePath are written.
func (f *FileEmitter) OutputPath(filePath string) string {
	return filepath.Join(f.Dir, filepath.FromSlash(filePath)+".jsonl")
}

// Emit writes records as JSON lines to a temp file and renames it into place.
func (f *FileEmitter) Emit(ctx context.Context, filePath string, records []doctree.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := f.OutputPath(filePath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".chunk-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}

// Remove deletes the records file of filePath. A missing file is not an error.
func (f *FileEmitter) Remove(filePath string) error {
	err := os.Remove(f.OutputPath(filePath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteIndex writes the run summary to Dir/chunks_index.json.
func (f *FileEmitter) WriteIndex(idx Index) (string, error) {
	if idx.Files == nil {
		idx.Files = []doctree.IndexEntry{}
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal index: %w", err)
	}
	p := filepath.Join(f.Dir, IndexFileName)
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write index: %w", err)
	}
	return p, nil
}
