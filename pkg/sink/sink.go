// Package sink writes exported records to an append-only file, either as
// plain newline-delimited JSON or wrapped in a zstd stream.
package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Sink is an append-only destination for exported records. Files are never
// truncated, so resuming an interrupted export appends to the existing data.
type Sink struct {
	path     string
	file     *os.File
	enc      *zstd.Encoder
	out      io.Writer
	records  int64
	compress bool
}

// Open opens the sink at path, creating parent directories as needed. The
// file extension is forced to .jsonl, or .zstd when compression is enabled.
// Appending to an existing .zstd file starts a new frame, which decoders
// concatenate transparently.
func Open(path string, compress bool) (*Sink, error) {
	if compress {
		path = withSuffix(path, ".zstd")
	} else {
		path = withSuffix(path, ".jsonl")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	s := &Sink{
		path:     path,
		file:     file,
		out:      file,
		compress: compress,
	}

	if compress {
		enc, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		s.enc = enc
		s.out = enc
	}

	return s, nil
}

// WriteBatch appends every record as one compact JSON value per line.
func (s *Sink) WriteBatch(items []json.RawMessage) error {
	var buf bytes.Buffer
	for _, item := range items {
		line := bytes.Buffer{}
		if err := json.Compact(&line, item); err != nil {
			return fmt.Errorf("failed to serialize record: %w", err)
		}
		buf.Write(line.Bytes())
		buf.WriteByte('\n')
	}

	if _, err := s.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}

	s.records += int64(len(items))
	return nil
}

// Records returns the number of records written through this sink.
func (s *Sink) Records() int64 {
	return s.records
}

// Path returns the effective output path, including the forced extension.
func (s *Sink) Path() string {
	return s.path
}

// Close flushes the compression stream, if any, and closes the file.
func (s *Sink) Close() error {
	if s.enc != nil {
		if err := s.enc.Close(); err != nil {
			s.file.Close()
			return fmt.Errorf("failed to flush zstd stream: %w", err)
		}
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// withSuffix replaces the path's extension with the given one.
func withSuffix(path, suffix string) string {
	if ext := filepath.Ext(path); ext != "" && !strings.Contains(ext, string(filepath.Separator)) {
		path = strings.TrimSuffix(path, ext)
	}
	return path + suffix
}
