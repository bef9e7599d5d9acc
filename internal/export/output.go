package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"spat/internal/errors"
)

// OpenOutput opens the export destination. "-" or an empty path selects
// standard output; a path ending in ".gz" transparently gzip-compresses.
// The caller must close the returned writer to flush compressed output.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.New(errors.ExportFailed, "failed to create export file", err)
	}
	if strings.HasSuffix(path, ".gz") {
		return &gzipFile{gz: gzip.NewWriter(f), file: f}, nil
	}
	return f, nil
}

// DetectFormat picks the export format from an explicit override or, when
// none is given, from the output file extension. Standard output and unknown
// extensions default to JSON.
func DetectFormat(path, override string) (Format, error) {
	if override != "" {
		return ParseFormat(override)
	}
	name := strings.TrimSuffix(path, ".gz")
	if filepath.Ext(name) == ".csv" {
		return FormatCSV, nil
	}
	return FormatJSON, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// gzipFile closes the gzip stream before the underlying file so the trailer
// is written.
type gzipFile struct {
	gz   *gzip.Writer
	file *os.File
}

func (g *gzipFile) Write(p []byte) (int, error) {
	return g.gz.Write(p)
}

func (g *gzipFile) Close() error {
	if err := g.gz.Close(); err != nil {
		_ = g.file.Close()
		return err
	}
	return g.file.Close()
}
