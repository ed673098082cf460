package data

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
	"github.com/xyproto/unzip"
)

// ExtractArchive unpacks a bar-data archive into destDir so the series
// loader can pick the files up. Supported formats by extension: .zip, .xz,
// .lzma, .gz. Single-file compressions are written under their stem name
// (prices.csv.xz -> prices.csv).
func ExtractArchive(src, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}

	switch strings.ToLower(filepath.Ext(src)) {
	case ".zip":
		if err := unzip.Extract(src, destDir); err != nil {
			return fmt.Errorf("extract %s: %w", src, err)
		}
		return nil
	case ".xz":
		return extractStream(src, destDir, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		})
	case ".lzma":
		return extractStream(src, destDir, func(r io.Reader) (io.Reader, error) {
			return lzma.NewReader(r)
		})
	case ".gz":
		return extractStream(src, destDir, func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	default:
		return fmt.Errorf("extract %s: unsupported archive format", src)
	}
}

func extractStream(src, destDir string, wrap func(io.Reader) (io.Reader, error)) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}
	defer f.Close()

	r, err := wrap(f)
	if err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}

	base := filepath.Base(src)
	dest := filepath.Join(destDir, strings.TrimSuffix(base, filepath.Ext(base)))
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("extract %s: %w", src, err)
	}
	return nil
}
