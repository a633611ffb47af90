package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultExtension is appended to export paths that have none.
const DefaultExtension = ".txt"

// Export writes each line followed by a newline.
func Export(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	for _, line := range r {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

// ExportFile writes the report to path and returns the path actually used.
func ExportFile(path string, r Report) (string, error) {
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	if err := Export(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	return path, nil
}
