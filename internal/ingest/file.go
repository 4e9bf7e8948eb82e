package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/runlog/internal/model"
)

// ParseFile reads one activity file and parses it by extension.
// Only I/O failures are returned as errors; data problems land in the result.
func ParseFile(path string) (model.ParseResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		file, err := os.Open(path)
		if err != nil {
			return model.ParseResult{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only input.
				_ = cerr
			}
		}()
		return ParseXLSX(file)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ParseResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseCSV(string(data)), nil
}
