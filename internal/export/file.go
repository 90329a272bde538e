package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
)

// WriteFile writes the batch report to path. The format follows the
// extension: ".xlsx" writes the full workbook, ".csv" the summary, or the
// reconciliation when ar is non-nil.
func (s *Service) WriteFile(ctx context.Context, path string, br pipeline.BatchReport, ar *pipeline.ApplyReport) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		b, err := s.BatchXLSX(ctx, br, ar)
		if err != nil {
			return err
		}
		data = b
	case ".csv":
		var buf bytes.Buffer
		var err error
		if ar != nil {
			err = WriteReconciliationCSV(&buf, ar.Reconciliation)
		} else {
			err = WriteSummaryCSV(&buf, br.Summary)
		}
		if err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		return fmt.Errorf("export %q: unsupported output format", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("export.file.ok", "path", path, "bytes", len(data))
	return nil
}
