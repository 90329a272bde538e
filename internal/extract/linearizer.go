package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

type Config struct {
	PDFConverter     string        // binary name or absolute path; if empty -> "pdftotext"
	ConverterTimeout time.Duration // 0 = no limit
	CellGap          float64       // cell separation in font sizes; default 1.5
	DisableFallback  bool          // never shell out when the text layer is unusable
}

// Linearizer is the Source for PDF, plain text and JSON fragment documents.
type Linearizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewLinearizer(cfg Config, logger *slog.Logger) *Linearizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFConverter == "" {
		cfg.PDFConverter = "pdftotext"
	}
	if cfg.CellGap <= 0 {
		cfg.CellGap = defaultCellGap
	}
	return &Linearizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner replaces the command runner used for the PDF fallback.
func (l *Linearizer) WithRunner(r Runner) *Linearizer {
	l.runner = r
	return l
}

// Load reads path and linearizes it according to its extension.
func (l *Linearizer) Load(ctx context.Context, path string) (Document, error) {
	if constants.MapExtToFormat(filepath.Ext(path)) == "" {
		return Document{Name: filepath.Base(path)}, fmt.Errorf("%w: %q", common.ErrUnsupported, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error("failed to read document", "path", path, "error", err)
		return Document{Name: filepath.Base(path)}, fmt.Errorf("read document: %w", err)
	}
	return l.Parse(ctx, filepath.Base(path), data)
}

// Parse linearizes data. The format is chosen from the extension of name.
func (l *Linearizer) Parse(ctx context.Context, name string, data []byte) (Document, error) {
	start := time.Now()
	format := constants.MapExtToFormat(filepath.Ext(name))
	l.logger.Debug("linearizing document", "document", name, "format", format, "bytes", len(data))

	var (
		doc Document
		err error
	)
	switch format {
	case constants.PDF:
		doc, err = l.linearizePDF(ctx, name, data)
	case constants.TXT:
		doc = Document{Name: name, Method: MethodPlainText, Pages: 1, Stream: fragment.FromText(name, string(data))}
	case constants.JSON:
		doc = Document{Name: name, Method: MethodJSON, Pages: 1}
		doc.Stream, err = parseFragmentDocument(name, data)
		if err == nil {
			doc.Name = doc.Stream.Name()
		}
	default:
		l.logger.Error("unsupported document extension", "document", name)
		return Document{Name: name}, fmt.Errorf("%w: %q", common.ErrUnsupported, filepath.Ext(name))
	}
	doc.Format = format
	doc.Hash = ContentHash(data)
	doc.Size = len(data)
	doc.Duration = time.Since(start)
	if err != nil {
		l.logger.Error("failed to linearize document", "document", name, "format", format, "error", err)
		return doc, err
	}
	l.logger.Debug("document linearized",
		"document", doc.Name,
		"method", doc.Method,
		"pages", doc.Pages,
		"fragments", doc.Stream.Len(),
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

// ContentHash is the hex sha256 of a document's raw bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
