package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

// Source turns a document into its linearized fragment stream.
type Source interface {
	Load(ctx context.Context, path string) (Document, error)
	Parse(ctx context.Context, name string, data []byte) (Document, error)
}

// Methods recorded on a Document.
const (
	MethodPDFText   = "pdf-text"
	MethodPDFLayout = "pdftotext"
	MethodPlainText = "plain-text"
	MethodJSON      = "json"
)

// Document is one linearized source document.
type Document struct {
	Name     string
	Format   string // constants.PDF | constants.TXT | constants.JSON
	Method   string
	Pages    int
	Hash     string // sha256 of the raw bytes, hex encoded
	Size     int
	Stream   fragment.Stream
	Duration time.Duration
	Warnings []string
}
