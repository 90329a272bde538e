package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
)

type fakeRunner struct {
	out    string
	stderr string
	err    error
	wait   bool
	calls  [][]string
	staged []byte
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	// The staged input is the argument before the trailing "-".
	if len(args) >= 2 {
		f.staged, _ = os.ReadFile(args[len(args)-2])
	}
	if f.wait {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	return []byte(f.out), []byte(f.stderr), nil
}

func TestLinearizer_Text(t *testing.T) {
	t.Run("Should emit one fragment per non-empty line", func(t *testing.T) {
		l := NewLinearizer(Config{}, nil)
		doc, err := l.Parse(context.Background(), "invoice.txt", []byte("Red Clip on Medal Ribbon\n\n  3 ks  \n"))
		require.NoError(t, err)
		assert.Equal(t, constants.TXT, doc.Format)
		assert.Equal(t, MethodPlainText, doc.Method)
		assert.Equal(t, []string{"Red Clip on Medal Ribbon", "3 ks"}, doc.Stream.Texts())
		assert.Equal(t, ContentHash([]byte("Red Clip on Medal Ribbon\n\n  3 ks  \n")), doc.Hash)
		assert.Len(t, doc.Hash, 64)
	})

	t.Run("Should read documents from disk", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "orders.TXT")
		require.NoError(t, os.WriteFile(path, []byte("Dispatch to:\nX"), 0o600))
		doc, err := NewLinearizer(Config{}, nil).Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "orders.TXT", doc.Name)
		assert.Equal(t, 2, doc.Stream.Len())
	})
}

func TestLinearizer_JSON(t *testing.T) {
	l := NewLinearizer(Config{}, nil)

	t.Run("Should accept a valid fragment document", func(t *testing.T) {
		doc, err := l.Parse(context.Background(), "batch.json", []byte(`{"name":"amazon-may","fragments":["Dispatch to:"," ","2"]}`))
		require.NoError(t, err)
		assert.Equal(t, "amazon-may", doc.Name)
		assert.Equal(t, []string{"Dispatch to:", "2"}, doc.Stream.Texts())
	})

	t.Run("Should fall back to the file name", func(t *testing.T) {
		doc, err := l.Parse(context.Background(), "batch.json", []byte(`{"fragments":[]}`))
		require.NoError(t, err)
		assert.Equal(t, "batch.json", doc.Name)
		assert.True(t, doc.Stream.Empty())
	})

	t.Run("Should reject documents that do not match the schema", func(t *testing.T) {
		for _, body := range []string{
			`{"name":"x"}`,
			`{"fragments":[1,2]}`,
			`{"fragments":[],"extra":true}`,
			`not json`,
		} {
			_, err := l.Parse(context.Background(), "bad.json", []byte(body))
			assert.Error(t, err, body)
		}
	})
}

func TestLinearizer_Unsupported(t *testing.T) {
	t.Run("Should fail only the offending document", func(t *testing.T) {
		_, err := NewLinearizer(Config{}, nil).Parse(context.Background(), "photo.heic", []byte("x"))
		assert.True(t, errors.Is(err, common.ErrUnsupported))
		_, err = NewLinearizer(Config{}, nil).Load(context.Background(), "/nowhere/photo.png")
		assert.True(t, errors.Is(err, common.ErrUnsupported))
	})
}

func TestLinearizer_PDFFallback(t *testing.T) {
	t.Run("Should shell out to the converter when the text layer is unreadable", func(t *testing.T) {
		r := &fakeRunner{out: "Dispatch to:   Jane\n\fQuantity  Product Details\n"}
		l := NewLinearizer(Config{PDFConverter: "pdftotext"}, nil).WithRunner(r)
		doc, err := l.Parse(context.Background(), "orders.pdf", []byte("not a pdf"))
		require.NoError(t, err)
		assert.Equal(t, MethodPDFLayout, doc.Method)
		assert.Equal(t, 2, doc.Pages)
		assert.Equal(t, []string{"Dispatch to:", "Jane", "Quantity  Product Details"}, doc.Stream.Texts())
		require.Len(t, r.calls, 1)
		assert.Equal(t, "pdftotext", r.calls[0][0])
		assert.Contains(t, r.calls[0], "-layout")
		assert.NotEmpty(t, doc.Warnings)
	})

	t.Run("Should report converter failures", func(t *testing.T) {
		r := &fakeRunner{err: errors.New("exit status 1")}
		l := NewLinearizer(Config{}, nil).WithRunner(r)
		_, err := l.Parse(context.Background(), "orders.pdf", []byte("not a pdf"))
		assert.Error(t, err)
	})

	t.Run("Should stage a private copy and remove it afterwards", func(t *testing.T) {
		r := &fakeRunner{out: "Gold Clip on Medal Ribbon\n", stderr: "Syntax Warning: bad xref\n"}
		l := NewLinearizer(Config{}, nil).WithRunner(r)
		doc, err := l.Parse(context.Background(), "invoice.pdf", []byte("not a pdf"))
		require.NoError(t, err)
		assert.Equal(t, []byte("not a pdf"), r.staged)
		require.Len(t, r.calls, 1)
		staged := r.calls[0][len(r.calls[0])-2]
		_, statErr := os.Stat(staged)
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
		assert.Contains(t, doc.Warnings, "Syntax Warning: bad xref")
		assert.Equal(t, 1, doc.Pages)
	})

	t.Run("Should bound the converter by its timeout", func(t *testing.T) {
		r := &fakeRunner{wait: true}
		l := NewLinearizer(Config{ConverterTimeout: 20 * time.Millisecond}, nil).WithRunner(r)
		_, err := l.Parse(context.Background(), "orders.pdf", []byte("not a pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("Should not shell out when the fallback is disabled", func(t *testing.T) {
		r := &fakeRunner{}
		l := NewLinearizer(Config{DisableFallback: true}, nil).WithRunner(r)
		_, err := l.Parse(context.Background(), "orders.pdf", []byte("not a pdf"))
		assert.Error(t, err)
		assert.Empty(t, r.calls)
	})
}

func TestSplitRow(t *testing.T) {
	t.Run("Should join close glyphs and split wide gaps", func(t *testing.T) {
		glyph := func(s string, x float64) pdf.Text {
			return pdf.Text{S: s, X: x, W: 5, FontSize: 10}
		}
		row := []pdf.Text{
			glyph("2", 0),
			glyph("R", 40), glyph("e", 45), glyph("d", 50),
			glyph("x", 58),
			glyph("£", 120), glyph("3", 125),
		}
		assert.Equal(t, []string{"2", "Red x", "£3"}, splitRow(row, defaultCellGap))
	})
}
