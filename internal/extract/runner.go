package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external command and returns its output streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// layoutText is the result of one converter run.
type layoutText struct {
	Text     string
	Pages    int
	Warnings []string
	Elapsed  time.Duration
}

// layoutConverter renders a PDF to column-preserving text with pdftotext
// (or a compatible binary) reading a private temporary copy.
type layoutConverter struct {
	bin     string
	timeout time.Duration
	runner  Runner
	logger  *slog.Logger
}

func (c layoutConverter) args(in string) []string {
	// pdftotext -layout -enc UTF-8 -eol unix <in> -
	return []string{"-layout", "-enc", "UTF-8", "-eol", "unix", in, "-"}
}

func (c layoutConverter) Convert(ctx context.Context, name string, data []byte) (layoutText, error) {
	var res layoutText
	in, cleanup, err := c.stage(data)
	if err != nil {
		return res, fmt.Errorf("stage pdf: %w", err)
	}
	defer cleanup()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	out, stderr, err := c.runner.Run(ctx, c.bin, c.args(in)...)
	res.Elapsed = time.Since(start)
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		res.Warnings = append(res.Warnings, msg)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", c.timeout, err)
		}
		c.logger.Error("pdf.convert.failed", "document", name, "converter", c.bin,
			"elapsed_ms", res.Elapsed.Milliseconds(), "error", err)
		return res, fmt.Errorf("%s: %w", c.bin, err)
	}

	res.Text = string(out)
	// Pages are separated by form feeds.
	res.Pages = 1 + strings.Count(strings.TrimRight(res.Text, "\f\n"), "\f")
	c.logger.Debug("pdf.convert.ok", "document", name, "pages", res.Pages,
		"elapsed_ms", res.Elapsed.Milliseconds(), "bytes", len(out))
	return res, nil
}

func (c layoutConverter) stage(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "ribbon-*.pdf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("failed to remove staged pdf", "path", f.Name(), "error", err)
		}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
