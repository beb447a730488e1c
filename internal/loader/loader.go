// Package loader extracts plain text from uploaded lesson files.
//
// PDF extraction shells out to pdftotext (poppler-utils); everything
// else is read as UTF-8 text. Results come back as pages so callers
// can keep positional context if they want it.
package loader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Page is one page of extracted text. Plain-text files produce a
// single page numbered 1.
type Page struct {
	Number int
	Text   string
}

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Loader reads lesson files from disk and extracts their text.
type Loader struct {
	pdfBin string
	runner CommandRunner
}

// Option configures the loader.
type Option func(*Loader)

// WithRunner replaces the command runner, mainly for tests.
func WithRunner(r CommandRunner) Option {
	return func(l *Loader) {
		l.runner = r
	}
}

// New creates a loader. pdfBin is the pdftotext binary to invoke;
// empty means "pdftotext" from PATH.
func New(pdfBin string, opts ...Option) *Loader {
	if pdfBin == "" {
		pdfBin = "pdftotext"
	}
	l := &Loader{
		pdfBin: pdfBin,
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load extracts the text of the file at path, dispatching on extension.
func (l *Loader) Load(ctx context.Context, path string) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return l.loadPDF(ctx, path)
	default:
		return l.loadText(path)
	}
}

// Text is a convenience wrapper joining all pages into one string.
func (l *Loader) Text(ctx context.Context, path string) (string, error) {
	pages, err := l.Load(ctx, path)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n"), nil
}

func (l *Loader) loadPDF(ctx context.Context, path string) ([]Page, error) {
	// "-" sends the extracted text to stdout; pages arrive separated
	// by form feeds.
	out, err := l.runner.Run(ctx, l.pdfBin, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("run %s (is poppler-utils installed?): %w", l.pdfBin, err)
	}

	var pages []Page
	for _, raw := range strings.Split(string(out), "\f") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: len(pages) + 1, Text: text})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", filepath.Base(path))
	}
	return pages, nil
}

func (l *Loader) loadText(path string) ([]Page, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("no text extracted from %s", filepath.Base(path))
	}
	return []Page{{Number: 1, Text: text}}, nil
}
