// Package material resolves and reads the reference documents attached to courses.
package material

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/p-n-ai/pai-study/internal/course"
)

// Provider returns the ordered documents attached to a course.
type Provider struct {
	store course.Store
}

// NewProvider creates a materials provider backed by a course store.
func NewProvider(store course.Store) *Provider {
	return &Provider{store: store}
}

// GetCourseMaterials returns the course's documents in attachment order.
func (p *Provider) GetCourseMaterials(courseID string) ([]course.PDFFile, error) {
	c, err := p.store.FindByID(courseID)
	if err != nil {
		return nil, fmt.Errorf("get course materials: %w", err)
	}
	return append([]course.PDFFile(nil), c.Files...), nil
}

// Reader extracts plain text from course documents.
type Reader struct {
	pdfToText string
	maxChars  int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithPDFToText sets the pdftotext binary used for PDF extraction.
func WithPDFToText(bin string) ReaderOption {
	return func(r *Reader) {
		if bin != "" {
			r.pdfToText = bin
		}
	}
}

// WithMaxChars caps the combined text handed to the generator. Zero disables the cap.
func WithMaxChars(n int) ReaderOption {
	return func(r *Reader) {
		r.maxChars = n
	}
}

// NewReader creates a document reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{
		pdfToText: "pdftotext",
		maxChars:  60000,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadAll concatenates the text of every readable document, each preceded by
// a source header. Unsupported extensions are skipped; any read failure aborts.
func (r *Reader) ReadAll(ctx context.Context, files []course.PDFFile) (string, error) {
	var sb strings.Builder
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, ok, err := r.read(ctx, f.Path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filepath.Base(f.Path), err)
		}
		if !ok {
			slog.Warn("skipping unsupported material", "path", f.Path)
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("[Source: ")
		sb.WriteString(filepath.Base(f.Path))
		sb.WriteString("]\n")
		sb.WriteString(strings.TrimSpace(text))
	}

	out := sb.String()
	if r.maxChars > 0 && len(out) > r.maxChars {
		out = truncateUTF8(out, r.maxChars)
	}
	return out, nil
}

// read extracts text from .txt, .md and .pdf files and reports false for
// anything else.
func (r *Reader) read(ctx context.Context, path string) (string, bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", true, err
		}
		return string(data), true, nil
	case ".pdf":
		out, err := exec.CommandContext(ctx, r.pdfToText, "-layout", path, "-").Output()
		if err != nil {
			return "", true, fmt.Errorf("%s failed: %w", r.pdfToText, err)
		}
		return string(out), true, nil
	default:
		return "", false, nil
	}
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
