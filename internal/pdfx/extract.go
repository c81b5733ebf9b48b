package pdfx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// MaxPDFSize is the default cap on uploaded PDFs.
const MaxPDFSize = 20 * 1024 * 1024

var (
	ErrNoText   = errors.New("no extractable text found in the PDF")
	ErrTooLarge = fmt.Errorf("PDF larger than %d bytes", MaxPDFSize)
)

type Doc struct {
	Title    string
	Authors  string
	Abstract string
	Headings []string
	Body     string
	Pages    int
}

func Extract(ctx context.Context, path string) (*Doc, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return extract(ctx, r)
}

// ExtractReader reads a PDF held in memory or in a temp file, e.g. an upload.
func ExtractReader(ctx context.Context, ra io.ReaderAt, size int64) (*Doc, error) {
	r, err := newReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return extract(ctx, r)
}

func newReader(ra io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdf.NewReader(ra, size)
}

func extract(ctx context.Context, r *pdf.Reader) (doc *Doc, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("read pdf: %v", p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	raw := buf.String()
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoText
	}

	// naive heuristics for academic PDFs
	title, authors, abstract := sniffFrontMatter(raw)
	headings := sniffHeadings(raw)

	return &Doc{
		Title:    title,
		Authors:  authors,
		Abstract: abstract,
		Headings: headings,
		Body:     raw,
		Pages:    r.NumPage(),
	}, nil
}

func sniffFrontMatter(text string) (title, authors, abstract string) {
	lines := strings.Split(text, "\n")
	trimmed := make([]string, 0, len(lines))
	for _, l := range lines {
		l2 := strings.TrimSpace(l)
		if l2 != "" {
			trimmed = append(trimmed, l2)
		}
	}
	if len(trimmed) > 0 {
		title = trimmed[0]
	}
	if len(trimmed) > 1 {
		authors = trimmed[1]
	}
	abstract = findAbstract(text)
	return
}

func findAbstract(text string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "abstract")
	if idx < 0 {
		return ""
	}
	// ~400 words after "abstract"
	words := strings.Fields(text[idx:])
	if len(words) > 400 {
		words = words[:400]
	}
	return strings.Join(words, " ")
}

var knownHeadings = []string{
	"introduction", "background", "related work", "method", "methods", "approach",
	"evaluation", "results", "discussion", "limitations", "conclusion", "future work",
}

func sniffHeadings(text string) []string {
	lower := strings.ToLower(text)
	var hs []string
	for _, h := range knownHeadings {
		if strings.Contains(lower, h) {
			hs = append(hs, h)
		}
	}
	return hs
}

// SaveDebug dumps the detected front matter, handy when tuning the heuristics.
func SaveDebug(path string, d *Doc) error {
	out := fmt.Sprintf("Title: %s\nAuthors: %s\nPages: %d\nAbstract: %s\nHeadings: %v\n",
		d.Title, d.Authors, d.Pages, d.Abstract, d.Headings)
	return os.WriteFile(path, []byte(out), 0644)
}
