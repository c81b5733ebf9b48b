// Package paper turns an uploaded PDF into the summary and takeaways shown to
// the user.
package paper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/msherr/research-assistant/internal/logger"
	"github.com/msherr/research-assistant/internal/pdfx"
	"github.com/msherr/research-assistant/internal/summarize"
	"github.com/msherr/research-assistant/internal/takeaway"
	"github.com/msherr/research-assistant/internal/textnorm"
)

var (
	// ErrUnreadable wraps every failure to get text out of the upload.
	ErrUnreadable = errors.New("cannot read PDF")

	// ErrSummary wraps summarizer failures.
	ErrSummary = errors.New("summary failed")
)

// Source is a PDF to process.
type Source struct {
	Filename  string
	Data      io.ReaderAt
	Size      int64
	Takeaways int // 0 uses the service default
}

type Result struct {
	Title     string              `json:"title"`
	Authors   string              `json:"authors"`
	Sections  []string            `json:"sections"`
	Summary   string              `json:"summary"`
	Takeaways []takeaway.Takeaway `json:"takeaways"`
	Text      string              `json:"text"`
	Pages     int                 `json:"pages"`
	Words     int                 `json:"words"`
}

// ExtractFunc reads a PDF into a document; pdfx.ExtractReader in production.
type ExtractFunc func(ctx context.Context, r io.ReaderAt, size int64) (*pdfx.Doc, error)

type Service struct {
	extract    ExtractFunc
	summarizer summarize.Summarizer
	extractor  *takeaway.Extractor
	count      int
	maxSize    int64
}

func NewService(s summarize.Summarizer, ex *takeaway.Extractor, defaultTakeaways int) *Service {
	if defaultTakeaways <= 0 {
		defaultTakeaways = takeaway.DefaultCount
	}
	return &Service{
		extract:    pdfx.ExtractReader,
		summarizer: s,
		extractor:  ex,
		count:      defaultTakeaways,
		maxSize:    pdfx.MaxPDFSize,
	}
}

// WithMaxSize changes the upload cap; 0 accepts any size.
func (s *Service) WithMaxSize(n int64) *Service {
	s.maxSize = n
	return s
}

// WithExtractFunc swaps the PDF reader, e.g. for documents built in tests.
func (s *Service) WithExtractFunc(fn ExtractFunc) *Service {
	s.extract = fn
	return s
}

// Process extracts the text of src, summarizes it and ranks its sentences.
// A PDF without a text layer fails with pdfx.ErrNoText.
func (s *Service) Process(ctx context.Context, src Source) (*Result, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "assistant.paper"})
	start := time.Now()

	if s.maxSize > 0 && src.Size > s.maxSize {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreadable, src.Filename, pdfx.ErrTooLarge)
	}

	doc, err := s.extract(ctx, src.Data, src.Size)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreadable, src.Filename, err)
	}

	text := textnorm.Normalize(doc.Body)
	if text == "" {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreadable, src.Filename, pdfx.ErrNoText)
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrSummary, src.Filename, err)
	}

	count := src.Takeaways
	if count <= 0 {
		count = s.count
	}
	takeaways := s.extractor.ExtractScored(text, count)

	res := &Result{
		Title:     textnorm.CollapseSpace(doc.Title),
		Authors:   textnorm.CollapseSpace(doc.Authors),
		Sections:  doc.Headings,
		Summary:   summary,
		Takeaways: takeaways,
		Text:      text,
		Pages:     doc.Pages,
		Words:     textnorm.CountWords(text),
	}

	slog.InfoContext(ctx, "paper processed",
		"file", src.Filename,
		"pages", res.Pages,
		"words", res.Words,
		"takeaways", len(res.Takeaways),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}
