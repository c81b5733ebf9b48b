package paper_test

import (
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/msherr/research-assistant/internal/llm"
	"github.com/msherr/research-assistant/internal/llm/llmtest"
	"github.com/msherr/research-assistant/internal/paper"
	"github.com/msherr/research-assistant/internal/pdfx"
	"github.com/msherr/research-assistant/internal/summarize"
	"github.com/msherr/research-assistant/internal/takeaway"
)

const body = "Graph Nets\nA. Lovelace\n\nCats are mammals. Cats chase mice. Dogs bark loudly."

func docOf(text string) paper.ExtractFunc {
	return func(_ context.Context, _ io.ReaderAt, _ int64) (*pdfx.Doc, error) {
		return &pdfx.Doc{Title: "Graph Nets", Authors: "A.  Lovelace", Body: text, Pages: 1}, nil
	}
}

var _ = Describe("Service", func() {
	var (
		ctx context.Context
		ex  *takeaway.Extractor
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		ex, err = takeaway.New()
		Expect(err).NotTo(HaveOccurred())
	})

	source := func(n int) paper.Source {
		return paper.Source{Filename: "paper.pdf", Data: strings.NewReader(""), Takeaways: n}
	}

	It("summarizes and ranks the extracted text", func() {
		fake := &llmtest.Fake{Reply: func(llm.Request) string { return "A paper about cats." }}
		svc := paper.NewService(summarize.NewLLM(fake, summarize.Options{}), ex, 5).
			WithExtractFunc(docOf(body))

		res, err := svc.Process(ctx, source(2))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Title).To(Equal("Graph Nets"))
		Expect(res.Authors).To(Equal("A. Lovelace"))
		Expect(res.Summary).To(Equal("A paper about cats."))
		Expect(res.Pages).To(Equal(1))
		Expect(res.Text).NotTo(ContainSubstring("\n"))
		Expect(res.Words).To(BeNumerically(">", 9))
		Expect(res.Takeaways).To(HaveLen(2))
		Expect(res.Takeaways).To(ContainElement(HaveField("Text", "Cats chase mice.")))
	})

	It("falls back to extractive summaries and the default count", func() {
		svc := paper.NewService(summarize.NewFallback(ex, 1), ex, 1).
			WithExtractFunc(docOf("Cats are mammals. Cats chase mice. Dogs bark loudly."))

		res, err := svc.Process(ctx, source(0))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Summary).To(Equal("Cats chase mice."))
		Expect(res.Takeaways).To(HaveLen(1))
	})

	It("fails on PDFs without text", func() {
		svc := paper.NewService(summarize.NewFallback(ex, 1), ex, 5).
			WithExtractFunc(docOf(" \n\t "))

		_, err := svc.Process(ctx, source(0))
		Expect(err).To(MatchError(pdfx.ErrNoText))
		Expect(err).To(MatchError(paper.ErrUnreadable))
	})

	It("passes extraction errors through", func() {
		svc := paper.NewService(summarize.NewFallback(ex, 1), ex, 5).
			WithExtractFunc(func(context.Context, io.ReaderAt, int64) (*pdfx.Doc, error) {
				return nil, pdfx.ErrTooLarge
			})

		_, err := svc.Process(ctx, source(0))
		Expect(err).To(MatchError(pdfx.ErrTooLarge))
	})

	It("refuses sources above the size cap before reading them", func() {
		called := false
		svc := paper.NewService(summarize.NewFallback(ex, 1), ex, 5).
			WithExtractFunc(func(context.Context, io.ReaderAt, int64) (*pdfx.Doc, error) {
				called = true
				return nil, errors.New("unreachable")
			})

		_, err := svc.Process(ctx, paper.Source{Filename: "big.pdf", Data: strings.NewReader(""), Size: pdfx.MaxPDFSize + 1})
		Expect(err).To(MatchError(pdfx.ErrTooLarge))
		Expect(called).To(BeFalse())
	})

	It("reads any size when the cap is lifted", func() {
		svc := paper.NewService(summarize.NewFallback(ex, 1), ex, 5).
			WithExtractFunc(docOf(body)).
			WithMaxSize(0)

		res, err := svc.Process(ctx, paper.Source{Filename: "big.pdf", Data: strings.NewReader(""), Size: pdfx.MaxPDFSize * 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Takeaways).NotTo(BeEmpty())
	})

	It("passes summarizer errors through", func() {
		boom := errors.New("model down")
		svc := paper.NewService(summarize.NewLLM(&llmtest.Fake{Err: boom}, summarize.Options{}), ex, 5).
			WithExtractFunc(docOf(body))

		_, err := svc.Process(ctx, source(0))
		Expect(err).To(MatchError(boom))
		Expect(err).To(MatchError(paper.ErrSummary))
	})

	It("rejects garbage with the real PDF reader", func() {
		svc := paper.NewService(summarize.NewFallback(ex, 1), ex, 5)
		_, err := svc.Process(ctx, paper.Source{Filename: "x.pdf", Data: strings.NewReader("not a pdf"), Size: 9})
		Expect(err).To(MatchError(paper.ErrUnreadable))
	})
})
