package takeaway

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// ErrSegmenter is returned when the sentence segmentation model cannot be loaded.
var ErrSegmenter = errors.New("sentence segmenter unavailable")

// Segmenter splits a document into ordered sentences.
type Segmenter interface {
	Sentences(text string) []string
}

type punktSegmenter struct {
	mu  sync.Mutex
	tok *sentences.DefaultSentenceTokenizer
}

// NewPunktSegmenter loads the English punkt model bundled with
// github.com/neurosnap/sentences.
func NewPunktSegmenter() (Segmenter, error) {
	return newPunktSegmenter(func() (*sentences.DefaultSentenceTokenizer, error) {
		return english.NewSentenceTokenizer(nil)
	})
}

func newPunktSegmenter(load func() (*sentences.DefaultSentenceTokenizer, error)) (Segmenter, error) {
	tok, err := load()
	if err != nil {
		return nil, fmt.Errorf("%w: load english punkt model: %v", ErrSegmenter, err)
	}
	return &punktSegmenter{tok: tok}, nil
}

func (p *punktSegmenter) Sentences(text string) []string {
	// the tokenizer is shared by every extraction; it is not documented as
	// safe for concurrent use.
	p.mu.Lock()
	found := p.tok.Tokenize(text)
	p.mu.Unlock()

	out := make([]string, 0, len(found))
	for _, s := range found {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// clitics are split off the end of a word, so "model's" counts as "model".
// Both the ASCII and the typographic apostrophe occur in extracted text.
var clitics = []string{
	"n't", "'s", "'re", "'ve", "'ll", "'d", "'m",
	"n’t", "’s", "’re", "’ve", "’ll", "’d", "’m",
}

// words splits text on whitespace and peels punctuation off both ends of each
// field, so "mice." yields "mice" and "(cats)" yields "cats". A trailing
// clitic becomes its own token: "model's" yields "model" and "'s". Other inner
// punctuation is kept: "state-of-the-art" stays one token.
func words(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, isEdgePunct)
		if w == "" {
			continue
		}
		if base, clitic := splitClitic(w); clitic != "" {
			out = append(out, base, clitic)
			continue
		}
		out = append(out, w)
	}
	return out
}

func splitClitic(w string) (base, clitic string) {
	for _, c := range clitics {
		if len(w) > len(c) && strings.HasSuffix(w, c) {
			return w[:len(w)-len(c)], c
		}
	}
	return w, ""
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isAlnum(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
