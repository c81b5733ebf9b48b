// Package takeaway ranks the sentences of a document by the corpus-wide
// frequency of the content words they contain and returns the strongest ones
// as key takeaways.
package takeaway

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultCount is the number of takeaways returned when the caller has no preference.
const DefaultCount = 5

// Takeaway is a ranked sentence.
type Takeaway struct {
	Text     string `json:"text" yaml:"text"`
	Score    int    `json:"score" yaml:"score"`
	Position int    `json:"position" yaml:"position"` // index of the sentence in the document, repeats included
}

// Extractor holds the language resources used for scoring. It keeps no state
// between calls and may be shared by concurrent callers.
type Extractor struct {
	seg  Segmenter
	stop StopWords
}

// New returns an English extractor backed by the punkt sentence model. A
// missing model is surfaced as an error wrapping ErrSegmenter.
func New() (*Extractor, error) {
	seg, err := NewPunktSegmenter()
	if err != nil {
		return nil, err
	}
	return NewExtractor(seg, EnglishStopWords()), nil
}

func NewExtractor(seg Segmenter, stop StopWords) *Extractor {
	if stop == nil {
		stop = StopWords{}
	}
	return &Extractor{seg: seg, stop: stop}
}

// Extract returns up to count sentences of text ordered by score, highest
// first. Sentences with equal scores keep their document order.
func (e *Extractor) Extract(text string, count int) []string {
	ranked := e.ExtractScored(text, count)
	out := make([]string, len(ranked))
	for i, t := range ranked {
		out[i] = t.Text
	}
	return out
}

// ExtractScored is Extract with the score and position of every sentence.
func (e *Extractor) ExtractScored(text string, count int) []Takeaway {
	if count <= 0 || strings.TrimSpace(text) == "" {
		return []Takeaway{}
	}

	freq := e.frequencies(text)

	ranked := make([]Takeaway, 0)
	seen := make(map[string]struct{})
	for i, s := range e.sentences(text) {
		// identical sentences are scored once, at their first position
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}

		score := 0
		for _, w := range words(strings.ToLower(s)) {
			score += freq[w]
		}
		ranked = append(ranked, Takeaway{Text: s, Score: score, Position: i})
	}

	slices.SortStableFunc(ranked, func(a, b Takeaway) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return ranked[:min(count, len(ranked))]
}

func (e *Extractor) sentences(text string) []string {
	ss := e.seg.Sentences(text)
	if len(ss) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return ss
}

func (e *Extractor) frequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, w := range words(strings.ToLower(text)) {
		if !isAlnum(w) || e.stop.Contains(w) {
			continue
		}
		freq[w]++
	}
	return freq
}
