package takeaway

import (
	_ "embed"
	"strings"
)

//go:embed stopwords_english.txt
var englishStopwordList string

// StopWords is a read-only set of function words excluded from scoring.
type StopWords map[string]struct{}

// EnglishStopWords returns the English stopword set (the NLTK corpus list).
func EnglishStopWords() StopWords {
	return ParseStopWords(englishStopwordList)
}

// ParseStopWords builds a set from a newline separated word list. Blank lines
// and lines starting with '#' are skipped.
func ParseStopWords(list string) StopWords {
	set := make(StopWords)
	for _, line := range strings.Split(list, "\n") {
		w := strings.ToLower(strings.TrimSpace(line))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
