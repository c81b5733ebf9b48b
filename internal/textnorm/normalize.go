// Package textnorm cleans up text pulled out of PDFs before it is scored or
// sent to a model.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility characters (ligatures, full-width forms)
// with NFKC and collapses every whitespace run into a single space.
func Normalize(text string) string {
	return CollapseSpace(norm.NFKC.String(text))
}

func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CountWords returns the number of whitespace separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TrimWords keeps the first n words of s. s is returned unchanged when it
// already fits.
func TrimWords(s string, n int) string {
	ws := strings.Fields(s)
	if n <= 0 || len(ws) <= n {
		return s
	}
	return strings.Join(ws[:n], " ")
}

// Chunks splits s into consecutive pieces of at most size bytes without
// breaking a UTF-8 sequence.
func Chunks(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 || len(s) <= size {
		return []string{s}
	}
	var out []string
	for len(s) > 0 {
		end := min(size, len(s))
		for end < len(s) && end > 0 && !isRuneStart(s[end]) {
			end--
		}
		if end == 0 {
			end = min(size, len(s))
		}
		out = append(out, s[:end])
		s = s[end:]
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
