package prompt

import (
	"fmt"
	"strings"

	"github.com/msherr/research-assistant/internal/textnorm"
)

const (
	SummarySystem = "You write neutral, analytical summaries of academic papers."
	ChatSystem    = "You are an AI research assistant. Answer based on the given research paper."
)

// Summary asks for a summary of one chunk of a paper, between minWords and
// maxWords long.
func Summary(chunk string, minWords, maxWords int) string {
	if minWords <= 0 {
		minWords = 50
	}
	if maxWords < minWords {
		maxWords = minWords
	}
	return fmt.Sprintf(`Summarize the following excerpt of a research paper in %d to %d words.

Hard requirements:
- Plain prose, no headers or bullets.
- Keep concrete findings, numbers and units when present.
- Do not fabricate details not supported by the excerpt.

Excerpt (may be noisy due to PDF extraction):
%s`, minWords, maxWords, strings.TrimSpace(chunk))
}

// Chat builds the question prompt. The document context is cut to
// contextWords words; an empty context is stated explicitly so the model does
// not pretend to have read a paper.
func Chat(query, context string, contextWords int) string {
	context = strings.TrimSpace(textnorm.TrimWords(context, contextWords))
	if context == "" {
		context = "(no paper uploaded yet)"
	}
	return fmt.Sprintf(`Document Context: %s
User Query: %s`, context, strings.TrimSpace(query))
}
