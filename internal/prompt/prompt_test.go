package prompt_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/msherr/research-assistant/internal/prompt"
)

var _ = Describe("Summary", func() {
	It("states the word range and embeds the excerpt", func() {
		p := prompt.Summary("  We study graphs.  ", 50, 150)
		Expect(p).To(ContainSubstring("in 50 to 150 words"))
		Expect(p).To(HaveSuffix("We study graphs."))
	})

	It("repairs an inverted range", func() {
		Expect(prompt.Summary("x", 80, 10)).To(ContainSubstring("in 80 to 80 words"))
	})
})

var _ = Describe("Chat", func() {
	It("includes the paper context and the query", func() {
		p := prompt.Chat("What is the method?", "Paper text here.", 100)
		Expect(p).To(ContainSubstring("Document Context: Paper text here."))
		Expect(p).To(ContainSubstring("User Query: What is the method?"))
	})

	It("trims long context to the word budget", func() {
		p := prompt.Chat("q", strings.Repeat("word ", 50), 3)
		Expect(p).To(ContainSubstring("Document Context: word word word\n"))
	})

	It("says when no paper is loaded", func() {
		Expect(prompt.Chat("q", "", 10)).To(ContainSubstring("(no paper uploaded yet)"))
	})
})
