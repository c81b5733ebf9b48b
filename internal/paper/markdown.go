package paper

import (
	"fmt"
	"strings"
)

// Markdown renders the result as a notes file with the numbered takeaways
// last.
func (r *Result) Markdown() string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "Untitled paper"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if r.Authors != "" {
		fmt.Fprintf(&b, "_%s_\n\n", r.Authors)
	}
	fmt.Fprintf(&b, "%d pages, %d words\n\n", r.Pages, r.Words)
	if len(r.Sections) > 0 {
		fmt.Fprintf(&b, "Sections: %s\n\n", strings.Join(r.Sections, ", "))
	}

	b.WriteString("## Summary\n\n")
	if r.Summary != "" {
		b.WriteString(r.Summary)
	} else {
		b.WriteString("(no summary)")
	}
	b.WriteString("\n\n## Key takeaways\n\n")
	for i, t := range r.Takeaways {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Text)
	}
	return b.String()
}
