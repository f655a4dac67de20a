// Package markdown converts the constrained markdown subset produced by the
// audit model into HTML fragments.
//
// Render is a fixed, ordered pipeline of independent text-transform passes.
// Each pass operates on the output of the previous one, so the ordering is
// part of the contract: headings, then bullet lists (with a fix-up that merges
// adjacent list containers), then fenced code blocks, inline code, bold, and
// finally remaining newlines to <br>.
//
// This is deliberately not a CommonMark processor. Nested lists, ordered
// lists, tables, links and images render literally. Code-fence content passes
// through verbatim with no HTML escaping. An unterminated fence is left in
// the text as-is; later passes may style fragments of it.
package markdown

import "regexp"

type pass struct {
	name string
	re   *regexp.Regexp
	repl string
}

var passes = []pass{
	// Headings, matched at line start, greedy to end of line. Deeper levels
	// first so "## " is not consumed by the "# " rule's trailing capture.
	{"h3", regexp.MustCompile(`(?m)^### (.*)$`), "<h3>$1</h3>"},
	{"h2", regexp.MustCompile(`(?m)^## (.*)$`), "<h2>$1</h2>"},
	{"h1", regexp.MustCompile(`(?m)^# (.*)$`), "<h1>$1</h1>"},

	// Each bullet line becomes its own single-item list...
	{"li", regexp.MustCompile(`(?m)^\* (.*)$`), "<ul><li>$1</li></ul>"},
	// ...then boundaries between consecutive generated lists are removed,
	// merging them into one container.
	{"ul-merge", regexp.MustCompile(`</ul>\s*<ul>`), ""},

	// Fenced code blocks, language-tagged or untagged, non-nested. Content is
	// verbatim: no escaping. Requires a closing fence; an unmatched opener
	// does not match and passes through literally.
	{"fence", regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n?(.*?)```"), "<pre><code>$1</code></pre>"},

	// Inline code spans in single backticks, within one line.
	{"code", regexp.MustCompile("`([^`\\n]+)`"), "<code>$1</code>"},

	// Double-asterisk bold, within one line.
	{"strong", regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>$1</strong>"},

	// Remaining newlines become explicit line breaks. This runs last, so it
	// also rewrites newlines inside already-emitted <pre> blocks; pass
	// independence wins over pretty code blocks here.
	{"br", regexp.MustCompile(`\n`), "<br>"},
}

// Render converts markdown to an HTML fragment. It is a pure function:
// identical input always yields identical output.
func Render(md string) string {
	out := md
	for _, p := range passes {
		out = p.re.ReplaceAllString(out, p.repl)
	}
	return out
}
