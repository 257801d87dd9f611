package session

import "github.com/gravitrone/nebula-notes/internal/textsvc"

// SummaryLabel heads the section appended by a whole-note summarize.
const SummaryLabel = "Summary:"

// Span is a half-open range of rune offsets into the note content.
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span selects nothing.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// clamp bounds the span to a text of n runes.
func (s Span) clamp(n int) Span {
	s.Start = min(max(s.Start, 0), n)
	s.End = min(max(s.End, s.Start), n)
	return s
}

// Selected returns the runes of content covered by sel, clamped.
func Selected(content string, sel Span) string {
	r := []rune(content)
	sel = sel.clamp(len(r))
	return string(r[sel.Start:sel.End])
}

// Splice places a transform result into content. A non-empty selection is
// replaced in place; otherwise summarize appends a labeled section and every
// other action replaces the whole content. Offsets are clamped to content,
// which may have changed since they were captured; a selection that clamps
// to nothing becomes an insertion at the clamped offset.
func Splice(content string, sel Span, action textsvc.Action, result string) string {
	r := []rune(content)
	if !sel.Empty() {
		sel = sel.clamp(len(r))
		out := make([]rune, 0, len(r)-(sel.End-sel.Start)+len(result))
		out = append(out, r[:sel.Start]...)
		out = append(out, []rune(result)...)
		return string(append(out, r[sel.End:]...))
	}
	if action == textsvc.ActionSummarize {
		if len(r) == 0 {
			return SummaryLabel + "\n" + result
		}
		return content + "\n\n" + SummaryLabel + "\n" + result
	}
	return result
}
