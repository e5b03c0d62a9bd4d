// Package token defines the wire contract between Juniper and the
// wordfolder/tokenizer that feeds it. Juniper never tokenizes text
// itself: a host pushes a stream of Tokens, in document order, and ends
// the document by calling Flush on the matcher (or engine Result).
package token

// Annotation marker code points used by interlinear annotations: a run of
// text anchored by Anchor, with the matching (typically reading/furigana)
// form(s) after Separator, terminated by Terminator. See §4.4.
const (
	Anchor     rune = '￹'
	Separator  rune = '￺'
	Terminator rune = '￻'
)

// Token is a single normalized word delivered by the tokenizer.
//
// Text holds the UCS-4 (rune) form used for term matching; Bytes holds
// the original UTF-8 surface form at [BytePos, BytePos+ByteLen) in the
// source document. WordPos is the zero-based word ordinal of this token
// within the document — the unit "word distance" is measured in.
//
// End reports a Token with Text == nil; the matcher ignores such a token
// and does not treat it as the end of the document.
type Token struct {
	Text    []rune
	Bytes   []byte
	BytePos uint32
	ByteLen uint32
	WordPos uint32
}

// End reports whether t carries no text (Text == nil).
func (t Token) End() bool { return t.Text == nil }

// IsAnnotationAnchor reports whether r opens an interlinear annotation.
func IsAnnotationAnchor(r rune) bool { return r == Anchor }

// SplitAnnotation extracts the matching form(s) of a malformed-tolerant
// interlinear annotation run. raw is the full UCS-4 text of the run,
// starting at the Anchor rune. It returns the space-delimited reading
// forms found between Separator and Terminator, or, if the annotation is
// malformed (missing separator/terminator), falls back to the anchor
// prefix (the text before where a separator would have been).
//
// This implements the degrade path described in §4.4: malformed
// annotations never cause a failure, only degrade to prefix matching.
func SplitAnnotation(raw []rune) (forms [][]rune, anchorPrefix []rune, wellFormed bool) {
	if len(raw) == 0 || raw[0] != Anchor {
		return nil, raw, false
	}

	sepIdx, termIdx := -1, -1
	for i, r := range raw {
		switch r {
		case Separator:
			if sepIdx == -1 {
				sepIdx = i
			}
		case Terminator:
			termIdx = i
		}
	}

	anchorEnd := len(raw)
	if sepIdx != -1 && sepIdx < anchorEnd {
		anchorEnd = sepIdx
	}
	if termIdx != -1 && termIdx < anchorEnd {
		anchorEnd = termIdx
	}
	anchorPrefix = raw[1:anchorEnd]

	if sepIdx == -1 || termIdx == -1 || termIdx <= sepIdx {
		return nil, anchorPrefix, false
	}

	readingSpan := raw[sepIdx+1 : termIdx]
	forms = splitSpaces(readingSpan)
	return forms, anchorPrefix, true
}

func splitSpaces(rs []rune) [][]rune {
	var out [][]rune
	start := -1
	for i, r := range rs {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				out = append(out, rs[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, rs[start:])
	}
	return out
}
