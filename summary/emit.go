package summary

import "github.com/sourcegraph/juniper/token"

// emit walks segs and assembles the final teaser: continuation markers
// verbatim, highlights wrapped in markup, and every other segment's
// boundaries extended to a whole word (word completion) when it borders
// a continuation or the ends of the document.
func (b *Builder) emit(doc []byte, segs []segment) string {
	var out []byte
	cfg := b.cfg

	for i, s := range segs {
		switch s.kind {
		case segContinuation:
			out = append(out, cfg.Continuation...)
			continue
		case segHighlight:
			out = append(out, cfg.HighlightOpen...)
			out = append(out, doc[s.start:s.end]...)
			out = append(out, cfg.HighlightClose...)
			continue
		}

		start, end := s.start, s.end
		if precededByGap(segs, i) {
			start = scanBack(doc, start, cfg)
		}
		if followedByGap(segs, i) {
			end = scanForward(doc, end, cfg)
		}
		out = append(out, doc[start:end]...)
	}
	return string(out)
}

func precededByGap(segs []segment, i int) bool {
	return i == 0 || segs[i-1].kind == segContinuation
}

func followedByGap(segs []segment, i int) bool {
	return i == len(segs)-1 || segs[i+1].kind == segContinuation
}

// scanBack implements word completion at a gap start: walk backward from
// pos until a word boundary, up to MaxScanWord bytes.
func scanBack(doc []byte, pos uint32, cfg Config) uint32 {
	i, scanned := int(pos), 0
	for i > 0 && scanned < MaxScanWord {
		if isWordBoundary(rune(doc[i-1]), cfg) {
			break
		}
		i--
		scanned++
	}
	return uint32(i)
}

// scanForward implements word completion at a gap end: mirror scanBack.
func scanForward(doc []byte, pos uint32, cfg Config) uint32 {
	i, scanned := int(pos), 0
	for i < len(doc) && scanned < MaxScanWord {
		if isWordBoundary(rune(doc[i]), cfg) {
			break
		}
		i++
		scanned++
	}
	return uint32(i)
}

func isWordBoundary(r rune, cfg Config) bool {
	switch r {
	case ' ', '\t', '\n', '\r', token.Anchor, token.Separator, token.Terminator:
		return true
	}
	return cfg.Separators[r]
}
