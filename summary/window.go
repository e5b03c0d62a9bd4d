package summary

import "github.com/sourcegraph/juniper/matcher"

type segKind int

const (
	segPassthrough segKind = iota
	segPre
	segPost
	segHighlight
	segContinuation
)

// segment is one emitted piece of the teaser: a byte range of doc (for
// everything but segContinuation, which carries no range).
type segment struct {
	kind       segKind
	start, end uint32
	occ        *matcher.KeyOccurrence
}

// sizeWindows implements §4.6 step 2/3: size the context window around
// each picked match and emit segment descriptors in document order.
//
// per_elem is derived once from the pick estimate, then the resulting
// segments are simulated and, if they come in under the requested
// length L, per_elem is grown and the segments rebuilt — a bounded
// version of the "iteratively recompute... redistribute any remaining
// budget uniformly" step, since growing per_elem can only ever widen
// or merge segments, never shrink them.
func sizeWindows(picked []span, cfg Config, docLen int) []segment {
	perElem := initialPerElem(picked, cfg)

	segs := buildSegments(picked, perElem, docLen)
	for iter := 0; iter < 3; iter++ {
		leftover := cfg.Length - segmentsLen(segs, len(cfg.Continuation))
		if leftover <= 0 {
			break
		}
		edges := len(picked) + 1 // leading edge + trailing edge + one gap per adjacent pair
		grow := leftover / edges
		if grow <= 0 {
			break
		}
		perElem += grow
		segs = buildSegments(picked, perElem, docLen)
	}
	return segs
}

// initialPerElem implements §4.6 step 2's first sentence: per_elem is
// S unless the step-1 estimate overshot L, in which case it is
// squeezed down to fit the highlighted text itself into L.
func initialPerElem(picked []span, cfg Config) int {
	hitLen, matchElems := 0, 0
	for _, p := range picked {
		for _, o := range p.occs {
			hitLen += int(o.ByteLen)
			matchElems++
		}
	}
	if matchElems == 0 {
		matchElems = 1
	}

	estimate := 0
	for _, p := range picked {
		estimate += int(p.end-p.start) + 2*cfg.Surround
	}

	perElem := cfg.Surround
	if estimate > cfg.Length {
		perElem = (cfg.Length - hitLen) / (matchElems * 2)
	}
	if perElem < MinSurroundLen {
		perElem = MinSurroundLen
	}
	return perElem
}

// buildSegments lays out one full set of segment descriptors for
// picked under a fixed per_elem, per §4.6 step 2/3: the gap before the
// first match and after the last stay whole when no larger than
// per_elem, an inter-match gap stays whole when no larger than
// 2·per_elem, and anything larger is split into a trailing fragment of
// the earlier match, a continuation, and a leading fragment of the
// later one.
func buildSegments(picked []span, perElem int, docLen int) []segment {
	var segs []segment

	for i, p := range picked {
		start, end := int(p.start), int(p.end)

		if i == 0 {
			segs = append(segs, leadingEdge(start, perElem)...)
		} else {
			segs = append(segs, interMatchGap(int(picked[i-1].end), start, perElem)...)
		}

		segs = append(segs, highlightSegments(p, start, end)...)

		if i == len(picked)-1 {
			segs = append(segs, trailingEdge(end, docLen, perElem)...)
		}
	}

	return segs
}

// leadingEdge handles the context before the very first picked match.
func leadingEdge(start, perElem int) []segment {
	if start <= perElem {
		if start == 0 {
			return nil
		}
		return []segment{{kind: segPre, start: 0, end: uint32(start)}}
	}
	ctxStart := start - perElem
	return []segment{
		{kind: segContinuation},
		{kind: segPre, start: uint32(ctxStart), end: uint32(start)},
	}
}

// trailingEdge handles the context after the very last picked match.
func trailingEdge(end, docLen, perElem int) []segment {
	trailGap := docLen - end
	if trailGap <= perElem {
		if trailGap == 0 {
			return nil
		}
		return []segment{{kind: segPost, start: uint32(end), end: uint32(docLen)}}
	}
	ctxEnd := end + perElem
	return []segment{
		{kind: segPost, start: uint32(end), end: uint32(ctxEnd)},
		{kind: segContinuation},
	}
}

// interMatchGap handles the byte range between the end of one picked
// match and the start of the next: a gap of up to 2·per_elem is kept
// whole as a single pass-through so interior hits are not needlessly
// elided; a larger one is split so both neighboring matches keep
// symmetric pre/post surround.
func interMatchGap(prevEnd, start, perElem int) []segment {
	gap := start - prevEnd
	if gap <= 0 {
		return nil
	}
	if gap <= 2*perElem {
		return []segment{{kind: segPassthrough, start: uint32(prevEnd), end: uint32(start)}}
	}
	return []segment{
		{kind: segPost, start: uint32(prevEnd), end: uint32(prevEnd + perElem)},
		{kind: segContinuation},
		{kind: segPre, start: uint32(start - perElem), end: uint32(start)},
	}
}

// highlightSegments emits the (pass-through, highlight)* run inside one
// picked match's own span, one highlight per key occurrence.
func highlightSegments(p span, start, end int) []segment {
	var segs []segment
	for _, o := range p.occs {
		if int(o.BytePos) > start {
			segs = append(segs, segment{kind: segPassthrough, start: uint32(start), end: o.BytePos})
		}
		segs = append(segs, segment{kind: segHighlight, start: o.BytePos, end: o.BytePos + o.ByteLen, occ: o})
		start = int(o.BytePos + o.ByteLen)
	}
	if start < end {
		segs = append(segs, segment{kind: segPassthrough, start: uint32(start), end: uint32(end)})
	}
	return segs
}

// segmentsLen is the byte length of the teaser buildSegments would
// produce: every ranged segment's span, plus contLen for every
// continuation marker.
func segmentsLen(segs []segment, contLen int) int {
	n := 0
	for _, s := range segs {
		if s.kind == segContinuation {
			n += contLen
			continue
		}
		n += int(s.end - s.start)
	}
	return n
}

// foldAccidentalMatches implements §4.6 step 4: any occurrence that
// falls entirely inside a non-highlight segment (and, when usesValidity
// is set, is itself valid) splits that segment into pre/highlight/post.
func foldAccidentalMatches(segs []segment, occurrences []*matcher.KeyOccurrence, usesValidity bool) []segment {
	for _, occ := range occurrences {
		if usesValidity && !occ.Valid {
			continue
		}
		occEnd := occ.BytePos + occ.ByteLen

		for i, s := range segs {
			if s.kind == segHighlight || s.kind == segContinuation {
				continue
			}
			if occ.BytePos < s.start || occEnd > s.end {
				continue
			}
			replacement := splitSegmentAround(s, occ)
			merged := make([]segment, 0, len(segs)+len(replacement))
			merged = append(merged, segs[:i]...)
			merged = append(merged, replacement...)
			merged = append(merged, segs[i+1:]...)
			segs = merged
			break
		}
	}
	return segs
}

func splitSegmentAround(s segment, occ *matcher.KeyOccurrence) []segment {
	var out []segment
	if occ.BytePos > s.start {
		out = append(out, segment{kind: s.kind, start: s.start, end: occ.BytePos})
	}
	out = append(out, segment{kind: segHighlight, start: occ.BytePos, end: occ.BytePos + occ.ByteLen, occ: occ})
	end := occ.BytePos + occ.ByteLen
	if end < s.end {
		out = append(out, segment{kind: s.kind, start: end, end: s.end})
	}
	return out
}
