package summary

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/sourcegraph/juniper/matcher"
)

// span is one picked match's byte range plus the individual leaf key
// occurrences within it that should each be highlighted.
type span struct {
	start, end uint32
	occs       []*matcher.KeyOccurrence
}

// pickMatches walks results in rank order, rejecting any candidate whose
// byte span overlaps one already picked, and accumulating an estimated
// teaser length per §4.6 step 1. Picking stops once minLength is reached
// or maxMatches candidates have been accepted, whichever comes first.
func pickMatches(results []matcher.Result, minLength, maxMatches, surround int) []span {
	var picked []span
	covered := roaring.New() // byte ranges already claimed by a picked span
	estimate := 0

	for _, r := range results {
		s := flattenResult(r)
		if s.end <= s.start {
			continue
		}
		if overlapsCovered(covered, s) {
			continue
		}
		covered.AddRange(uint64(s.start), uint64(s.end))
		picked = append(picked, s)

		charge := int(s.end-s.start) + 2*surround + MinContinuation
		if int(s.start) < surround {
			charge -= surround - int(s.start)
		}
		if charge > 0 {
			estimate += charge
		}

		if len(picked) >= maxMatches || estimate >= minLength {
			break
		}
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].start < picked[j].start })
	return picked
}

// overlapsCovered reports whether s's byte range intersects any range
// already marked in covered, using a probe bitmap rather than scanning
// every previously picked span.
func overlapsCovered(covered *roaring.Bitmap, s span) bool {
	probe := roaring.New()
	probe.AddRange(uint64(s.start), uint64(s.end))
	return covered.Intersects(probe)
}

// flattenResult reduces one completed match (a bare key occurrence, or
// a candidate tree) to its overall byte span and the individual leaf
// occurrences it contains.
func flattenResult(r matcher.Result) span {
	if r.KeyOcc != nil {
		k := r.KeyOcc
		return span{start: k.BytePos, end: k.BytePos + k.ByteLen, occs: []*matcher.KeyOccurrence{k}}
	}
	occs := flattenCandidate(r.Candidate, nil)
	sort.Slice(occs, func(i, j int) bool { return occs[i].BytePos < occs[j].BytePos })
	return span{start: r.Candidate.StartPos, end: r.Candidate.EndPos, occs: occs}
}

func flattenCandidate(c *matcher.Candidate, out []*matcher.KeyOccurrence) []*matcher.KeyOccurrence {
	for _, e := range c.Elements {
		switch v := e.(type) {
		case *matcher.KeyOccurrence:
			out = append(out, v)
		case *matcher.Candidate:
			out = flattenCandidate(v, out)
		}
	}
	return out
}
