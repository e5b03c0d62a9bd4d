package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/juniper/matcher"
)

func occAt(pos, n uint32) *matcher.KeyOccurrence {
	return &matcher.KeyOccurrence{BytePos: pos, ByteLen: n, Valid: true}
}

// TestBuildSegmentsSmallGapStaysWhole reproduces the first deviation a
// maintainer review flagged: a gap between two picked matches no
// larger than 2·per_elem must stay whole as a single pass-through, not
// get cut with a continuation.
func TestBuildSegmentsSmallGapStaysWhole(t *testing.T) {
	picked := []span{
		{start: 20, end: 25, occs: []*matcher.KeyOccurrence{occAt(20, 5)}},
		{start: 40, end: 45, occs: []*matcher.KeyOccurrence{occAt(40, 5)}}, // gap = 15, <= 2*perElem (20)
	}
	segs := buildSegments(picked, 10, 200)

	firstHighlight := indexOfFirst(segs, segHighlight)
	lastHighlight := lastIndexOf(segs, segHighlight)
	require.GreaterOrEqual(t, firstHighlight, 0)
	require.Greater(t, lastHighlight, firstHighlight)

	for _, s := range segs[firstHighlight+1 : lastHighlight] {
		assert.NotEqual(t, segContinuation, s.kind, "a 15-byte gap between the two matches must not be split when per_elem is 10")
	}

	var sawGapPassthrough bool
	for _, s := range segs {
		if s.kind == segPassthrough && s.start == 25 && s.end == 40 {
			sawGapPassthrough = true
		}
	}
	assert.True(t, sawGapPassthrough, "the whole inter-match gap must appear as a single pass-through segment")
}

// TestBuildSegmentsLargeGapSplitsWithContinuationAndSymmetricContext
// reproduces the second deviation: a gap bigger than 2·per_elem must
// be split into the earlier match's trailing context, a continuation,
// and the later match's leading context — giving the earlier match
// genuine post-context instead of none.
func TestBuildSegmentsLargeGapSplitsWithContinuationAndSymmetricContext(t *testing.T) {
	picked := []span{
		{start: 20, end: 25, occs: []*matcher.KeyOccurrence{occAt(20, 5)}},
		{start: 60, end: 65, occs: []*matcher.KeyOccurrence{occAt(60, 5)}}, // gap = 35, > 2*perElem (20)
	}
	segs := buildSegments(picked, 10, 200)

	idx := indexOfFirst(segs, segContinuation)
	require.GreaterOrEqual(t, idx, 0, "a 35-byte gap must be split with a continuation")

	// The segment right before the (first) continuation in the gap must
	// be the first match's post-context, not simply absent.
	var postSeg, preSeg segment
	var sawPost, sawPre bool
	for _, s := range segs {
		if s.kind == segPost && s.start == 25 {
			postSeg = s
			sawPost = true
		}
		if s.kind == segPre && s.end == 60 {
			preSeg = s
			sawPre = true
		}
	}
	require.True(t, sawPost, "the earlier match must get trailing (post) context, not just leading context on the next match")
	require.True(t, sawPre, "the later match must get leading (pre) context")
	assert.Equal(t, uint32(10), postSeg.end-postSeg.start, "post context is truncated to per_elem=10")
	assert.Equal(t, uint32(10), preSeg.end-preSeg.start, "pre context is truncated to per_elem=10")
}

// TestBuildSegmentsInteriorMatchGetsBothSides checks that a match
// sandwiched between two large gaps gets a highlight flanked by its
// own post segment and the next match's pre segment, rather than the
// old single-pass behavior that only ever emitted leading context.
func TestBuildSegmentsInteriorMatchGetsBothSides(t *testing.T) {
	picked := []span{
		{start: 20, end: 25, occs: []*matcher.KeyOccurrence{occAt(20, 5)}},
		{start: 60, end: 65, occs: []*matcher.KeyOccurrence{occAt(60, 5)}},
		{start: 100, end: 105, occs: []*matcher.KeyOccurrence{occAt(100, 5)}},
	}
	segs := buildSegments(picked, 10, 200)

	var sawPostAfterMiddle, sawPreBeforeMiddle bool
	for _, s := range segs {
		if s.kind == segPost && s.start == 65 {
			sawPostAfterMiddle = true
		}
		if s.kind == segPre && s.end == 100 {
			sawPreBeforeMiddle = true
		}
	}
	assert.True(t, sawPostAfterMiddle, "the interior match must get trailing context after its highlight")
	assert.True(t, sawPreBeforeMiddle, "the following match must get leading context before its highlight")
}

func indexOfFirst(segs []segment, kind segKind) int {
	for i, s := range segs {
		if s.kind == kind {
			return i
		}
	}
	return -1
}

func lastIndexOf(segs []segment, kind segKind) int {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].kind == kind {
			return i
		}
	}
	return -1
}
