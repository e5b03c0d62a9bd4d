// Package rank implements the proximity rank of §4.5: a scalar score
// over one match candidate, and a document-global aggregate over the
// best few candidates.
package rank

import (
	"math"

	"github.com/sourcegraph/juniper/matcher"
)

// Proximity holds the document-global rank formula's tunables, set from
// the property source's proximity.factor key (§6). The config package
// clamps Factor to [0, 1e8], resetting to the default on an
// out-of-range value.
type Proximity struct {
	Factor             float64
	NoConstraintOffset int64
}

// DefaultProximity returns the formula's defaults: proximity.factor
// defaults to 0.25 (§6), offset 1 so a matching-but-proximity-free
// document still outranks a 0.
func DefaultProximity() Proximity {
	return Proximity{Factor: 0.25, NoConstraintOffset: 1}
}

// Candidate computes the per-candidate rank of §4.5: elem_weight scaled
// by 2^11, minus word_distance scaled by 2^8, minus start_pos/256.
func Candidate(elemWeight, wordDistance int, startPos uint32) int64 {
	return int64(elemWeight)<<11 - int64(wordDistance)<<8 - int64(startPos)>>8
}

// Document computes the document-global rank: the geometric-decay sum of
// the top three results' candidate ranks (4/5 per rank), scaled by
// cfg.Factor and offset by cfg.NoConstraintOffset.
//
// For a single-term query the offset is returned unconditionally
// (proximity is meaningless over one term). Otherwise, with zero
// results, the result is 0 if the query carries any positional
// constraint, else the offset.
func Document(results []matcher.Result, hasConstraints bool, singleTerm bool, cfg Proximity) int64 {
	if singleTerm {
		return cfg.NoConstraintOffset
	}
	if len(results) == 0 {
		if hasConstraints {
			return 0
		}
		return cfg.NoConstraintOffset
	}

	var ranks [3]int64
	top := len(results)
	if top > 3 {
		top = 3
	}
	for i := 0; i < top; i++ {
		ranks[i] = rankOf(results[i])
	}

	r := math.Floor(float64(ranks[0]))/2 +
		math.Floor(float64(ranks[1])*4/5)/2 +
		math.Floor(float64(ranks[2])*16/25)/2

	return int64(math.Round(r*cfg.Factor)) + cfg.NoConstraintOffset
}

func rankOf(r matcher.Result) int64 {
	if r.Candidate != nil {
		return Candidate(r.Candidate.ElemWeight, r.Candidate.WordDistance(), r.Candidate.StartPos)
	}
	return Candidate(r.KeyOcc.Term.Weight, 0, r.KeyOcc.BytePos)
}
