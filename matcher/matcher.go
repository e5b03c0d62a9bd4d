package matcher

import (
	"sort"

	"github.com/sourcegraph/juniper/match"
	"github.com/sourcegraph/juniper/querytree"
	"github.com/sourcegraph/juniper/rewrite"
	"github.com/sourcegraph/juniper/token"
)

// Result is one completed top-level match: either a root Candidate (the
// query is a non-terminal) or a bare KeyOccurrence (the query
// degenerated to a single term, §4.5 "single-term query").
type Result struct {
	Candidate *Candidate
	KeyOcc    *KeyOccurrence
}

// Matcher drives one Object over a single document's token stream,
// maintaining per-non-terminal working sets and an ordered result set of
// completed top-level matches. A Matcher is per-document, single
// threaded, and not reused across documents (§5).
type Matcher struct {
	obj    *match.Object
	reduce *rewrite.ReduceMatcher
	cfg    Config

	sets []workingSet // indexed by node_idx

	completeCount int
	results       []Result

	occurrences []*KeyOccurrence
}

// New prepares a Matcher for one document against obj. reduce may be nil
// if the query carries no for_document rewriters.
func New(obj *match.Object, reduce *rewrite.ReduceMatcher, cfg Config) *Matcher {
	for i := range obj.Tree.Terms {
		obj.Tree.Terms[i].ResetStats()
	}
	return &Matcher{
		obj:    obj,
		reduce: reduce,
		cfg:    cfg,
		sets:   make([]workingSet, len(obj.NontermVector)),
	}
}

// Feed consumes one token from the document stream. The caller signals
// end of document via Flush, not by feeding a sentinel Token here.
func (m *Matcher) Feed(tok token.Token) {
	text := tok.Text
	if len(text) > 0 && token.IsAnnotationAnchor(text[0]) {
		forms, prefix, ok := token.SplitAnnotation(text)
		if ok && len(forms) > 0 {
			for _, f := range forms {
				m.dispatchToken(f, tok)
			}
			return
		}
		text = prefix
	}
	m.dispatchToken(text, tok)
}

// Flush runs the end-of-document sweep of §4.4: every remaining
// candidate in every working set is either promoted (its node is not
// COMPLETE, i.e. partial_ok) or dropped.
func (m *Matcher) Flush() {
	for i := range m.sets {
		ws := &m.sets[i]
		for ws.len() > 0 {
			c := ws.popFront()
			if !c.Node.IsComplete() {
				m.promote(c)
			} else {
				c.deref()
			}
		}
	}
}

// Results returns completed top-level matches in rank order (weight
// desc, word-distance asc, start byte asc, per §3 "Match ordering").
func (m *Matcher) Results() []Result { return m.results }

// Occurrences returns every key occurrence created this document, in
// token order; the summary builder walks this alongside the result set.
func (m *Matcher) Occurrences() []*KeyOccurrence { return m.occurrences }

func (m *Matcher) dispatchToken(text []rune, tok token.Token) {
	if len(text) == 0 {
		return
	}

	seen := make(map[*querytree.Term]bool)
	for _, bucket := range m.obj.Buckets(text[0]) {
		for _, term := range bucket {
			if seen[term] {
				continue
			}
			hit, exact := dispatchTerm(term, text, m.cfg)
			if !hit {
				continue
			}
			seen[term] = true
			m.recordHit(term, tok, exact)
		}
	}

	if m.reduce != nil && m.reduce.Active() {
		for _, term := range m.reduce.Lookup(m.obj.LangID, text) {
			if seen[term] {
				continue
			}
			seen[term] = true
			m.recordHit(term, tok, true)
		}
	}
}

func (m *Matcher) recordHit(term *querytree.Term, tok token.Token, exact bool) {
	term.TotalMatchCount++
	if exact {
		term.ExactMatchCount++
	}
	koc := &KeyOccurrence{
		Term:    term,
		BytePos: tok.BytePos,
		ByteLen: tok.ByteLen,
		WordPos: tok.WordPos,
		Valid:   true,
	}
	m.occurrences = append(m.occurrences, koc)
	m.onKeyOccurrence(term, koc)
}

func (m *Matcher) onKeyOccurrence(term *querytree.Term, k *KeyOccurrence) {
	if term.ParentIdx == querytree.NoIndex {
		m.completeCount++
		m.insertResult(Result{KeyOcc: k})
		return
	}
	node := &m.obj.Tree.Nodes[term.ParentIdx]
	m.feedElement(node, k, term.ChildNo)
}

// feedElement runs the age-out/seed/update sequence of §4.4 for one
// incoming element destined for parent's working set.
func (m *Matcher) feedElement(parent *querytree.Node, elem MatchElement, childNo int) {
	ws := &m.sets[parent.NodeIdx]
	m.ageOut(ws, parent, elem.startToken())
	m.updateSet(ws, parent, elem, childNo)
}

// ageOut evicts every candidate whose span has grown past match_winsize,
// once need_complete_cnt completions have accumulated, promoting
// partial-ok (non-COMPLETE) candidates and dropping the rest.
func (m *Matcher) ageOut(ws *workingSet, node *querytree.Node, currentTok uint32) {
	if m.completeCount < m.cfg.NeedCompleteCount {
		return
	}
	for ws.len() > 0 {
		head := ws.seq[0]
		if currentTok < head.StartToken || currentTok-head.StartToken < m.cfg.WinSize {
			break
		}
		ws.popFront()
		if !node.IsComplete() {
			m.promote(head)
		} else {
			head.deref()
		}
	}
}

// updateSet seeds a fresh candidate (capped at MaxMatchCandidates) then
// offers elem to every candidate in ws, newest first.
func (m *Matcher) updateSet(ws *workingSet, parent *querytree.Node, elem MatchElement, childNo int) {
	if ws.len() < m.cfg.MaxMatchCandidates {
		ws.pushBack(newCandidate(parent))
	}

	for i := ws.len() - 1; i >= 0; i-- {
		c := ws.seq[i]
		switch m.offer(c, elem, childNo, parent.IsOrdered()) {
		case statusExists:
			return
		case statusExpired:
			ws.removeAt(i)
		case statusOK:
			if c.Complete() {
				ws.removeAt(i)
				if matchesLimit(c) {
					m.promote(c)
				} else {
					c.deref()
				}
			}
		case statusOverlap:
			// keep scanning older candidates.
		}
	}
}

// promote is update_match: a completed (or, from ageOut/Flush,
// partial-ok) candidate either joins the root result set or becomes an
// element offered to its parent's working set.
func (m *Matcher) promote(cand *Candidate) {
	node := cand.Node
	if node.ParentIdx == querytree.NoIndex {
		m.completeCount++
		m.insertResult(Result{Candidate: cand})
		return
	}
	parent := &m.obj.Tree.Nodes[node.ParentIdx]
	ws := &m.sets[parent.NodeIdx]
	m.updateSet(ws, parent, cand, node.ChildNo)
}

type offerStatus int

const (
	statusOK offerStatus = iota
	statusExists
	statusOverlap
	statusExpired
)

// offer implements the per-candidate branch of the "Update" step:
// EXISTS if the slot is already filled, EXPIRED if the candidate has
// fallen outside winsize_fallback, OVERLAP if ORDERED would be violated,
// else OK with elem installed.
func (m *Matcher) offer(c *Candidate, elem MatchElement, childNo int, ordered bool) offerStatus {
	fallback := m.cfg.WinSize * m.cfg.WinSizeFallbackMultiplier
	if elem.startToken() >= c.StartToken && elem.startToken()-c.StartToken >= fallback && c.NElems > 0 {
		return statusExpired
	}
	if c.Elements[childNo] != nil {
		return statusExists
	}
	if ordered && c.NElems > 0 && elem.startPos() < c.EndPos {
		c.Overlap++
		return statusOverlap
	}

	c.Elements[childNo] = elem
	c.NElems++
	if c.NElems == 1 {
		c.StartToken, c.EndToken = elem.startToken(), elem.endToken()
		c.StartPos, c.EndPos = elem.startPos(), elem.endPos()
	} else {
		if elem.startToken() < c.StartToken {
			c.StartToken = elem.startToken()
		}
		if elem.endToken() > c.EndToken {
			c.EndToken = elem.endToken()
		}
		if elem.startPos() < c.StartPos {
			c.StartPos = elem.startPos()
		}
		if elem.endPos() > c.EndPos {
			c.EndPos = elem.endPos()
		}
	}
	c.ElemWeight += elementWeight(elem)
	if child, ok := elem.(*Candidate); ok {
		child.ref()
	}
	return statusOK
}

// insertResult keeps m.results sorted by §3's Match ordering: weight
// desc, word-distance asc, start byte asc.
func (m *Matcher) insertResult(r Result) {
	i := sort.Search(len(m.results), func(i int) bool { return resultLess(r, m.results[i]) })
	m.results = append(m.results, Result{})
	copy(m.results[i+1:], m.results[i:])
	m.results[i] = r
}

func resultKey(r Result) (weight, wordDistance int, startByte uint32) {
	if r.Candidate != nil {
		return r.Candidate.ElemWeight, r.Candidate.WordDistance(), r.Candidate.StartPos
	}
	return r.KeyOcc.Term.Weight, 0, r.KeyOcc.BytePos
}

func resultLess(a, b Result) bool {
	aw, awd, asb := resultKey(a)
	bw, bwd, bsb := resultKey(b)
	if aw != bw {
		return aw > bw
	}
	if awd != bwd {
		return awd < bwd
	}
	return asb < bsb
}
