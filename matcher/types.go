// Package matcher implements the streaming matcher of §4.4: it consumes
// a document's token stream, maintains a working set of match candidates
// per query non-terminal, and promotes completed matches into an
// ordered result set.
package matcher

import (
	"go.uber.org/atomic"

	"github.com/sourcegraph/juniper/querytree"
)

// MatchElement is satisfied by both KeyOccurrence and Candidate: the
// child slot of a Candidate holds one of these, mirroring the original
// MatchElement union of a key occurrence or a child match candidate.
type MatchElement interface {
	wordLength() int
	startToken() uint32
	endToken() uint32
	startPos() uint32
	endPos() uint32
}

// KeyOccurrence is a per-document leaf match event: one term hit at one
// token position. Created as tokens stream in; owned by the Matcher;
// referenced by Candidate element arrays and by the summary builder.
type KeyOccurrence struct {
	Term    *querytree.Term
	BytePos uint32
	ByteLen uint32
	WordPos uint32
	Valid   bool
}

func (k *KeyOccurrence) wordLength() int    { return 1 }
func (k *KeyOccurrence) startToken() uint32 { return k.WordPos }
func (k *KeyOccurrence) endToken() uint32   { return k.WordPos }
func (k *KeyOccurrence) startPos() uint32   { return k.BytePos }
func (k *KeyOccurrence) endPos() uint32     { return k.BytePos + k.ByteLen }

// Candidate is a per-document non-terminal match event: a partially or
// fully populated instance of one compiled query node. Candidates form a
// tree parallel to the query tree via Elements, each slot holding either
// a key occurrence or a (ref-counted) child candidate.
type Candidate struct {
	Node *querytree.Node

	Elements []MatchElement // length == Node.Arity
	NElems   int

	StartToken, EndToken uint32
	StartPos, EndPos     uint32

	ElemWeight int
	Options    querytree.Option
	Overlap    int

	refs atomic.Int64
}

func newCandidate(n *querytree.Node) *Candidate {
	c := &Candidate{
		Node:     n,
		Elements: make([]MatchElement, len(n.Children)),
		Options:  n.Options,
	}
	c.refs.Store(1)
	return c
}

// wordLength is the span, in words, this candidate covers — used by
// matchesLimit when summing a node's children.
func (c *Candidate) wordLength() int {
	if c.NElems == 0 {
		return 0
	}
	return int(c.EndToken-c.StartToken) + 1
}

func (c *Candidate) startToken() uint32 { return c.StartToken }
func (c *Candidate) endToken() uint32   { return c.EndToken }
func (c *Candidate) startPos() uint32   { return c.StartPos }
func (c *Candidate) endPos() uint32     { return c.EndPos }

// WordDistance is endtoken − starttoken − (arity − 1), the metric §3's
// "Match ordering" and package rank's candidate score are defined over.
func (c *Candidate) WordDistance() int {
	return int(c.EndToken-c.StartToken) - (len(c.Elements) - 1)
}

// Complete reports whether every slot is populated and every populated
// child candidate is itself complete.
func (c *Candidate) Complete() bool {
	if c.NElems != len(c.Elements) {
		return false
	}
	for _, e := range c.Elements {
		if child, ok := e.(*Candidate); ok && !child.Complete() {
			return false
		}
	}
	return true
}

// ref pins the candidate's lifetime; called when it is installed as an
// element of a parent candidate.
func (c *Candidate) ref() { c.refs.Inc() }

// deref releases a reference; at zero it recursively derefs whatever
// child candidates it still holds.
func (c *Candidate) deref() {
	if c.refs.Dec() > 0 {
		return
	}
	for _, e := range c.Elements {
		if child, ok := e.(*Candidate); ok {
			child.deref()
		}
	}
}

func elementWeight(elem MatchElement) int {
	switch e := elem.(type) {
	case *KeyOccurrence:
		return e.Term.Weight
	case *Candidate:
		return e.ElemWeight
	}
	return 0
}
