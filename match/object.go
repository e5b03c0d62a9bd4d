// Package match compiles a (simplified) querytree.Tree into the indexed
// views the streaming matcher drives: a term vector, a post-order
// non-terminal vector, and a first-code-point bucket table, per §4.2.
package match

import (
	"sort"

	"github.com/sourcegraph/juniper/querytree"
)

// Wildcard bucket keys, checked on every token lookup in addition to the
// token's own first-rune bucket (§4.4 "iterate all terms in the bucket
// chain plus the special '*' and '?' buckets").
const (
	WildcardStar     = '*'
	WildcardQuestion = '?'
)

// Object is a compiled Match Object: the term and non-terminal arrays
// indexed the way the matcher needs, for one (query, langID) pair.
type Object struct {
	Tree   *querytree.Tree
	LangID int

	// TermVector holds every live terminal (Term.Dropped == false) in
	// arena order. A term replaced by a synthetic OR node during
	// language expansion (§4.2) is excluded, so the unexpanded surface
	// form it carried can never again dispatch a match.
	TermVector []*querytree.Term
	// NontermVector[i] is the node whose NodeIdx field equals i, in
	// post-order: every node appears after all of its non-terminal
	// children.
	NontermVector []*querytree.Node

	// ByFirstRune buckets terms by their first UCS-4 code unit, each
	// bucket sorted by term length descending so longer, more specific
	// terms are tried before shorter ones.
	ByFirstRune map[rune][]*querytree.Term
}

// Compile builds the base (unexpanded) or already-expanded Object for
// tree under langID. Callers normally reach this through a Cache rather
// than directly.
func Compile(tree *querytree.Tree, langID int) *Object {
	o := &Object{Tree: tree, LangID: langID}
	o.indexTerms()
	o.indexNonterms()
	o.bucketTerms()
	return o
}

func (o *Object) indexTerms() {
	o.TermVector = make([]*querytree.Term, 0, len(o.Tree.Terms))
	for i := range o.Tree.Terms {
		if o.Tree.Terms[i].Dropped {
			continue
		}
		o.TermVector = append(o.TermVector, &o.Tree.Terms[i])
	}
}

func (o *Object) indexNonterms() {
	if o.Tree.Empty() || o.Tree.RootIsTerm {
		return
	}
	var order []*querytree.Node
	var visit func(idx int)
	visit = func(idx int) {
		n := &o.Tree.Nodes[idx]
		for i, c := range n.Children {
			if !n.ChildIsTerm[i] {
				visit(c)
			}
		}
		n.NodeIdx = len(order)
		order = append(order, n)
	}
	visit(o.Tree.Root)
	o.NontermVector = order
}

func (o *Object) bucketTerms() {
	o.ByFirstRune = make(map[rune][]*querytree.Term)
	for _, term := range o.TermVector {
		if len(term.Text) == 0 {
			continue
		}
		key := term.Text[0]
		o.ByFirstRune[key] = append(o.ByFirstRune[key], term)
	}
	for key, bucket := range o.ByFirstRune {
		sort.SliceStable(bucket, func(i, j int) bool {
			return len(bucket[i].Text) > len(bucket[j].Text)
		})
		o.ByFirstRune[key] = bucket
	}
}

// Buckets returns every bucket chain a token beginning with first should
// be tried against, in lookup order: its own first-rune bucket, then the
// two wildcard buckets (skipped if first is itself a wildcard marker,
// since that bucket was already included).
func (o *Object) Buckets(first rune) [][]*querytree.Term {
	var out [][]*querytree.Term
	if b, ok := o.ByFirstRune[first]; ok {
		out = append(out, b)
	}
	if first != WildcardStar {
		if b, ok := o.ByFirstRune[WildcardStar]; ok {
			out = append(out, b)
		}
	}
	if first != WildcardQuestion {
		if b, ok := o.ByFirstRune[WildcardQuestion]; ok {
			out = append(out, b)
		}
	}
	return out
}
