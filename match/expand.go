package match

import (
	"github.com/sourcegraph/juniper/querytree"
	"github.com/sourcegraph/juniper/rewrite"
)

// Cache holds per-language compiled Match Objects for one query, keyed
// by language id (§4.2 "cache the resulting Match Object by language
// id"). Per §5 this cache is not internally synchronized: a caller
// sharing a query handle across goroutines must ensure first use
// happens-before subsequent reads, or lock externally.
type Cache struct {
	registry *rewrite.Registry
	base     *Object
	byLang   map[int]*Object
}

// NewCache compiles the base (unexpanded) Match Object for tree and
// returns a cache ready to compile language variants on demand.
func NewCache(tree *querytree.Tree, registry *rewrite.Registry) *Cache {
	return &Cache{
		registry: registry,
		base:     Compile(tree, rewrite.DefaultLangID),
		byLang:   make(map[int]*Object),
	}
}

// Get returns the compiled Match Object for langID. If the tree carries
// no for_query rewriters, or langID is the default, the shared base
// Object is returned directly without compiling anything.
func (c *Cache) Get(langID int) *Object {
	if langID == rewrite.DefaultLangID || !c.base.Tree.HasExpansions {
		return c.base
	}
	if o, ok := c.byLang[langID]; ok {
		return o
	}
	o := expand(c.base.Tree, c.registry, langID)
	c.byLang[langID] = o
	return o
}

// expand builds the language-specific variant described in §4.2: every
// term owned by a for_query rewriter is replaced by its expansion(s),
// each forced EXACT since expanded terms are not re-stemmed; a term that
// expands to more than one form is replaced by a synthetic OR node
// wrapping one fresh term per form, carrying the original term's weight
// and options.
func expand(base *querytree.Tree, registry *rewrite.Registry, langID int) *Object {
	t := base.Clone()

	// Range over the original term count: spliceExpansion only appends
	// new terms, it never mutates term i's slot into something that
	// itself needs expanding.
	n := len(t.Terms)
	for i := 0; i < n; i++ {
		term := &t.Terms[i]
		if term.RewriterIndex < 0 {
			continue
		}
		rw := registry.At(term.RewriterIndex)
		if !rw.ForQuery() {
			continue
		}

		var forms [][]rune
		it := rw.Rewrite(langID, term.Text)
		for {
			f, ok := it.Next()
			if !ok {
				break
			}
			forms = append(forms, f)
		}
		if len(forms) == 0 {
			continue
		}
		spliceExpansion(t, i, forms)
	}

	querytree.Recompile(t)
	return Compile(t, langID)
}

// spliceExpansion replaces term termIdx in place with either a single
// rewritten term (len(forms)==1) or a synthetic OR node wrapping one
// fresh EXACT term per form (len(forms)>1). In the multi-form case the
// original term's arena slot is kept (so other terms' indices don't
// shift) but marked Dropped: it is spliced out of its parent's Children
// in favor of the new OR node, so it must never again surface as a live
// terminal — otherwise the unexpanded surface form would stay matchable
// alongside its expansions, defeating §4.2 "language variants".
func spliceExpansion(t *querytree.Tree, termIdx int, forms [][]rune) {
	term := &t.Terms[termIdx]

	if len(forms) == 1 {
		term.Text = forms[0]
		term.Bytes = len(forms[0])
		term.Options |= querytree.Exact
		return
	}

	term.Dropped = true
	orIdx := t.NewNonTerm(querytree.KindEquiv, querytree.Or|term.Options, term.Weight, 0)
	exactOpts := (term.Options | querytree.Exact) &^ (querytree.Prefix | querytree.Wildcard)
	for _, f := range forms {
		newTermIdx := t.NewTermNode(f, len(f), exactOpts, term.Weight, term.RewriterIndex)
		t.Link(orIdx, newTermIdx, true)
	}

	parentIdx := term.ParentIdx
	childNo := term.ChildNo
	if parentIdx == querytree.NoIndex {
		// the expanded term was the whole query.
		t.Root = orIdx
		t.RootIsTerm = false
		t.Nodes[orIdx].ParentIdx = querytree.NoIndex
		t.Nodes[orIdx].ChildNo = -1
		return
	}

	parent := &t.Nodes[parentIdx]
	parent.Children[childNo] = orIdx
	parent.ChildIsTerm[childNo] = false
	t.Nodes[orIdx].ParentIdx = parentIdx
	t.Nodes[orIdx].ChildNo = childNo
}
