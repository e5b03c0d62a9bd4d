package querytree

// NewTermNode appends a term to t's arena and returns its index. Exposed
// for callers outside this package — package match synthesizes terms
// when compiling a language-expanded Match Object (§4.2 "language
// variants").
func (t *Tree) NewTermNode(text []rune, byteLen int, opts Option, weight, rewriterIdx int) int {
	return t.newTerm(text, byteLen, opts, weight, rewriterIdx)
}

// NewNonTerm appends a node to t's arena and returns its index.
func (t *Tree) NewNonTerm(kind Kind, opts Option, weight, limit int) int {
	return t.newNode(kind, opts, weight, limit)
}

// Link attaches child (a term if isTerm, else a node) as parent's next
// child, exactly like the construction path Builder uses.
func (t *Tree) Link(parentIdx, childIdx int, isTerm bool) {
	t.addChild(parentIdx, childIdx, isTerm)
}

// Clone returns a deep copy of t's arena. Node and term indices are
// preserved, so any parent/child links captured before cloning remain
// valid against the clone.
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.Nodes))
	for i, n := range t.Nodes {
		nodes[i] = n
		nodes[i].Children = append([]int(nil), n.Children...)
		nodes[i].ChildIsTerm = append([]bool(nil), n.ChildIsTerm...)
	}
	terms := make([]Term, len(t.Terms))
	for i, term := range t.Terms {
		terms[i] = term
		terms[i].Text = append([]rune(nil), term.Text...)
	}
	return &Tree{
		Nodes:         nodes,
		Terms:         terms,
		Root:          t.Root,
		RootIsTerm:    t.RootIsTerm,
		HasExpansions: t.HasExpansions,
		HasReductions: t.HasReductions,
	}
}

// Recompile re-simplifies and recomputes thresholds and propagated
// constraint bits after a caller has spliced new nodes or terms into the
// arena directly (package match's expand does, for language variants).
// It is Builder.Finish's tail without the root option/limit overrides.
func Recompile(t *Tree) {
	Simplify(t)
	if t.Root != noIndex && !t.RootIsTerm {
		computeThresholds(t, t.Root)
		propagateConstraints(t, t.Root)
	}
}
