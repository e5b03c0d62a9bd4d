package querytree

// Visitor is implemented by the host query AST (out of scope of this
// module, per spec.md §1).
//
// UsefulIndex lets the host filter out index names Juniper should not
// build terms for (§6 "External Interfaces — Query visitor API"). The
// Builder has a visitor field for this, but NewBuilder leaves it nil and
// nothing sets it, so no index filtering happens during construction.
type Visitor interface {
	// UsefulIndex reports whether indexName should contribute terms to
	// this Tree. Terms under a non-useful index are skipped as if their
	// creator were not the default creator (§4.1 "ignored creators").
	UsefulIndex(indexName string) bool
}

// NodeKind is emitted by the host AST for each non-terminal it visits.
type NodeKind struct {
	Kind  Kind
	Limit int // only meaningful for Near/Within/Onear/Phrase (0 for an exact phrase)
}

// Builder accumulates Tree nodes as the host AST is walked. The host
// calls EnterNode/LeaveNode for each non-terminal and Keyword for each
// terminal, in prefix order, matching the IQueryExprVisitor pattern of
// the original implementation (queryhandle.cpp).
type Builder struct {
	tree     *Tree
	visitor  Visitor
	stack    []int // arena indices of open non-terminals, innermost last
	registry Registrar
}

// Registrar resolves a per-term rewriter by the index name the term was
// declared under. It is implemented by package rewrite's Registry.
type Registrar interface {
	Lookup(indexName string) (idx int, forQuery, forDocument bool, ok bool)
}

// NewBuilder starts a fresh Tree construction. registry may be nil if no
// rewriters are configured.
func NewBuilder(registry Registrar) *Builder {
	return &Builder{
		tree:     &Tree{Root: noIndex},
		registry: registry,
	}
}

// EnterNode opens a new non-terminal as a child of the currently open
// non-terminal (or as the root, if the stack is empty).
func (b *Builder) EnterNode(nk NodeKind, weight int) {
	opts := kindOptions(nk.Kind)
	idx := b.tree.newNode(nk.Kind, opts, weight, nk.Limit)
	if len(b.stack) > 0 {
		b.tree.addChild(b.stack[len(b.stack)-1], idx, false)
	} else {
		b.tree.Root = idx
	}
	b.stack = append(b.stack, idx)
}

// LeaveNode closes the most recently opened non-terminal.
func (b *Builder) LeaveNode() {
	b.stack = b.stack[:len(b.stack)-1]
}

// Keyword adds a terminal term under the currently open non-terminal (or
// as the whole query, if no non-terminal is open).
//
// indexName selects a rewriter, if one is registered for it with either
// role; a for_query rewriter marks the Tree as HasExpansions, a
// for_document rewriter marks it HasReductions (§4.1). When the Builder
// has a Visitor whose UsefulIndex rejects indexName, the keyword
// contributes nothing and its parent's arity is decremented, mirroring
// "ignored creators"; a Builder from NewBuilder has no Visitor, so every
// keyword is kept.
func (b *Builder) Keyword(indexName string, text []rune, byteLen int, isPrefix, isSpecial bool, weight int) {
	if b.visitor != nil && !b.visitor.UsefulIndex(indexName) {
		b.dropChild()
		return
	}

	opts := Option(0)
	if isPrefix {
		opts |= Prefix
	}
	if isSpecial {
		opts |= SpecialToken
	}
	if containsWildcard(text) {
		opts |= Wildcard
	}

	rewriterIdx := -1
	if b.registry != nil {
		if idx, forQuery, forDocument, ok := b.registry.Lookup(indexName); ok {
			rewriterIdx = idx
			if forQuery {
				b.tree.HasExpansions = true
			}
			if forDocument {
				b.tree.HasReductions = true
			}
		}
	}

	termIdx := b.tree.newTerm(text, byteLen, opts, weight, rewriterIdx)
	if len(b.stack) > 0 {
		b.tree.addChild(b.stack[len(b.stack)-1], termIdx, true)
	} else {
		b.tree.Root = termIdx
		b.tree.RootIsTerm = true
	}
}

// dropChild records that the currently-open non-terminal lost a would-be
// child, decrementing its arity, without allocating anything for it.
func (b *Builder) dropChild() {
	if len(b.stack) == 0 {
		return
	}
	b.tree.addChild(b.stack[len(b.stack)-1], noIndex, false)
}

// Finish applies root-level option overrides (from the §6 option string)
// and returns the built, simplified, threshold-computed Tree.
func (b *Builder) Finish(rootLimit int, rootOptions Option) *Tree {
	t := b.tree
	if t.Root != noIndex && !t.RootIsTerm {
		t.Nodes[t.Root].Options |= rootOptions
		if rootLimit > 0 {
			t.Nodes[t.Root].Limit = rootLimit
			t.Nodes[t.Root].Options |= Limit
		}
	}
	Simplify(t)
	if t.Root != noIndex && !t.RootIsTerm {
		computeThresholds(t, t.Root)
		propagateConstraints(t, t.Root)
	}
	return t
}

func kindOptions(k Kind) Option {
	switch k {
	case KindPhrase:
		return Ordered | Limit | Exact | Complete | Constr | ChkVal
	case KindWithin:
		return Ordered | Limit | Complete | Constr | ChkVal
	case KindNear:
		return Limit | Complete | Constr | ChkVal
	case KindOnear:
		return Ordered | Limit | Complete | Constr | ChkVal
	case KindAnd:
		return And | Complete | Constr
	case KindOr:
		return Or
	case KindAny:
		return Any
	case KindRank, KindAndNot:
		return Only1 | Constr
	case KindEquiv:
		return Or
	default:
		return 0
	}
}

func containsWildcard(text []rune) bool {
	for _, r := range text {
		if r == '*' || r == '?' {
			return true
		}
	}
	return false
}
