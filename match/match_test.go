package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/juniper/querytree"
	"github.com/sourcegraph/juniper/rewrite"
)

type fakeRegistrar struct{}

func (fakeRegistrar) Lookup(indexName string) (int, bool, bool, bool) { return 0, false, false, false }

func buildSimpleAndTree(t *testing.T) *querytree.Tree {
	t.Helper()
	b := querytree.NewBuilder(fakeRegistrar{})
	b.EnterNode(querytree.NodeKind{Kind: querytree.KindAnd}, 0)
	b.Keyword("default", []rune("quick"), 5, false, false, 100)
	b.Keyword("default", []rune("quack"), 5, false, false, 100)
	b.Keyword("default", []rune("brown"), 5, false, false, 100)
	b.LeaveNode()
	return b.Finish(0, 0)
}

func TestCompileBucketsByFirstRuneLengthDescending(t *testing.T) {
	tree := buildSimpleAndTree(t)
	obj := Compile(tree, rewrite.DefaultLangID)

	bucket := obj.ByFirstRune['q']
	require.Len(t, bucket, 2)
	// Both "quick" and "quack" are length 5; stable sort preserves
	// registration order among equal lengths.
	assert.Equal(t, "quick", string(bucket[0].Text))
	assert.Equal(t, "quack", string(bucket[1].Text))
}

func TestCompileNontermVectorIsPostOrder(t *testing.T) {
	b := querytree.NewBuilder(fakeRegistrar{})
	b.EnterNode(querytree.NodeKind{Kind: querytree.KindAnd}, 0)
	b.EnterNode(querytree.NodeKind{Kind: querytree.KindPhrase}, 0)
	b.Keyword("default", []rune("quick"), 5, false, false, 100)
	b.Keyword("default", []rune("brown"), 5, false, false, 100)
	b.LeaveNode()
	b.Keyword("default", []rune("fox"), 3, false, false, 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	obj := Compile(tree, rewrite.DefaultLangID)
	require.Len(t, obj.NontermVector, 2)
	assert.Equal(t, querytree.KindPhrase, obj.NontermVector[0].Kind, "the PHRASE child must precede its AND parent in post-order")
	assert.Equal(t, querytree.KindAnd, obj.NontermVector[1].Kind)
	assert.Equal(t, 0, obj.NontermVector[0].NodeIdx)
	assert.Equal(t, 1, obj.NontermVector[1].NodeIdx)
}

func TestBucketsOmitsWildcardTermKeyedUnderOtherRune(t *testing.T) {
	b := querytree.NewBuilder(fakeRegistrar{})
	b.EnterNode(querytree.NodeKind{Kind: querytree.KindOr}, 0)
	b.Keyword("default", []rune("run*"), 4, false, false, 100)
	b.Keyword("default", []rune("jump"), 4, false, false, 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	obj := Compile(tree, rewrite.DefaultLangID)
	buckets := obj.Buckets('j')
	var sawRunStar, sawJump bool
	for _, bucket := range buckets {
		for _, term := range bucket {
			if string(term.Text) == "run*" {
				sawRunStar = true
			}
			if string(term.Text) == "jump" {
				sawJump = true
			}
		}
	}
	assert.True(t, sawJump)
	assert.False(t, sawRunStar, "run* is keyed under 'r', not reachable from a 'j' token's own bucket nor the wildcard buckets")
}

// stemRewriter is a minimal for_query rewriter used to exercise language
// expansion without a real stemmer.
type stemRewriter struct {
	forms [][]rune
}

func (stemRewriter) ForQuery() bool    { return true }
func (stemRewriter) ForDocument() bool { return false }
func (r stemRewriter) Rewrite(langID int, text []rune) rewrite.Iterator {
	return &sliceIterator{forms: r.forms}
}

type sliceIterator struct {
	forms [][]rune
	pos   int
}

func (s *sliceIterator) Next() ([]rune, bool) {
	if s.pos >= len(s.forms) {
		return nil, false
	}
	f := s.forms[s.pos]
	s.pos++
	return f, true
}

func TestExpandSingleFormRewritesInPlace(t *testing.T) {
	reg := rewrite.NewRegistry()
	idx := reg.Register("body", stemRewriter{forms: [][]rune{[]rune("run")}})

	b := querytree.NewBuilder(reg)
	b.EnterNode(querytree.NodeKind{Kind: querytree.KindAnd}, 0)
	b.Keyword("body", []rune("running"), 7, false, false, 100)
	b.Keyword("default", []rune("fast"), 4, false, false, 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)
	require.True(t, tree.HasExpansions)
	_ = idx

	cache := NewCache(tree, reg)
	expanded := cache.Get(7)
	require.NotSame(t, cache.base, expanded)

	found := false
	for _, term := range expanded.TermVector {
		if string(term.Text) == "run" {
			found = true
			assert.True(t, term.IsExact())
		}
	}
	assert.True(t, found)
}

func TestExpandMultiFormWrapsInOrNode(t *testing.T) {
	reg := rewrite.NewRegistry()
	reg.Register("body", stemRewriter{forms: [][]rune{[]rune("run"), []rune("ran")}})

	b := querytree.NewBuilder(reg)
	b.Keyword("body", []rune("running"), 7, false, false, 100)
	tree := b.Finish(0, 0)
	require.True(t, tree.RootIsTerm, "single keyword query collapses to a bare term before expansion")

	cache := NewCache(tree, reg)
	expanded := cache.Get(3)
	require.False(t, expanded.Tree.RootIsTerm, "expansion of the root term into two forms must produce an OR node root")
	root := expanded.Tree.Nodes[expanded.Tree.Root]
	assert.Equal(t, 2, root.Arity)

	for _, term := range expanded.TermVector {
		assert.NotEqual(t, "running", string(term.Text),
			"the unexpanded original term must be dropped from TermVector once it is replaced by the OR node")
	}
	assert.Len(t, expanded.ByFirstRune['r'], 2, "bucket 'r' holds only run and ran, not the dropped original term")
}

// TestExpandMultiFormDoesNotLeaveOrphanMatchable reproduces the false
// positive a maintainer review flagged: AND(running, fast) with
// running -> {run, ran} must not match a document containing neither
// "run" nor "ran", which it would if the orphaned "running" term (still
// wired to the AND's child slot 0) stayed live in TermVector.
func TestExpandMultiFormDoesNotLeaveOrphanMatchable(t *testing.T) {
	reg := rewrite.NewRegistry()
	reg.Register("body", stemRewriter{forms: [][]rune{[]rune("run"), []rune("ran")}})

	b := querytree.NewBuilder(reg)
	b.EnterNode(querytree.NodeKind{Kind: querytree.KindAnd}, 0)
	b.Keyword("body", []rune("running"), 7, false, false, 100)
	b.Keyword("default", []rune("fast"), 4, false, false, 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)
	require.True(t, tree.HasExpansions)

	cache := NewCache(tree, reg)
	expanded := cache.Get(3)

	for _, term := range expanded.TermVector {
		assert.NotEqual(t, "running", string(term.Text),
			"\"running\" was replaced by an OR(run, ran); its orphaned arena slot must not dispatch")
	}
	for _, bucket := range expanded.ByFirstRune {
		for _, term := range bucket {
			assert.NotEqual(t, "running", string(term.Text))
		}
	}
}

func TestGetReturnsBaseForDefaultLangID(t *testing.T) {
	tree := buildSimpleAndTree(t)
	cache := NewCache(tree, rewrite.NewRegistry())
	assert.Same(t, cache.base, cache.Get(rewrite.DefaultLangID))
}

func TestGetReturnsBaseWhenNoExpansions(t *testing.T) {
	tree := buildSimpleAndTree(t)
	cache := NewCache(tree, rewrite.NewRegistry())
	assert.Same(t, cache.base, cache.Get(5), "no rewriter is registered, so every language id resolves to the base object")
}
