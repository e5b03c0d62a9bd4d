package querytree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct{}

func (fakeRegistrar) Lookup(indexName string) (int, bool, bool, bool) { return 0, false, false, false }

func buildKeyword(b *Builder, text string, weight int) {
	b.Keyword("default", []rune(text), len(text), false, false, weight)
}

func TestSimplifyCollapsesArityOne(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindAnd}, 0)
	buildKeyword(b, "solo", 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	require.True(t, tree.RootIsTerm, "single-child AND must collapse to its term")
	assert.Equal(t, "solo", string(tree.Terms[tree.Root].Text))
}

func TestSimplifyDropsOnly1SiblingsButKeepsFirst(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindRank}, 0)
	buildKeyword(b, "primary", 100)
	buildKeyword(b, "ranking1", 10)
	buildKeyword(b, "ranking2", 10)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	// RANK keeps only its first child; the resulting one-child node then
	// collapses into that child.
	require.True(t, tree.RootIsTerm)
	assert.Equal(t, noIndex, tree.Terms[tree.Root].ParentIdx)
	assert.Equal(t, "primary", string(tree.Terms[tree.Root].Text))
}

func TestSimplifyDropsDanglingNonTerminal(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindAnd}, 0)
	buildKeyword(b, "alpha", 100)
	b.EnterNode(NodeKind{Kind: KindPhrase}, 0)
	b.dropChild() // simulate an ignored creator leaving the phrase empty
	b.LeaveNode()
	buildKeyword(b, "beta", 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	require.False(t, tree.RootIsTerm)
	root := tree.Nodes[tree.Root]
	assert.Equal(t, 2, root.Arity)
	for _, isTerm := range root.ChildIsTerm {
		assert.True(t, isTerm, "the empty phrase child must not survive simplification")
	}
}

func TestComputeThresholdsAndSums(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindAnd}, 0)
	buildKeyword(b, "alpha", 100)
	buildKeyword(b, "beta", 200)
	buildKeyword(b, "gamma", 50)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	root := tree.Nodes[tree.Root]
	assert.Equal(t, 350, root.Threshold)
}

func TestComputeThresholdsOrSaturates(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindOr}, 0)
	buildKeyword(b, "alpha", 100)
	buildKeyword(b, "beta", 5)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	root := tree.Nodes[tree.Root]
	assert.Equal(t, saturatingMax, root.Threshold)
}

func TestComputeThresholdsPhraseTakesMin(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindPhrase}, 0)
	buildKeyword(b, "quick", 100)
	buildKeyword(b, "brown", 30)
	buildKeyword(b, "fox", 70)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	root := tree.Nodes[tree.Root]
	assert.Equal(t, 30, root.Threshold)
}

func TestPropagateConstraintsBubblesUp(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindAnd}, 0)
	b.EnterNode(NodeKind{Kind: KindPhrase}, 0)
	buildKeyword(b, "quick", 100)
	buildKeyword(b, "brown", 100)
	b.LeaveNode()
	buildKeyword(b, "fox", 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	root := tree.Nodes[tree.Root]
	assert.True(t, root.HasConstraints(), "AND must inherit CONSTR from its PHRASE child")
	assert.True(t, root.UsesValid(), "AND must inherit CHKVAL from its PHRASE child")
}

func TestIgnoredCreatorDecrementsArity(t *testing.T) {
	b := NewBuilder(fakeRegistrar{})
	b.EnterNode(NodeKind{Kind: KindAnd}, 0)
	buildKeyword(b, "kept", 100)
	b.dropChild()
	buildKeyword(b, "alsoKept", 100)
	b.LeaveNode()
	tree := b.Finish(0, 0)

	root := tree.Nodes[tree.Root]
	assert.Equal(t, 2, root.Arity)
	assert.Len(t, root.Children, 2)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "PHRASE", KindPhrase.String())
	assert.Equal(t, "ANDNOT", KindAndNot.String())
}
