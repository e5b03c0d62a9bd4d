package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/juniper/querytree"
)

func TestParseDebugQuerySimpleAnd(t *testing.T) {
	b := querytree.NewBuilder(nil)
	err := ParseDebugQuery("AND(fox,jumps)", b)
	require.NoError(t, err)

	tree := b.Finish(0, 0)
	require.False(t, tree.Empty())
	assert.Equal(t, querytree.KindAnd, tree.Nodes[tree.Root].Kind)
	assert.Equal(t, 2, tree.Nodes[tree.Root].Arity)
}

func TestParseDebugQueryNearWithLimit(t *testing.T) {
	b := querytree.NewBuilder(nil)
	err := ParseDebugQuery("NEAR/3(fox,jumps)", b)
	require.NoError(t, err)

	tree := b.Finish(0, 0)
	require.False(t, tree.Empty())
	assert.Equal(t, querytree.KindNear, tree.Nodes[tree.Root].Kind)
	assert.Equal(t, 3, tree.Nodes[tree.Root].Limit)
}

func TestParseDebugQueryIndexedTerm(t *testing.T) {
	b := querytree.NewBuilder(nil)
	err := ParseDebugQuery("title:fox", b)
	require.NoError(t, err)

	tree := b.Finish(0, 0)
	require.True(t, tree.RootIsTerm)
	assert.Equal(t, "fox", string(tree.Terms[tree.Root].Text))
}

func TestParseDebugQueryPrefixTerm(t *testing.T) {
	b := querytree.NewBuilder(nil)
	err := ParseDebugQuery("fo*", b)
	require.NoError(t, err)

	tree := b.Finish(0, 0)
	require.True(t, tree.RootIsTerm)
	assert.True(t, tree.Terms[tree.Root].IsPrefix())
	assert.Equal(t, "fo", string(tree.Terms[tree.Root].Text))
}

func TestParseDebugQuerySyntaxError(t *testing.T) {
	b := querytree.NewBuilder(nil)
	err := ParseDebugQuery("AND(fox", b)
	assert.Error(t, err)
}

func TestParseDebugQueryNestedOperators(t *testing.T) {
	b := querytree.NewBuilder(nil)
	err := ParseDebugQuery("OR(AND(fox,jumps),dog)", b)
	require.NoError(t, err)

	tree := b.Finish(0, 0)
	require.False(t, tree.Empty())
	assert.Equal(t, querytree.KindOr, tree.Nodes[tree.Root].Kind)
}
