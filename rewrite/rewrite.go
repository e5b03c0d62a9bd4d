// Package rewrite implements the pluggable per-index term rewriter
// registry and the document-side reduce matcher (§4.2 "language
// variants", §4.3).
//
// A Rewriter is owned by the host (the per-language stemmer/synonym
// expander is out of scope, per spec.md's "out of scope" list); Juniper
// only drives it through Rewrite/Iterator.
package rewrite

import (
	"sync"

	"github.com/sourcegraph/juniper/querytree"
)

// Iterator yields the expanded or reduced forms produced by a single
// Rewrite call. Juniper owns the traversal until Next reports false,
// mirroring the original NextTerm(handle) contract.
type Iterator interface {
	Next() (form []rune, ok bool)
}

// Rewriter expands a query term into alternate forms (for_query) or
// reduces a document token into the canonical form(s) it was registered
// under (for_document). A rewriter may fill either role, or both.
type Rewriter interface {
	ForQuery() bool
	ForDocument() bool
	// Rewrite starts an iteration over the forms of text for the given
	// language id. langID is negative when no language context applies.
	Rewrite(langID int, text []rune) Iterator
}

// Registry holds rewriters registered once per index name at startup
// (§4.1 "Rewriter lookup by index name"). It implements
// querytree.Registrar so package querytree's Builder can consult it
// directly while walking the host AST.
type Registry struct {
	mu        sync.RWMutex
	byIndex   map[string]int
	rewriters []Rewriter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byIndex: make(map[string]int)}
}

// Register associates rw with indexName and returns the slot it was
// assigned; re-registering the same index name replaces the prior
// rewriter in place without changing the slot.
func (r *Registry) Register(indexName string, rw Rewriter) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byIndex[indexName]; ok {
		r.rewriters[idx] = rw
		return idx
	}
	idx := len(r.rewriters)
	r.rewriters = append(r.rewriters, rw)
	r.byIndex[indexName] = idx
	return idx
}

// Lookup implements querytree.Registrar.
func (r *Registry) Lookup(indexName string) (idx int, forQuery, forDocument bool, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, found := r.byIndex[indexName]
	if !found {
		return 0, false, false, false
	}
	rw := r.rewriters[i]
	return i, rw.ForQuery(), rw.ForDocument(), true
}

// At returns the rewriter registered at slot idx.
func (r *Registry) At(idx int) Rewriter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rewriters[idx]
}

var _ querytree.Registrar = (*Registry)(nil)
