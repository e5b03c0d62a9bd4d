package rewrite

import "github.com/sourcegraph/juniper/querytree"

// DefaultLangID selects the unexpanded/language-agnostic form, mirroring
// the "default language id (negative) selects the unexpanded object"
// convention of §4.2.
const DefaultLangID = -1

// ReduceMatcher is the per-query mapping rewriter → (reduced_form →
// terms) of §4.3. It is built once per Query Tree and consulted once per
// document token.
type ReduceMatcher struct {
	registry *Registry
	// docRewriters are the registry slots of every distinct for_document
	// rewriter attached to a term in the tree.
	docRewriters []int
	// table[rewriterIdx][reducedForm] lists the query terms that, when
	// rewritten under that rewriter, produce reducedForm.
	table map[int]map[string][]*querytree.Term
}

// BuildReduceMatcher walks tree's terms and, for every term owned by a
// for_document rewriter, rewrites the term's own text to discover which
// reduced surface forms should map back to it. Terms with no rewriter,
// a query-only rewriter, or marked Dropped (superseded by a synthetic
// OR node during language expansion, §4.2), are ignored.
func BuildReduceMatcher(tree *querytree.Tree, registry *Registry) *ReduceMatcher {
	rm := &ReduceMatcher{
		registry: registry,
		table:    make(map[int]map[string][]*querytree.Term),
	}
	if registry == nil {
		return rm
	}

	seen := make(map[int]bool)
	for i := range tree.Terms {
		term := &tree.Terms[i]
		if term.Dropped || term.RewriterIndex < 0 {
			continue
		}
		rw := registry.At(term.RewriterIndex)
		if !rw.ForDocument() {
			continue
		}
		if !seen[term.RewriterIndex] {
			seen[term.RewriterIndex] = true
			rm.docRewriters = append(rm.docRewriters, term.RewriterIndex)
			rm.table[term.RewriterIndex] = make(map[string][]*querytree.Term)
		}

		it := rw.Rewrite(DefaultLangID, term.Text)
		for {
			form, ok := it.Next()
			if !ok {
				break
			}
			key := string(form)
			byForm := rm.table[term.RewriterIndex]
			byForm[key] = append(byForm[key], term)
		}
	}
	return rm
}

// Active reports whether any for_document rewriter is in play; callers
// can skip the reduce pass entirely when false.
func (rm *ReduceMatcher) Active() bool { return len(rm.docRewriters) > 0 }

// Lookup runs every registered document rewriter over tokenText for the
// given language id and returns every query term whose reduced form
// matches one of the yielded forms (§4.3: "a single surface token may
// match multiple query terms registered under different reduced forms").
func (rm *ReduceMatcher) Lookup(langID int, tokenText []rune) []*querytree.Term {
	if !rm.Active() {
		return nil
	}
	var hits []*querytree.Term
	for _, idx := range rm.docRewriters {
		rw := rm.registry.At(idx)
		it := rw.Rewrite(langID, tokenText)
		byForm := rm.table[idx]
		for {
			form, ok := it.Next()
			if !ok {
				break
			}
			hits = append(hits, byForm[string(form)]...)
		}
	}
	return hits
}
