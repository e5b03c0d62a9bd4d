// Package engine wires querytree/match/matcher/rank/summary into the
// three-level API hosts actually call: a Factory shared across queries,
// a QueryHandle built once per query, and a Result built once per
// scored document (§2, §5).
package engine

import (
	"fmt"

	sglog "github.com/sourcegraph/log"

	"github.com/sourcegraph/juniper/config"
	"github.com/sourcegraph/juniper/juniperlog"
	gomatch "github.com/sourcegraph/juniper/match"
	"github.com/sourcegraph/juniper/matcher"
	"github.com/sourcegraph/juniper/querytree"
	"github.com/sourcegraph/juniper/rank"
	"github.com/sourcegraph/juniper/rewrite"
	"github.com/sourcegraph/juniper/summary"
	"github.com/sourcegraph/juniper/token"
)

// Factory holds everything shared across every query a host runs: the
// rewriter registry, the property-source configuration, and a scoped
// logger. It is immutable once built and safe for concurrent use by
// many goroutines, each building its own QueryHandle (§5).
type Factory struct {
	Rewriters *rewrite.Registry
	Config    config.Configuration
	Log       sglog.Logger
	Metrics   *Metrics // optional; nil disables instrumentation
}

// NewFactory returns a Factory. rewriters may be nil if the host has no
// stemmers/expanders registered. metrics may be nil to disable
// instrumentation.
func NewFactory(rewriters *rewrite.Registry, cfg config.Configuration, log sglog.Logger, metrics *Metrics) *Factory {
	if rewriters == nil {
		rewriters = rewrite.NewRegistry()
	}
	return &Factory{
		Rewriters: rewriters,
		Config:    cfg,
		Log:       juniperlog.Scope(log, "engine", "query handle / result lifecycle"),
		Metrics:   metrics,
	}
}

// QueryHandle owns one built, simplified query tree plus its per-
// language Match Object cache (§4.2, §5). A QueryHandle is built once
// per query and reused across every document scored against it; the
// Match Object cache is unsynchronized, matching §5's "queries are not
// shared across goroutines" contract.
type QueryHandle struct {
	factory *Factory

	tree   *querytree.Tree
	cache  *gomatch.Cache
	reduce *rewrite.ReduceMatcher

	summaryCfg  summary.Config
	matcherCfg  matcher.Config
	proximity   rank.Proximity

	logBits   int
	debugBits int

	log []string // HTML debug log lines, appended when logBits != 0
}

// NewQueryHandle builds a QueryHandle from a Builder-constructed tree
// and the per-query option string (§6). An empty tree (every term
// dropped) still yields a usable, inert QueryHandle: every Result it
// produces has an empty teaser and scores the proximity no-constraint
// offset as its relevance.
func (f *Factory) NewQueryHandle(tree *querytree.Tree, optionString string) *QueryHandle {
	opts := config.ParseOptions(optionString)
	if opts.NearLimit != nil || opts.WithinLimit != nil || opts.OnearLimit != nil {
		applyRootLimit(tree, opts)
	}

	sc, mc, pc, _ := config.Apply(f.Config, opts)

	qh := &QueryHandle{
		factory:    f,
		tree:       tree,
		cache:      gomatch.NewCache(tree, f.Rewriters),
		summaryCfg: sc,
		matcherCfg: mc,
		proximity:  pc,
	}
	if opts.Privileged {
		if opts.LogBits != nil {
			qh.logBits = *opts.LogBits
		}
		if opts.DebugBits != nil {
			qh.debugBits = *opts.DebugBits
		}
	}
	if !tree.Empty() {
		qh.reduce = rewrite.BuildReduceMatcher(tree, f.Rewriters)
	}
	return qh
}

func applyRootLimit(tree *querytree.Tree, opts config.Options) {
	if tree.Empty() || tree.RootIsTerm {
		return
	}
	root := &tree.Nodes[tree.Root]
	switch {
	case opts.NearLimit != nil:
		root.Limit = *opts.NearLimit
	case opts.WithinLimit != nil:
		root.Limit = *opts.WithinLimit
	case opts.OnearLimit != nil:
		root.Limit = *opts.OnearLimit
	}
	root.Options |= querytree.Limit
}

// Result is one document scored against a QueryHandle: the completed
// Matcher state plus the teaser it produces (§2's per-document
// control flow).
type Result struct {
	qh *QueryHandle
	m  *matcher.Matcher

	hasConstraints bool
	singleTerm     bool
}

// NewResult prepares a Result for one document in the given language.
// Callers Feed every token then call Flush before reading Relevancy,
// Teaser, or Log.
func (qh *QueryHandle) NewResult(langID int) *Result {
	obj := qh.cache.Get(langID)
	m := matcher.New(obj, qh.reduce, qh.matcherCfg)

	hasConstraints := false
	if !qh.tree.Empty() && !qh.tree.RootIsTerm {
		hasConstraints = qh.tree.Nodes[qh.tree.Root].HasConstraints()
	}

	return &Result{
		qh:             qh,
		m:              m,
		hasConstraints: hasConstraints,
		singleTerm:     qh.tree.RootIsTerm,
	}
}

// Feed consumes one document token.
func (r *Result) Feed(tok token.Token) { r.m.Feed(tok) }

// Flush ends the document's token stream, draining every pending match
// candidate per §4.4's end-of-document flush.
func (r *Result) Flush() { r.m.Flush() }

// GetRelevancy returns the document-global proximity rank (§4.5),
// the relevance output of §6.
func (r *Result) GetRelevancy() int64 {
	return rank.Document(r.m.Results(), r.hasConstraints, r.singleTerm, r.qh.proximity)
}

// GetTeaser builds the dynamic teaser (§4.6) for doc, given the results
// already accumulated by Feed/Flush.
func (r *Result) GetTeaser(doc []byte) string {
	if r.qh.tree.Empty() {
		return ""
	}
	usesValidity := false
	if !r.qh.tree.Empty() && !r.qh.tree.RootIsTerm {
		usesValidity = r.qh.tree.Nodes[r.qh.tree.Root].UsesValid()
	}
	b := summary.NewBuilder(r.qh.summaryCfg)
	out := b.Build(doc, r.m.Results(), r.m.Occurrences(), usesValidity)
	r.qh.factory.Metrics.observeResult(len(r.m.Results()) > 0, len(out))
	return out
}

// GetLog returns the HTML debug table for this document if the query
// handle was built with a privileged log.<n> option, else "" (§6's
// output contract: "empty [...] otherwise").
func (r *Result) GetLog() string {
	if r.qh.logBits == 0 {
		return ""
	}
	return buildDebugLog(r.qh.logBits, r.m)
}

// buildDebugLog renders one HTML table row per completed result,
// mirroring the original MatchCandidate::log() table (node, span,
// elem_weight, word_distance).
func buildDebugLog(logBits int, m *matcher.Matcher) string {
	out := fmt.Sprintf("<!-- %d results, %s occurrences -->\n",
		len(m.Results()), occurrenceCountSummary(len(m.Occurrences())))
	out += "<table>\n<tr><th>node</th><th>span</th><th>elem_weight</th><th>word_distance</th></tr>\n"
	for _, r := range m.Results() {
		if r.KeyOcc != nil {
			out += fmt.Sprintf("<tr><td>term</td><td>%d</td><td>%d</td><td>0</td></tr>\n",
				r.KeyOcc.BytePos, r.KeyOcc.Term.Weight)
			continue
		}
		c := r.Candidate
		out += fmt.Sprintf("<tr><td>%s</td><td>%d-%d</td><td>%d</td><td>%d</td></tr>\n",
			c.Node.Kind, c.StartPos, c.EndPos, c.ElemWeight, c.WordDistance())
	}
	out += "</table>\n"
	return out
}
