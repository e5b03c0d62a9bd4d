// Package juniperlog centralizes the sourcegraph/log field constructors
// and scoping convention every Juniper package logs through, following
// the internal/mountinfo pattern of scoping one root logger per
// component and attaching structured fields with .With.
package juniperlog

import (
	sglog "github.com/sourcegraph/log"
)

// Scope returns a child logger for component, named consistently across
// the module ("juniper.<component>").
func Scope(root sglog.Logger, component, description string) sglog.Logger {
	return root.Scoped("juniper."+component, description)
}

// MalformedQueryTree logs §7's "non-terminal received extra child after
// fill" row: a warning, the offending child discarded.
func MalformedQueryTree(l sglog.Logger, kind string, childNo int) {
	l.Warn("discarding child after node fill",
		sglog.String("kind", kind),
		sglog.Int("childNo", childNo),
	)
}

// ArityMismatch logs §7's "arity mismatch during simplification" row:
// the whole query tree is destroyed, callers get an empty handle.
func ArityMismatch(l sglog.Logger, kind string, want, got int) {
	l.Warn("query tree destroyed: arity mismatch during simplification",
		sglog.String("kind", kind),
		sglog.Int("want", want),
		sglog.Int("got", got),
	)
}

// MalformedAnnotation logs §7's "malformed interlinear annotation" row:
// degraded to best-effort prefix match on the anchor text.
func MalformedAnnotation(l sglog.Logger, anchor string) {
	l.Warn("malformed interlinear annotation, degrading to prefix match",
		sglog.String("anchor", anchor),
	)
}

// CandidateAllocFailed logs §7's "allocation failure for a candidate"
// row: the candidate is skipped, the document is not aborted.
func CandidateAllocFailed(l sglog.Logger, nodeIdx int, err error) {
	l.Error("skipping match candidate",
		sglog.Int("nodeIdx", nodeIdx),
		sglog.Error(err),
	)
}
