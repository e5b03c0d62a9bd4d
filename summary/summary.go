// Package summary builds the dynamic, query-biased teaser described in
// §4.6: pick the best non-overlapping matches, size context windows
// around them, complete partial words at the boundaries, mark up
// highlights, fold in accidental term hits, and emit the final teaser
// bytes.
package summary

import (
	"github.com/sourcegraph/juniper/matcher"
)

// Tunable constants from §4.6, named after the original SummaryDesc's
// own constants.
const (
	MinContinuation = 8
	MinSurroundLen  = 10
	MaxScanWord     = 64
)

// EscapeMode is the dynsum.escape_markup setting (on, off or auto). It
// is carried in Config; emit copies document bytes unescaped in every
// mode.
type EscapeMode int

const (
	EscapeAuto EscapeMode = iota
	EscapeOn
	EscapeOff
)

// Config holds the per-document-class teaser tunables (dynsum.* option
// keys, §6).
type Config struct {
	Length     int // L: desired teaser length in bytes
	MinLength  int // L_min
	MaxMatches int // M
	Surround   int // S: default per-side context in bytes

	Continuation string // inserted at an elided gap

	Connectors map[rune]bool // carried from configuration; not consulted by Build
	Separators map[rune]bool // word boundaries for word completion; not stripped from the output

	HighlightOpen  string
	HighlightClose string

	// Fallback selects what Build returns when no matches were found at
	// all: "prefix" (default) builds a forward-scan prefix teaser,
	// "none" returns an empty summary (§6, §7 error table).
	Fallback string

	Escape             EscapeMode
	PreserveWhitespace bool
}

// DefaultConfig matches §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Length:         256,
		MinLength:      64,
		MaxMatches:     3,
		Surround:       20,
		Continuation:   "...",
		Connectors:     map[rune]bool{'-': true, '\'': true},
		Separators:     map[rune]bool{0x1D: true, 0x1F: true},
		HighlightOpen:  "<b>",
		HighlightClose: "</b>",
		Fallback:       "prefix",
		Escape:         EscapeAuto,
	}
}

// Builder builds one teaser for one document. It holds no state across
// documents and is safe to reuse sequentially (not concurrently).
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build returns the teaser for doc given the matcher's completed
// results (ranked) and full occurrence list, per §4.6. usesValidity
// should be true when the query carries CHKVAL (a phrase-shaped query),
// so accidental-match folding honors KeyOccurrence.Valid.
func (b *Builder) Build(doc []byte, results []matcher.Result, occurrences []*matcher.KeyOccurrence, usesValidity bool) string {
	if b.cfg.Length+4*MinContinuation >= len(doc) {
		return b.wholeDocument(doc, occurrences, usesValidity)
	}
	if len(results) == 0 {
		return b.fallback(doc)
	}

	picked := pickMatches(results, b.cfg.MinLength, b.cfg.MaxMatches, b.cfg.Surround)
	if len(picked) == 0 {
		return b.fallback(doc)
	}

	segs := sizeWindows(picked, b.cfg, len(doc))
	segs = foldAccidentalMatches(segs, occurrences, usesValidity)
	return b.emit(doc, segs)
}

// wholeDocument implements the "whole-document shortcut": one highlight
// per key occurrence (skipping invalid ones when usesValidity), with a
// passthrough descriptor for every inter-occurrence run.
func (b *Builder) wholeDocument(doc []byte, occurrences []*matcher.KeyOccurrence, usesValidity bool) string {
	var segs []segment
	cursor := uint32(0)
	for _, occ := range occurrences {
		if usesValidity && !occ.Valid {
			continue
		}
		if occ.BytePos > cursor {
			segs = append(segs, segment{kind: segPassthrough, start: cursor, end: occ.BytePos})
		}
		segs = append(segs, segment{kind: segHighlight, start: occ.BytePos, end: occ.BytePos + occ.ByteLen, occ: occ})
		cursor = occ.BytePos + occ.ByteLen
	}
	if cursor < uint32(len(doc)) {
		segs = append(segs, segment{kind: segPassthrough, start: cursor, end: uint32(len(doc))})
	}
	return b.emit(doc, segs)
}

// fallback is used when no matches were found at all. Per §7's error
// table, Fallback=="none" returns an empty summary; the default
// ("prefix") builds a forward-scan prefix teaser.
func (b *Builder) fallback(doc []byte) string {
	if b.cfg.Fallback == "none" {
		return ""
	}
	return b.fallbackPrefix(doc)
}

// fallbackPrefix is used when no matches were found at all: a forward
// scan taking up to Length bytes, then the continuation marker.
func (b *Builder) fallbackPrefix(doc []byte) string {
	n := b.cfg.Length
	if n > len(doc) {
		return string(doc)
	}
	out := string(doc[:n])
	if n < len(doc) {
		out += b.cfg.Continuation
	}
	return out
}
