package matcher

import "github.com/sourcegraph/juniper/querytree"

// Config tunes the streaming matcher, set once per query from the
// option string's matcher.* keys (§6).
type Config struct {
	StemMinLength             int
	StemMaxExtend             int
	WinSize                   uint32
	WinSizeFallbackMultiplier uint32
	MaxMatchCandidates        int
	NeedCompleteCount         int
}

// DefaultConfig matches the option table's documented defaults.
func DefaultConfig() Config {
	return Config{
		StemMinLength:             4,
		StemMaxExtend:             5,
		WinSize:                   100,
		WinSizeFallbackMultiplier: 10,
		MaxMatchCandidates:        1000,
		NeedCompleteCount:         1 << 30,
	}
}

// dispatchTerm applies the three ordered per-token matching rules of
// §4.4 "Per-token dispatch" and reports whether term hits tokenText, and
// whether the hit is exact (token length equals term length).
func dispatchTerm(term *querytree.Term, tokenText []rune, cfg Config) (hit bool, exact bool) {
	tl := len(tokenText)
	termLen := len(term.Text)

	if term.IsExact() && tl != termLen {
		return false, false
	}

	if term.IsWildcard() {
		if !wildcardMatch(term.Text, tokenText) {
			return false, false
		}
		return true, tl == termLen
	}

	if tl < termLen {
		return false, false
	}
	if !term.IsPrefix() {
		if termLen > cfg.StemMinLength {
			if tl > termLen+cfg.StemMaxExtend {
				return false, false
			}
		} else if tl != termLen {
			return false, false
		}
	}
	for i := 0; i < termLen; i++ {
		if tokenText[i] != term.Text[i] {
			return false, false
		}
	}
	return true, tl == termLen
}
