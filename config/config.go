// Package config loads Juniper's two configuration surfaces: the
// per-query option string (§6 "Option string") and the property-source
// configuration (§6 "Configuration") that seeds the long-lived
// per-index-class defaults. It translates both into the tunables the
// matcher, rank and summary packages actually take.
package config

import (
	"flag"
	"sort"
	"strconv"
	"strings"

	"github.com/peterbourgon/ff/v3"

	"github.com/sourcegraph/juniper/matcher"
	"github.com/sourcegraph/juniper/rank"
	"github.com/sourcegraph/juniper/summary"
)

// optionKeys lists every recognized option-string key (§6), longest
// first. The grammar is a flat underscore-separated "key.value" list,
// but some keys (winsize_fallback_multiplier, max_match_candidates)
// themselves contain underscores, so naively splitting on "_" would cut
// them apart; matching the longest known key at each position resolves
// the ambiguity unambiguously since no recognized key is a suffix of
// another split differently.
var optionKeys = func() []string {
	keys := []string{
		"priv", "dynlength", "dynmatches", "dynsurmax",
		"near", "within", "onear",
		"stemmin", "stemext",
		"winsize_fallback_multiplier", "winsize", "max_match_candidates",
		"log", "debug",
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	return keys
}()

// Options is the per-query override set parsed from an option string
// (§6). Only fields explicitly present in the string are populated;
// zero-value fields mean "use the Configuration default".
type Options struct {
	Privileged bool

	DynLength  *int
	DynMatches *int
	DynSurMax  *int

	NearLimit  *int
	WithinLimit *int
	OnearLimit  *int

	StemMin *int
	StemExt *int

	WinSize            *int
	WinSizeFallbackMul *int
	MaxMatchCandidates *int

	// LogBits/DebugBits are only honored when Privileged is set.
	LogBits   *int
	DebugBits *int
}

// ParseOptions parses a flat underscore-separated "key.value" list
// (§6's option string grammar). Unknown keys are skipped silently, per
// the §7 error table's "Unknown option token" row. A malformed value
// (non-integer where an integer is expected) is treated the same way:
// that one key is dropped, parsing continues.
func ParseOptions(optionString string) Options {
	var o Options
	if optionString == "" {
		return o
	}

	for _, tok := range splitOptionTokens(optionString) {
		key, val, ok := strings.Cut(tok, ".")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			continue
		}

		switch key {
		case "priv":
			o.Privileged = n > 0
		case "dynlength":
			o.DynLength = &n
		case "dynmatches":
			o.DynMatches = &n
		case "dynsurmax":
			o.DynSurMax = &n
		case "near":
			o.NearLimit = &n
		case "within":
			o.WithinLimit = &n
		case "onear":
			o.OnearLimit = &n
		case "stemmin":
			o.StemMin = &n
		case "stemext":
			o.StemExt = &n
		case "winsize":
			o.WinSize = &n
		case "winsize_fallback_multiplier":
			o.WinSizeFallbackMul = &n
		case "max_match_candidates":
			o.MaxMatchCandidates = &n
		case "log":
			if o.Privileged {
				o.LogBits = &n
			}
		case "debug":
			if o.Privileged {
				o.DebugBits = &n
			}
		}
	}
	return o
}

// splitOptionTokens breaks a "key.value_key.value_..." option string
// into its individual "key.value" tokens, recognizing keys from
// optionKeys (longest first) so a key that itself contains an
// underscore is not split apart. An unrecognized leading key is skipped
// up to the next "_" per the "unknown keys are skipped" rule.
func splitOptionTokens(s string) []string {
	var out []string
	for len(s) > 0 {
		matched := ""
		for _, k := range optionKeys {
			if strings.HasPrefix(s, k+".") {
				matched = k
				break
			}
		}
		if matched == "" {
			if idx := strings.IndexByte(s, '_'); idx >= 0 {
				s = s[idx+1:]
			} else {
				s = ""
			}
			continue
		}

		rest := s[len(matched)+1:] // past "key."
		// The value runs until the next "_" that begins a recognized
		// key's "key." prefix, or end of string.
		end := len(rest)
		for i := 0; i < len(rest); i++ {
			if rest[i] != '_' {
				continue
			}
			for _, k := range optionKeys {
				if strings.HasPrefix(rest[i+1:], k+".") {
					end = i
				}
			}
			if end == i {
				break
			}
		}
		out = append(out, matched+"."+rest[:end])
		if end >= len(rest) {
			s = ""
		} else {
			s = rest[end+1:]
		}
	}
	return out
}

// Configuration is the long-lived property-source configuration of §6.
// One Configuration is normally shared by every query handle a Factory
// hands out; Options overrides it per query.
type Configuration struct {
	Summary  summary.Config
	Stem     struct {
		MinLength int
		MaxExtend int
	}
	Matcher  matcher.Config
	Proximity rank.Proximity

	EscapeMarkup       string // "on" | "off" | "auto"
	PreserveWhiteSpace bool
}

// proximityFactorMax is §6's upper clamp bound on proximity.factor;
// anything outside [0, proximityFactorMax] resets to the default.
const proximityFactorMax = 1e8

// Default returns the documented defaults for every property-source
// key in §6.
func Default() Configuration {
	var c Configuration
	c.Summary = summary.DefaultConfig()
	c.Stem.MinLength = 4
	c.Stem.MaxExtend = 5
	c.Matcher = matcher.DefaultConfig()
	c.Proximity = rank.DefaultProximity()
	c.EscapeMarkup = "auto"
	c.PreserveWhiteSpace = false
	return c
}

// Load parses property-source configuration from args (flags/env/config
// file, via github.com/peterbourgon/ff/v3) into a Configuration seeded
// with Default(). Recognized flags mirror §6's Configuration keys
// one-for-one; any flag left unset keeps its default.
func Load(args []string, opts ...ff.Option) (Configuration, error) {
	c := Default()

	fs := flag.NewFlagSet("juniper", flag.ContinueOnError)

	highlightOn := fs.String("dynsum.highlight_on", c.Summary.HighlightOpen, "teaser highlight open markup")
	highlightOff := fs.String("dynsum.highlight_off", c.Summary.HighlightClose, "teaser highlight close markup")
	continuation := fs.String("dynsum.continuation", c.Summary.Continuation, "teaser elision marker")
	fallback := fs.String("dynsum.fallback", c.Summary.Fallback, "none|prefix")
	length := fs.Int("dynsum.length", c.Summary.Length, "teaser target length in bytes")
	minLength := fs.Int("dynsum.min_length", c.Summary.MinLength, "teaser minimum length in bytes")
	maxMatches := fs.Int("dynsum.max_matches", c.Summary.MaxMatches, "teaser max highlighted matches")
	surroundMax := fs.Int("dynsum.surround_max", c.Summary.Surround, "teaser per-side context in bytes")
	separators := fs.String("dynsum.separators", "", "extra runes treated as word boundaries in word completion, as a literal string")
	connectors := fs.String("dynsum.connectors", "-'", "extra connector runes, as a literal string (recorded, not used by the teaser builder)")
	escapeMarkup := fs.String("dynsum.escape_markup", c.EscapeMarkup, "on|off|auto")
	preserveWhitespace := fs.Bool("dynsum.preserve_white_space", c.PreserveWhiteSpace, "preserve document whitespace verbatim in the teaser")

	stemMin := fs.Int("stem.min_length", c.Stem.MinLength, "minimum token length eligible for stem matching")
	stemExt := fs.Int("stem.max_extend", c.Stem.MaxExtend, "extra characters a stem match may extend beyond the term")

	winSize := fs.Int("matcher.winsize", int(c.Matcher.WinSize), "working-set age-out window, in tokens")
	maxMatchCandidates := fs.Int("matcher.max_match_candidates", c.Matcher.MaxMatchCandidates, "cap on live match candidates")

	proximityFactor := fs.Float64("proximity.factor", c.Proximity.Factor, "document rank scale factor")

	if err := ff.Parse(fs, args, opts...); err != nil {
		return Configuration{}, err
	}

	c.Summary.HighlightOpen = *highlightOn
	c.Summary.HighlightClose = *highlightOff
	c.Summary.Continuation = *continuation
	c.Summary.Fallback = *fallback
	c.Summary.Length = *length
	c.Summary.MinLength = *minLength
	c.Summary.MaxMatches = *maxMatches
	c.Summary.Surround = *surroundMax
	c.Summary.Escape = parseEscapeMode(*escapeMarkup)
	c.Summary.PreserveWhitespace = *preserveWhitespace
	for _, r := range *separators {
		c.Summary.Separators[r] = true
	}
	for _, r := range *connectors {
		c.Summary.Connectors[r] = true
	}

	c.Stem.MinLength = *stemMin
	c.Stem.MaxExtend = *stemExt

	c.Matcher.StemMinLength = *stemMin
	c.Matcher.StemMaxExtend = *stemExt
	c.Matcher.WinSize = uint32(*winSize)
	c.Matcher.MaxMatchCandidates = *maxMatchCandidates

	c.EscapeMarkup = *escapeMarkup
	c.PreserveWhiteSpace = *preserveWhitespace

	c.Proximity.Factor = clampProximityFactor(*proximityFactor)

	return c, nil
}

func clampProximityFactor(f float64) float64 {
	if f < 0 || f > proximityFactorMax {
		return rank.DefaultProximity().Factor
	}
	return f
}

func parseEscapeMode(s string) summary.EscapeMode {
	switch s {
	case "on":
		return summary.EscapeOn
	case "off":
		return summary.EscapeOff
	default:
		return summary.EscapeAuto
	}
}

// Apply folds a per-query Options override onto a base Configuration,
// returning the effective per-query tunables without mutating base.
func Apply(base Configuration, opts Options) (sc summary.Config, mc matcher.Config, pc rank.Proximity, rootLimits RootLimits) {
	sc = base.Summary
	mc = base.Matcher
	pc = base.Proximity

	if opts.DynLength != nil {
		sc.Length = *opts.DynLength
	}
	if opts.DynMatches != nil {
		sc.MaxMatches = *opts.DynMatches
	}
	if opts.DynSurMax != nil {
		sc.Surround = *opts.DynSurMax
	}
	if opts.StemMin != nil {
		mc.StemMinLength = *opts.StemMin
	}
	if opts.StemExt != nil {
		mc.StemMaxExtend = *opts.StemExt
	}
	if opts.WinSize != nil {
		mc.WinSize = uint32(*opts.WinSize)
	}
	if opts.WinSizeFallbackMul != nil {
		mc.WinSizeFallbackMultiplier = uint32(*opts.WinSizeFallbackMul)
	}
	if opts.MaxMatchCandidates != nil {
		mc.MaxMatchCandidates = *opts.MaxMatchCandidates
	}

	if opts.NearLimit != nil {
		rootLimits.Near = opts.NearLimit
	}
	if opts.WithinLimit != nil {
		rootLimits.Within = opts.WithinLimit
	}
	if opts.OnearLimit != nil {
		rootLimits.Onear = opts.OnearLimit
	}

	return sc, mc, pc, rootLimits
}

// RootLimits carries the option string's near.<n>/within.<n>/onear.<n>
// overrides (§6), applied to the query tree's root node by whichever
// caller owns tree construction — config itself never touches a
// querytree.Tree, so it only reports which limit to set.
type RootLimits struct {
	Near   *int
	Within *int
	Onear  *int
}
