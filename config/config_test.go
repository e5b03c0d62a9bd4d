package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsGrammar(t *testing.T) {
	o := ParseOptions("priv.1_near.5_stemmin.3_log.7")
	require.True(t, o.Privileged)
	require.NotNil(t, o.NearLimit)
	assert.Equal(t, 5, *o.NearLimit)
	require.NotNil(t, o.StemMin)
	assert.Equal(t, 3, *o.StemMin)
	require.NotNil(t, o.LogBits)
	assert.Equal(t, 7, *o.LogBits)
}

func TestParseOptionsSkipsUnknownKeys(t *testing.T) {
	o := ParseOptions("bogus.9_near.2")
	require.NotNil(t, o.NearLimit)
	assert.Equal(t, 2, *o.NearLimit)
}

func TestParseOptionsSkipsMalformedValue(t *testing.T) {
	o := ParseOptions("near.notanumber_within.4")
	assert.Nil(t, o.NearLimit)
	require.NotNil(t, o.WithinLimit)
	assert.Equal(t, 4, *o.WithinLimit)
}

func TestParseOptionsDebugLogGatedOnPrivileged(t *testing.T) {
	o := ParseOptions("log.3_debug.4")
	assert.Nil(t, o.LogBits, "log.<n> must be ignored without priv.<n> set")
	assert.Nil(t, o.DebugBits)
}

func TestParseOptionsHandlesUnderscoredKeyNames(t *testing.T) {
	// winsize_fallback_multiplier and max_match_candidates contain "_"
	// themselves; a naive split on "_" would cut them into bogus
	// fragments ("winsize", "fallback", "multiplier.9"). Verify the
	// whole key is recognized and its neighbors are parsed correctly.
	o := ParseOptions("winsize.20_winsize_fallback_multiplier.9_max_match_candidates.500_near.2")
	require.NotNil(t, o.WinSize)
	assert.Equal(t, 20, *o.WinSize)
	require.NotNil(t, o.WinSizeFallbackMul)
	assert.Equal(t, 9, *o.WinSizeFallbackMul)
	require.NotNil(t, o.MaxMatchCandidates)
	assert.Equal(t, 500, *o.MaxMatchCandidates)
	require.NotNil(t, o.NearLimit)
	assert.Equal(t, 2, *o.NearLimit)
}

func TestParseOptionsEmptyString(t *testing.T) {
	o := ParseOptions("")
	assert.False(t, o.Privileged)
	assert.Nil(t, o.DynLength)
}

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "<b>", c.Summary.HighlightOpen)
	assert.Equal(t, "</b>", c.Summary.HighlightClose)
	assert.Equal(t, "...", c.Summary.Continuation)
	assert.Equal(t, 4, c.Stem.MinLength)
	assert.Equal(t, 5, c.Stem.MaxExtend)
	assert.Equal(t, 0.25, c.Proximity.Factor)
}

func TestClampProximityFactorResetsOutOfRange(t *testing.T) {
	assert.Equal(t, 0.25, clampProximityFactor(-1))
	assert.Equal(t, 0.25, clampProximityFactor(1e9))
	assert.Equal(t, 0.5, clampProximityFactor(0.5))
}

func TestApplyOverridesOnlySetFields(t *testing.T) {
	base := Default()
	near := 7
	opts := Options{NearLimit: &near}

	sc, mc, pc, limits := Apply(base, opts)

	assert.Equal(t, base.Summary.Length, sc.Length, "unset dynlength must keep the base default")
	assert.Equal(t, base.Matcher.WinSize, mc.WinSize)
	assert.Equal(t, base.Proximity.Factor, pc.Factor)
	require.NotNil(t, limits.Near)
	assert.Equal(t, 7, *limits.Near)
}
