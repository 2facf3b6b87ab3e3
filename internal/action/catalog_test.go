package action

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIsTotal(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 6)
	for _, k := range kinds {
		spec, err := Lookup(k)
		require.NoError(t, err, k)
		assert.Equal(t, k, spec.Kind)
		assert.NotEmpty(t, spec.Label, k)
		assert.NotEmpty(t, spec.Placeholder, k)
		assert.NotNil(t, spec.Template, k)
		if k.IsImage() {
			assert.Empty(t, spec.SystemInstruction)
		} else {
			assert.NotEmpty(t, spec.SystemInstruction, k)
		}
	}
}

func TestLookupUnknownKind(t *testing.T) {
	_, err := Lookup(Kind("WRITE_POEM"))
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.Panics(t, func() { MustLookup(Kind("")) })
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("  seo_keywords ")
	require.NoError(t, err)
	assert.Equal(t, SEOKeywords, k)

	_, err = ParseKind("nope")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuildPromptSEOKeywords(t *testing.T) {
	p, err := BuildPrompt(SEOKeywords, "vegan recipes")
	require.NoError(t, err)
	assert.Contains(t, p.Text, "vegan recipes")
	assert.Contains(t, p.SystemInstruction, "keywords")
	assert.Contains(t, p.SystemInstruction, "intent")
}

func TestBuildPromptImageUsesRawText(t *testing.T) {
	p, err := BuildPrompt(GenerateImage, "sunset over mountains")
	require.NoError(t, err)
	assert.Equal(t, "sunset over mountains", p.Text)
	assert.Empty(t, p.SystemInstruction)
}

func TestBuildPromptPassesContextThrough(t *testing.T) {
	raw := "  <b>draft</b> with \"quotes\" and %s  "
	p, err := BuildPrompt(PolishContent, raw)
	require.NoError(t, err)
	assert.Equal(t, "Draft Text: "+raw, p.Text)
}

func TestRandomImageExample(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	got := RandomImageExample(r)
	assert.Contains(t, ImageExamples(), got)
	assert.Contains(t, ImageExamples(), RandomImageExample(nil))
}
