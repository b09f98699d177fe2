package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleForClosedSet(t *testing.T) {
	for _, k := range Kinds() {
		_, ok := RuleFor(k)
		assert.True(t, ok, "kind %s should have a rule", k)
	}

	_, ok := RuleFor(Kind("pie_chart"))
	assert.False(t, ok)

	// "text" is deliberately outside the rule table.
	_, ok = RuleFor(Kind(KindText))
	assert.False(t, ok)
}

func TestMapRule(t *testing.T) {
	r, ok := RuleFor(KindMap)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"latitude", "longitude", "float_id"}, r.RequiredColumns)
	assert.Equal(t, 1500, r.RowLimit)
}

func TestRowLimits(t *testing.T) {
	for _, k := range []Kind{KindLineChart, KindScatterPlot, KindMap} {
		r, _ := RuleFor(k)
		assert.Equal(t, 1500, r.RowLimit, "kind %s", k)
	}

	r, _ := RuleFor(KindHistogram)
	assert.Equal(t, 5000, r.RowLimit)

	r, _ = RuleFor(KindTable)
	assert.Zero(t, r.RowLimit)
}

func TestRenderConstraintsCoversAllKinds(t *testing.T) {
	text := RenderConstraints()
	for _, k := range Kinds() {
		assert.Contains(t, text, string(k))
	}
	assert.Contains(t, text, "LIMIT 1500")
	assert.Contains(t, text, "LIMIT 5000")
	assert.Contains(t, text, "latitude, longitude, float_id")

	// One line per kind.
	assert.Equal(t, len(Kinds()), strings.Count(text, "\n"))
}
