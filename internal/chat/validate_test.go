package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floatchat-ai/floatchat/internal/viz"
)

func validationReason(t *testing.T, err error) ValidationReason {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Reason
}

func TestValidateTextResponse(t *testing.T) {
	v, err := Validate(`{"type": "text", "answer": "Hello!"}`)
	require.NoError(t, err)
	assert.True(t, v.IsText)
	assert.Equal(t, "Hello!", v.Answer)
}

func TestValidateMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not JSON", `here is your query: SELECT 1`},
		{"unknown type", `{"type": "image", "answer": "x"}`},
		{"empty answer", `{"type": "text", "answer": "  "}`},
		{"empty query", `{"type": "database", "sql_query": "", "visualization": "table"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			assert.Equal(t, ReasonMalformed, validationReason(t, err))
		})
	}
}

func TestValidateUnknownVisualization(t *testing.T) {
	_, err := Validate(`{"type": "database", "sql_query": "SELECT float_id FROM argo_floats", "visualization": "pie_chart"}`)
	assert.Equal(t, ReasonUnknownVisualization, validationReason(t, err))
}

func TestValidateMapRequiresPositionColumns(t *testing.T) {
	// Projection without longitude must fail closed.
	_, err := Validate(`{"type": "database", "sql_query": "SELECT float_id, latitude FROM argo_measurements", "visualization": "map"}`)
	assert.Equal(t, ReasonMissingRequiredColumn, validationReason(t, err))

	// All three present passes, in any projection order.
	v, err := Validate(`{"type": "database", "sql_query": "SELECT longitude, latitude, float_id FROM argo_measurements", "visualization": "map"}`)
	require.NoError(t, err)
	assert.Equal(t, viz.KindMap, v.Visualization)

	// SELECT * projects everything.
	v, err = Validate(`{"type": "database", "sql_query": "SELECT * FROM argo_floats", "visualization": "map"}`)
	require.NoError(t, err)
	assert.Contains(t, v.SQL, "SELECT *")
}

func TestValidateMultilineQuery(t *testing.T) {
	// Backends routinely break the line before FROM; the projection check
	// must not depend on single-space formatting.
	v, err := Validate(`{"type": "database", "sql_query": "SELECT float_id, latitude, longitude\nFROM argo_measurements", "visualization": "map"}`)
	require.NoError(t, err)
	assert.Equal(t, viz.KindMap, v.Visualization)
	assert.Contains(t, v.SQL, "LIMIT 1500")
}

func TestValidateTimeSeriesRequiresTimestamp(t *testing.T) {
	_, err := Validate(`{"type": "database", "sql_query": "SELECT temperature FROM argo_measurements", "visualization": "time_series"}`)
	assert.Equal(t, ReasonMissingRequiredColumn, validationReason(t, err))

	v, err := Validate(`{"type": "database", "sql_query": "SELECT timestamp, temperature FROM argo_measurements", "visualization": "time_series"}`)
	require.NoError(t, err)
	assert.Equal(t, viz.KindTimeSeries, v.Visualization)
}

func TestValidateAppendsMissingLimit(t *testing.T) {
	for _, kind := range []viz.Kind{viz.KindMap, viz.KindLineChart, viz.KindScatterPlot} {
		t.Run(string(kind), func(t *testing.T) {
			raw := fmt.Sprintf(
				`{"type": "database", "sql_query": "SELECT latitude, longitude, float_id FROM argo_measurements", "visualization": "%s"}`,
				kind)
			v, err := Validate(raw)
			require.NoError(t, err)
			assert.Equal(t, "SELECT latitude, longitude, float_id FROM argo_measurements LIMIT 1500", v.SQL)
		})
	}

	v, err := Validate(`{"type": "database", "sql_query": "SELECT temperature FROM argo_measurements", "visualization": "histogram"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT temperature FROM argo_measurements LIMIT 5000", v.SQL)
}

func TestValidateClampsOversizedLimit(t *testing.T) {
	v, err := Validate(`{"type": "database", "sql_query": "SELECT latitude, longitude, float_id FROM argo_measurements LIMIT 99999", "visualization": "map"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT latitude, longitude, float_id FROM argo_measurements LIMIT 1500", v.SQL)
}

func TestValidateKeepsConformingLimit(t *testing.T) {
	v, err := Validate(`{"type": "database", "sql_query": "SELECT latitude, longitude, float_id FROM argo_measurements LIMIT 100", "visualization": "map"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT latitude, longitude, float_id FROM argo_measurements LIMIT 100", v.SQL)
}

func TestValidateNoLimitForUnboundedKinds(t *testing.T) {
	v, err := Validate(`{"type": "database", "sql_query": "SELECT project_name, count(*) FROM argo_floats GROUP BY project_name", "visualization": "bar_chart"}`)
	require.NoError(t, err)
	assert.NotContains(t, v.SQL, "LIMIT")
}

func TestValidateStripsTrailingSemicolons(t *testing.T) {
	v, err := Validate(`{"type": "database", "sql_query": "SELECT latitude, longitude, float_id FROM argo_floats; ", "visualization": "map"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT latitude, longitude, float_id FROM argo_floats LIMIT 1500", v.SQL)
}

func TestCleanSQL(t *testing.T) {
	assert.Equal(t, "SELECT 1", cleanSQL("  SELECT 1;;  "))
	assert.Equal(t, "", cleanSQL(" ; "))
}

func TestEnforceRowLimit(t *testing.T) {
	assert.Equal(t, "SELECT 1 LIMIT 10", enforceRowLimit("SELECT 1", 10))
	assert.Equal(t, "SELECT 1 LIMIT 10", enforceRowLimit("SELECT 1 LIMIT 50", 10))
	assert.Equal(t, "SELECT 1 limit 5", enforceRowLimit("SELECT 1 limit 5", 10))
	assert.Equal(t, "SELECT 1", enforceRowLimit("SELECT 1", 0))
}

func TestProjectionClause(t *testing.T) {
	assert.Equal(t, " a, b ", projectionClause("SELECT a, b FROM t"))
	assert.Equal(t, "", projectionClause("DELETE t"))
	assert.Equal(t, " a, b ", projectionClause("select a, b from t"))
	assert.Equal(t, " a, b\n", projectionClause("select a, b\nfrom t"))
	assert.Equal(t, " a, b\t", projectionClause("SELECT a, b\tFROM t"))
}
