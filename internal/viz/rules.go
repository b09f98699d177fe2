// Package viz defines the closed set of visualization kinds and the
// structural constraints a generated query must satisfy for each kind.
//
// The rule table is data, not code: adding a kind is a new table entry.
// Consumers treat the table as read-only; it is safe for unsynchronized
// concurrent reads.
package viz

import (
	"fmt"
	"strings"
)

// Kind labels how a result set should be rendered by the caller.
type Kind string

// The closed set of visualization kinds. A response declaring any other
// kind is invalid.
const (
	KindTable       Kind = "table"
	KindMap         Kind = "map"
	KindLineChart   Kind = "line_chart"
	KindScatterPlot Kind = "scatter_plot"
	KindBarChart    Kind = "bar_chart"
	KindHistogram   Kind = "histogram"
	KindTimeSeries  Kind = "time_series"
)

// KindText marks a plain textual answer. It is not part of the rule table:
// text responses carry no query and are never checked against it.
const KindText = "text"

// Rule holds the structural constraints for one visualization kind.
type Rule struct {
	// RequiredColumns must all appear as projected identifiers in the
	// query text. Empty means no projection requirement.
	RequiredColumns []string

	// RowLimit is the maximum row count the query may request. Zero means
	// unlimited. A missing LIMIT clause is repaired to this ceiling; a
	// larger explicit LIMIT is clamped down to it.
	RowLimit int

	// EligibilityHint describes, in prose, when this kind applies. It is
	// rendered into the generation instruction, not enforced in code.
	EligibilityHint string
}

// rules is the authoritative table, keyed by kind. Row ceilings keep chart
// payloads renderable in a browser; map and chart kinds are capped harder
// than histograms because each row becomes a drawn feature.
var rules = map[Kind]Rule{
	KindTable: {
		EligibilityHint: "default for general data requests with no obvious chart shape",
	},
	KindMap: {
		RequiredColumns: []string{"latitude", "longitude", "float_id"},
		RowLimit:        1500,
		EligibilityHint: "questions about float locations, positions, or trajectories",
	},
	KindLineChart: {
		RowLimit:        1500,
		EligibilityHint: "a measured value against depth or another continuous axis, e.g. temperature vs pressure profiles",
	},
	KindScatterPlot: {
		RowLimit:        1500,
		EligibilityHint: "only for comparing two measured values, e.g. temperature vs salinity",
	},
	KindBarChart: {
		EligibilityHint: "aggregated values per category, e.g. measurement counts per float or per project",
	},
	KindHistogram: {
		RowLimit:        5000,
		EligibilityHint: "distribution of a single measured value",
	},
	KindTimeSeries: {
		RequiredColumns: []string{"timestamp"},
		EligibilityHint: "a measured value over time; the projection must include timestamp",
	},
}

// kindOrder fixes the iteration order for prompt rendering and Kinds.
var kindOrder = []Kind{
	KindTable, KindMap, KindLineChart, KindScatterPlot,
	KindBarChart, KindHistogram, KindTimeSeries,
}

// RuleFor returns the rule for kind. ok is false when the kind is outside
// the closed set.
func RuleFor(kind Kind) (Rule, bool) {
	r, ok := rules[kind]
	return r, ok
}

// Kinds returns the closed set in stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// RenderConstraints formats the rule table as prompt text, one line per
// kind, in stable order.
func RenderConstraints() string {
	var b strings.Builder
	for _, k := range kindOrder {
		r := rules[k]
		fmt.Fprintf(&b, "- %s: %s.", k, r.EligibilityHint)
		if len(r.RequiredColumns) > 0 {
			fmt.Fprintf(&b, " The query MUST project the columns: %s.", strings.Join(r.RequiredColumns, ", "))
		}
		if r.RowLimit > 0 {
			fmt.Fprintf(&b, " The query MUST include LIMIT %d or smaller.", r.RowLimit)
		}
		b.WriteString("\n")
	}
	return b.String()
}
