package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/floatchat-ai/floatchat/internal/viz"
)

// ValidationReason classifies why a candidate response was rejected.
type ValidationReason string

const (
	// ReasonMalformed means the raw text did not parse into one of the two
	// candidate shapes.
	ReasonMalformed ValidationReason = "malformed"

	// ReasonUnknownVisualization means the declared kind is outside the
	// closed rule set.
	ReasonUnknownVisualization ValidationReason = "unknown_visualization"

	// ReasonMissingRequiredColumn means the query does not project a column
	// the declared kind requires.
	ReasonMissingRequiredColumn ValidationReason = "missing_required_column"
)

// ValidationError reports a candidate that failed structural validation.
// The orchestrator maps it to the fallback answer; Detail stays internal.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("chat: validation failed (%s): %s", e.Reason, e.Detail)
}

// candidate is the untrusted decoded shape of generation output. Treated
// as adversarial until validated.
type candidate struct {
	Type          string `json:"type"`
	Answer        string `json:"answer"`
	SQLQuery      string `json:"sql_query"`
	Visualization string `json:"visualization"`
}

// Validated is the only shape the orchestrator acts on. Exactly one of
// Answer or SQL is populated, discriminated by IsText.
type Validated struct {
	IsText        bool
	Answer        string
	SQL           string
	Visualization viz.Kind
}

var (
	limitClauseRe = regexp.MustCompile(`(?i)\blimit\s+(\d+)`)
	fromKeywordRe = regexp.MustCompile(`(?i)\bfrom\b`)
)

// Validate parses raw candidate text and checks it against the rule table.
// Fixable issues (missing or oversized LIMIT) are repaired; structural
// violations (unknown kind, missing required column) fail closed.
func Validate(raw string) (Validated, error) {
	var c candidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Validated{}, &ValidationError{Reason: ReasonMalformed, Detail: "output is not a JSON object"}
	}

	switch c.Type {
	case "text":
		if strings.TrimSpace(c.Answer) == "" {
			return Validated{}, &ValidationError{Reason: ReasonMalformed, Detail: "text response with empty answer"}
		}
		return Validated{IsText: true, Answer: c.Answer}, nil

	case "database":
		sql := cleanSQL(c.SQLQuery)
		if sql == "" {
			return Validated{}, &ValidationError{Reason: ReasonMalformed, Detail: "database response with empty query"}
		}

		kind := viz.Kind(c.Visualization)
		rule, ok := viz.RuleFor(kind)
		if !ok {
			return Validated{}, &ValidationError{
				Reason: ReasonUnknownVisualization,
				Detail: fmt.Sprintf("kind %q is not in the rule table", c.Visualization),
			}
		}

		if col, ok := missingProjection(sql, rule.RequiredColumns); !ok {
			return Validated{}, &ValidationError{
				Reason: ReasonMissingRequiredColumn,
				Detail: fmt.Sprintf("kind %s requires projected column %q", kind, col),
			}
		}

		sql = enforceRowLimit(sql, rule.RowLimit)
		return Validated{SQL: sql, Visualization: kind}, nil

	default:
		return Validated{}, &ValidationError{
			Reason: ReasonMalformed,
			Detail: fmt.Sprintf("unrecognized response type %q", c.Type),
		}
	}
}

// cleanSQL trims whitespace and trailing statement terminators so a
// repaired LIMIT can be appended safely.
func cleanSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	for strings.HasSuffix(sql, ";") {
		sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	}
	return sql
}

// missingProjection checks that every required column appears as an
// identifier in the query's projection clause. The check is textual, not a
// SQL parse: "SELECT *" projects everything, and otherwise each column
// must appear as a whole word between SELECT and FROM.
func missingProjection(sql string, required []string) (string, bool) {
	if len(required) == 0 {
		return "", true
	}

	projection := projectionClause(sql)
	if projection == "" {
		// Not a recognizable SELECT head. Fail the first requirement rather
		// than guessing.
		return required[0], false
	}
	if strings.Contains(projection, "*") {
		return "", true
	}

	for _, col := range required {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(col) + `\b`)
		if !re.MatchString(projection) {
			return col, false
		}
	}
	return "", true
}

// projectionClause returns the text between the leading SELECT and the
// first FROM keyword, or "" when the statement has no such head. FROM is
// matched on word boundaries, not surrounding spaces: generated SQL often
// breaks the line before it.
func projectionClause(sql string) string {
	lower := strings.ToLower(sql)
	selIdx := strings.Index(lower, "select")
	if selIdx < 0 {
		return ""
	}
	rest := sql[selIdx+len("select"):]
	loc := fromKeywordRe.FindStringIndex(rest)
	if loc == nil {
		return ""
	}
	return rest[:loc[0]]
}

// enforceRowLimit repairs the query's LIMIT clause against the ceiling: a
// missing clause is appended, an oversized one is clamped, a conforming
// one is left alone. ceiling <= 0 means unlimited.
func enforceRowLimit(sql string, ceiling int) string {
	if ceiling <= 0 {
		return sql
	}

	m := limitClauseRe.FindStringSubmatchIndex(sql)
	if m == nil {
		return fmt.Sprintf("%s LIMIT %d", sql, ceiling)
	}

	n, err := strconv.Atoi(sql[m[2]:m[3]])
	if err != nil || n > ceiling {
		return sql[:m[0]] + fmt.Sprintf("LIMIT %d", ceiling) + sql[m[1]:]
	}
	return sql
}
