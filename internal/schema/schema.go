// Package schema describes the queryable relational schema used to ground
// query generation. The descriptor is static: it is defined once here,
// never mutated, and shared read-only across all requests.
package schema

import (
	"fmt"
	"strings"
)

// Column is one column of a queryable table.
type Column struct {
	Name        string
	Type        string
	Description string
}

// Table is one queryable table with its columns in declaration order.
type Table struct {
	Name    string
	Comment string
	Columns []Column
}

// Descriptor is the ordered set of tables the generation backend may query.
type Descriptor struct {
	Tables []Table
}

// Default returns the ARGO schema descriptor. The tables mirror the
// migrations in migrations/.
func Default() Descriptor {
	return Descriptor{
		Tables: []Table{
			{
				Name:    "argo_floats",
				Comment: "one row per known float, with its latest reported position",
				Columns: []Column{
					{Name: "id", Type: "BIGSERIAL", Description: "surrogate primary key"},
					{Name: "float_id", Type: "TEXT", Description: "unique ARGO platform number"},
					{Name: "latest_latitude", Type: "DOUBLE PRECISION", Description: "latest known latitude in degrees north"},
					{Name: "latest_longitude", Type: "DOUBLE PRECISION", Description: "latest known longitude in degrees east"},
					{Name: "project_name", Type: "TEXT", Description: "owning research project"},
				},
			},
			{
				Name:    "argo_measurements",
				Comment: "one row per reading; a profile yields many rows per float",
				Columns: []Column{
					{Name: "id", Type: "BIGSERIAL", Description: "surrogate primary key"},
					{Name: "float_id", Type: "TEXT", Description: "platform number of the reporting float"},
					{Name: "timestamp", Type: "TIMESTAMPTZ", Description: "measurement time (UTC)"},
					{Name: "latitude", Type: "DOUBLE PRECISION", Description: "latitude in degrees north"},
					{Name: "longitude", Type: "DOUBLE PRECISION", Description: "longitude in degrees east"},
					{Name: "pressure", Type: "DOUBLE PRECISION", Description: "sea pressure in decibar (proxy for depth)"},
					{Name: "temperature", Type: "DOUBLE PRECISION", Description: "in-situ temperature in degrees Celsius"},
					{Name: "salinity", Type: "DOUBLE PRECISION", Description: "practical salinity (PSU)"},
				},
			},
		},
	}
}

// Render formats the descriptor as prompt text.
func (d Descriptor) Render() string {
	var b strings.Builder
	for i, t := range d.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Table: %s (%s)\n", t.Name, t.Comment)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  - %s (%s): %s\n", c.Name, c.Type, c.Description)
		}
	}
	return b.String()
}

// TableNames returns the table names in declaration order.
func (d Descriptor) TableNames() []string {
	names := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		names[i] = t.Name
	}
	return names
}
