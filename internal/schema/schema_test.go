package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTables(t *testing.T) {
	d := Default()
	assert.Equal(t, []string{"argo_floats", "argo_measurements"}, d.TableNames())
}

func TestRenderIncludesColumns(t *testing.T) {
	text := Default().Render()
	for _, want := range []string{
		"argo_floats", "argo_measurements",
		"float_id", "latest_latitude", "project_name",
		"pressure", "temperature", "salinity", "timestamp",
	} {
		assert.Contains(t, text, want)
	}
}
