package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datamap/pkg/errors"
)

type counts map[string]int

func (c counts) Table() Data {
	return Data{
		Headers:         []string{"Name", "Count"},
		Rows:            [][]string{{"a", "1"}},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", ""} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "format")
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestFormatters(t *testing.T) {
	data := counts{"a": 1}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatJSON).Format(&buf, data))
		assert.JSONEq(t, `{"a":1}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatYAML).Format(&buf, data))
		assert.Equal(t, "a: 1\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
		out := buf.String()
		assert.Contains(t, strings.ToUpper(out), "NAME")
		assert.Contains(t, out, "a")
	})

	t.Run("table falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"x": 2}))
		assert.JSONEq(t, `{"x":2}`, buf.String())
	})
}
