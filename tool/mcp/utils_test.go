package mcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertInputSchema(t *testing.T) {
	t.Parallel()

	manifest := map[string]any{
		"type":        "object",
		"description": "search parameters",
		"required":    []any{"query"},
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "search terms",
			},
			"limit": map[string]any{
				"type": "integer",
			},
			"bogus": "not a schema",
		},
	}

	schema := convertInputSchema(manifest)
	require.Equal(t, "object", schema.Type)
	require.Equal(t, "search parameters", schema.Description)
	require.Equal(t, []string{"query"}, schema.Required)
	require.Len(t, schema.Properties, 2)
	require.Equal(t, "string", schema.Properties["query"].Type)
	require.Equal(t, "search terms", schema.Properties["query"].Description)
	require.Equal(t, "integer", schema.Properties["limit"].Type)
	require.NotContains(t, schema.Properties, "bogus")
}

func TestConvertInputSchema_UnmarshalableFallsBack(t *testing.T) {
	t.Parallel()

	schema := convertInputSchema(make(chan int))
	require.Equal(t, "object", schema.Type)
	require.Nil(t, schema.Properties)

	schema = convertInputSchema("just a string")
	require.Equal(t, "object", schema.Type)
}

func TestConvertProperties_Nil(t *testing.T) {
	t.Parallel()

	require.Nil(t, convertProperties(nil))
}
