package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModelJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
		Due   string `json:"due"`
	}

	tests := []struct {
		name string
		raw  string
		want payload
	}{
		{
			"plain json",
			`{"title": "call Bob", "due": "tomorrow"}`,
			payload{Title: "call Bob", Due: "tomorrow"},
		},
		{
			"fenced json",
			"```json\n{\"title\": \"call Bob\", \"due\": \"tomorrow\"}\n```",
			payload{Title: "call Bob", Due: "tomorrow"},
		},
		{
			"json with surrounding prose",
			"Here is the result:\n{\"title\": \"call Bob\", \"due\": \"\"}\nLet me know.",
			payload{Title: "call Bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			require.NoError(t, DecodeModelJSON(tt.raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeModelJSONArray(t *testing.T) {
	var items []map[string]string
	err := DecodeModelJSON("```\n[{\"title\": \"a\"}, {\"title\": \"b\"}]\n```", &items)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1]["title"])

	items = nil
	require.NoError(t, DecodeModelJSON("[]", &items))
	assert.Empty(t, items)
}

func TestDecodeModelJSONFailure(t *testing.T) {
	var v map[string]any
	assert.Error(t, DecodeModelJSON("no json here at all", &v))
	assert.Error(t, DecodeModelJSON("{broken", &v))
}
