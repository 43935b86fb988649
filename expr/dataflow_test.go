// SPDX-License-Identifier: MIT

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ComputedIndices(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantCount int
	}{
		{name: "literal_index_not_flagged", expr: "secrets['TOKEN']", wantCount: 0},
		{name: "numeric_index_not_flagged", expr: "matrix.os[0]", wantCount: 0},
		{name: "star_index_not_flagged", expr: "matrix.*.os", wantCount: 0},
		{name: "computed_via_format", expr: "secrets[format('{0}', 'TOKEN')]", wantCount: 1},
		{name: "computed_via_context", expr: "secrets[github.event.name]", wantCount: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Len(t, ComputedIndices(n), tt.wantCount)
		})
	}
}

func Test_DataflowContexts(t *testing.T) {
	t.Run("plain_context_flows", func(t *testing.T) {
		n, err := Parse("github.event.issue.title")
		require.NoError(t, err)
		got := DataflowContexts(n)
		require.Len(t, got, 1)
		assert.False(t, got[0].SecretLeakage)
		pattern, ok := got[0].Context.AsPattern()
		require.True(t, ok)
		assert.Equal(t, "github.event.issue.title", pattern)
	})

	t.Run("format_is_transparent", func(t *testing.T) {
		n, err := Parse("format('hello {0}', github.event.issue.title)")
		require.NoError(t, err)
		got := DataflowContexts(n)
		require.Len(t, got, 1)
		assert.Equal(t, "github", got[0].Context.Root())
	})

	t.Run("comparison_stops_flow", func(t *testing.T) {
		n, err := Parse("github.event.issue.title == 'bug'")
		require.NoError(t, err)
		assert.Empty(t, DataflowContexts(n))
	})

	t.Run("or_propagates_both_sides", func(t *testing.T) {
		n, err := Parse("inputs.greeting || github.event.issue.title")
		require.NoError(t, err)
		got := DataflowContexts(n)
		assert.Len(t, got, 2)
	})

	t.Run("fromjson_secrets_is_marked_leakage", func(t *testing.T) {
		n, err := Parse("fromJSON(secrets.ALL)")
		require.NoError(t, err)
		got := DataflowContexts(n)
		require.Len(t, got, 1)
		assert.True(t, got[0].SecretLeakage)
	})

	t.Run("opaque_call_blocks_flow", func(t *testing.T) {
		n, err := Parse("contains(github.event.issue.title, 'x')")
		require.NoError(t, err)
		assert.Empty(t, DataflowContexts(n))
	})
}
