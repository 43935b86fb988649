// SPDX-License-Identifier: MIT

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Context_ToEnvVar(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "simple_path", expr: "github.event.issue.title", want: "GITHUB_EVENT_ISSUE_TITLE"},
		{name: "hyphenated_part", expr: "inputs.my-input", want: "INPUTS_MY_INPUT"},
		{name: "numeric_index_inserts_ordinal", expr: "matrix.os[0]", want: "MATRIX_FIRST_OS"},
		{name: "third_numeric_index", expr: "matrix.os[2]", want: "MATRIX_THIRD_OS"},
		{name: "high_numeric_index", expr: "matrix.os[4]", want: "MATRIX_5TH_OS"},
		{name: "star_index_inserts_any", expr: "matrix.*.os", want: "ANY_MATRIX_OS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.expr)
			require.NoError(t, err)
			ctx, ok := AsContext(n)
			require.True(t, ok)
			got, ok := ctx.ToEnvVar()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Context_ChildOfAndPopIf(t *testing.T) {
	n, err := Parse("env.MY_VAR")
	require.NoError(t, err)
	ctx, ok := AsContext(n)
	require.True(t, ok)
	assert.True(t, ctx.ChildOf("env"))
	assert.False(t, ctx.ChildOf("secrets"))

	popped, ok := ctx.PopIf("env")
	require.True(t, ok)
	assert.Equal(t, "MY_VAR", popped.Root())

	_, ok = ctx.PopIf("secrets")
	assert.False(t, ok)
}

func Test_Context_AsPattern(t *testing.T) {
	n, err := Parse("github.event.issue.title")
	require.NoError(t, err)
	ctx, ok := AsContext(n)
	require.True(t, ok)
	pattern, ok := ctx.AsPattern()
	require.True(t, ok)
	assert.Equal(t, "github.event.issue.title", pattern)
}
