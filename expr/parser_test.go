// SPDX-License-Identifier: MIT

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Contexts(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []PathElem
	}{
		{
			name: "dotted_path",
			expr: "github.event.issue.title",
			want: []PathElem{
				{Kind: PathIdent, Name: "github"},
				{Kind: PathIdent, Name: "event"},
				{Kind: PathIdent, Name: "issue"},
				{Kind: PathIdent, Name: "title"},
			},
		},
		{
			name: "bracket_string_index",
			expr: "secrets['MY_TOKEN']",
			want: []PathElem{
				{Kind: PathIdent, Name: "secrets"},
				{Kind: PathIndexStr, Name: "MY_TOKEN"},
			},
		},
		{
			name: "numeric_index",
			expr: "matrix.os[0]",
			want: []PathElem{
				{Kind: PathIdent, Name: "matrix"},
				{Kind: PathIdent, Name: "os"},
				{Kind: PathIndexInt, Int: 0},
			},
		},
		{
			name: "star_index",
			expr: "matrix.*.os",
			want: []PathElem{
				{Kind: PathIdent, Name: "matrix"},
				{Kind: PathStar},
				{Kind: PathIdent, Name: "os"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.expr)
			require.NoError(t, err)
			require.Equal(t, KindContext, n.Kind)
			assert.Equal(t, tt.want, n.Path)
		})
	}
}

func Test_Parse_CallsAndComputedIndex(t *testing.T) {
	n, err := Parse("secrets[github.event.name]")
	require.NoError(t, err)
	require.Equal(t, KindIndex, n.Kind)
	require.Equal(t, KindContext, n.Target.Kind)
	require.Equal(t, KindContext, n.Index.Kind)

	call, err := Parse("contains(github.event.issue.title, 'x')")
	require.NoError(t, err)
	require.Equal(t, KindCall, call.Kind)
	assert.Equal(t, "contains", call.Callee)
	assert.Len(t, call.Args, 2)
}

func Test_Parse_Precedence(t *testing.T) {
	n, err := Parse("a == 1 && b == 2 || c")
	require.NoError(t, err)
	require.Equal(t, KindBinary, n.Kind)
	assert.Equal(t, OpOr, n.BinOp)
	require.Equal(t, KindBinary, n.Left.Kind)
	assert.Equal(t, OpAnd, n.Left.BinOp)
}

func Test_Parse_Errors(t *testing.T) {
	_, err := Parse("github.event.")
	assert.Error(t, err)

	_, err = Parse("foo(")
	assert.Error(t, err)

	_, err = Parse("'unterminated")
	assert.Error(t, err)
}
