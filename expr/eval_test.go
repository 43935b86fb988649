// SPDX-License-Identifier: MIT

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConstantReducible(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "number_literal", expr: "1", want: true},
		{name: "string_literal", expr: "'hi'", want: true},
		{name: "bool_literal", expr: "true", want: true},
		{name: "arithmetic_is_not_supported_as_binop_but_comparison_is", expr: "1 == 1", want: true},
		{name: "or_short_circuits_true", expr: "true || github.event.name", want: true},
		{name: "or_needs_right_when_left_false", expr: "false || github.event.name", want: false},
		{name: "and_short_circuits_false", expr: "false && github.event.name", want: true},
		{name: "context_reference", expr: "github.event.name", want: false},
		{name: "unknown_call", expr: "contains(github.event.name, 'x')", want: false},
		{name: "negated_literal", expr: "!false", want: true},
		{name: "negated_context", expr: "!github.event.ref", want: false},
		{name: "string_eq_case_insensitive", expr: "'Foo' == 'foo'", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ConstantReducible(n))
		})
	}
}

func Test_Fold_Render(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "number", expr: "1", want: "1"},
		{name: "string", expr: "'hi'", want: "hi"},
		{name: "bool_true", expr: "true", want: "true"},
		{name: "comparison", expr: "1 == 2", want: "false"},
		{name: "or_picks_left", expr: "'x' || 'y'", want: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.expr)
			require.NoError(t, err)
			v, ok := Fold(n)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Render())
		})
	}
}
