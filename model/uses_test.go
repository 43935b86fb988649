// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseUses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Uses
	}{
		{
			name: "pinned_action",
			raw:  "actions/checkout@8f4b7f84864484a7bf31766abe9204da3cbe65b3",
			want: Uses{Kind: UsesRepo, Owner: "actions", Repo: "checkout", Ref: "8f4b7f84864484a7bf31766abe9204da3cbe65b3"},
		},
		{
			name: "tag_ref",
			raw:  "actions/checkout@v4",
			want: Uses{Kind: UsesRepo, Owner: "actions", Repo: "checkout", Ref: "v4"},
		},
		{
			name: "subpath",
			raw:  "actions/cache/save@v4",
			want: Uses{Kind: UsesRepo, Owner: "actions", Repo: "cache", Subpath: "save", Ref: "v4"},
		},
		{
			name: "unpinned",
			raw:  "actions/checkout",
			want: Uses{Kind: UsesRepo, Owner: "actions", Repo: "checkout"},
		},
		{
			name: "local",
			raw:  "./.github/actions/build",
			want: Uses{Kind: UsesLocal, Subpath: "./.github/actions/build"},
		},
		{
			name: "docker",
			raw:  "docker://alpine:3.18",
			want: Uses{Kind: UsesDocker, Repo: "alpine", Ref: "3.18"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUses(tt.raw)
			got.Raw = ""
			tt.want.Raw = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Uses_SymbolicAndUnpinned(t *testing.T) {
	assert.True(t, ParseUses("actions/checkout").IsUnpinned())
	assert.True(t, ParseUses("actions/checkout@v4").IsSymbolic())
	assert.False(t, ParseUses("actions/checkout@v4").IsUnpinned())
	sha := "8f4b7f84864484a7bf31766abe9204da3cbe65b3"
	assert.False(t, ParseUses("actions/checkout@"+sha).IsSymbolic())
}

func Test_UsesPattern_Matches(t *testing.T) {
	u := ParseUses("actions/checkout@v4")
	assert.True(t, AnyRepoPattern().Matches(u))
	assert.True(t, UsesPattern{Owner: "actions"}.Matches(u))
	assert.True(t, UsesPattern{Owner: "actions", Repo: "checkout"}.Matches(u))
	assert.False(t, UsesPattern{Owner: "actions", Repo: "cache"}.Matches(u))
	assert.False(t, UsesPattern{Owner: "other"}.Matches(u))
}
