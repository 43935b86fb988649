// SPDX-License-Identifier: MIT

package finding

import (
	"testing"

	"github.com/esacteksab/gh-audit/yamlpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
jobs:
  build:
    runs-on: ubuntu-latest # zizmor: ignore[template-injection]
`

func Test_Builder_Build_RequiresPrimaryLocation(t *testing.T) {
	doc, err := yamlpath.New([]byte(sampleYAML))
	require.NoError(t, err)

	b := NewBuilder("template-injection", "shell injection via run:").
		Location(SymbolicLocation{
			Route: yamlpath.Root().Child("jobs").Child("build").Child("runs-on"),
			Kind:  LocationRelated,
		})
	_, err = b.Build(doc)
	assert.Error(t, err)
}

func Test_Builder_Build_ComputesIgnored(t *testing.T) {
	doc, err := yamlpath.New([]byte(sampleYAML))
	require.NoError(t, err)

	b := NewBuilder("template-injection", "shell injection via run:").
		Severity(SeverityHigh).
		Confidence(ConfidenceHigh).
		Location(SymbolicLocation{
			Route: yamlpath.Root().Child("jobs").Child("build").Child("runs-on"),
			Kind:  LocationPrimary,
		})
	f, err := b.Build(doc)
	require.NoError(t, err)
	assert.True(t, f.Ignored)
	require.Len(t, f.Locations, 1)
	assert.Equal(t, "ubuntu-latest", f.Locations[0].Feature.Text)
}

func Test_Builder_Build_NotIgnoredForOtherIdent(t *testing.T) {
	doc, err := yamlpath.New([]byte(sampleYAML))
	require.NoError(t, err)

	b := NewBuilder("obfuscation", "obfuscated uses path").
		Location(SymbolicLocation{
			Route: yamlpath.Root().Child("jobs").Child("build").Child("runs-on"),
			Kind:  LocationPrimary,
		})
	f, err := b.Build(doc)
	require.NoError(t, err)
	assert.False(t, f.Ignored)
}

func Test_CommentIgnores(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		ident string
		want  bool
	}{
		{name: "single", text: "# zizmor: ignore[template-injection]", ident: "template-injection", want: true},
		{name: "multiple", text: "# zizmor: ignore[a, b, c]", ident: "b", want: true},
		{name: "not_present", text: "# zizmor: ignore[a, b]", ident: "c", want: false},
		{name: "space_before_ignore_rejected", text: "# zizmor : ignore[a]", ident: "a", want: false},
		{name: "duplicate_commas_tolerated", text: "# zizmor: ignore[a,, b]", ident: "b", want: true},
		{name: "plain_comment", text: "# just a comment", ident: "a", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commentIgnores(tt.text, tt.ident))
		})
	}
}

func Test_Persona_AtLeast(t *testing.T) {
	assert.True(t, PersonaAuditor.AtLeast(PersonaRegular))
	assert.False(t, PersonaRegular.AtLeast(PersonaAuditor))
	assert.True(t, PersonaPedantic.AtLeast(PersonaPedantic))
}
