// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/esacteksab/gh-audit/yamlpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkflow = `
on:
  pull_request_target:
  push:
    branches: [main]
permissions:
  contents: read
jobs:
  build:
    runs-on: ubuntu-latest
    permissions:
      issues: write
    strategy:
      matrix:
        os: [ubuntu-latest, windows-latest]
        include:
          - os: macos-latest
            extra: true
        exclude:
          - os: windows-latest
    steps:
      - uses: actions/checkout@v4
        with:
          persist-credentials: false
      - run: echo "${{ github.event.issue.title }}"
        env:
          FOO: bar
  call:
    uses: org/repo/.github/workflows/reusable.yml@main
    secrets: inherit
`

func mustParseWorkflow(t *testing.T) *Workflow {
	t.Helper()
	doc, err := yamlpath.New([]byte(sampleWorkflow))
	require.NoError(t, err)
	wf, err := ParseWorkflow(doc)
	require.NoError(t, err)
	return wf
}

func Test_ParseWorkflow_Triggers(t *testing.T) {
	wf := mustParseWorkflow(t)
	assert.True(t, wf.HasPullRequestTarget())
	assert.False(t, wf.HasWorkflowCall())
	assert.False(t, wf.HasSingleTrigger())
}

func Test_ParseWorkflow_Jobs(t *testing.T) {
	wf := mustParseWorkflow(t)
	require.Len(t, wf.Jobs, 2)

	build := wf.JobByID("build")
	require.NotNil(t, build)
	assert.False(t, build.Reusable)
	assert.Equal(t, PermExplicit, build.Permissions.Kind)
	require.Len(t, build.Steps, 2)
	assert.Equal(t, StepUses, build.Steps[0].Kind)
	assert.Equal(t, "false", build.Steps[0].With["persist-credentials"])
	assert.Equal(t, ShellBash, build.RunnerDefaultShell())
	assert.True(t, build.Steps[1].EnvIsStatic("FOO"))

	call := wf.JobByID("call")
	require.NotNil(t, call)
	assert.True(t, call.Reusable)
	assert.True(t, call.SecretsInherit)
	require.NotNil(t, call.Uses)
	assert.Equal(t, "org", call.Uses.Owner)
}

func Test_ParseWorkflow_Matrix(t *testing.T) {
	wf := mustParseWorkflow(t)
	build := wf.JobByID("build")
	require.NotNil(t, build.Matrix)
	assert.False(t, build.Matrix.Opaque)

	var osValues []string
	for _, p := range build.Matrix.Pairs {
		if p.Path == "matrix.os" {
			osValues = append(osValues, p.Value)
		}
	}
	assert.Contains(t, osValues, "ubuntu-latest")
	assert.Contains(t, osValues, "macos-latest")
	assert.NotContains(t, osValues, "windows-latest")
	assert.True(t, build.Matrix.ExpandsToStaticValues("matrix.os"))
}
