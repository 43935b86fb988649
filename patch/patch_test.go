// SPDX-License-Identifier: MIT

package patch

import (
	"testing"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/yamlpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Replace(t *testing.T) {
	src := "jobs:\n  build:\n    runs-on: ubuntu-latest\n"
	route := yamlpath.Root().Child("jobs").Child("build").Child("runs-on")

	out, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpReplace, Route: route, Value: "ubuntu-22.04"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs:\n  build:\n    runs-on: ubuntu-22.04\n", string(out))
}

func TestApply_Add(t *testing.T) {
	src := "jobs:\n  build:\n    runs-on: ubuntu-latest\n"
	route := yamlpath.Root().Child("jobs").Child("build")

	out, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpAdd, Route: route, Key: "permissions", Value: "{}"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs:\n  build:\n    runs-on: ubuntu-latest\n    permissions: {}\n", string(out))
}

func TestApply_Remove(t *testing.T) {
	src := "jobs:\n  build:\n    runs-on: ubuntu-latest\n    permissions: write-all\n"
	route := yamlpath.Root().Child("jobs").Child("build").Child("permissions")

	out, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpRemove, Route: route},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs:\n  build:\n    runs-on: ubuntu-latest\n", string(out))
}

func TestApply_MergeInto_ExistingMapping(t *testing.T) {
	src := "jobs:\n  build:\n    permissions:\n      contents: write\n"
	route := yamlpath.Root().Child("jobs").Child("build")

	out, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpMergeInto, Route: route, Key: "permissions", Value: "contents: read\nissues: read\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs:\n  build:\n    permissions:\n      contents: read\n      issues: read\n", string(out))
}

func TestApply_MergeInto_FallsBackToAddWhenAbsent(t *testing.T) {
	src := "jobs:\n  build:\n    runs-on: ubuntu-latest\n"
	route := yamlpath.Root().Child("jobs").Child("build")

	out, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpMergeInto, Route: route, Key: "permissions", Value: "contents: read\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs:\n  build:\n    runs-on: ubuntu-latest\n    permissions:\n      contents: read\n", string(out))
}

func TestApply_MultipleOpsDescendingOrder(t *testing.T) {
	src := "jobs:\n  build:\n    runs-on: ubuntu-latest\n  test:\n    runs-on: ubuntu-latest\n"
	buildRoute := yamlpath.Root().Child("jobs").Child("build").Child("runs-on")
	testRoute := yamlpath.Root().Child("jobs").Child("test").Child("runs-on")

	out, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpReplace, Route: buildRoute, Value: "ubuntu-22.04"},
		{Kind: finding.OpReplace, Route: testRoute, Value: "ubuntu-20.04"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs:\n  build:\n    runs-on: ubuntu-22.04\n  test:\n    runs-on: ubuntu-20.04\n", string(out))
}

func TestApply_RejectsInvalidInput(t *testing.T) {
	_, err := Apply([]byte("["), nil)
	assert.Error(t, err)
}

func TestApply_ConflictingOverlapIsRejected(t *testing.T) {
	src := "jobs:\n  build:\n    runs-on: ubuntu-latest\n"
	route := yamlpath.Root().Child("jobs").Child("build").Child("runs-on")

	_, err := Apply([]byte(src), []finding.PatchOp{
		{Kind: finding.OpReplace, Route: route, Value: "a"},
		{Kind: finding.OpReplace, Route: route, Value: "b"},
	})
	assert.Error(t, err)
}
