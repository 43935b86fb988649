// SPDX-License-Identifier: MIT

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ScanBlocks(t *testing.T) {
	t.Run("single_block", func(t *testing.T) {
		text := "run: echo ${{ github.event.issue.title }}"
		blocks := ScanBlocks(text)
		require.Len(t, blocks, 1)
		assert.Equal(t, "github.event.issue.title", blocks[0].Body)
		assert.Equal(t, text[blocks[0].Outer.Start:blocks[0].Outer.End], "${{ github.event.issue.title }}")
	})

	t.Run("multiple_blocks", func(t *testing.T) {
		text := "${{ a.b }} and ${{ c.d }}"
		blocks := ScanBlocks(text)
		require.Len(t, blocks, 2)
		assert.Equal(t, "a.b", blocks[0].Body)
		assert.Equal(t, "c.d", blocks[1].Body)
	})

	t.Run("braces_inside_string_do_not_close_early", func(t *testing.T) {
		text := "${{ format('{0}}}', 'x') }}"
		blocks := ScanBlocks(text)
		require.Len(t, blocks, 1)
		assert.Equal(t, "format('{0}}}', 'x')", blocks[0].Body)
	})

	t.Run("no_blocks", func(t *testing.T) {
		assert.Empty(t, ScanBlocks("plain text, no templates here"))
	})

	t.Run("unterminated_block_is_dropped", func(t *testing.T) {
		assert.Empty(t, ScanBlocks("${{ github.event.name"))
	})
}
