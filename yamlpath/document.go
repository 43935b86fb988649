// SPDX-License-Identifier: MIT

// Package yamlpath implements a read-only, comment-preserving projection
// over a parsed YAML document. Callers route into a Document with a Route
// (an ordered path of mapping keys and sequence indices) and get back a
// Feature: a byte/point span over the original source, plus any comments
// that sit near it.
//
// The package never mutates the bytes it was given. Everything it returns
// is either a borrowed slice of the original source or a value computed
// from the underlying gopkg.in/yaml.v3 node tree, which already carries
// line/column positions and head/line/foot comments for every node.
package yamlpath

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document wraps the original source bytes of a YAML file together with
// its parsed node tree, a line-offset index, and an anchor map. A
// Document is built once and never mutated afterward.
type Document struct {
	// Source is the exact, original UTF-8 bytes of the document. No
	// method on Document or Feature allocates a copy of it; extraction
	// always returns a sub-slice.
	Source []byte

	// Root is the document node produced by yaml.v3. Root.Content[0] is
	// the top-level mapping (or sequence, or scalar) of the file.
	Root *yaml.Node

	lineStarts []int
	anchors    *anchorMap
}

// New parses source as a single YAML document and builds the line index
// and anchor map needed to answer path queries against it. It returns an
// InvalidInput error if source does not parse as YAML.
func New(source []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(source, &root); err != nil {
		return nil, &InvalidInputError{Err: err}
	}

	d := &Document{
		Source:     source,
		Root:       &root,
		lineStarts: buildLineStarts(source),
	}
	d.anchors = buildAnchorMap(d, &root)
	return d, nil
}

// buildLineStarts returns the byte offset of the start of every line in
// source, 0-indexed (lineStarts[0] == 0). Offset(line, col) below treats
// line as 1-based, matching yaml.v3's Node.Line.
func buildLineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Offset converts a 1-based (line, column) position, as reported by
// yaml.v3 nodes, into a byte offset into Source. Columns are treated as
// 1-based byte offsets within the line, which is exact for ASCII content
// and a close approximation for multi-byte UTF-8 (GitHub Actions YAML is
// overwhelmingly ASCII in its structural positions).
func (d *Document) Offset(line, col int) int {
	if line < 1 {
		line = 1
	}
	idx := line - 1
	if idx >= len(d.lineStarts) {
		return len(d.Source)
	}
	off := d.lineStarts[idx] + col - 1
	if off > len(d.Source) {
		off = len(d.Source)
	}
	if off < 0 {
		off = 0
	}
	return off
}

// RowCol converts a byte offset back into a 0-based (row, column) point,
// the form used by Feature.StartPoint/EndPoint (renderers add 1 for 1-based
// display).
func (d *Document) RowCol(offset int) (row, col int) {
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - d.lineStarts[lo]
}

// top returns the document's single content node (the value the document
// wraps), or an error if source described no content (an empty file).
func (d *Document) top() (*yaml.Node, error) {
	if d.Root == nil || len(d.Root.Content) == 0 {
		return nil, fmt.Errorf("yamlpath: document has no content")
	}
	return d.Root.Content[0], nil
}
