// SPDX-License-Identifier: MIT

package yamlpath

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// resolved is the outcome of descending a Route: the node the route
// names, and — when the last component was a mapping key — the
// enclosing mapping and the matched key node, which ModePretty and
// ModeKeyOnly need.
type resolved struct {
	node          *yaml.Node
	parentMapping *yaml.Node
	keyNode       *yaml.Node
	lastWasKey    bool
}

// dereference applies alias resolution: if n is an alias,
// jump to the anchor it names, resolved relative to n's own byte
// position (the nearest preceding definition). Non-alias nodes are
// returned unchanged.
func (d *Document) dereference(n *yaml.Node) *yaml.Node {
	if n == nil || n.Kind != yaml.AliasNode {
		return n
	}
	off := d.Offset(n.Line, n.Column)
	if target, ok := d.anchors.resolve(n.Value, off); ok {
		return target
	}
	return n
}

// descend walks route from the document's top node, applying alias
// dereferencing before interpreting each component.
func (d *Document) descend(route Route) (resolved, error) {
	cur, err := d.top()
	if err != nil {
		return resolved{}, err
	}

	r := resolved{node: cur}
	for _, comp := range route {
		working := d.dereference(r.node)

		if comp.isKey {
			if working.Kind != yaml.MappingNode {
				return resolved{}, &ExpectedMappingError{Key: comp.key}
			}
			found := false
			for i := 0; i+1 < len(working.Content); i += 2 {
				k := working.Content[i]
				v := working.Content[i+1]
				if k.Value == comp.key {
					r = resolved{node: v, parentMapping: working, keyNode: k, lastWasKey: true}
					found = true
					break
				}
			}
			if !found {
				return resolved{}, &ExhaustedMappingError{Key: comp.key}
			}
		} else {
			if working.Kind != yaml.SequenceNode {
				return resolved{}, &ExpectedListError{Index: comp.index}
			}
			if comp.index < 0 || comp.index >= len(working.Content) {
				return resolved{}, &ExhaustedListError{Index: comp.index, Len: len(working.Content)}
			}
			r = resolved{node: working.Content[comp.index], lastWasKey: false}
		}
	}
	return r, nil
}

// isAbsentValue reports whether n is the implicit null yaml.v3 synthesizes
// for a mapping key with no value (`foo:`), as opposed to an explicit
// `foo: null` / `foo: ~`.
func isAbsentValue(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null" && n.Style == 0 && n.Value == ""
}

// QueryExists reports whether route resolves against d. Any error
// (including a malformed route) maps to false.
func (d *Document) QueryExists(route Route) bool {
	_, err := d.descend(route)
	return err == nil
}

// QueryExact resolves route and returns the minimal span of the value.
// It returns (Feature{}, false, nil) — not an error — when the route
// terminates at a mapping key with no value; it returns an error when
// the route cannot be descended at all.
func (d *Document) QueryExact(route Route) (Feature, bool, error) {
	r, err := d.descend(route)
	if err != nil {
		return Feature{}, false, err
	}
	if isAbsentValue(r.node) {
		return Feature{}, false, nil
	}
	limit := d.nextSiblingOffset(r)
	span := d.valueSpan(r.node, limit)
	f := d.buildFeature(route, ModeExact, span)
	f.valuePresent = true
	return f, true, nil
}

// QueryPretty resolves route and enlarges the span to the enclosing
// `key: value` pair when route ends at a mapping key (including when
// the value is absent).
func (d *Document) QueryPretty(route Route) (Feature, error) {
	r, err := d.descend(route)
	if err != nil {
		return Feature{}, err
	}
	limit := d.nextSiblingOffset(r)

	if !r.lastWasKey {
		span := d.valueSpan(r.node, limit)
		f := d.buildFeature(route, ModePretty, span)
		f.valuePresent = !isAbsentValue(r.node)
		return f, nil
	}

	keyStart := d.Offset(r.keyNode.Line, r.keyNode.Column)
	var valueEnd int
	if isAbsentValue(r.node) {
		valueEnd = d.valueSpan(r.keyNode, limit).End
	} else {
		valueEnd = d.valueSpan(r.node, limit).End
	}
	span := Span{Start: keyStart, End: valueEnd}
	f := d.buildFeature(route, ModePretty, span)
	f.valuePresent = !isAbsentValue(r.node)
	return f, nil
}

// QueryKeyOnly resolves route and returns the span of just the key. It
// fails if route does not terminate at a mapping key.
func (d *Document) QueryKeyOnly(route Route) (Feature, error) {
	r, err := d.descend(route)
	if err != nil {
		return Feature{}, err
	}
	if !r.lastWasKey {
		return Feature{}, &UnexpectedNodeError{Kind: "route does not end in a mapping key"}
	}
	limit := d.nextSiblingOffset(resolved{node: r.keyNode})
	span := d.valueSpan(r.keyNode, limit)
	f := d.buildFeature(route, ModeKeyOnly, span)
	f.valuePresent = !isAbsentValue(r.node)
	return f, nil
}

// nextSiblingOffset bounds how far a value's span may extend: up to the
// end of the source, since yaml.v3 does not report node end positions
// and our scanners in feature.go self-terminate on structural
// boundaries (quotes, block-scalar dedent, newline/comment).
func (d *Document) nextSiblingOffset(resolved) int {
	return len(d.Source)
}

func (d *Document) buildFeature(route Route, mode Mode, span Span) Feature {
	startRow, startCol := d.RowCol(span.Start)
	endRow, endCol := d.RowCol(span.End)
	return Feature{
		Route:      route,
		Mode:       mode,
		Span:       span,
		StartPoint: Point{Row: startRow, Col: startCol},
		EndPoint:   Point{Row: endRow, Col: endCol},
		Text:       string(d.Source[span.Start:span.End]),
		Comments:   d.FeatureComments(Feature{StartPoint: Point{Row: startRow}, EndPoint: Point{Row: endRow}}),
	}
}

// FeatureComments returns every comment node whose start and end rows
// fall within f's row span (0-based, inclusive), in source order. This
// is deliberately broader than a pure descendant scan: GitHub Actions
// YAML conventionally attaches a comment to the line above a value,
// and such comments are siblings in the tree, not descendants of the
// value they annotate.
func (d *Document) FeatureComments(f Feature) []Comment {
	var out []Comment
	lo, hi := f.StartPoint.Row, f.EndPoint.Row

	// considerBlock re-splits a possibly multi-line Head/FootComment
	// (yaml.v3 joins consecutive "# ..." lines with '\n' into one
	// string) and assigns each line its own row, counting away from
	// anchor in dir (-1 for a block above the node, +1 for a block
	// below). A single-line LineComment is handled by the dir == 0
	// case, which just places it at anchor.
	considerBlock := func(text string, anchor, dir int) {
		if text == "" {
			return
		}
		lines := strings.Split(text, "\n")
		if dir == 0 {
			lines = lines[:1]
		}
		for i, line := range lines {
			var row int
			switch {
			case dir < 0:
				row = anchor - (len(lines) - 1 - i)
			case dir > 0:
				row = anchor + i
			default:
				row = anchor
			}
			if row >= lo && row <= hi {
				out = append(out, Comment{Text: line, StartLine: row, EndLine: row})
			}
		}
	}

	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		if n == nil {
			return
		}
		// n.Line is 1-based; rows here are 0-based.
		considerBlock(n.HeadComment, n.Line-2, -1)
		considerBlock(n.LineComment, n.Line-1, 0)
		considerBlock(n.FootComment, n.Line, 1)
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(d.Root)

	return out
}

// RangeSpannedByComment reports whether a single comment node fully
// contains the byte range [lo, hi) — used to recognize an ignore
// comment sitting adjacent to a finding location.
func (d *Document) RangeSpannedByComment(lo, hi int) bool {
	var found bool
	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		if n == nil || found {
			return
		}
		for _, text := range []string{n.HeadComment, n.LineComment, n.FootComment} {
			if text == "" {
				continue
			}
			start := d.Offset(n.Line, 1)
			end := start + len(text)
			if start <= lo && hi <= end {
				found = true
				return
			}
		}
		for _, c := range n.Content {
			walk(c)
			if found {
				return
			}
		}
	}
	walk(d.Root)
	return found
}
