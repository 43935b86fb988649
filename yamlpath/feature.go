// SPDX-License-Identifier: MIT

package yamlpath

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how a resolved Route is turned into a Feature's span.
// The three modes disagree only at mapping-pair boundaries and on keys.
type Mode int

const (
	// ModeExact yields the minimal span of the value itself.
	ModeExact Mode = iota
	// ModePretty enlarges the span to the enclosing `key: value` pair
	// when the route ends at a mapping key.
	ModePretty
	// ModeKeyOnly yields the span of just the key portion of a mapping
	// pair.
	ModeKeyOnly
)

// Point is a 0-based (row, column) position.
type Point struct {
	Row, Col int
}

// Span is a half-open [Start, End) byte range into a Document's Source.
type Span struct {
	Start, End int
}

func (s Span) Len() int { return s.End - s.Start }

// Comment is a single comment node attached somewhere in a Document: a
// `#`-introduced line, with the byte/line range it occupies.
type Comment struct {
	Text      string
	StartLine int
	EndLine   int
	Span      Span
}

// Feature is a resolved Route: a byte span, a point span, the extracted
// source text, and the comments enclosed by or adjacent to it.
type Feature struct {
	Route        Route
	Mode         Mode
	Span         Span
	StartPoint   Point
	EndPoint     Point
	Text         string
	Comments     []Comment
	valuePresent bool
}

// ValuePresent is false for a feature whose route ends at a mapping key
// with no value (`foo:`), in every mode.
func (f Feature) ValuePresent() bool { return f.valuePresent }

// Subfeature locates a fragment within a Feature's text: a literal byte
// string or a compiled regular expression, searched for starting at
// byte offset After within the feature's own text.
type Subfeature struct {
	After    int
	Literal  string
	Regexp   *regexp.Regexp
}

// Resolve finds fragment inside its enclosing Feature's source and
// returns the sub-span, biased into the Document's coordinate space. It
// returns ok=false if the fragment does not occur after the After
// offset.
func (s Subfeature) Resolve(f Feature) (Span, bool) {
	haystack := f.Text
	if s.After < 0 || s.After > len(haystack) {
		return Span{}, false
	}
	search := haystack[s.After:]

	var loc []int
	switch {
	case s.Regexp != nil:
		loc = s.Regexp.FindStringIndex(search)
	default:
		idx := strings.Index(search, s.Literal)
		if idx < 0 {
			return Span{}, false
		}
		loc = []int{idx, idx + len(s.Literal)}
	}
	if loc == nil {
		return Span{}, false
	}
	start := f.Span.Start + s.After + loc[0]
	end := f.Span.Start + s.After + loc[1]
	return Span{Start: start, End: end}, true
}

// Extract returns exactly the feature's byte span.
func (d *Document) Extract(f Feature) string {
	return string(d.Source[f.Span.Start:f.Span.End])
}

// ExtractWithLeadingWhitespace extends the feature's starting offset
// backwards to the start of its line when every character preceding it
// on that line is a space.
func (d *Document) ExtractWithLeadingWhitespace(f Feature) string {
	row, _ := d.RowCol(f.Span.Start)
	lineStart := d.lineStarts[row]
	start := f.Span.Start
	allSpaces := true
	for i := lineStart; i < start; i++ {
		if d.Source[i] != ' ' {
			allSpaces = false
			break
		}
	}
	if allSpaces {
		start = lineStart
	}
	return string(d.Source[start:f.Span.End])
}

// valueSpan computes the byte span of a scalar/collection node's own
// rendered value, starting from its reported (Line, Column). Block
// scalars and quoted scalars are scanned to their natural terminator;
// plain scalars and collections are bounded by the containing
// structure, which callers supply via limit (the byte offset beyond
// which the span must not extend, typically the start of the next
// sibling or EOF).
func (d *Document) valueSpan(n *yaml.Node, limit int) Span {
	start := d.Offset(n.Line, n.Column)
	if start > limit {
		start = limit
	}
	src := d.Source

	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		end := d.collectionEnd(n, limit)
		return Span{Start: start, End: end}
	case yaml.AliasNode:
		end := start + 1 + len(n.Value)
		if end > limit {
			end = limit
		}
		return Span{Start: start, End: end}
	}

	switch n.Style {
	case yaml.DoubleQuotedStyle:
		end := scanQuoted(src, start, '"', limit)
		return Span{Start: start, End: end}
	case yaml.SingleQuotedStyle:
		end := scanQuoted(src, start, '\'', limit)
		return Span{Start: start, End: end}
	case yaml.LiteralStyle, yaml.FoldedStyle:
		end := scanBlockScalar(src, start, limit)
		return Span{Start: start, End: end}
	default:
		end := scanPlainScalar(src, start, limit)
		return Span{Start: start, End: end}
	}
}

// collectionEnd approximates the end of a mapping/sequence node as the
// end of its last content value (recursively), bounded by limit.
func (d *Document) collectionEnd(n *yaml.Node, limit int) int {
	if len(n.Content) == 0 {
		// Empty flow collection, e.g. `{}` or `[]`.
		start := d.Offset(n.Line, n.Column)
		end := start + 2
		if end > limit {
			end = limit
		}
		return end
	}
	last := n.Content[len(n.Content)-1]
	sp := d.valueSpan(last, limit)
	return sp.End
}

func scanQuoted(src []byte, start int, quote byte, limit int) int {
	if start >= len(src) || src[start] != quote {
		return start
	}
	i := start + 1
	for i < limit && i < len(src) {
		c := src[i]
		if quote == '\'' {
			if c == '\'' {
				// Doubled '' is an escaped literal quote; a single '
				// not followed by another ' ends the scalar.
				if i+1 < len(src) && src[i+1] == '\'' {
					i += 2
					continue
				}
				return i + 1
			}
		} else {
			if c == '\\' {
				i += 2
				continue
			}
			if c == '"' {
				return i + 1
			}
		}
		i++
	}
	return i
}

func scanBlockScalar(src []byte, start int, limit int) int {
	// start points at the block indicator ('|' or '>') possibly followed
	// by chomping/indentation indicators up to end of that line.
	i := start
	for i < len(src) && src[i] != '\n' {
		i++
	}
	headerEnd := i
	if i >= len(src) {
		return headerEnd
	}
	i++ // past the newline

	// Determine the block's base indentation from its first non-blank
	// line.
	baseIndent := -1
	contentEnd := headerEnd
	for i < limit && i < len(src) {
		lineStart := i
		j := i
		for j < len(src) && src[j] != '\n' {
			j++
		}
		line := src[lineStart:j]
		trimmed := strings.TrimLeft(string(line), " ")
		indent := len(line) - len(trimmed)

		if strings.TrimSpace(string(line)) == "" {
			// Blank line: tentatively part of the block.
			contentEnd = j
			i = j + 1
			continue
		}
		if baseIndent == -1 {
			baseIndent = indent
		}
		if indent < baseIndent {
			break
		}
		contentEnd = j
		i = j + 1
	}
	if contentEnd > limit {
		contentEnd = limit
	}
	return contentEnd
}

func scanPlainScalar(src []byte, start int, limit int) int {
	i := start
	end := start
	for i < limit && i < len(src) {
		c := src[i]
		if c == '\n' {
			break
		}
		if c == ' ' && i+1 < len(src) && src[i+1] == '#' {
			break
		}
		i++
		if c != ' ' && c != '\t' {
			end = i
		}
	}
	if end < start {
		end = start
	}
	return end
}
