// SPDX-License-Identifier: MIT

// Package patch implements the YAML patcher: applying an
// ordered list of finding.PatchOp edits to a source buffer while
// preserving everything outside the edited spans byte-for-byte.
package patch

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/yamlpath"
	"gopkg.in/yaml.v3"
)

// edit is a single resolved byte-range substitution, anchored against
// the original source's coordinate space.
type edit struct {
	start, end int
	text       []byte
}

// Apply resolves every op against source and returns the patched
// result. All anchors are computed against the original, unpatched
// source; ops are then applied in descending anchor order so that an
// edit near the end of the file never invalidates the byte offset of
// one nearer the start. Apply refuses (without modifying anything) if
// source does not parse as YAML, if two ops' spans overlap, or if the
// patched result no longer parses as YAML.
func Apply(source []byte, ops []finding.PatchOp) ([]byte, error) {
	if _, err := yamlpath.New(source); err != nil {
		return nil, fmt.Errorf("patch: input does not parse as YAML: %w", err)
	}

	doc, err := yamlpath.New(source)
	if err != nil {
		return nil, err
	}

	expanded, err := expandMerges(doc, ops)
	if err != nil {
		return nil, err
	}

	edits := make([]edit, 0, len(expanded))
	for _, op := range expanded {
		e, err := resolveEdit(doc, source, op)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start > edits[j].start })

	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if spansOverlap(edits[i], edits[j]) {
				return nil, fmt.Errorf("patch: conflicting fixes overlap at byte %d", edits[i].start)
			}
		}
	}

	out := append([]byte(nil), source...)
	for _, e := range edits {
		merged := make([]byte, 0, e.start+len(e.text)+len(out)-e.end)
		merged = append(merged, out[:e.start]...)
		merged = append(merged, e.text...)
		merged = append(merged, out[e.end:]...)
		out = merged
	}

	if _, err := yamlpath.New(out); err != nil {
		return nil, fmt.Errorf("patch: result does not parse as YAML: %w", err)
	}
	return out, nil
}

func spansOverlap(a, b edit) bool {
	return a.start < b.end && b.start < a.end
}

// expandMerges rewrites every MergeInto op into the Replace/Add ops it
// reduces to: merge existing mapping keys when both
// sides are mappings, otherwise fall back to a whole-value Replace (key
// present) or Add (key absent).
func expandMerges(doc *yamlpath.Document, ops []finding.PatchOp) ([]finding.PatchOp, error) {
	out := make([]finding.PatchOp, 0, len(ops))
	for _, op := range ops {
		if op.Kind != finding.OpMergeInto {
			out = append(out, op)
			continue
		}
		sub, err := expandOneMerge(doc, op)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func expandOneMerge(doc *yamlpath.Document, op finding.PatchOp) ([]finding.PatchOp, error) {
	childRoute := op.Route.Child(op.Key)
	if !doc.QueryExists(childRoute) {
		return []finding.PatchOp{{Kind: finding.OpAdd, Route: op.Route, Key: op.Key, Value: op.Value}}, nil
	}

	existing, present, err := doc.QueryExact(childRoute)
	if err != nil {
		return nil, err
	}
	existingIsMapping := present && looksLikeMapping(existing.Text)

	var newNode yaml.Node
	newIsMapping := false
	if err := yaml.Unmarshal([]byte(op.Value), &newNode); err == nil &&
		len(newNode.Content) == 1 && newNode.Content[0].Kind == yaml.MappingNode {
		newIsMapping = true
	}

	if !existingIsMapping || !newIsMapping {
		return []finding.PatchOp{{Kind: finding.OpReplace, Route: childRoute, Value: op.Value}}, nil
	}

	pairs := newNode.Content[0].Content
	var result []finding.PatchOp
	for i := 0; i+1 < len(pairs); i += 2 {
		k := pairs[i].Value
		v := pairs[i+1].Value
		if v == "" && pairs[i+1].Kind == yaml.MappingNode {
			v = "{}"
		}
		sub := childRoute.Child(k)
		if doc.QueryExists(sub) {
			result = append(result, finding.PatchOp{Kind: finding.OpReplace, Route: sub, Value: v})
		} else {
			result = append(result, finding.PatchOp{Kind: finding.OpAdd, Route: childRoute, Key: k, Value: v})
		}
	}
	return result, nil
}

// looksLikeMapping is a crude textual classifier: good enough to
// distinguish a mapping's rendered span (flow `{}` or a block of
// `key: value` lines) from a scalar or sequence, without re-parsing.
func looksLikeMapping(text string) bool {
	t := strings.TrimSpace(text)
	if t == "{}" {
		return true
	}
	if strings.HasPrefix(t, "[") || strings.HasPrefix(t, "\"") || strings.HasPrefix(t, "'") || strings.HasPrefix(t, "-") {
		return false
	}
	return strings.Contains(t, ":")
}

func resolveEdit(doc *yamlpath.Document, source []byte, op finding.PatchOp) (edit, error) {
	switch op.Kind {
	case finding.OpReplace:
		return resolveReplace(doc, source, op)
	case finding.OpAdd:
		return resolveAdd(doc, op)
	case finding.OpRemove:
		return resolveRemove(doc, source, op)
	default:
		return edit{}, fmt.Errorf("patch: unexpected op kind %d after merge expansion", op.Kind)
	}
}

func resolveReplace(doc *yamlpath.Document, source []byte, op finding.PatchOp) (edit, error) {
	f, present, err := doc.QueryExact(op.Route)
	if err != nil {
		return edit{}, fmt.Errorf("patch: replace route %s: %w", op.Route, err)
	}
	if !present {
		// `foo:` with no value: insert " value" right after the colon.
		kf, err := doc.QueryKeyOnly(op.Route)
		if err != nil {
			return edit{}, fmt.Errorf("patch: replace route %s: %w", op.Route, err)
		}
		idx := bytes.IndexByte(source[kf.Span.End:], ':')
		if idx < 0 {
			return edit{}, fmt.Errorf("patch: replace route %s: no colon found after key", op.Route)
		}
		at := kf.Span.End + idx + 1
		return edit{start: at, end: at, text: []byte(" " + op.Value)}, nil
	}
	return edit{start: f.Span.Start, end: f.Span.End, text: []byte(renderReplacementValue(f, op.Value))}, nil
}

// renderReplacementValue re-renders value to fit the style of the span
// it replaces: a literal block scalar is re-indented when the
// replacement itself spans multiple lines; every
// other case is a verbatim substitution.
func renderReplacementValue(f yamlpath.Feature, value string) string {
	trimmed := strings.TrimSpace(f.Text)
	isBlock := strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, ">")
	if !isBlock || !strings.Contains(value, "\n") {
		return value
	}

	indent := f.StartPoint.Col + 2
	var b strings.Builder
	b.WriteString("|\n")
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func resolveAdd(doc *yamlpath.Document, op finding.PatchOp) (edit, error) {
	mf, _, err := doc.QueryExact(op.Route)
	if err != nil {
		return edit{}, fmt.Errorf("patch: add route %s: %w", op.Route, err)
	}

	value := op.Value
	if value == "" {
		value = "{}"
	}

	indent := mappingChildIndent(doc, op.Route, mf.Text)
	line := renderAddEntry(indent, op.Key, value)

	if strings.TrimSpace(mf.Text) == "{}" {
		return edit{start: mf.Span.Start, end: mf.Span.End, text: []byte(line)}, nil
	}
	return edit{start: mf.Span.End, end: mf.Span.End, text: []byte(line)}, nil
}

// renderAddEntry renders a new `key: value` mapping entry at indent
// spaces. A value spanning multiple lines (a mapping snippet merged in
// verbatim, e.g. via a MergeInto fallback) is nested as a block under
// `key:` rather than inlined after the colon.
func renderAddEntry(indent int, key, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "{}" || !strings.Contains(value, "\n") {
		return "\n" + strings.Repeat(" ", indent) + key + ": " + value
	}

	childIndent := indent + 2
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(key)
	b.WriteString(":\n")
	lines := strings.Split(strings.TrimRight(value, "\n"), "\n")
	for i, line := range lines {
		b.WriteString(strings.Repeat(" ", childIndent))
		b.WriteString(strings.TrimSpace(line))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// mappingChildIndent derives the indentation new entries should use:
// the indentation of the mapping's first existing entry, or, for an
// empty mapping, the enclosing key's indentation plus two spaces.
func mappingChildIndent(doc *yamlpath.Document, route yamlpath.Route, mappingText string) int {
	lines := strings.Split(mappingText, "\n")
	for _, line := range lines[1:] {
		t := strings.TrimLeft(line, " ")
		if t == "" {
			continue
		}
		return len(line) - len(t)
	}
	if len(route) > 0 {
		if kf, err := doc.QueryKeyOnly(route); err == nil {
			return kf.StartPoint.Col + 2
		}
	}
	return 2
}

func resolveRemove(doc *yamlpath.Document, source []byte, op finding.PatchOp) (edit, error) {
	f, err := doc.QueryPretty(op.Route)
	if err != nil {
		return edit{}, fmt.Errorf("patch: remove route %s: %w", op.Route, err)
	}
	start, end := expandToWholeLines(source, f.Span)
	return edit{start: start, end: end, text: nil}, nil
}

// expandToWholeLines grows span outward to the start and end of the
// line(s) it sits on, consuming the trailing newline so that removing
// a single-line pair leaves no blank line behind.
func expandToWholeLines(source []byte, span yamlpath.Span) (int, int) {
	start := span.Start
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	end := span.End
	for end < len(source) && source[end] != '\n' {
		end++
	}
	if end < len(source) {
		end++
	}
	return start, end
}
