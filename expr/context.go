// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Context is a rooted path expression like `github.event.issue.title`
// or `matrix.os[0]`, as classified out of a parsed Node. Not every
// KindContext node forms a clean Context: a call-led chain like
// `fromJSON(x).y` is represented as nested KindIndex/KindCall nodes, not
// KindContext, and AsContext returns ok=false for it.
type Context struct {
	node *Node
}

// AsContext views n as a Context if it is rooted in a plain identifier
// path (KindContext). Call-led or otherwise computed chains return
// ok=false.
func AsContext(n *Node) (Context, bool) {
	if n == nil || n.Kind != KindContext {
		return Context{}, false
	}
	return Context{node: n}, true
}

// Root returns the context's leading identifier, e.g. "github" for
// `github.event.issue.title`.
func (c Context) Root() string { return c.node.Path[0].Name }

// Path returns the context's path elements, root first.
func (c Context) Path() []PathElem { return c.node.Path }

// Node returns the underlying expression node (for Origin access).
func (c Context) Node() *Node { return c.node }

// ChildOf reports whether the context's root identifier equals root,
// case-insensitively.
func (c Context) ChildOf(root string) bool {
	return strings.EqualFold(c.Root(), root)
}

// PopIf returns a new Context with its head component removed, when
// ChildOf(root) holds; otherwise ok is false. It turns `env.FOO` into
// a bare `FOO` context.
func (c Context) PopIf(root string) (Context, bool) {
	if !c.ChildOf(root) || len(c.node.Path) < 2 {
		return Context{}, false
	}
	popped := &Node{Kind: KindContext, Path: c.node.Path[1:]}
	popped.Ident = popped.Path[0].Name
	return Context{node: popped}, true
}

// AsPattern renders the context as a dotted lookup pattern compatible
// with the capability dictionary, e.g. `github.event.issue.title`.
// Numeric and star indices render as `[N]`/`[*]`, matching how the
// dictionary keys array-shaped contexts; string indices render as a
// dotted field when they look like identifiers, or are skipped from
// the pattern (AsPattern returns ok=false) when they don't, since no
// capability dictionary entry could match an unrepresentable key.
func (c Context) AsPattern() (string, bool) {
	var b strings.Builder
	for i, e := range c.node.Path {
		switch e.Kind {
		case PathIdent:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(strings.ToLower(e.Name))
		case PathIndexInt:
			fmt.Fprintf(&b, "[%d]", e.Int)
		case PathStar:
			b.WriteString("[*]")
		case PathIndexStr:
			if !isPlainIdent(e.Name) {
				return "", false
			}
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(strings.ToLower(e.Name))
		}
	}
	return b.String(), true
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if i > 0 && !isIdentCont(r) {
			return false
		}
	}
	return true
}

// ToEnvVar renders the context as a conventional shell environment
// variable name:
//
//   - dotted parts upper-snake-case, joined by '_'
//   - an index [n] with n<=2 inserts FIRST/SECOND/THIRD before the
//     owning part's name
//   - an index [n] with n>=3 inserts {n+1}TH before the owning part
//   - a star index inserts ANY before the owning part
//   - a string index ['foo-bar'] renders as FOO_BAR
//
// ok is false for call-led contexts, which have no Context view at all
// (see AsContext) and thus never reach this method in practice; it is
// kept here so callers have a single place to special-case "no env var
// name, no fix" per the template-injection audit contract.
func (c Context) ToEnvVar() (string, bool) {
	var parts []string
	for _, e := range c.node.Path {
		switch e.Kind {
		case PathIdent:
			parts = append(parts, upperSnake(e.Name))
		case PathIndexStr:
			parts = append(parts, upperSnake(e.Name))
		case PathIndexInt:
			if len(parts) == 0 {
				return "", false
			}
			ordinal := ordinalWord(e.Int)
			last := len(parts) - 1
			parts = append(parts[:last], append([]string{ordinal}, parts[last:]...)...)
		case PathStar:
			if len(parts) == 0 {
				return "", false
			}
			last := len(parts) - 1
			parts = append(parts[:last], append([]string{"ANY"}, parts[last:]...)...)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "_"), true
}

func ordinalWord(n int) string {
	switch n {
	case 0:
		return "FIRST"
	case 1:
		return "SECOND"
	case 2:
		return "THIRD"
	default:
		return strconv.Itoa(n+1) + "TH"
	}
}

func upperSnake(s string) string {
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToUpper(s)
}
