// SPDX-License-Identifier: MIT

package expr

// ConstantReducibleSubexprs returns the largest reducible sub-trees of
// a non-reducible expression: a fix can replace each
// returned node's Origin span with its folded value without touching
// the rest of the expression.
func ConstantReducibleSubexprs(n *Node) []*Node {
	if n == nil {
		return nil
	}
	if ConstantReducible(n) {
		return []*Node{n}
	}
	switch n.Kind {
	case KindUnary:
		return ConstantReducibleSubexprs(n.Operand)
	case KindBinary:
		out := ConstantReducibleSubexprs(n.Left)
		return append(out, ConstantReducibleSubexprs(n.Right)...)
	case KindIndex:
		var out []*Node
		out = append(out, ConstantReducibleSubexprs(n.Target)...)
		if n.Index != nil {
			out = append(out, ConstantReducibleSubexprs(n.Index)...)
		}
		return out
	case KindCall:
		var out []*Node
		for _, a := range n.Args {
			out = append(out, ConstantReducibleSubexprs(a)...)
		}
		return out
	default:
		// KindContext, KindIdent, and leaf literals that failed
		// ConstantReducible (shouldn't happen for literals) have no
		// children to descend into.
		return nil
	}
}

// ComputedIndices walks n and yields every index expression whose body
// is not a literal identifier, number, string, or star, i.e.
// indirection like `secrets[format('{0}', 'TOKEN')]`. No audit in the
// catalog calls it: the `obfuscation` audit does not flag computed
// indices.
func ComputedIndices(n *Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindIndex:
			walk(n.Target)
			if n.Index == nil {
				// bare `*` selector, not computed.
				return
			}
			switch n.Index.Kind {
			case KindNumber, KindString, KindIdent:
				// literal or bare-identifier index, not computed.
			default:
				out = append(out, n.Index)
			}
			walk(n.Index)
		case KindUnary:
			walk(n.Operand)
		case KindBinary:
			walk(n.Left)
			walk(n.Right)
		case KindCall:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(n)
	return out
}

// DataflowContext is one source-side context a DataflowContexts walk
// found. SecretLeakage marks a `fromJSON(secrets.X)` pattern, which
// defeats naive secrets-name-based redaction heuristics by reading the
// whole `secrets` context as one opaque JSON blob.
type DataflowContext struct {
	Context       Context
	SecretLeakage bool
}

func isComparisonOp(op BinOp) bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// DataflowContexts yields every Context that is the source side of a
// data flow reaching the surrounding text a `${{ ... }}` block is
// substituted into. Flow propagates through the
// identity-like functions `format`, `join`, and `toJSON`; a
// `fromJSON(secrets.X)` call is reported as a marked secret-leakage
// context instead of being treated as opaque; comparison operators and
// the unary `!` always yield a boolean and stop the flow; `&&`/`||` can
// still return either untouched operand, so flow continues through
// both sides.
func DataflowContexts(n *Node) []DataflowContext {
	var out []DataflowContext
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindContext:
			ctx, ok := AsContext(n)
			if ok {
				out = append(out, DataflowContext{Context: ctx})
			}
		case KindCall:
			if n.Callee == "fromjson" && len(n.Args) == 1 {
				if ctx, ok := AsContext(n.Args[0]); ok && ctx.ChildOf("secrets") {
					out = append(out, DataflowContext{Context: ctx, SecretLeakage: true})
					return
				}
			}
			switch n.Callee {
			case "format", "join", "tojson":
				for _, a := range n.Args {
					walk(a)
				}
			}
			// Other calls are an opaque boundary: the catalog does not
			// model arbitrary function semantics, so no flow is reported
			// through them.
		case KindBinary:
			if isComparisonOp(n.BinOp) {
				return
			}
			walk(n.Left)
			walk(n.Right)
		case KindUnary:
			// `!` always yields a boolean.
			return
		case KindIndex:
			walk(n.Target)
		}
	}
	walk(n)
	return out
}
