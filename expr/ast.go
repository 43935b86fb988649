// SPDX-License-Identifier: MIT

// Package expr implements the GitHub Actions expression language: the
// bare bodies of `${{ ... }}` template blocks. It covers parsing,
// constant folding, context classification, and the data-flow queries
// the audit catalog needs to reason about taint — not full expression
// runtime semantics.
package expr

// Origin is the raw text an AST node was parsed from and its byte span
// within the expression source it came from. Fix generation for
// template-injection replaces sub-expressions by their Origin span.
type Origin struct {
	Raw   string
	Start int
	End   int
}

// Kind discriminates Node variants.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNull
	KindIdent
	KindStar
	KindIndex
	KindContext
	KindCall
	KindUnary
	KindBinary
)

// BinOp enumerates the binary operators the grammar supports, in
// increasing precedence order as groups: Or < And < comparisons.
type BinOp int

const (
	OpOr BinOp = iota
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
)

// UnaryOp enumerates unary operators. `!` (logical not) is the only one
// the grammar defines.
type UnaryOp int

const (
	OpNot UnaryOp = iota
)

// Node is a parsed expression tree node. Only the fields relevant to
// its Kind are populated, the same way loosely-typed `any` fields are
// embedded on the workflow model's structs rather than introducing a
// parallel hierarchy of Go interfaces for every YAML shape, generalized
// here to an expression AST.
type Node struct {
	Kind   Kind
	Origin Origin

	// KindNumber
	Number float64
	// KindString
	Str string
	// KindBool
	Bool bool
	// KindIdent / first component of a KindContext
	Ident string
	// KindIndex: Target[Index]; Index is nil for `*`.
	Target *Node
	Index  *Node
	// KindContext: the full dotted/indexed path, root-first. The root
	// identifier is also mirrored into Ident for convenience.
	Path []PathElem
	// KindCall
	Callee string
	Args   []*Node
	// KindUnary
	UnaryOp UnaryOp
	Operand *Node
	// KindBinary
	BinOp BinOp
	Left  *Node
	Right *Node
}

// PathElemKind discriminates the components of a Context path.
type PathElemKind int

const (
	PathIdent PathElemKind = iota
	PathIndexInt
	PathIndexStr
	PathStar
)

// PathElem is one step of a Context's dotted/indexed path.
type PathElem struct {
	Kind PathElemKind
	Name string // PathIdent, PathIndexStr
	Int  int    // PathIndexInt
}
