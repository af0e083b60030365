package ast

import (
	"cobalt/intern"
	"cobalt/report"
	"cobalt/types"
)

// Ident represents a named value or type reference.  Ent is nil until the
// identifier has been resolved, either during parsing or by the binder.
type Ident struct {
	ExprBase

	Name *intern.ByteStr
	Ent  *Ent
}

// NewIdent creates a new identifier node.
func NewIdent(pos report.Pos, scope *Scope, name *intern.ByteStr) *Ident {
	return &Ident{ExprBase: NewExprBase(pos, scope), Name: name}
}

// -----------------------------------------------------------------------------

// IntLit is an integer literal.  Val holds the raw value bits; Signed
// records whether the value is interpreted as a signed quantity.
type IntLit struct {
	ExprBase

	Raw    string
	Val    uint64
	Signed bool
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	ExprBase

	Raw string
	Val float64
}

// RuneLit is a character literal.
type RuneLit struct {
	ExprBase

	Val rune
}

// StringLit is a string literal; Val holds the literal bytes.
type StringLit struct {
	ExprBase

	Val []byte
}

// -----------------------------------------------------------------------------

// ListExpr is a list literal `[e, e, ...]`.
type ListExpr struct {
	ExprBase

	Elems []Expr
}

// TupleExpr is a tuple expression `(a, b, ...)` with two or more elements,
// or the empty tuple `()`.  Parenthesized single elements never produce a
// TupleExpr: the parentheses are discarded during parsing.
type TupleExpr struct {
	ExprBase

	Elems []Expr
}

// -----------------------------------------------------------------------------

// Block is a brace-delimited statement sequence.  Blocks are expressions:
// their value is the value of the final expression statement, subject to the
// implicit-return rewrite performed on function bodies.
type Block struct {
	ExprBase

	Stmts []Node
}

// -----------------------------------------------------------------------------

// CallExpr is a call `f(args)`, possibly with template arguments
// `Name<T,U>(args)`.
type CallExpr struct {
	ExprBase

	Fun          Expr
	TemplateArgs []Expr
	Args         []Expr
}

// SelectorExpr is a member access `a.name`.  Numeric selectors (`a.0`) are
// parsed as IndexExpr with a constant index instead.
type SelectorExpr struct {
	ExprBase

	Operand Expr
	Name    *intern.ByteStr
}

// IndexExpr is an index operation `a[expr]` or a numeric tuple access
// `a.N`.  ConstIndex is the folded constant index, or -1 while unknown.
type IndexExpr struct {
	ExprBase

	Operand Expr
	Index   Expr

	ConstIndex int
}

// SliceExpr is a slice operation `a[lo:hi]`; Lo and Hi may be nil.
type SliceExpr struct {
	ExprBase

	Operand Expr
	Lo, Hi  Expr
}

// -----------------------------------------------------------------------------

// Oper is an operator occurrence.
type Oper struct {
	// Kind is the operator's token kind.
	Kind int

	Pos report.Pos
}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	ExprBase

	Op       Oper
	Lhs, Rhs Expr
}

// UnaryExpr is a unary operator application.
type UnaryExpr struct {
	ExprBase

	Op      Oper
	Operand Expr
}

// -----------------------------------------------------------------------------

// IfExpr is an if/else expression.  Else may be nil.
type IfExpr struct {
	ExprBase

	Cond Expr
	Then Expr
	Else Expr
}

// WhileExpr is a while loop.
type WhileExpr struct {
	ExprBase

	Cond Expr
	Body Expr
}

// ForExpr is a three-clause for loop; any clause may be nil.
type ForExpr struct {
	ExprBase

	Init Node
	Cond Expr
	Post Node
	Body Expr
}

// -----------------------------------------------------------------------------

// Field is a single parameter or struct field declaration.  Name is nil for
// unnamed (all-typed) parameters.  TypeX is the syntactic type expression;
// it is nil for grouped parameters awaiting right-to-left type propagation
// until the parser fills it in.
type Field struct {
	NodeBase

	Name  *Ident
	TypeX Expr

	// Typ is the resolved field type.
	Typ types.Type
}

// FunSig is a function signature: parameters plus result type.  Result is
// nil while the signature's result is `auto` (to be inferred).
type FunSig struct {
	NodeBase

	Params []*Field

	// ResultX is the syntactic result type expression, nil if none written.
	ResultX Expr

	// Result is the resolved result type; nil until inferred or resolved.
	Result types.Type
}

// FunExpr is a function expression.  At the top level the name is required;
// inside an expression it is optional and decorative.
type FunExpr struct {
	ExprBase

	Name *Ident
	Sig  *FunSig

	// Body is a Block, or a bare expression for arrow bodies `-> expr`.
	// Nil for body-less declarations (interface members).
	Body Expr

	// Arrow marks an arrow body.
	Arrow bool

	// IsInit marks a file-level `init` function.
	IsInit bool

	// inferredReturns collects the types registered by `return` statements
	// while the body was parsed, in source order.
	inferredReturns []types.Type
}

// AddInferredReturnType registers the type of a `return` site for result
// inference.
func (fe *FunExpr) AddInferredReturnType(t types.Type) {
	fe.inferredReturns = append(fe.inferredReturns, t)
}

// InferredReturnTypes returns the recorded return-site types.
func (fe *FunExpr) InferredReturnTypes() []types.Type {
	return fe.inferredReturns
}

// -----------------------------------------------------------------------------

// StructTypeExpr is the syntactic body of a struct type declaration.
type StructTypeExpr struct {
	ExprBase

	Fields []*Field
}

// ListTypeExpr is the syntactic list type `[T]`.
type ListTypeExpr struct {
	ExprBase

	Elem Expr
}

// OptionalTypeExpr is the syntactic optional type `T?`.
type OptionalTypeExpr struct {
	ExprBase

	Inner Expr
}

// RestTypeExpr is the syntactic rest type `...T`.
type RestTypeExpr struct {
	ExprBase

	Elem Expr
}

// TemplateInstExpr is the syntactic template instantiation `Name<T,U>` in a
// type position.
type TemplateInstExpr struct {
	ExprBase

	Name *Ident
	Args []Expr
}

// -----------------------------------------------------------------------------

// ConvExpr wraps an expression whose value is implicitly converted to the
// node's type, inserted by the resolver for numeric widening.
type ConvExpr struct {
	ExprBase

	Operand Expr
}

// BadExpr is a placeholder for an expression that failed to parse, so that
// downstream passes never need to handle nil nodes.
type BadExpr struct {
	ExprBase
}
