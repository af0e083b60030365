package ast

import (
	"cobalt/intern"
	"cobalt/report"
	"cobalt/types"
)

// Node is the abstract interface for all AST nodes.  Every node carries the
// position where it begins and the scope in force where it was parsed.
type Node interface {
	// Pos is the position of the first token of the node.
	Pos() report.Pos

	// NodeScope is the scope in effect where the node was parsed.
	NodeScope() *Scope
}

// Expr represents an expression.  All expression nodes implement Expr,
// including blocks and if/while/for, which yield values in Cobalt.  The
// Type/SetType pair doubles as the back-reference hook for unresolved types
// (types.Ref).
type Expr interface {
	Node

	// Type is the memoized type of the expression; nil until resolved.
	Type() types.Type

	// SetType sets the memoized type of the expression.
	SetType(types.Type)
}

// NodeBase is the base struct for all AST nodes.
type NodeBase struct {
	pos   report.Pos
	scope *Scope
}

// NewNodeBase creates a node base at the given position and scope.
func NewNodeBase(pos report.Pos, scope *Scope) NodeBase {
	return NodeBase{pos: pos, scope: scope}
}

func (nb *NodeBase) Pos() report.Pos {
	return nb.pos
}

func (nb *NodeBase) NodeScope() *Scope {
	return nb.scope
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	NodeBase

	typ types.Type
}

// NewExprBase creates an expression base at the given position and scope.
func NewExprBase(pos report.Pos, scope *Scope) ExprBase {
	return ExprBase{NodeBase: NewNodeBase(pos, scope)}
}

func (eb *ExprBase) Type() types.Type {
	return eb.typ
}

func (eb *ExprBase) SetType(typ types.Type) {
	eb.typ = typ
}

// -----------------------------------------------------------------------------

// File is a parsed source file: its imports, top-level declarations, and the
// residual unresolved identifier set handed to the binder.
type File struct {
	NodeBase

	// Name is the file's name as registered with the file set.
	Name string

	// Imports lists the file's import declarations in source order.
	Imports []*ImportDecl

	// Decls lists the file's top-level declarations in source order.
	Decls []Node

	// Unresolved is the set of identifiers whose lookup missed during
	// parsing.  The binder resolves them after all files of the package have
	// been parsed.
	Unresolved map[*Ident]struct{}
}

// NewFile creates a new file node owning the given file scope.
func NewFile(pos report.Pos, name string, fileScope *Scope) *File {
	f := &File{
		NodeBase:   NewNodeBase(pos, fileScope),
		Name:       name,
		Unresolved: make(map[*Ident]struct{}),
	}
	fileScope.Context = f
	return f
}

// Scope returns the file scope.
func (f *File) Scope() *Scope {
	return f.NodeScope()
}

// -----------------------------------------------------------------------------

// ImportDecl is a single import declaration.
type ImportDecl struct {
	NodeBase

	// Path is the import path string.
	Path string

	// LocalName is the local binding name: nil to bind under the imported
	// package's own name, `_` to discard, `.` reserved for scope merging.
	LocalName *intern.ByteStr

	// Ent is the binding created for the import by the binder; nil until
	// bound (or discarded).
	Ent *Ent

	// Pkg is the imported package object supplied by the binder's importer.
	// It is opaque at the AST layer.
	Pkg interface{}
}
