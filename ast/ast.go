// Package ast defines the abstract statement and expression trees that the
// zinc front end hands to the optimizer. The optimizer consumes bodies as
// abstract subtrees with a declared parameter scope; it never re-parses
// source. Nodes support deep duplication so the inliner can copy a callee
// body into a call site without aliasing the original.
package ast

import (
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// Node is a portion of the syntax tree. All nodes carry position
// information indicating where they appear in the source code.
type Node interface {
	// Loc returns the node's position in the original source.
	Loc() errz.SourceLocation
}

// Stmt represents a statement node. Statements cause side effects but do
// not evaluate to a value.
type Stmt interface {
	Node
	// Duplicate returns a deep copy of the statement. Identifiers are
	// shared, not copied: a duplicated NameExpr still names the same ID.
	Duplicate() Stmt
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value and
// may be embedded within other expressions.
type Expr interface {
	Node
	// Type returns the expression's static type.
	Type() *types.Type
	// Duplicate returns a deep copy of the expression.
	Duplicate() Expr
	exprNode()
}

// ID is a declared identifier: a parameter, local, or global. Frame slot
// assignment happens during bytecode compilation; the optimizer only needs
// name, type, and scope depth.
type ID struct {
	Name   string
	Typ    *types.Type
	Global bool
}

// NewID returns an identifier with the given name and type.
func NewID(name string, t *types.Type) *ID {
	return &ID{Name: name, Typ: t}
}

// NewGlobalID returns a global identifier with the given name and type.
func NewGlobalID(name string, t *types.Type) *ID {
	return &ID{Name: name, Typ: t, Global: true}
}

// AttrKind identifies a declaration attribute.
type AttrKind int

const (
	// AttrGroup marks an event handler as belonging to a named handler
	// group whose members can be enabled and disabled together.
	AttrGroup AttrKind = iota
	// AttrPriority orders handler bodies relative to one another.
	AttrPriority
)

// Attr is a declaration attribute attached to a scope.
type Attr struct {
	Kind AttrKind
	Name string
	N    int
}

// Scope is the lexical scope of one function body: its declared variables
// in declaration order, the first NumParams of which are the parameters.
type Scope struct {
	vars      []*ID
	numParams int
	retType   *types.Type
	attrs     []Attr
}

// NewScope builds a scope from ordered variables, of which the first
// numParams are parameters.
func NewScope(vars []*ID, numParams int, retType *types.Type) *Scope {
	return &Scope{vars: vars, numParams: numParams, retType: retType}
}

// OrderedVars returns the declared variables in declaration order.
func (s *Scope) OrderedVars() []*ID { return s.vars }

// Length returns the number of declared variables, which is the scope's
// contribution to the function's frame size.
func (s *Scope) Length() int { return len(s.vars) }

// NumParams returns the number of parameters.
func (s *Scope) NumParams() int { return s.numParams }

// ReturnType returns the declared return type, or nil for none.
func (s *Scope) ReturnType() *types.Type { return s.retType }

// Attrs returns the scope's declaration attributes.
func (s *Scope) Attrs() []Attr { return s.attrs }

// SetAttrs replaces the scope's declaration attributes.
func (s *Scope) SetAttrs(attrs []Attr) { s.attrs = attrs }

// HasAttr reports whether the scope carries an attribute of the given kind.
func (s *Scope) HasAttr(kind AttrKind) bool {
	for _, a := range s.attrs {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Const is a compile-time constant: a value plus its type.
type Const struct {
	Val value.Val
	Typ *types.Type
}
