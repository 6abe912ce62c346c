package ast

import (
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/types"
)

// NameExpr references a declared identifier.
type NameExpr struct {
	ID       *ID
	Location errz.SourceLocation
}

func (e *NameExpr) exprNode() {}
func (e *NameExpr) Loc() errz.SourceLocation { return e.Location }
func (e *NameExpr) Type() *types.Type { return e.ID.Typ }

func (e *NameExpr) Duplicate() Expr {
	return &NameExpr{ID: e.ID, Location: e.Location}
}

// ConstExpr is a compile-time constant.
type ConstExpr struct {
	Const    Const
	Location errz.SourceLocation
}

func (e *ConstExpr) exprNode() {}
func (e *ConstExpr) Loc() errz.SourceLocation { return e.Location }
func (e *ConstExpr) Type() *types.Type { return e.Const.Typ }

func (e *ConstExpr) Duplicate() Expr {
	// Constants outlive the optimization pass; the underlying value is
	// shared rather than copied.
	return &ConstExpr{Const: e.Const, Location: e.Location}
}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	AddOp BinaryOp = iota
	SubOp
	MulOp
	DivOp
	LtOp
	EqOp
)

// String returns the operator's source spelling.
func (o BinaryOp) String() string {
	switch o {
	case AddOp:
		return "+"
	case SubOp:
		return "-"
	case MulOp:
		return "*"
	case DivOp:
		return "/"
	case LtOp:
		return "<"
	case EqOp:
		return "=="
	default:
		return "?"
	}
}

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	Op       BinaryOp
	L, R     Expr
	Typ      *types.Type
	Location errz.SourceLocation
}

func (e *BinaryExpr) exprNode() {}
func (e *BinaryExpr) Loc() errz.SourceLocation { return e.Location }
func (e *BinaryExpr) Type() *types.Type { return e.Typ }

func (e *BinaryExpr) Duplicate() Expr {
	return &BinaryExpr{
		Op:       e.Op,
		L:        e.L.Duplicate(),
		R:        e.R.Duplicate(),
		Typ:      e.Typ,
		Location: e.Location,
	}
}

// CallExpr calls a function with a list of argument expressions. InWhen
// marks call sites inside deferred "when"-style suspended contexts; the
// optimizer treats the flag as opaque and skips such sites.
type CallExpr struct {
	Func     Expr
	Args     []Expr
	Typ      *types.Type
	InWhen   bool
	Location errz.SourceLocation
}

func (e *CallExpr) exprNode() {}
func (e *CallExpr) Loc() errz.SourceLocation { return e.Location }
func (e *CallExpr) Type() *types.Type { return e.Typ }

func (e *CallExpr) Duplicate() Expr {
	dup := &CallExpr{
		Func:     e.Func.Duplicate(),
		Typ:      e.Typ,
		InWhen:   e.InWhen,
		Location: e.Location,
	}
	dup.Args = make([]Expr, len(e.Args))
	for i, a := range e.Args {
		dup.Args[i] = a.Duplicate()
	}
	return dup
}

// InlineExpr is the result of inlining a call: the callee's duplicated body
// with the caller's argument expressions bound to the callee's parameters.
// FrameOffset is the caller frame size at the point of expansion; the
// bytecode compiler renumbers the body's slots by this offset so nested
// inlined bodies never collide.
type InlineExpr struct {
	Args            []Expr
	Params          []*ID
	ParamIsModified []bool // whether the callee ever assigns the parameter
	Body            Stmt
	FrameOffset     int
	Typ             *types.Type
	Location        errz.SourceLocation

	// Original is the call expression this expansion replaced, kept for
	// diagnostics.
	Original *CallExpr
}

func (e *InlineExpr) exprNode() {}
func (e *InlineExpr) Loc() errz.SourceLocation { return e.Location }
func (e *InlineExpr) Type() *types.Type { return e.Typ }

func (e *InlineExpr) Duplicate() Expr {
	dup := &InlineExpr{
		Params:          e.Params,
		ParamIsModified: e.ParamIsModified,
		Body:            e.Body.Duplicate(),
		FrameOffset:     e.FrameOffset,
		Typ:             e.Typ,
		Location:        e.Location,
		Original:        e.Original,
	}
	dup.Args = make([]Expr, len(e.Args))
	for i, a := range e.Args {
		dup.Args[i] = a.Duplicate()
	}
	return dup
}
