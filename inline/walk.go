package inline

import (
	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/program"
)

// inlineStmt rewrites call expressions beneath the statement in place.
func (i *Inliner) inlineStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.StmtList:
		for _, st := range s.Stmts {
			i.inlineStmt(st)
		}
	case *ast.ExprStmt:
		s.E = i.inlineExpr(s.E)
	case *ast.AssignStmt:
		s.E = i.inlineExpr(s.E)
	case *ast.ReturnStmt:
		if s.E != nil {
			s.E = i.inlineExpr(s.E)
		}
	case *ast.IfStmt:
		s.Cond = i.inlineExpr(s.Cond)
		i.inlineStmt(s.Then)
		if s.Else != nil {
			i.inlineStmt(s.Else)
		}
	}
}

// inlineExpr rewrites call expressions beneath the expression, returning
// the (possibly replaced) expression.
func (i *Inliner) inlineExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.BinaryExpr:
		e.L = i.inlineExpr(e.L)
		e.R = i.inlineExpr(e.R)
		return e
	case *ast.CallExpr:
		// Arguments first: an argument may itself be an inlinable call.
		for n, a := range e.Args {
			e.Args[n] = i.inlineExpr(a)
		}
		return i.checkForInlining(e)
	case *ast.InlineExpr:
		for n, a := range e.Args {
			e.Args[n] = i.inlineExpr(a)
		}
		i.inlineStmt(e.Body)
		return e
	default:
		return e
	}
}

// buildProfile recomputes a body's call profile after rewriting: the direct
// script-function callees still present, and the identifiers assigned.
func (i *Inliner) buildProfile(s ast.Stmt) ([]*program.Function, []*ast.ID) {
	var calls []*program.Function
	var assignees []*ast.ID
	seen := make(map[*program.Function]bool)

	var walkStmt func(ast.Stmt)
	var walkExpr func(ast.Expr)

	walkStmt = func(s ast.Stmt) {
		switch s := s.(type) {
		case nil:
		case *ast.StmtList:
			for _, st := range s.Stmts {
				walkStmt(st)
			}
		case *ast.ExprStmt:
			walkExpr(s.E)
		case *ast.AssignStmt:
			assignees = append(assignees, s.Target.ID)
			walkExpr(s.E)
		case *ast.ReturnStmt:
			walkExpr(s.E)
		case *ast.IfStmt:
			walkExpr(s.Cond)
			walkStmt(s.Then)
			walkStmt(s.Else)
		}
	}

	walkExpr = func(e ast.Expr) {
		switch e := e.(type) {
		case nil:
		case *ast.BinaryExpr:
			walkExpr(e.L)
			walkExpr(e.R)
		case *ast.CallExpr:
			if n, ok := e.Func.(*ast.NameExpr); ok && n.ID.Global {
				if fn := i.funcsByName[n.ID.Name]; fn != nil && !seen[fn] {
					seen[fn] = true
					calls = append(calls, fn)
				}
			}
			for _, a := range e.Args {
				walkExpr(a)
			}
		case *ast.InlineExpr:
			for _, a := range e.Args {
				walkExpr(a)
			}
			walkStmt(e.Body)
		}
	}

	walkStmt(s)
	return calls, assignees
}
