package ast

import "github.com/zinclang/zinc/errz"

// StmtList is a block of statements executed in order.
type StmtList struct {
	Stmts    []Stmt
	Location errz.SourceLocation
}

func (s *StmtList) stmtNode() {}
func (s *StmtList) Loc() errz.SourceLocation { return s.Location }

func (s *StmtList) Duplicate() Stmt {
	dup := &StmtList{Location: s.Location, Stmts: make([]Stmt, len(s.Stmts))}
	for i, st := range s.Stmts {
		dup.Stmts[i] = st.Duplicate()
	}
	return dup
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	E        Expr
	Location errz.SourceLocation
}

func (s *ExprStmt) stmtNode() {}
func (s *ExprStmt) Loc() errz.SourceLocation { return s.Location }

func (s *ExprStmt) Duplicate() Stmt {
	return &ExprStmt{E: s.E.Duplicate(), Location: s.Location}
}

// AssignStmt assigns the value of E to Target.
type AssignStmt struct {
	Target   *NameExpr
	E        Expr
	Location errz.SourceLocation
}

func (s *AssignStmt) stmtNode() {}
func (s *AssignStmt) Loc() errz.SourceLocation { return s.Location }

func (s *AssignStmt) Duplicate() Stmt {
	return &AssignStmt{
		Target:   s.Target.Duplicate().(*NameExpr),
		E:        s.E.Duplicate(),
		Location: s.Location,
	}
}

// ReturnStmt returns from the enclosing body, optionally with a value.
type ReturnStmt struct {
	E        Expr // nil for a bare return
	Location errz.SourceLocation
}

func (s *ReturnStmt) stmtNode() {}
func (s *ReturnStmt) Loc() errz.SourceLocation { return s.Location }

func (s *ReturnStmt) Duplicate() Stmt {
	dup := &ReturnStmt{Location: s.Location}
	if s.E != nil {
		dup.E = s.E.Duplicate()
	}
	return dup
}

// IfStmt branches on a condition.
type IfStmt struct {
	Cond     Expr
	Then     Stmt
	Else     Stmt // nil for no else branch
	Location errz.SourceLocation
}

func (s *IfStmt) stmtNode() {}
func (s *IfStmt) Loc() errz.SourceLocation { return s.Location }

func (s *IfStmt) Duplicate() Stmt {
	dup := &IfStmt{Cond: s.Cond.Duplicate(), Then: s.Then.Duplicate(), Location: s.Location}
	if s.Else != nil {
		dup.Else = s.Else.Duplicate()
	}
	return dup
}
