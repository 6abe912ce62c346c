package ast

// Count returns the number of statement and expression nodes in the given
// subtree. The front end caches these counts per body; the inliner's size
// budget is accounted in these units.
func Count(s Stmt) (numStmts, numExprs int) {
	countStmt(s, &numStmts, &numExprs)
	return numStmts, numExprs
}

func countStmt(s Stmt, ns, ne *int) {
	if s == nil {
		return
	}
	*ns++
	switch s := s.(type) {
	case *StmtList:
		// The list itself is not a statement of interest; undo the count.
		*ns--
		for _, st := range s.Stmts {
			countStmt(st, ns, ne)
		}
	case *ExprStmt:
		countExpr(s.E, ns, ne)
	case *AssignStmt:
		countExpr(s.Target, ns, ne)
		countExpr(s.E, ns, ne)
	case *ReturnStmt:
		countExpr(s.E, ns, ne)
	case *IfStmt:
		countExpr(s.Cond, ns, ne)
		countStmt(s.Then, ns, ne)
		countStmt(s.Else, ns, ne)
	}
}

func countExpr(e Expr, ns, ne *int) {
	if e == nil {
		return
	}
	*ne++
	switch e := e.(type) {
	case *BinaryExpr:
		countExpr(e.L, ns, ne)
		countExpr(e.R, ns, ne)
	case *CallExpr:
		countExpr(e.Func, ns, ne)
		for _, a := range e.Args {
			countExpr(a, ns, ne)
		}
	case *InlineExpr:
		for _, a := range e.Args {
			countExpr(a, ns, ne)
		}
		countStmt(e.Body, ns, ne)
	}
}
