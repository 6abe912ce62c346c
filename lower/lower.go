// Package lower implements built-in lowering: a table-driven instruction
// selector that recognizes calls to a fixed set of built-in functions and
// replaces them with specialized bytecode instructions, choosing among
// variants based on which operands are compile-time constants and which are
// runtime registers. Declining to specialize is never an error; the caller
// falls back to generic call compilation.
package lower

import (
	"github.com/rs/zerolog"

	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/program"
)

// Option configures a Lowerer.
type Option func(*Lowerer)

// WithLogger sets the logger used for lowering diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(lw *Lowerer) {
		lw.logger = logger
	}
}

// Lowerer selects specialized instructions for built-in calls, emitting
// into the given assembler.
type Lowerer struct {
	asm    *bytecode.Assembler
	funcs  map[string]*program.Function
	logger zerolog.Logger
}

// New creates a Lowerer emitting into asm, resolving call targets against
// the given function table.
func New(asm *bytecode.Assembler, funcs map[string]*program.Function, opts ...Option) *Lowerer {
	lw := &Lowerer{asm: asm, funcs: funcs, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(lw)
	}
	return lw
}

// builtin is one lowering strategy. The built-in set is fixed and
// enumerable, so strategies live in a closed registration map rather than
// an open hierarchy.
type builtin interface {
	// returnValMatters reports whether the built-in's value is its point;
	// if so, a call that ignores the value is a no-op worth a warning.
	returnValMatters() bool
	// haveBoth reports whether both assigning and non-assigning
	// instruction forms exist.
	haveBoth() bool
	// build attempts to emit specialized instructions for the call,
	// assigning to n if non-nil. Returning false declines the shape.
	build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool
}

// TryLower attempts to replace a call to a built-in with specialized
// instructions. n is the assignment target, or nil when the call's value is
// discarded. Returns false when no specialization applies and the call must
// compile as an ordinary call.
func (lw *Lowerer) TryLower(n *ast.NameExpr, c *ast.CallExpr) bool {
	fe, ok := c.Func.(*ast.NameExpr)
	if !ok {
		// An indirect call.
		return false
	}

	fn := lw.funcs[fe.ID.Name]
	if fn == nil || fn.Kind() != program.KindBuiltin {
		return false
	}

	b, ok := builtins[fn.Name()]
	if !ok {
		return false
	}

	if b.returnValMatters() {
		if n == nil {
			lw.logger.Warn().
				Str("builtin", fn.Name()).
				Str("site", c.Location.String()).
				Msg("return value from built-in function ignored")

			// The call is a no-op; emitting nothing just ignores the
			// statement.
			return true
		}
	} else if n != nil && !b.haveBoth() {
		// The replacement operation was built assuming no assignment is
		// needed. Let the usual call take its place.
		return false
	}

	return b.build(lw, n, c.Args)
}

// constArgsMask returns a bit mask of which arguments are compile-time
// constants, the high-order bit being the first argument and the low-order
// bit the last.
func constArgsMask(args []ast.Expr) uint {
	var mask uint
	for _, a := range args {
		mask <<= 1
		if _, ok := a.(*ast.ConstExpr); ok {
			mask |= 1
		}
	}
	return mask
}

// Argument-constness masks for two- and three-argument built-ins.
const (
	maskVV = 0x0
	maskVC = 0x1
	maskCV = 0x2
	maskCC = 0x3

	maskVVV = 0x0
	maskVVC = 0x1
	maskVCV = 0x2
	maskVCC = 0x3
	maskCVV = 0x4
	maskCVC = 0x5
	maskCCV = 0x6
	maskCCC = 0x7
)
