package vm

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// Option is a configuration function for a Machine.
type Option func(*Machine)

// WithProfiling enables per-instruction execution profiling. Profiling
// overhead is measured once at process start and subtracted from reported
// totals.
func WithProfiling() Option {
	return func(m *Machine) {
		m.profile = true
	}
}

// WithLogger sets the logger used for run-time diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithOutput sets the writer used for profile reports.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.out = w
	}
}

// Machine executes compiled bodies. Execution is single-threaded and
// synchronous: one invocation runs to completion, an explicit return, or a
// run-time error before control returns to the caller.
type Machine struct {
	bodies  map[string]*Body
	globals map[string]value.Val

	profile bool
	logger  zerolog.Logger
	out     io.Writer

	// runID distinguishes profile reports from different executions.
	runID uuid.UUID

	// Non-fatal diagnostics (per-element coercion overflows) accumulate
	// here; a fatal run-time error terminates the current body instead.
	diags *multierror.Error

	// Caller call-stack context for per-call-site profile breakdowns.
	callerLocs []string

	errFlag bool
	runErr  error

	flushCount uint64
}

// New creates a Machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		bodies:  make(map[string]*Body),
		globals: make(map[string]value.Val),
		logger:  zerolog.Nop(),
		out:     os.Stdout,
		runID:   uuid.Must(uuid.NewV4()),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.profile {
		calibrateOverheadOnce()
	}
	return m
}

// Register adds a compiled body, making it callable by name.
func (m *Machine) Register(b *Body) {
	m.bodies[b.name] = b
}

// Body returns the registered body with the given name, or nil.
func (m *Machine) Body(name string) *Body { return m.bodies[name] }

// SetGlobal binds a global variable. The machine takes ownership of the
// given value's reference.
func (m *Machine) SetGlobal(name string, v value.Val) {
	if old, ok := m.globals[name]; ok {
		old.Release()
	}
	m.globals[name] = v
}

// Global returns the current value of a global binding.
func (m *Machine) Global(name string) value.Val { return m.globals[name] }

// Diagnostics returns the non-fatal diagnostics accumulated so far, or nil.
func (m *Machine) Diagnostics() error {
	return m.diags.ErrorOrNil()
}

// RunID returns the identifier stamped on this machine's profile reports.
func (m *Machine) RunID() uuid.UUID { return m.runID }

// Run executes the named body and returns its value (if any), the value's
// type, and the control-flow outcome. A run-time error terminates the body
// immediately and is returned; non-fatal diagnostics are available from
// Diagnostics.
func (m *Machine) Run(name string) (value.Val, *types.Type, bytecode.Flow, error) {
	b := m.bodies[name]
	if b == nil {
		return value.Val{}, nil, bytecode.FlowReturn, errz.Newf(errz.ErrValue, errz.SourceLocation{}, "no compiled body named %q", name)
	}

	m.errFlag = false
	m.runErr = nil

	v, t, flow := m.exec(b)
	return v, t, flow, m.runErr
}

// raise flags a fatal run-time error, terminating the current body.
func (m *Machine) raise(err error) {
	m.errFlag = true
	if m.runErr == nil {
		m.runErr = err
	}
	m.logger.Error().Err(err).Msg("run-time error")
}

// diag records a non-fatal diagnostic without interrupting execution.
func (m *Machine) diag(err error) {
	m.diags = multierror.Append(m.diags, err)
	m.logger.Warn().Err(err).Msg("run-time diagnostic")
}

// WriteProfile reports execution profiles for every registered body.
func (m *Machine) WriteProfile(w io.Writer) {
	fmt.Fprintf(w, "run %s: profiling overhead = %d nsec/instruction\n", m.runID, profOverheadNsec())
	names := make([]string, 0, len(m.bodies))
	for name := range m.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.writeBodyProfile(w, m.bodies[name])
	}
}
