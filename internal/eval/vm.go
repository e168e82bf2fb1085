// Package eval executes resolved bodies on a stack machine.
//
// The only observable side effect is output written by "say". Every
// failure is an *ir.Diagnostic located at the term that failed, in the file
// that owns the executing body.
package eval

import (
	"fmt"
	"io"

	"github.com/roach88/pentagram/internal/ir"
)

// DefaultMaxDepth bounds nested function calls.
const DefaultMaxDepth = 1024

// Function is a callable body.
type Function struct {
	FileID ir.FileID
	Body   []ir.Spanned[ir.ResolvedTerm]
}

// VM is a value stack plus the functions it may call.
// A VM is not safe for concurrent use.
type VM struct {
	functions map[ir.FunctionID]Function
	out       io.Writer
	stack     []ir.Value
	depth     int
	maxDepth  int
}

// Option configures a VM.
type Option func(*VM)

// WithMaxDepth sets the call depth limit. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(vm *VM) {
		if n > 0 {
			vm.maxDepth = n
		}
	}
}

// New creates a VM with an empty stack writing to out.
func New(functions map[ir.FunctionID]Function, out io.Writer, opts ...Option) *VM {
	vm := &VM{functions: functions, out: out, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Stack returns the current stack, bottom first.
func (vm *VM) Stack() []ir.Value {
	return vm.stack
}

// TakeStack returns the stack and leaves the VM with an empty one.
func (vm *VM) TakeStack() []ir.Value {
	s := vm.stack
	vm.stack = nil
	return s
}

// Eval runs body, which belongs to file.
func (vm *VM) Eval(file ir.FileID, body []ir.Spanned[ir.ResolvedTerm]) error {
	for _, t := range body {
		if err := vm.step(file, t); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) step(file ir.FileID, t ir.Spanned[ir.ResolvedTerm]) error {
	switch term := t.Value.(type) {
	case ir.Literal:
		vm.stack = append(vm.stack, term.Value)
		return nil
	case ir.WordRef:
		switch target := term.Target.(type) {
		case ir.Builtin:
			return vm.builtin(file, t.Span, target)
		case ir.FunctionID:
			return vm.call(file, t.Span, target)
		}
	}
	return ir.Errorf(file, t.Span, "Runtime Error: unexpected term %T", t.Value)
}

func (vm *VM) call(file ir.FileID, span ir.Span, id ir.FunctionID) error {
	fn, ok := vm.functions[id]
	if !ok {
		return ir.Errorf(file, span, "Runtime Error: Function not found: %s", id)
	}
	if vm.depth >= vm.maxDepth {
		return ir.Errorf(file, span, "Call depth exceeded: %s", id)
	}
	vm.depth++
	defer func() { vm.depth-- }()
	return vm.Eval(fn.FileID, fn.Body)
}

func (vm *VM) pop(file ir.FileID, span ir.Span) (ir.Value, error) {
	if len(vm.stack) == 0 {
		return nil, ir.Errorf(file, span, "Stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) popInteger(file ir.FileID, span ir.Span) (ir.Integer, error) {
	v, err := vm.pop(file, span)
	if err != nil {
		return 0, err
	}
	i, ok := v.(ir.Integer)
	if !ok {
		return 0, ir.Errorf(file, span, "Expected integer, got %s", v)
	}
	return i, nil
}

func (vm *VM) builtin(file ir.FileID, span ir.Span, b ir.Builtin) error {
	switch b {
	case ir.BuiltinAdd:
		rhs, err := vm.popInteger(file, span)
		if err != nil {
			return err
		}
		lhs, err := vm.popInteger(file, span)
		if err != nil {
			return err
		}
		sum := lhs + rhs
		if (rhs > 0 && sum < lhs) || (rhs < 0 && sum > lhs) {
			return ir.Errorf(file, span, "Integer overflow")
		}
		vm.stack = append(vm.stack, sum)
	case ir.BuiltinEq:
		rhs, err := vm.pop(file, span)
		if err != nil {
			return err
		}
		lhs, err := vm.pop(file, span)
		if err != nil {
			return err
		}
		vm.stack = append(vm.stack, ir.Boolean(lhs == rhs))
	case ir.BuiltinSay:
		v, err := vm.pop(file, span)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(vm.out, "%s\n", v); err != nil {
			return ir.Errorf(file, span, "IO Error: %v", err)
		}
	case ir.BuiltinAssert:
		v, err := vm.pop(file, span)
		if err != nil {
			return err
		}
		ok, isBool := v.(ir.Boolean)
		if !isBool {
			return ir.Errorf(file, span, "Expected boolean for assert, got %s", v)
		}
		if !ok {
			return ir.Errorf(file, span, "Assertion failed")
		}
	default:
		return ir.Errorf(file, span, "Runtime Error: unknown builtin %s", b)
	}
	return nil
}
