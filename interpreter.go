// interpreter.go - the central object graph: owns every collaborator of
// §5/§6 and the handful of cross-cutting operations (EVAL, SUM, RND) that
// don't belong to any single component.
//
// Grounded on machine_bus.go's top-level "Machine" struct that owned every
// subsystem and wired their cross-references together in one constructor.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"math/rand"
	"os"
)

const defaultArenaSize = 4 * 1024 * 1024

// Interpreter is the object graph every statement/expression executes
// against. Field names are part of the internal contract other files
// (expr_eval.go, keyboard.go) already depend on.
type Interpreter struct {
	Arena   *Arena
	Strings *StringStore
	Vars    *VariableTable
	Program *ProgramStore

	Clock    *Clock
	Keyboard *Keyboard
	Mouse    *Mouse
	TextIO   *TextIO
	Files    *FileIO

	Palette     *Palette
	Framebuffer *Framebuffer
	Graphics    *Graphics
	Mode7       *Mode7
	TextPlane   *TextPlane
	VDU         *VDUQueue
	Video       VideoOutput

	Errors ErrorStack
	eval   *Evaluator
	tok    *Tokenizer

	// Exec is the active statement executor, set by NewExecutor. FN calls
	// reached from inside expression evaluation re-enter it (expr_eval.go).
	Exec *Executor

	PrintColumn int
	// PrintWidth is the column pitch PRINT's comma field-separator tabs to
	// (the "@%" format register's low byte in real BASIC V), set by the
	// WIDTH statement. WIDTH 0 disables wrapping entirely.
	PrintWidth int

	rng        *rand.Rand
	lastRandom Value
}

// NewInterpreter builds a complete object graph booted into Mode 7, the
// classic immediate-mode screen (§4.12's default).
func NewInterpreter(video VideoOutput) *Interpreter {
	arena := NewArena(defaultArenaSize)
	clock := NewClock()
	keyboard := NewKeyboard(clock)

	vm := &Interpreter{
		Arena:   arena,
		Strings: NewStringStore(arena),
		Vars:    NewVariableTable(),
		Program: NewProgramStore(arena),

		Clock:    clock,
		Keyboard: keyboard,
		Mouse:    NewMouse(clock),
		TextIO:   NewTextIO(os.Stdout, os.Stdin),
		Files:    NewFileIO(),

		Palette:     NewPalette(Depth8),
		Framebuffer: NewFramebuffer(clock),
		Mode7:       NewMode7(clock),
		TextPlane:   NewTextPlane(keyboard),
		Video:       video,

		tok: NewTokenizer(),

		rng:        rand.New(rand.NewSource(1)),
		lastRandom: FloatValue(0),
		PrintWidth: 10,
	}
	vm.Graphics = NewGraphics(vm.Framebuffer, vm.Palette)
	vm.eval = NewEvaluator(vm)
	vm.VDU = NewVDUQueue(vm.TextPlane, vm.Graphics, vm.Palette, vm.Framebuffer, vm.Mode7, vm.Video)

	mode := vm.Framebuffer.Mode()
	vm.TextPlane.Resize(mode.XText, mode.YText)
	vm.Exec = NewExecutor(vm)
	vm.Program.AttachVariables(vm.Vars)
	return vm
}

// Evaluator exposes the shared expression evaluator to the executor.
func (vm *Interpreter) Evaluator() *Evaluator { return vm.eval }

// EvalString implements EVAL(s$): tokenizes the given text as a standalone
// expression and evaluates it against the current variable table, per §4.6.
func (vm *Interpreter) EvalString(expr string, line int) (Value, error) {
	t, err := vm.tok.Tokenize(uint16(line), expr)
	if err != nil {
		return Value{}, err
	}
	cur := NewCursor(t, 0)
	return vm.eval.Eval(cur)
}

// SumArray implements SUM(array%()): numeric arrays sum element-wise;
// summing a string array is a type mismatch (§4.6's function catalogue).
func (vm *Interpreter) SumArray(v Value) (Value, error) {
	if v.Kind != KindArray || v.Arr == nil {
		return Value{}, NewError(ErrTypeMismatch, 0)
	}
	if v.Arr.ElemKind == KindString {
		return Value{}, NewError(ErrTypeMismatch, 0)
	}
	if v.Arr.ElemKind == KindFloat {
		var total float64
		for _, e := range v.Arr.Elems {
			total += e.AsFloat()
		}
		return FloatValue(total), nil
	}
	var total int64
	for _, e := range v.Arr.Elems {
		total += e.AsInt64()
	}
	return NormalizeInt(total), nil
}

// RandomFunction implements RND(n) per the classic BBC BASIC convention:
// RND(1) draws a new float in [0,1); RND(n) for n>1 draws a new integer in
// [1,n]; RND(0) repeats the last value drawn; RND(n) for n<0 reseeds the
// generator deterministically from n and returns n.
func (vm *Interpreter) RandomFunction(args []Value) (Value, error) {
	if len(args) == 0 {
		f := vm.rng.Float64()
		vm.lastRandom = FloatValue(f)
		return vm.lastRandom, nil
	}
	n := args[0].AsInt64()
	switch {
	case n == 0:
		return vm.lastRandom, nil
	case n == 1:
		vm.lastRandom = FloatValue(vm.rng.Float64())
		return vm.lastRandom, nil
	case n > 1:
		vm.lastRandom = IntValue(int32(vm.rng.Int63n(n) + 1))
		return vm.lastRandom, nil
	default:
		vm.rng = rand.New(rand.NewSource(n))
		return IntValue(int32(n)), nil
	}
}

// Close releases the background goroutines owned by the object graph.
func (vm *Interpreter) Close() {
	vm.Clock.Close()
}
