package main

import "testing"

func TestInterpreterEvalString(t *testing.T) {
	vm := newTestInterpreter(t)
	v, err := vm.EvalString("2+2", 1)
	if err != nil {
		t.Fatalf("EvalString: %v", err)
	}
	if v.AsInt64() != 4 {
		t.Fatalf("EvalString(\"2+2\") = %v, want 4", v)
	}
}

func TestInterpreterSumArrayNumeric(t *testing.T) {
	vm := newTestInterpreter(t)
	cell := vm.Vars.LookupOrCreate("a%()")
	vm.Vars.DefineArray(cell, []int{2}, KindInt)
	cell.Value.Arr.Elems[0] = IntValue(3)
	cell.Value.Arr.Elems[1] = IntValue(4)
	cell.Value.Arr.Elems[2] = IntValue(5)

	v, err := vm.SumArray(cell.Value)
	if err != nil {
		t.Fatalf("SumArray: %v", err)
	}
	if v.AsInt64() != 12 {
		t.Fatalf("SumArray = %v, want 12", v)
	}
}

func TestInterpreterSumArrayRejectsStrings(t *testing.T) {
	vm := newTestInterpreter(t)
	cell := vm.Vars.LookupOrCreate("s$()")
	vm.Vars.DefineArray(cell, []int{1}, KindString)
	_, err := vm.SumArray(cell.Value)
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrTypeMismatch {
		t.Fatalf("SumArray on a string array should raise ErrTypeMismatch, got %v", err)
	}
}

func TestInterpreterSumArrayRejectsNonArray(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.SumArray(IntValue(5))
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrTypeMismatch {
		t.Fatalf("SumArray on a scalar should raise ErrTypeMismatch, got %v", err)
	}
}

func TestInterpreterRandomFunctionRangeAndRepeat(t *testing.T) {
	vm := newTestInterpreter(t)
	v, err := vm.RandomFunction([]Value{IntValue(10)})
	if err != nil {
		t.Fatalf("RandomFunction(10): %v", err)
	}
	n := v.AsInt64()
	if n < 1 || n > 10 {
		t.Fatalf("RND(10) = %d, want a value in [1,10]", n)
	}
	again, err := vm.RandomFunction([]Value{IntValue(0)})
	if err != nil {
		t.Fatalf("RandomFunction(0): %v", err)
	}
	if again.AsInt64() != n {
		t.Fatalf("RND(0) should repeat the last draw, got %v want %v", again, v)
	}
}

func TestInterpreterRandomFunctionReseedReturnsSeed(t *testing.T) {
	vm := newTestInterpreter(t)
	v, err := vm.RandomFunction([]Value{IntValue(-42)})
	if err != nil {
		t.Fatalf("RandomFunction(-42): %v", err)
	}
	if v.AsInt64() != -42 {
		t.Fatalf("RND(-42) should return the seed itself, got %v", v)
	}
}

func TestInterpreterRandomFunctionNiladicIsFloatInUnitRange(t *testing.T) {
	vm := newTestInterpreter(t)
	v, err := vm.RandomFunction(nil)
	if err != nil {
		t.Fatalf("RandomFunction(): %v", err)
	}
	if v.Kind != KindFloat {
		t.Fatalf("bare RND should be a float")
	}
	if v.F < 0 || v.F >= 1 {
		t.Fatalf("bare RND = %v, want a value in [0,1)", v.F)
	}
}
