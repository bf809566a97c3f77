package main

import "testing"

func TestBasicErrorMessageDecoratesLineWhenCodeIsLoud(t *testing.T) {
	e := NewError(ErrDivZero, 10)
	if got, want := e.Error(), "Division by zero at line 10"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestBasicErrorSilentCodeOmitsLineDecoration(t *testing.T) {
	e := NewError(ErrNoRoom, 10) // code 0, below the "silent" threshold of 17
	if got, want := e.Error(), "No room"; got != want {
		t.Fatalf("Error() = %q, want %q (no 'at line' suffix for silent codes)", got, want)
	}
}

func TestNewErrorfBuildsCustomMessage(t *testing.T) {
	e := NewErrorf(ErrArrayIndex, 5, "subscript %d out of range", 9)
	if got, want := e.Message, "subscript 9 out of range"; got != want {
		t.Fatalf("Message = %q, want %q", got, want)
	}
	if e.Code != errCodes[ErrArrayIndex] {
		t.Fatalf("NewErrorf should still fill in the taxonomy code")
	}
}

func TestUserErrorCarriesCustomCode(t *testing.T) {
	e := UserError(100, "custom failure")
	if e.Code != 100 || e.Message != "custom failure" {
		t.Fatalf("UserError should carry the given code/message verbatim, got %+v", e)
	}
}

func TestErrorStackPushPopOrder(t *testing.T) {
	var s ErrorStack
	s.Push(ErrorHandler{ResumeLine: 10})
	s.Push(ErrorHandler{ResumeLine: 20})

	top, ok := s.Top()
	if !ok || top.ResumeLine != 20 {
		t.Fatalf("Top() should be the most recently pushed handler")
	}
	h, ok := s.Pop()
	if !ok || h.ResumeLine != 20 {
		t.Fatalf("Pop() should return the most recently pushed handler first")
	}
	h, ok = s.Pop()
	if !ok || h.ResumeLine != 10 {
		t.Fatalf("Pop() should return the earlier handler second")
	}
	if s.Active() {
		t.Fatalf("Active() should be false once every handler is popped")
	}
}

func TestErrorStackPopLocalsAboveDepth(t *testing.T) {
	var s ErrorStack
	s.Push(ErrorHandler{Local: false, ResumeLine: 1})
	s.Push(ErrorHandler{Local: true, LocalDepth: 2, ResumeLine: 2})
	s.Push(ErrorHandler{Local: true, LocalDepth: 3, ResumeLine: 3})

	s.PopLocalsAbove(2)

	top, ok := s.Top()
	if !ok || top.ResumeLine != 1 {
		t.Fatalf("PopLocalsAbove(2) should discard both local frames, leaving the global one, got %+v", top)
	}
}

func TestErrorStackPopLocalsAboveLeavesShallowerFrames(t *testing.T) {
	var s ErrorStack
	s.Push(ErrorHandler{Local: true, LocalDepth: 1, ResumeLine: 1})
	s.Push(ErrorHandler{Local: true, LocalDepth: 5, ResumeLine: 5})

	s.PopLocalsAbove(3)

	top, ok := s.Top()
	if !ok || top.ResumeLine != 1 {
		t.Fatalf("PopLocalsAbove(3) should only discard frames with LocalDepth>=3, got %+v", top)
	}
}
