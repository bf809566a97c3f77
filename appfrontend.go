// appfrontend.go - the process-level owner of the display window's
// lifecycle, wiring the ebiten backend's input pump into the interpreter's
// Keyboard/Mouse collaborators.
//
// Grounded on the teacher's gui_interface.go/gui_frontend_headless.go split:
// a thin frontend type owning Start/Stop and forwarding backend input
// callbacks into the emulated machine, independent of whatever the backend
// happens to be.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

// AppFrontend owns the physical window (when running with the ebiten
// backend) for the lifetime of the interpreter process.
type AppFrontend struct {
	vm      *Interpreter
	ebiten  *EbitenVideoOutput
	running bool
}

// NewAppFrontend wires vm's Keyboard/Mouse collaborators to output's input
// events, if output is the windowed ebiten backend (the headless backend
// has no input source to wire).
func NewAppFrontend(vm *Interpreter, output VideoOutput) *AppFrontend {
	f := &AppFrontend{vm: vm}
	if eb, ok := output.(*EbitenVideoOutput); ok {
		f.ebiten = eb
		eb.SetKeyHandler(func(b byte) { vm.Keyboard.Feed(b) })
		eb.SetMouseHandler(func(x, y, buttons int) { vm.Mouse.Push(x, y, buttons) })
		eb.SetEscapeHook(func() { vm.Keyboard.TriggerEscape() })
	}
	return f
}

// Start brings the window up (a no-op for the headless backend, since
// VideoOutput.Start already handles that distinction).
func (f *AppFrontend) Start() error {
	if f.running {
		return nil
	}
	f.running = true
	return f.vm.Video.Start()
}

func (f *AppFrontend) Stop() error {
	if !f.running {
		return nil
	}
	f.running = false
	return f.vm.Video.Stop()
}
