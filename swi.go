// swi.go - the small SWI compatibility table behind the SYS statement (C10).
//
// Grounded on cpu_z80.go's IN/OUT port dispatch table: a name (there, a port
// number) is looked up in a fixed table and mapped to a host-side effect: no
// general-purpose "call arbitrary code" capability, just the handful of
// OS_*/ColourTrans_* calls a BASIC program plausibly wants from SYS.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import "strings"

// callSWI implements SYS "name"[,args][TO outs]. Unknown names report
// ErrUnsupported rather than silently doing nothing, so a typo'd SWI name
// surfaces at run time instead of being swallowed.
func (vm *Interpreter) callSWI(name string, args []Value) ([]Value, error) {
	switch strings.ToUpper(name) {
	case "OS_WRITEC":
		if len(args) < 1 {
			return nil, NewError(ErrSyntax, 0)
		}
		if err := vm.VDU.Feed(byte(args[0].AsInt64())); err != nil {
			return nil, err
		}
		return nil, nil

	case "OS_WRITE0":
		if len(args) < 1 || !args[0].IsString() {
			return nil, NewError(ErrTypeMismatch, 0)
		}
		for _, b := range vm.Strings.Read(args[0].S) {
			if err := vm.VDU.Feed(b); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case "OS_NEWLINE":
		if err := vm.VDU.Feed(13); err != nil {
			return nil, err
		}
		if err := vm.VDU.Feed(10); err != nil {
			return nil, err
		}
		return nil, nil

	case "OS_READC":
		b, err := vm.Keyboard.GetBlocking()
		if err != nil {
			return nil, err
		}
		return []Value{IntValue(int32(b))}, nil

	case "OS_READLINE":
		prompt := ""
		max := 255
		if len(args) >= 1 && args[0].IsString() {
			prompt = string(vm.Strings.Read(args[0].S))
		}
		if len(args) >= 2 {
			max = int(args[1].AsInt64())
		}
		raw, err := vm.TextIO.ReadLine(prompt, max)
		if err != nil {
			return nil, err
		}
		d, err := vm.Strings.NewFromBytes(raw)
		if err != nil {
			return nil, err
		}
		return []Value{StringValue(d)}, nil

	case "OS_BYTE":
		// A reduced OS_Byte: arg0 selects the reason code, arg1/arg2 are its
		// X/Y parameters. Only the escape-state pair used by BASIC's own
		// *FX 200 convention is implemented; anything else is accepted and
		// answered with zero, since no real hardware sits behind this call.
		if len(args) >= 1 && args[0].AsInt64() == 200 {
			if len(args) >= 2 {
				vm.Keyboard.SetEscapeDisabled(args[1].AsInt64() != 0)
			}
			return []Value{IntValue(0), IntValue(0)}, nil
		}
		return []Value{IntValue(0), IntValue(0)}, nil

	case "OS_WORD":
		return nil, nil

	case "OS_PLOT":
		if len(args) < 3 {
			return nil, NewError(ErrSyntax, 0)
		}
		code := byte(args[0].AsInt64())
		x, y := int(args[1].AsInt64()), int(args[2].AsInt64())
		if err := vm.VDU.Plot(code, x, y); err != nil {
			return nil, err
		}
		return nil, nil

	case "OS_MOUSE":
		ev := vm.Mouse.Read()
		return []Value{IntValue(int32(ev.X)), IntValue(int32(ev.Y)), IntValue(int32(ev.Buttons))}, nil

	case "OS_READMODEVARIABLE":
		mode := vm.Framebuffer.Mode()
		if len(args) < 1 {
			return nil, NewError(ErrSyntax, 0)
		}
		switch args[0].AsInt64() {
		case 1:
			return []Value{IntValue(int32(mode.XRes - 1))}, nil
		case 2:
			return []Value{IntValue(int32(mode.YRes - 1))}, nil
		case 9:
			return []Value{IntValue(int32(mode.ColourDepth))}, nil
		default:
			return []Value{IntValue(0)}, nil
		}

	case "COLOURTRANS_SETGCOL":
		if len(args) < 1 {
			return nil, NewError(ErrSyntax, 0)
		}
		colour := int(args[0].AsInt64())
		action := 0
		if len(args) >= 2 {
			action = int(args[1].AsInt64())
		}
		background := colour >= 128
		if background {
			colour -= 128
		}
		vm.Palette.SetGraphicsColour(action, colour, background)
		return nil, nil

	case "COLOURTRANS_SETTEXTCOLOUR":
		if len(args) < 1 {
			return nil, NewError(ErrSyntax, 0)
		}
		colour := int(args[0].AsInt64())
		background := colour >= 128
		if background {
			colour -= 128
		}
		vm.Palette.SetTextColour(colour, background)
		return nil, nil

	default:
		return nil, NewError(ErrUnsupported, 0)
	}
}
