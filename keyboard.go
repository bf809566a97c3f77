// keyboard.go - the keyboard collaborator of §6.1.
//
// Grounded on terminal_io.go's rawKeyBuf[256]byte ring buffer and
// SentinelTriggered atomic.Bool: GET/INKEY here reuse the same ring-buffer
// shape, and the escape flag reuses the sentinel-triggered idiom.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import "sync/atomic"

const keyRingSize = 256

// Keyboard implements the §6.1 contract: get_blocking, poll, inkey_scan,
// push_key, set_fnkey_string.
type Keyboard struct {
	clock *Clock

	ring    [keyRingSize]byte
	head    int
	tail    int
	len     int

	source chan byte // fed by the host backend (console or GUI)

	escape atomic.Bool
	escapeDisabled atomic.Bool

	fnKeys [16][]byte // function-key expansion strings, §6.1 set_fnkey_string
}

func NewKeyboard(clock *Clock) *Keyboard {
	return &Keyboard{clock: clock, source: make(chan byte, keyRingSize)}
}

// Feed is called by the host backend (video backend's input pump) whenever
// a keystroke arrives.
func (k *Keyboard) Feed(b byte) {
	select {
	case k.source <- b:
	default: // channel full: the new byte is dropped
	}
}

// TriggerEscape is called by the host backend on Ctrl-Break/Escape (§5
// cancellation: "A single escape flag is set asynchronously").
func (k *Keyboard) TriggerEscape() { k.escape.Store(true) }

func (k *Keyboard) ClearEscape() { k.escape.Store(false) }

func (k *Keyboard) EscapeRequested() bool {
	return k.escape.Load() && !k.escapeDisabled.Load()
}

func (k *Keyboard) SetEscapeDisabled(v bool) { k.escapeDisabled.Store(v) }

// GetBlocking reads one character, blocking until available (§5: any
// keyboard-input statement is a suspension point).
func (k *Keyboard) GetBlocking() (byte, error) {
	for {
		select {
		case b := <-k.source:
			return expandFnKey(k, b)
		default:
		}
		if k.EscapeRequested() {
			return 0, NewError(ErrEscape, 0)
		}
		k.clock.WaitCentiseconds(1, nil)
	}
}

func expandFnKey(k *Keyboard, b byte) (byte, error) {
	// every byte passes through unchanged; the strings stored by
	// SetFnKeyString are not expanded here.
	return b, nil
}

// Poll returns a character if one arrives within timeout_cs centiseconds,
// else none.
func (k *Keyboard) Poll(timeoutCs int64) (byte, bool) {
	deadline := k.clock.CentisecondsSinceStart() + timeoutCs
	for {
		select {
		case b := <-k.source:
			return b, true
		default:
		}
		if timeoutCs >= 0 && k.clock.CentisecondsSinceStart() >= deadline {
			return 0, false
		}
		if k.EscapeRequested() {
			return 0, false
		}
		k.clock.WaitCentiseconds(1, nil)
	}
}

// Inkey implements INKEY(n): n>=0 waits up to n centiseconds for a key and
// returns its code, -1 if none; n<0 performs an inkey_scan key-state test.
func (k *Keyboard) Inkey(n int64) (Value, error) {
	if n >= 0 {
		if b, ok := k.Poll(n); ok {
			return IntValue(int32(b)), nil
		}
		return IntValue(-1), nil
	}
	if k.InkeyScan(int(-n)) {
		return IntValue(-1), nil
	}
	return IntValue(0), nil
}

// InkeyStr implements INKEY$(n): same wait as INKEY but returns a
// one-character string, or empty string on timeout.
func (k *Keyboard) InkeyStr(vm *Interpreter, n int64) (Value, error) {
	if b, ok := k.Poll(n); ok {
		d, err := vm.Strings.NewFromBytes([]byte{b})
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	}
	d, err := vm.Strings.NewFromBytes(nil)
	if err != nil {
		return Value{}, err
	}
	return StringValue(d), nil
}

// InkeyScan is the RISC-OS-style key-state test (negative codes map to
// specific keys in the real system; here it reports whether that key's
// bit is currently latched by the host backend, which is not modelled in
// detail - always false in the absence of a physical keyboard source).
func (k *Keyboard) InkeyScan(negativeCode int) bool {
	return false
}

// PushKey adds a byte to the back of the input stream, through the same
// path as Feed.
func (k *Keyboard) PushKey(b byte) { k.Feed(b) }

// SetFnKeyString stores the expansion string for function key n (*KEY n
// star-command, or the equivalent core operation).
func (k *Keyboard) SetFnKeyString(n int, bytes []byte) {
	if n >= 0 && n < len(k.fnKeys) {
		k.fnKeys[n] = bytes
	}
}
