// arena.go - the contiguous workspace backing programs, variables and the
// evaluation stack (C1).
//
// Grounded on the teacher's bounds-checked, width-indexed bus accessors
// (Read8/16/32/64WithFault, Write8/16/32/64WithFault over a single []byte);
// here the "bus" is a single flat arena partitioned by moving pointers
// instead of a page-mapped I/O space.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"sync"
)

const (
	arenaAlign       = 8
	stackBufferBytes = 256 // §4.1 STACKBUFFER guard between VARTOP and STACKLIMIT
	minArenaSize     = 64 * 1024
)

// Arena is the single contiguous workspace of §3: program bytes grow up
// from PAGE, the variable heap grows up from LOMEM, and the evaluation/call
// stack grows down from HIMEM.
//
// Single-writer per §5 ("Arena: single-writer; no locking required"); the
// mutex exists only to guard against the UI/backend goroutine reading a
// snapshot (e.g. for a debug dump) concurrently with the interpreter thread.
type Arena struct {
	mu sync.RWMutex

	bytes []byte

	page        uint32
	top         uint32
	lomem       uint32
	vartop      uint32
	stacklimit  uint32
	stacktop    uint32
	himem       uint32

	gen []byte // per-ALIGN-slot generation counter, for stale-pointer detection
}

// NewArena allocates an arena of the given size (clamped to minArenaSize)
// and initialises the four boundary pointers to an empty program/empty
// variable heap/empty stack state.
func NewArena(size int) *Arena {
	if size < minArenaSize {
		size = minArenaSize
	}
	a := &Arena{
		bytes: make([]byte, size),
		gen:   make([]byte, size/arenaAlign+1),
	}
	a.resetPointers()
	return a
}

func (a *Arena) resetPointers() {
	n := uint32(len(a.bytes))
	a.page = 0
	a.top = 0
	a.lomem = 0
	a.vartop = 0
	a.stacklimit = stackBufferBytes
	a.stacktop = n
	a.himem = n
}

func alignUp(n uint32) uint32 {
	if n%arenaAlign == 0 {
		return n
	}
	return n + (arenaAlign - n%arenaAlign)
}

// Alloc bumps VARTOP upward by ALIGN(n), returning the offset of the new
// block, after checking it would not cross STACKTOP-STACKBUFFER (§4.1).
// reportErr selects whether NoRoom is returned as an ErrNoRoom error or as
// (0, nil).
func (a *Arena) Alloc(n uint32, reportErr bool) (ptr uint32, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	aligned := alignUp(n)
	newTop := a.vartop + aligned
	if newTop > a.stacktop-stackBufferBytes {
		if reportErr {
			return 0, NewError(ErrNoRoom, 0)
		}
		return 0, nil
	}
	ptr = a.vartop
	a.vartop = newTop
	a.stacklimit = a.vartop + stackBufferBytes
	a.bumpGeneration(ptr, aligned)
	return ptr, nil
}

func (a *Arena) bumpGeneration(ptr, n uint32) {
	start := ptr / arenaAlign
	end := (ptr + n) / arenaAlign
	for i := start; i <= end && int(i) < len(a.gen); i++ {
		a.gen[i]++
	}
}

// Returnable reports whether the given block is the most recent allocation,
// the only shape FreeLast will undo.
func (a *Arena) Returnable(ptr, n uint32) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return ptr+alignUp(n) == a.vartop
}

// FreeLast undoes the top allocation; it is a no-op (and reports false) if
// the block is not actually the top allocation - BASIC's arena never
// supports arbitrary-order free.
func (a *Arena) FreeLast(ptr, n uint32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	aligned := alignUp(n)
	if ptr+aligned != a.vartop {
		return false
	}
	a.vartop = ptr
	a.stacklimit = a.vartop + stackBufferBytes
	a.bumpGeneration(ptr, aligned)
	return true
}

// ClearVars resets VARTOP=LOMEM and STACKLIMIT=LOMEM+STACKBUFFER. The
// caller (executor.go's doClear) is responsible for telling C5 to invalidate every
// variable cell, matching §4.1's "clear_vars resets ... invalidating every
// variable cell (C5 must be told)".
func (a *Arena) ClearVars() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.vartop = a.lomem
	a.stacklimit = a.vartop + stackBufferBytes
	for i := range a.gen {
		a.gen[i]++
	}
}

// Generation returns the current generation of the aligned slot containing
// ptr, for the {offset, generation} stale-pointer check described in
// DESIGN.md's Open Question decision on pointer representation.
func (a *Arena) Generation(ptr uint32) byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	idx := ptr / arenaAlign
	if int(idx) >= len(a.gen) {
		return 0
	}
	return a.gen[idx]
}

// Boundary pointer accessors (PAGE/TOP/LOMEM/VARTOP/STACKLIMIT/STACKTOP/HIMEM).

func (a *Arena) Page() uint32  { a.mu.RLock(); defer a.mu.RUnlock(); return a.page }
func (a *Arena) Top() uint32   { a.mu.RLock(); defer a.mu.RUnlock(); return a.top }
func (a *Arena) Lomem() uint32 { a.mu.RLock(); defer a.mu.RUnlock(); return a.lomem }
func (a *Arena) Vartop() uint32     { a.mu.RLock(); defer a.mu.RUnlock(); return a.vartop }
func (a *Arena) Stacklimit() uint32 { a.mu.RLock(); defer a.mu.RUnlock(); return a.stacklimit }
func (a *Arena) Stacktop() uint32   { a.mu.RLock(); defer a.mu.RUnlock(); return a.stacktop }
func (a *Arena) Himem() uint32      { a.mu.RLock(); defer a.mu.RUnlock(); return a.himem }
func (a *Arena) Size() uint32       { return uint32(len(a.bytes)) }

// SetTop updates TOP, the high-water mark of the program area; callers
// (program_store.go) keep PAGE<=TOP<=LOMEM invariant.
func (a *Arena) SetTop(v uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.top = v
	if a.lomem < v {
		a.lomem = v
		a.vartop = v
		a.stacklimit = v + stackBufferBytes
	}
}

// PushStack bumps STACKTOP downward by ALIGN(n) for the evaluation/call
// stack, failing with StackOverflow if it would cross STACKLIMIT.
func (a *Arena) PushStack(n uint32) (ptr uint32, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	aligned := alignUp(n)
	if a.stacktop < a.stacklimit+aligned {
		return 0, NewError(ErrStackOverflow, 0)
	}
	a.stacktop -= aligned
	return a.stacktop, nil
}

// PopStack reverses PushStack.
func (a *Arena) PopStack(n uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stacktop += alignUp(n)
}

// Byte-addressed accessors, bounds-checked against the current live extent
// [0,len(bytes)). Out-of-range access panics: that is an interpreter bug,
// not a user-reachable condition (legitimate exhaustion is caught earlier
// by Alloc/PushStack).

func (a *Arena) Read8(off uint32) uint8 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bytes[off]
}

func (a *Arena) Write8(off uint32, v uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bytes[off] = v
}

func (a *Arena) Read16(off uint32) uint16 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return binary.LittleEndian.Uint16(a.bytes[off:])
}

func (a *Arena) Write16(off uint32, v uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	binary.LittleEndian.PutUint16(a.bytes[off:], v)
}

func (a *Arena) Read32(off uint32) uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return binary.LittleEndian.Uint32(a.bytes[off:])
}

func (a *Arena) Write32(off uint32, v uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	binary.LittleEndian.PutUint32(a.bytes[off:], v)
}

func (a *Arena) Read64(off uint32) uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return binary.LittleEndian.Uint64(a.bytes[off:])
}

func (a *Arena) Write64(off uint32, v uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	binary.LittleEndian.PutUint64(a.bytes[off:], v)
}

// ReadBytes/WriteBytes move raw slices for string-store and array payloads.
func (a *Arena) ReadBytes(off uint32, n uint32) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]byte, n)
	copy(out, a.bytes[off:off+n])
	return out
}

func (a *Arena) WriteBytes(off uint32, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	copy(a.bytes[off:], data)
}
