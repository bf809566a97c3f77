// variables.go - hashed name directory per scope; untyped value cells
// pointed into by resolved token slots (C5).
//
// Grounded on memory_bus.go's IORegion map-of-region pattern: a name maps
// to a region (here, a Cell) the same way an address range maps to an
// IORegion; patch-site back-references reuse the same "list of places that
// cache this address" idea the arena's generation counter formalises for
// C1.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

// PatchSite identifies one location in the program store's token stream
// that caches a resolved variable/proc pointer, so it can be rewritten back
// to its unresolved "X" form when the cell it points to moves or dies
// (§4.5).
type PatchSite struct {
	Line   *TokenizedLine
	Offset int
}

// Cell is one variable's storage: type tag, inline numeric storage or a
// string descriptor or array payload, and the list of patch sites caching
// this cell's address (§3: "a variable cell ... attaches a back-reference
// so that CLEAR/edit operations can invalidate every such cached pointer").
type Cell struct {
	Name       string
	Type       VarType
	Value      Value
	PatchSites []PatchSite
	Private    bool // PRIVATE cells persist across PROC/FN calls
}

// Scope is one frame of the variable-table stack: the global frame, or one
// frame per active PROC/FN call (§4.5).
type Scope struct {
	cells map[string]*Cell
}

func newScope() *Scope { return &Scope{cells: make(map[string]*Cell)} }

// VariableTable is the C5 component: a stack of Scopes, the static A%..Z%/@%
// cells, and the global frame.
type VariableTable struct {
	global       *Scope
	frames       []*Scope         // one per active PROC/FN, frames[len-1] is innermost
	static       [27]Cell         // A%..Z%, @%
	privateStore map[string]*Cell // PRIVATE cells, keyed by "funcname.varname"

	// resolved is the flat pointer table ProgramStore.ResolveAll appends
	// into: a resolved variable token's operand is an index into this slice
	// rather than a raw memory address, since this port has no stable
	// address to cache the way the RISC-OS original does (§4.4).
	resolved    []*Cell
	resolvedIdx map[*Cell]uint32
}

func NewVariableTable() *VariableTable {
	vt := &VariableTable{global: newScope(), privateStore: make(map[string]*Cell)}
	for i := range vt.static {
		vt.static[i] = Cell{Type: VarInt, Value: IntValue(0)}
	}
	return vt
}

// StaticIndex maps A-Z -> 0..25 and @% -> 26.
func StaticIndex(name string) (int, bool) {
	if name == "@%" {
		return 26, true
	}
	if len(name) == 2 && name[1] == '%' && name[0] >= 'A' && name[0] <= 'Z' {
		return int(name[0] - 'A'), true
	}
	return 0, false
}

// currentScope returns the innermost active frame, or global if none.
func (vt *VariableTable) currentScope() *Scope {
	if len(vt.frames) == 0 {
		return vt.global
	}
	return vt.frames[len(vt.frames)-1]
}

// Lookup finds a variable by name, searching the current frame then global
// (BASIC V does not have lexical nesting beyond one PROC/FN level deep for
// unqualified names - LOCAL/PRIVATE explicitly shadow).
func (vt *VariableTable) Lookup(name string) (*Cell, bool) {
	if idx, ok := StaticIndex(name); ok {
		return &vt.static[idx], true
	}
	if len(vt.frames) > 0 {
		if c, ok := vt.frames[len(vt.frames)-1].cells[name]; ok {
			return c, true
		}
	}
	c, ok := vt.global.cells[name]
	return c, ok
}

// Create makes (or replaces) a variable cell of the given type in the
// current scope.
func (vt *VariableTable) Create(name string, typ VarType) *Cell {
	scope := vt.currentScope()
	c := &Cell{Name: name, Type: typ, Value: zeroValueFor(typ)}
	scope.cells[name] = c
	return c
}

func zeroValueFor(typ VarType) Value {
	switch typ {
	case VarInt:
		return IntValue(0)
	case VarFloat:
		return FloatValue(0)
	case VarString:
		return Value{Kind: KindString}
	case VarArray:
		return Value{Kind: KindArray}
	}
	return FloatValue(0)
}

// LookupOrCreate implements BASIC's implicit-declaration semantics: a bare
// assignment to an unknown name creates it in the current scope.
func (vt *VariableTable) LookupOrCreate(name string) *Cell {
	if c, ok := vt.Lookup(name); ok {
		return c
	}
	return vt.Create(name, VarTypeFromName(name))
}

// LookupOrCreateScope implements the same implicit-declaration semantics as
// LookupOrCreate, additionally reporting whether the cell lives in a
// frame-local scope. A resolved pointer spliced into a PROC/FN body's shared
// token stream would alias a recursive re-entry's fresh frame onto an outer
// call's cell, so callers must check local before caching a pointer to a
// cell this way (§4.5) - frame-local cells are always looked up live.
func (vt *VariableTable) LookupOrCreateScope(name string) (cell *Cell, local bool) {
	if idx, ok := StaticIndex(name); ok {
		return &vt.static[idx], false
	}
	if len(vt.frames) > 0 {
		if c, ok := vt.frames[len(vt.frames)-1].cells[name]; ok {
			return c, true
		}
	}
	if c, ok := vt.global.cells[name]; ok {
		return c, false
	}
	return vt.Create(name, VarTypeFromName(name)), len(vt.frames) > 0
}

// DefineArray allocates the element slice for a DIMmed array.
func (vt *VariableTable) DefineArray(c *Cell, dims []int, elemKind ValueKind) error {
	total := 1
	for _, d := range dims {
		total *= d + 1 // BASIC arrays are 0-based inclusive of the bound
	}
	elems := make([]Value, total)
	for i := range elems {
		switch elemKind {
		case KindInt:
			elems[i] = IntValue(0)
		case KindFloat:
			elems[i] = FloatValue(0)
		case KindString:
			elems[i] = Value{Kind: KindString}
		}
	}
	c.Type = VarArray
	c.Value = Value{Kind: KindArray, Arr: &ArrayValue{Dims: dims, ElemKind: elemKind, Elems: elems}}
	return nil
}

// EnterLocalFrame pushes a new scope for a PROC/FN call.
func (vt *VariableTable) EnterLocalFrame() { vt.frames = append(vt.frames, newScope()) }

// LeaveLocalFrame pops the innermost scope, invalidating every patch site
// of every cell that lived in it (§4.5).
func (vt *VariableTable) LeaveLocalFrame() []PatchSite {
	if len(vt.frames) == 0 {
		return nil
	}
	top := vt.frames[len(vt.frames)-1]
	vt.frames = vt.frames[:len(vt.frames)-1]
	var invalidated []PatchSite
	for _, c := range top.cells {
		invalidated = append(invalidated, c.PatchSites...)
	}
	return invalidated
}

// Depth reports the current PROC/FN call nesting depth.
func (vt *VariableTable) Depth() int { return len(vt.frames) }

// ClearAll resets every variable cell (NEW/CLEAR), invalidating all patch
// sites - the "C5 must be told" half of Arena.ClearVars (§4.1).
func (vt *VariableTable) ClearAll() []PatchSite {
	var invalidated []PatchSite
	for _, c := range vt.global.cells {
		invalidated = append(invalidated, c.PatchSites...)
	}
	vt.global = newScope()
	vt.frames = nil
	for i := range vt.static {
		vt.static[i].Value = zeroValueFor(vt.static[i].Type)
	}
	return invalidated
}

// DeclarePrivate binds name in the current scope to a cell that persists
// across separate calls of the same named PROC/FN, keyed by funcKey - the
// owning routine's name - rather than by call-stack frame (§4.5's PRIVATE).
func (vt *VariableTable) DeclarePrivate(funcKey, name string) *Cell {
	key := funcKey + "." + name
	c, ok := vt.privateStore[key]
	if !ok {
		typ := VarTypeFromName(name)
		c = &Cell{Name: name, Type: typ, Value: zeroValueFor(typ), Private: true}
		vt.privateStore[key] = c
	}
	vt.currentScope().cells[name] = c
	return c
}

// AddPatchSite records that a token-stream location now caches this cell's
// address.
func (c *Cell) AddPatchSite(line *TokenizedLine, offset int) {
	c.PatchSites = append(c.PatchSites, PatchSite{Line: line, Offset: offset})
}

// Invalidate rewrites the lines touched by the given patch sites back to
// their unresolved "X" token form - called when a cell is redefined, its
// scope exits, or on CLEAR (§4.5). A resolved var token's width differs
// from XVAR's name-plus-terminator encoding, so a site can't be patched in
// place; the whole owning line is run back through unresolveLine instead,
// which naturally catches every resolved token the line still carries.
func Invalidate(sites []PatchSite, vt *VariableTable) {
	seen := make(map[*TokenizedLine]bool, len(sites))
	for _, s := range sites {
		if seen[s.Line] {
			continue
		}
		seen[s.Line] = true
		s.Line.Body = unresolveLine(s.Line.Body, vt)
	}
}

// resolveIndex returns c's slot in the pointer table, allocating one if this
// is the cell's first resolution this pass.
func (vt *VariableTable) resolveIndex(c *Cell) uint32 {
	if vt.resolvedIdx == nil {
		vt.resolvedIdx = make(map[*Cell]uint32)
	}
	if idx, ok := vt.resolvedIdx[c]; ok {
		return idx
	}
	idx := uint32(len(vt.resolved))
	vt.resolved = append(vt.resolved, c)
	vt.resolvedIdx[c] = idx
	return idx
}

// CellAt dereferences a resolved pointer table index back to its cell.
func (vt *VariableTable) CellAt(idx uint32) *Cell {
	if int(idx) >= len(vt.resolved) {
		return nil
	}
	return vt.resolved[idx]
}

// resetResolved drops the pointer table so a fresh ResolveAll starts from
// index zero instead of growing across successive RUNs.
func (vt *VariableTable) resetResolved() {
	vt.resolved = nil
	vt.resolvedIdx = nil
}

// tokenForVarType picks the resolved var token matching a cell's storage
// type. BASIC V never declares a variable specifically int64-wide (that
// only arises from TokInt64Con literal overflow), so TokInt64Var has no
// variable-cell mapping here.
func tokenForVarType(t VarType) Token {
	switch t {
	case VarInt:
		return TokIntVar
	case VarString:
		return TokStringVar
	case VarArray:
		return TokArrayVar
	default:
		return TokFloatVar
	}
}
