// Package op defines the opcodes executed by the zinc virtual machine.
// Opcode names encode their operand shape the way the instruction selector
// chooses them: a trailing V is a frame-slot operand, C an embedded
// constant, i a small immediate folded into a slot field, X no operand.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = iota

	// Execution
	Nop
	ReturnV
	ReturnC
	ReturnX
	HookBreakX
	CallV // call another compiled body; callee and args in aux

	// Jump
	Jump
	JumpIfFalseV

	// Assignment
	AssignVV
	AssignVC

	// Globals
	LoadGlobalVg
	StoreGlobalGV

	// Integer arithmetic and comparison
	AddVVV
	AddVVC
	SubVVV
	SubVVC
	MulVVV
	LtVVV
	EqVVV

	// Double arithmetic
	AddDblVVV
	SubDblVVV
	MulDblVVV

	// Dynamic-type checking
	BoxAnyVV    // wrap a concrete value as "any"
	CheckAnyVV  // unwrap an "any" value, checking its concrete type

	// Vector element-wise operations
	VecAddVVV
	VecSubVVV
	VecMulVVV
	VecNegVV

	// Vector coercions between arithmetic element types
	VecCoerceDI // int -> double
	VecCoerceDU // count -> double
	VecCoerceID // double -> int, overflow-checked
	VecCoerceIU // count -> int, overflow-checked
	VecCoerceUD // double -> count, overflow-checked
	VecCoerceUI // int -> count, overflow-checked

	// Lowered built-ins: cat
	Cat1VV
	Cat1VC
	Cat1FullVV
	Cat2V
	Cat3V
	Cat4V
	Cat5V
	Cat6V
	Cat7V
	Cat8V
	CatNV

	// Lowered built-ins: strings
	ToLowerVV
	StrstrVVV
	StrstrVVC
	StrstrVCV
	SubBytesVVVV
	SubBytesVVVi
	SubBytesVViV
	SubBytesVVii
	SubBytesVVVC
	SubBytesVViC
	SubBytesViVC
	SubBytesViiC

	// Lowered built-ins: misc
	SortV
	CurrentTimeV
	FlushStreamsV
	FlushStreamsX
	ReserveVV
	ReserveVC

	// NOp marks the end of the opcode space; profiling tables are sized
	// NOp.
	NOp
)

var names = map[Code]string{
	Nop:           "nop",
	ReturnV:       "return-V",
	ReturnC:       "return-C",
	ReturnX:       "return-X",
	HookBreakX:    "hook-break-X",
	CallV:         "call-V",
	Jump:          "jump",
	JumpIfFalseV:  "jump-if-false-V",
	AssignVV:      "assign-VV",
	AssignVC:      "assign-VC",
	LoadGlobalVg:  "load-global-Vg",
	StoreGlobalGV: "store-global-gV",
	AddVVV:        "add-VVV",
	AddVVC:        "add-VVC",
	SubVVV:        "sub-VVV",
	SubVVC:        "sub-VVC",
	MulVVV:        "mul-VVV",
	LtVVV:         "lt-VVV",
	EqVVV:         "eq-VVV",
	AddDblVVV:     "add-dbl-VVV",
	SubDblVVV:     "sub-dbl-VVV",
	MulDblVVV:     "mul-dbl-VVV",
	BoxAnyVV:      "box-any-VV",
	CheckAnyVV:    "check-any-VV",
	VecAddVVV:     "vec-add-VVV",
	VecSubVVV:     "vec-sub-VVV",
	VecMulVVV:     "vec-mul-VVV",
	VecNegVV:      "vec-neg-VV",
	VecCoerceDI:   "vec-coerce-DI",
	VecCoerceDU:   "vec-coerce-DU",
	VecCoerceID:   "vec-coerce-ID",
	VecCoerceIU:   "vec-coerce-IU",
	VecCoerceUD:   "vec-coerce-UD",
	VecCoerceUI:   "vec-coerce-UI",
	Cat1VV:        "cat1-VV",
	Cat1VC:        "cat1-VC",
	Cat1FullVV:    "cat1-full-VV",
	Cat2V:         "cat2-V",
	Cat3V:         "cat3-V",
	Cat4V:         "cat4-V",
	Cat5V:         "cat5-V",
	Cat6V:         "cat6-V",
	Cat7V:         "cat7-V",
	Cat8V:         "cat8-V",
	CatNV:         "catN-V",
	ToLowerVV:     "to-lower-VV",
	StrstrVVV:     "strstr-VVV",
	StrstrVVC:     "strstr-VVC",
	StrstrVCV:     "strstr-VCV",
	SubBytesVVVV:  "sub-bytes-VVVV",
	SubBytesVVVi:  "sub-bytes-VVVi",
	SubBytesVViV:  "sub-bytes-VViV",
	SubBytesVVii:  "sub-bytes-VVii",
	SubBytesVVVC:  "sub-bytes-VVVC",
	SubBytesVViC:  "sub-bytes-VViC",
	SubBytesViVC:  "sub-bytes-ViVC",
	SubBytesViiC:  "sub-bytes-ViiC",
	SortV:         "sort-V",
	CurrentTimeV:  "current-time-V",
	FlushStreamsV: "flush-streams-V",
	FlushStreamsX: "flush-streams-X",
	ReserveVV:     "reserve-VV",
	ReserveVC:     "reserve-VC",
}

// String returns the opcode's mnemonic.
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "invalid"
}
