package layout

import "github.com/kishorenc/candor/heap/value"

// functionSize is the payload size (excluding the header) of a Function
// object: parent + code + root, three words.
const functionSize = FunctionRootOffset + 8 - value.HeaderSize

// NewFunction allocates a Function whose parent context is parent, whose
// compiled code begins at code, and whose root context (the outermost
// context of its defining scope) is root. Functions always tenure
// directly into old-space.
func NewFunction(a Allocator, parent value.Ref, code uintptr, root value.Ref) value.Ref {
	addr := a.AllocateTagged(value.KindFunction, TenureOld, functionSize)
	value.SetU64At(addr, FunctionParentOffset, uint64(parent))
	value.SetU64At(addr, FunctionCodeOffset, uint64(code))
	value.SetU64At(addr, FunctionRootOffset, uint64(root))
	return value.FromAddr(addr)
}

// NewBindingFunction allocates a Function bound to the foreign binding:
// its parent is layout.BindingContextTag rather than a real Context.
func NewBindingFunction(a Allocator, code uintptr, root value.Ref) value.Ref {
	return NewFunction(a, BindingContextTag, code, root)
}

// FunctionParent returns the function's parent context pointer (which
// may be value.Nil, layout.BindingContextTag, or a real Context Ref).
func FunctionParent(r value.Ref) value.Ref {
	return value.Ref(value.U64At(r.Addr(), FunctionParentOffset))
}

// SetFunctionParent rewrites the function's parent pointer.
func SetFunctionParent(r value.Ref, parent value.Ref) {
	value.SetU64At(r.Addr(), FunctionParentOffset, uint64(parent))
}

// FunctionCode returns the address of the function's compiled code.
func FunctionCode(r value.Ref) uintptr {
	return uintptr(value.U64At(r.Addr(), FunctionCodeOffset))
}

// FunctionRoot returns the function's root context pointer.
func FunctionRoot(r value.Ref) value.Ref {
	return value.Ref(value.U64At(r.Addr(), FunctionRootOffset))
}

// SetFunctionRoot rewrites the function's root context pointer.
func SetFunctionRoot(r value.Ref, root value.Ref) {
	value.SetU64At(r.Addr(), FunctionRootOffset, uint64(root))
}

// FunctionCopySize returns the total byte size (including header) of a
// Function object — always fixed, parent + code + root.
func FunctionCopySize(addr uintptr) uint32 {
	_ = addr
	return value.HeaderSize + functionSize
}
