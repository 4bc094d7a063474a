package ast

// Metadata records accompany certain Node variants, per spec section 3.5.

// LocalMetadata accompanies Local nodes.
type LocalMetadata struct {
	IsMutable   bool
	IsUndefined bool
}

// ThreadMode distinguishes static thread-local storage strategies.
type ThreadMode int

const (
	ThreadModeNone ThreadMode = iota
	ThreadModeLocalDynamic
	ThreadModeInitialExec
	ThreadModeLocalExec
)

// AtomicOrdering mirrors the subset of memory orderings a `static atomic`
// declaration may request.
type AtomicOrdering int

const (
	AtomicNone AtomicOrdering = iota
	AtomicRelaxed
	AtomicAcquire
	AtomicRelease
	AtomicAcqRel
	AtomicSeqCst
)

// StaticMetadata accompanies Static nodes.
type StaticMetadata struct {
	IsGlobal     bool
	IsMutable    bool
	IsUndefined  bool
	ThreadLocal  bool
	IsVolatile   bool
	IsExternal   bool
	AtomicOrder  AtomicOrdering
	ThreadMode   ThreadMode
}

// FunctionParameterMetadata accompanies FunctionParameter nodes.
type FunctionParameterMetadata struct {
	IsMutable bool
}

// ReferenceMetadata accompanies Reference nodes. IsAllocated distinguishes
// "name refers to a slot holding a value" (locals, parameters-by-address,
// globals, LLI results) from "name refers to a by-value binding", driving
// whether codegen emits a load (spec section 3.5).
type ReferenceMetadata struct {
	IsAllocated bool
	IsMutable   bool
}

// ConstantMetadata accompanies Const nodes.
type ConstantMetadata struct {
	ThreadLocal bool
}
