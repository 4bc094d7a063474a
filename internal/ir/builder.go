package ir

// Builder positions instruction emission at one basic block at a time,
// generalizing the LLVMBuilder (PositionAtEnd/CreateAdd/CreateStore/...)
// shape into a concrete, dependency-free implementation internal/codegen
// drives directly instead of through cgo.
type Builder struct {
	block *Function
	cur   *BasicBlock
}

// NewBuilder returns a Builder with no current block; codegen calls
// PositionAtEnd before emitting into a function.
func NewBuilder() *Builder { return &Builder{} }

// PositionAtEnd moves the builder to append after bb's last instruction.
func (b *Builder) PositionAtEnd(bb *BasicBlock) {
	b.cur = bb
	b.block = bb.Fn
}

// Current returns the block currently positioned at.
func (b *Builder) Current() *BasicBlock { return b.cur }

func (b *Builder) name() string { return b.block.nextName() }

func (b *Builder) emit(instr Instruction) Value {
	b.cur.append(instr)
	if instr.Result() == "" {
		return nil
	}
	return namedValue{name: instr.Result(), typ: instr.ResultType()}
}

// namedValue is the Value a non-void instruction's own result resolves
// to when referenced by a later instruction as an operand.
type namedValue struct {
	name string
	typ  Type
}

func (n namedValue) ValueType() Type { return n.typ }
func (n namedValue) String() string  { return "%" + n.name }

func (b *Builder) binOp(op BinOpKind, typ Type, l, r Value) Value {
	name := b.name()
	b.cur.append(BinOp{baseInstr: baseInstr{Name: name, Typ: typ}, Op: op, Left: l, Right: r})
	return namedValue{name: name, typ: typ}
}

func (b *Builder) CreateAdd(l, r Value) Value  { return b.binOp(OpAdd, l.ValueType(), l, r) }
func (b *Builder) CreateSub(l, r Value) Value  { return b.binOp(OpSub, l.ValueType(), l, r) }
func (b *Builder) CreateMul(l, r Value) Value  { return b.binOp(OpMul, l.ValueType(), l, r) }
func (b *Builder) CreateSDiv(l, r Value) Value { return b.binOp(OpSDiv, l.ValueType(), l, r) }
func (b *Builder) CreateUDiv(l, r Value) Value { return b.binOp(OpUDiv, l.ValueType(), l, r) }
func (b *Builder) CreateSRem(l, r Value) Value { return b.binOp(OpSRem, l.ValueType(), l, r) }
func (b *Builder) CreateURem(l, r Value) Value { return b.binOp(OpURem, l.ValueType(), l, r) }
func (b *Builder) CreateFAdd(l, r Value) Value { return b.binOp(OpFAdd, l.ValueType(), l, r) }
func (b *Builder) CreateFSub(l, r Value) Value { return b.binOp(OpFSub, l.ValueType(), l, r) }
func (b *Builder) CreateFMul(l, r Value) Value { return b.binOp(OpFMul, l.ValueType(), l, r) }
func (b *Builder) CreateFDiv(l, r Value) Value { return b.binOp(OpFDiv, l.ValueType(), l, r) }
func (b *Builder) CreateAnd(l, r Value) Value  { return b.binOp(OpAnd, l.ValueType(), l, r) }
func (b *Builder) CreateOr(l, r Value) Value   { return b.binOp(OpOr, l.ValueType(), l, r) }
func (b *Builder) CreateXor(l, r Value) Value  { return b.binOp(OpXor, l.ValueType(), l, r) }
func (b *Builder) CreateShl(l, r Value) Value  { return b.binOp(OpShl, l.ValueType(), l, r) }
func (b *Builder) CreateAShr(l, r Value) Value { return b.binOp(OpAShr, l.ValueType(), l, r) }
func (b *Builder) CreateLShr(l, r Value) Value { return b.binOp(OpLShr, l.ValueType(), l, r) }

func (b *Builder) CreateICmp(pred ICmpPred, l, r Value) Value {
	name := b.name()
	b.cur.append(ICmp{baseInstr: baseInstr{Name: name, Typ: Type{Kind: TypeI1}}, Pred: pred, Left: l, Right: r})
	return namedValue{name: name, typ: Type{Kind: TypeI1}}
}

func (b *Builder) CreateFCmp(pred FCmpPred, l, r Value) Value {
	name := b.name()
	b.cur.append(FCmp{baseInstr: baseInstr{Name: name, Typ: Type{Kind: TypeI1}}, Pred: pred, Left: l, Right: r})
	return namedValue{name: name, typ: Type{Kind: TypeI1}}
}

// CreateAlloca allocates a stack slot of type t, returning the pointer to
// it. The alloca is appended to the builder's current block, so codegen
// allocates each Local's slot where the declaration is lowered.
func (b *Builder) CreateAlloca(t Type) Value {
	name := b.name()
	b.cur.append(Alloca{baseInstr: baseInstr{Name: name, Typ: Pointer()}, Allocated: t})
	return namedValue{name: name, typ: Pointer()}
}

func (b *Builder) CreateLoad(t Type, ptr Value) Value {
	name := b.name()
	b.cur.append(Load{baseInstr: baseInstr{Name: name, Typ: t}, Pointer: ptr})
	return namedValue{name: name, typ: t}
}

func (b *Builder) CreateStore(value, ptr Value) {
	b.cur.append(Store{Value: value, Pointer: ptr})
}

func (b *Builder) CreateGEP(baseType Type, ptr Value, indices []Value) Value {
	name := b.name()
	b.cur.append(GEP{baseInstr: baseInstr{Name: name, Typ: Pointer()}, Pointer: ptr, BaseType: baseType, Indices: indices})
	return namedValue{name: name, typ: Pointer()}
}

func (b *Builder) conv(kind ConvKind, to Type, v Value) Value {
	name := b.name()
	b.cur.append(Conv{baseInstr: baseInstr{Name: name, Typ: to}, Kind: kind, Value: v})
	return namedValue{name: name, typ: to}
}

func (b *Builder) CreateTrunc(to Type, v Value) Value    { return b.conv(ConvTrunc, to, v) }
func (b *Builder) CreateZExt(to Type, v Value) Value     { return b.conv(ConvZExt, to, v) }
func (b *Builder) CreateSExt(to Type, v Value) Value     { return b.conv(ConvSExt, to, v) }
func (b *Builder) CreateFPTrunc(to Type, v Value) Value  { return b.conv(ConvFPTrunc, to, v) }
func (b *Builder) CreateFPExt(to Type, v Value) Value    { return b.conv(ConvFPExt, to, v) }
func (b *Builder) CreateFPToSI(to Type, v Value) Value   { return b.conv(ConvFPToSI, to, v) }
func (b *Builder) CreateFPToUI(to Type, v Value) Value   { return b.conv(ConvFPToUI, to, v) }
func (b *Builder) CreateSIToFP(to Type, v Value) Value   { return b.conv(ConvSIToFP, to, v) }
func (b *Builder) CreateUIToFP(to Type, v Value) Value   { return b.conv(ConvUIToFP, to, v) }
func (b *Builder) CreatePtrToInt(to Type, v Value) Value { return b.conv(ConvPtrToInt, to, v) }
func (b *Builder) CreateIntToPtr(to Type, v Value) Value { return b.conv(ConvIntToPtr, to, v) }
func (b *Builder) CreateBitcast(to Type, v Value) Value  { return b.conv(ConvBitcast, to, v) }

// CreateCall emits a call to callee. retType == void yields a no-result
// instruction, matching how `CreateCall` behaves for a void-returning
// LLVMFunction.
func (b *Builder) CreateCall(callee string, calleeType Type, retType Type, args []Value, convention string) Value {
	if retType.Kind == TypeVoid {
		b.cur.append(Call{baseInstr: baseInstr{Typ: retType}, Callee: callee, CalleeType: calleeType, Args: args, Convention: convention})
		return nil
	}
	name := b.name()
	b.cur.append(Call{baseInstr: baseInstr{Name: name, Typ: retType}, Callee: callee, CalleeType: calleeType, Args: args, Convention: convention})
	return namedValue{name: name, typ: retType}
}

// CreateInlineAsm emits an inline-assembly expression evaluating to type t,
// mirroring CreateCall's shape since both consume a fixed arg list and yield
// a single named result.
func (b *Builder) CreateInlineAsm(t Type, assembly, constraints string, args []Value) Value {
	name := b.name()
	b.cur.append(InlineAsm{baseInstr: baseInstr{Name: name, Typ: t}, Assembly: assembly, Constraints: constraints, Args: args})
	return namedValue{name: name, typ: t}
}

func (b *Builder) CreateBr(dest *BasicBlock) {
	b.cur.append(Br{Dest: dest})
}

func (b *Builder) CreateCondBr(cond Value, then, els *BasicBlock) {
	b.cur.append(CondBr{Cond: cond, Then: then, Else: els})
}

func (b *Builder) CreateRet(v Value) {
	b.cur.append(Ret{Value: v})
}

func (b *Builder) CreateRetVoid() {
	b.cur.append(Ret{})
}

func (b *Builder) CreateUnreachable() {
	b.cur.append(Unreachable{})
}

// CreatePhi emits a phi node with the given incoming (value, predecessor)
// pairs. Codegen does not call it.
func (b *Builder) CreatePhi(t Type, incoming []PhiIncoming) Value {
	name := b.name()
	b.cur.append(Phi{baseInstr: baseInstr{Name: name, Typ: t}, Incoming: incoming})
	return namedValue{name: name, typ: t}
}
