package optdriver

import (
	"testing"

	"github.com/thrushlang/thrushc/internal/ir"
)

func buildConstFoldModule() *ir.Module {
	m := ir.NewModule("t", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("f", ir.Type{Kind: ir.TypeI32}, nil, nil)
	b := ir.NewBuilder()
	bb := fn.NewBlock("entry")
	b.PositionAtEnd(bb)
	sum := b.CreateAdd(ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 2}, ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 3})
	b.CreateRet(sum)
	return m
}

func TestConstantFold_FoldsAndSubstitutes(t *testing.T) {
	m := buildConstFoldModule()
	pipeline, err := Parse("const-fold")
	if err != nil {
		t.Fatal(err)
	}
	pipeline.Run(m, 2)

	bb := m.Functions[0].Blocks[0]
	if len(bb.Instructions) != 1 {
		t.Fatalf("expected the add to fold away leaving only ret, got %d instructions", len(bb.Instructions))
	}
	ret, ok := bb.Instructions[0].(ir.Ret)
	if !ok {
		t.Fatalf("expected remaining instruction to be Ret, got %T", bb.Instructions[0])
	}
	c, ok := ret.Value.(ir.ConstInt)
	if !ok || c.Val != 5 {
		t.Fatalf("expected folded return value 5, got %#v", ret.Value)
	}
}

func TestParse_UnknownPassErrors(t *testing.T) {
	if _, err := Parse("not-a-real-pass"); err == nil {
		t.Fatal("expected an error for an unknown pass name")
	}
}

func TestParse_EmptySpecIsNoop(t *testing.T) {
	p, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	m := buildConstFoldModule()
	before := len(m.Functions[0].Blocks[0].Instructions)
	p.Run(m, 2)
	after := len(m.Functions[0].Blocks[0].Instructions)
	if before != after {
		t.Fatalf("expected empty pipeline to be a no-op, instruction count changed %d -> %d", before, after)
	}
}

func TestPruneUnreachableBlocks(t *testing.T) {
	m := ir.NewModule("t", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("f", ir.Type{Kind: ir.TypeVoid}, nil, nil)
	b := ir.NewBuilder()
	entry := fn.NewBlock("entry")
	reachable := fn.NewBlock("reachable")
	orphan := fn.NewBlock("orphan")

	b.PositionAtEnd(entry)
	b.CreateBr(reachable)
	b.PositionAtEnd(reachable)
	b.CreateRetVoid()
	b.PositionAtEnd(orphan)
	b.CreateRetVoid()

	pipeline, err := Parse("unreachable")
	if err != nil {
		t.Fatal(err)
	}
	pipeline.Run(m, 1)

	if len(fn.Blocks) != 2 {
		t.Fatalf("expected orphan block to be pruned, got %d blocks", len(fn.Blocks))
	}
	for _, bb := range fn.Blocks {
		if bb.Label == "orphan" {
			t.Fatal("orphan block should have been removed")
		}
	}
}
