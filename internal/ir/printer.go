package ir

import (
	"fmt"
	"strings"
)

// Print renders m to the textual IR form spec section 6.3 specifies for
// `--emit-ir` output: an LLVM-flavored assembly text, chosen because it is
// both diffable in tests and directly consumable by an external backend
// compiler without this module depending on one.
func Print(m *Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; module %s\n", m.Name)
	fmt.Fprintf(&sb, "target triple = %q\n", m.Triple)
	if m.DataLayout != "" {
		fmt.Fprintf(&sb, "target datalayout = %q\n", m.DataLayout)
	}
	sb.WriteByte('\n')

	for name, t := range m.StructDefs {
		fmt.Fprintf(&sb, "%%%s = type %s\n", name, t)
	}
	if len(m.StructDefs) > 0 {
		sb.WriteByte('\n')
	}

	for _, g := range m.Globals {
		printGlobal(&sb, g)
	}
	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
	}

	for _, fn := range m.Functions {
		printFunction(&sb, fn)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func printGlobal(sb *strings.Builder, g *Global) {
	linkage := g.Linkage.String()
	if linkage != "" {
		linkage += " "
	}
	var flags strings.Builder
	if g.ThreadLocal {
		flags.WriteString("thread_local ")
	}
	if g.UnnamedAddr {
		flags.WriteString("unnamed_addr ")
	}
	if g.Volatile {
		flags.WriteString("volatile ")
	}
	kind := "global"
	if g.Constant {
		kind = "constant"
	}
	if g.Init == nil {
		fmt.Fprintf(sb, "@%s = %s%sexternal %s %s\n", g.Name, linkage, flags.String(), kind, g.Typ)
		return
	}
	fmt.Fprintf(sb, "@%s = %s%s%s %s %s\n", g.Name, linkage, flags.String(), kind, g.Typ, g.Init)
}

func printFunction(sb *strings.Builder, fn *Function) {
	kind := "define"
	if fn.IsDeclaration() {
		kind = "declare"
	}
	linkage := fn.Linkage.String()
	if linkage != "" {
		linkage += " "
	}
	conv := ""
	if fn.Convention != "" {
		conv = fn.Convention + " "
	}
	fmt.Fprintf(sb, "%s %s%s%s @%s(", kind, linkage, conv, fn.RetType, fn.Name)
	for i, pt := range fn.ParamTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s %%%s", pt, fn.ParamNames[i])
	}
	if fn.Variadic {
		sb.WriteString(", ...")
	}
	sb.WriteString(")")
	for _, a := range fn.Attributes {
		fmt.Fprintf(sb, " %s", a)
	}
	if fn.Assembly != "" {
		fmt.Fprintf(sb, " asm %q, %q\n", fn.Assembly, fn.Constraints)
		return
	}
	if fn.IsDeclaration() {
		sb.WriteString("\n")
		return
	}
	sb.WriteString(" {\n")
	for _, bb := range fn.Blocks {
		fmt.Fprintf(sb, "%s:\n", bb.Label)
		for _, instr := range bb.Instructions {
			sb.WriteString("  ")
			printInstr(sb, instr)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("}\n")
}

func printInstr(sb *strings.Builder, instr Instruction) {
	switch i := instr.(type) {
	case BinOp:
		fmt.Fprintf(sb, "%%%s = %s %s %s, %s", i.Name, i.Op, i.Typ, operandOnly(i.Left), operandOnly(i.Right))
	case ICmp:
		fmt.Fprintf(sb, "%%%s = icmp %s %s %s, %s", i.Name, i.Pred, i.Left.ValueType(), operandOnly(i.Left), operandOnly(i.Right))
	case FCmp:
		fmt.Fprintf(sb, "%%%s = fcmp %s %s %s, %s", i.Name, i.Pred, i.Left.ValueType(), operandOnly(i.Left), operandOnly(i.Right))
	case Alloca:
		fmt.Fprintf(sb, "%%%s = alloca %s", i.Name, i.Allocated)
	case Load:
		fmt.Fprintf(sb, "%%%s = load %s, ptr %s", i.Name, i.Typ, operandOnly(i.Pointer))
	case Store:
		fmt.Fprintf(sb, "store %s %s, ptr %s", i.Value.ValueType(), operandOnly(i.Value), operandOnly(i.Pointer))
	case GEP:
		fmt.Fprintf(sb, "%%%s = getelementptr %s, ptr %s", i.Name, i.BaseType, operandOnly(i.Pointer))
		for _, idx := range i.Indices {
			fmt.Fprintf(sb, ", %s %s", idx.ValueType(), operandOnly(idx))
		}
	case Conv:
		fmt.Fprintf(sb, "%%%s = %s %s %s to %s", i.Name, i.Kind, i.Value.ValueType(), operandOnly(i.Value), i.Typ)
	case Call:
		if i.Name != "" {
			fmt.Fprintf(sb, "%%%s = ", i.Name)
		}
		conv := ""
		if i.Convention != "" {
			conv = i.Convention + " "
		}
		fmt.Fprintf(sb, "call %s%s @%s(", conv, i.Typ, i.Callee)
		for idx, arg := range i.Args {
			if idx > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s %s", arg.ValueType(), operandOnly(arg))
		}
		sb.WriteString(")")
	case Br:
		fmt.Fprintf(sb, "br label %%%s", i.Dest.Label)
	case CondBr:
		fmt.Fprintf(sb, "br i1 %s, label %%%s, label %%%s", operandOnly(i.Cond), i.Then.Label, i.Else.Label)
	case Ret:
		if i.Value == nil {
			sb.WriteString("ret void")
		} else {
			fmt.Fprintf(sb, "ret %s %s", i.Value.ValueType(), operandOnly(i.Value))
		}
	case Unreachable:
		sb.WriteString("unreachable")
	case InlineAsm:
		fmt.Fprintf(sb, "%%%s = asm %s %q, %q(", i.Name, i.Typ, i.Assembly, i.Constraints)
		for idx, arg := range i.Args {
			if idx > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s %s", arg.ValueType(), operandOnly(arg))
		}
		sb.WriteString(")")
	case Phi:
		fmt.Fprintf(sb, "%%%s = phi %s ", i.Name, i.Typ)
		for idx, inc := range i.Incoming {
			if idx > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "[ %s, %%%s ]", operandOnly(inc.Value), inc.Block.Label)
		}
	default:
		sb.WriteString("; <unknown instruction>")
	}
}

// operandOnly strips a value's own type prefix when it already renders
// one (ConstInt/ConstFloat/ConstNull/ConstArray), since the surrounding
// instruction text supplies the type itself.
func operandOnly(v Value) string {
	switch val := v.(type) {
	case ConstInt:
		return fmt.Sprintf("%d", val.Val)
	case ConstFloat:
		return fmt.Sprintf("%g", val.Val)
	case ConstNull:
		return "null"
	case GlobalRef:
		return "@" + val.Name
	default:
		return v.String()
	}
}
