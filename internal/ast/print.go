//nolint:errcheck // Type assertions are checked by construction: Kind implies the Data payload type.
package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer renders a tree as source-like text. The output is meant for
// humans and golden tests, not for re-parsing.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes the program, its imports first, to w.
func Dump(w io.Writer, prog *Program) error {
	p := NewPrinter(w)
	p.PrintProgram(prog)
	return p.err
}

// String renders a single expression.
func (e *Expr) String() string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.printExpr(e)
	return sb.String()
}

// String renders a single statement at indentation zero.
func (s Stmt) String() string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.printStmt(&s)
	return sb.String()
}

// PrintProgram prints imports and then every program scope.
func (p *Printer) PrintProgram(prog *Program) {
	for name, imp := range prog.Imports.All() {
		p.printf("// import %s\n", name)
		p.PrintProgram(imp)
	}
	for _, scope := range prog.ProgramScopes.All() {
		p.PrintScope(scope)
	}
}

// PrintScope prints one program scope.
func (p *Printer) PrintScope(s *ProgramScope) {
	p.printf("program %s {\n", s.ProgramID)
	p.indent++
	for _, st := range s.Structs.All() {
		p.PrintStruct(st)
	}
	for _, m := range s.Mappings.All() {
		p.printIndent()
		p.printf("mapping %s: %s => %s;\n", m.Identifier, m.KeyType, m.ValueType)
	}
	for _, f := range s.Functions.All() {
		p.PrintFunction(f)
	}
	p.indent--
	p.printf("}\n")
}

// PrintStruct prints a struct or record declaration.
func (p *Printer) PrintStruct(s *Struct) {
	p.printIndent()
	if s.IsRecord {
		p.printf("record %s {\n", s.Identifier)
	} else {
		p.printf("struct %s {\n", s.Identifier)
	}
	p.indent++
	for _, m := range s.Members {
		p.printIndent()
		if m.Mode != ModeNone {
			p.printf("%s ", m.Mode)
		}
		p.printf("%s: %s,\n", m.Identifier, m.Type)
	}
	p.indent--
	p.printIndent()
	p.printf("}\n")
}

// PrintFunction prints a function and its finalize stage.
func (p *Printer) PrintFunction(f *Function) {
	for _, a := range f.Annotations {
		p.printIndent()
		p.printf("@%s\n", a.Identifier)
	}
	p.printIndent()
	p.printf("%s %s", f.CallType, f.Identifier)
	p.printInputs(f.Input)
	p.printf(" -> %s ", f.OutputType)
	p.printBlock(f.Block)
	if f.Finalize != nil {
		fin := f.Finalize
		p.printf(" finalize %s", fin.Identifier)
		p.printInputs(fin.Input)
		p.printf(" -> %s ", fin.OutputType)
		p.printBlock(fin.Block)
	}
	p.printf("\n")
}

func (p *Printer) printInputs(inputs []Input) {
	p.printf("(")
	for i, in := range inputs {
		if i > 0 {
			p.printf(", ")
		}
		if in.Mode != ModeNone {
			p.printf("%s ", in.Mode)
		}
		p.printf("%s: %s", in.Identifier, in.Type)
	}
	p.printf(")")
}

// printBlock prints "{ ... }" starting at the current column.
func (p *Printer) printBlock(b *Block) {
	p.printf("{\n")
	p.indent++
	if b != nil {
		for i := range b.Statements {
			p.printIndent()
			p.printStmt(&b.Statements[i])
			p.printf("\n")
		}
	}
	p.indent--
	p.printIndent()
	p.printf("}")
}

func (p *Printer) printStmt(s *Stmt) {
	switch s.Kind {
	case StmtDefinition:
		data := s.Data.(DefinitionData)
		p.printf("%s %s: %s = ", data.Declaration, data.Variable, data.Type)
		p.printExpr(data.Value)
		p.printf(";")
	case StmtAssign:
		data := s.Data.(AssignData)
		p.printExpr(data.Place)
		p.printf(" = ")
		p.printExpr(data.Value)
		p.printf(";")
	case StmtConditional:
		data := s.Data.(ConditionalData)
		p.printf("if ")
		p.printExpr(data.Condition)
		p.printf(" ")
		p.printBlock(data.Then)
		if data.Otherwise != nil {
			p.printf(" else ")
			if data.Otherwise.Kind == StmtBlock {
				p.printBlock(data.Otherwise.Data.(BlockStmtData).Block)
			} else {
				p.printStmt(data.Otherwise)
			}
		}
	case StmtIteration:
		data := s.Data.(IterationData)
		p.printf("for %s: %s in ", data.Variable, data.Type)
		p.printExpr(data.Start)
		if data.Inclusive {
			p.printf("..=")
		} else {
			p.printf("..")
		}
		p.printExpr(data.Stop)
		p.printf(" ")
		p.printBlock(data.Block)
	case StmtReturn:
		data := s.Data.(ReturnData)
		p.printf("return")
		if data.Value != nil {
			p.printf(" ")
			p.printExpr(data.Value)
		}
		if len(data.FinalizeArguments) > 0 {
			p.printf(" then finalize(")
			p.printExprList(data.FinalizeArguments)
			p.printf(")")
		}
		p.printf(";")
	case StmtConsole:
		data := s.Data.(ConsoleData)
		p.printf("console.%s(", data.Kind)
		p.printExprList(data.Args)
		p.printf(");")
	case StmtBlock:
		p.printBlock(s.Data.(BlockStmtData).Block)
	case StmtExpression:
		p.printExpr(s.Data.(ExpressionData).Expr)
		p.printf(";")
	case StmtIncrement, StmtDecrement:
		data := s.Data.(MappingUpdateData)
		p.printf("%s(%s, ", s.Kind, data.Mapping)
		p.printExpr(data.Key)
		p.printf(", ")
		p.printExpr(data.Amount)
		p.printf(");")
	default:
		p.printf("<unknown stmt %d>;", s.Kind)
	}
}

func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.printf("<nil>")
		return
	}
	switch e.Kind {
	case ExprIdentifier:
		p.printf("%s", e.Data.(IdentifierData).Name)
	case ExprLiteral:
		data := e.Data.(LiteralData)
		switch data.Kind {
		case LitInteger:
			p.printf("%s%s", data.Value, data.Int)
		case LitString:
			p.printf("%q", data.Value)
		case LitBoolean, LitAddress:
			p.printf("%s", data.Value)
		default:
			p.printf("%s%s", data.Value, data.Kind)
		}
	case ExprBinary:
		data := e.Data.(BinaryData)
		if data.Op.IsMethodStyle() {
			p.printExpr(data.Left)
			p.printf(".%s(", data.Op)
			p.printExpr(data.Right)
			p.printf(")")
			return
		}
		p.printf("(")
		p.printExpr(data.Left)
		p.printf(" %s ", data.Op)
		p.printExpr(data.Right)
		p.printf(")")
	case ExprUnary:
		data := e.Data.(UnaryData)
		switch data.Op {
		case OpNeg, OpNot:
			p.printf("%s", data.Op)
			p.printExpr(data.Operand)
		default:
			p.printExpr(data.Operand)
			p.printf(".%s()", data.Op)
		}
	case ExprTernary:
		data := e.Data.(TernaryData)
		p.printf("(")
		p.printExpr(data.Condition)
		p.printf(" ? ")
		p.printExpr(data.IfTrue)
		p.printf(" : ")
		p.printExpr(data.IfFalse)
		p.printf(")")
	case ExprCall:
		data := e.Data.(CallData)
		if data.External != "" {
			p.printf("%s/", data.External)
		}
		p.printf("%s(", data.Function)
		p.printExprList(data.Args)
		p.printf(")")
	case ExprTuple:
		p.printf("(")
		p.printExprList(e.Data.(TupleData).Elements)
		p.printf(")")
	case ExprStructInit:
		data := e.Data.(StructInitData)
		p.printf("%s { ", data.Name)
		for i, m := range data.Members {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s", m.Identifier)
			if m.Value != nil {
				p.printf(": ")
				p.printExpr(m.Value)
			}
		}
		p.printf(" }")
	case ExprMemberAccess:
		data := e.Data.(MemberAccessData)
		p.printExpr(data.Inner)
		p.printf(".%s", data.Name)
	case ExprTupleAccess:
		data := e.Data.(TupleAccessData)
		p.printExpr(data.Inner)
		p.printf(".%d", data.Index)
	case ExprAssociatedFunction:
		data := e.Data.(AssociatedFunctionData)
		p.printf("%s::%s(", data.Type, data.Name)
		p.printExprList(data.Args)
		p.printf(")")
	case ExprAssociatedConstant:
		data := e.Data.(AssociatedConstantData)
		p.printf("%s::%s", data.Type, data.Name)
	default:
		p.printf("<unknown expr %d>", e.Kind)
	}
}

func (p *Printer) printExprList(exprs []*Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.printf(", ")
		}
		p.printExpr(e)
	}
}

func (p *Printer) printIndent() {
	for range p.indent {
		p.printf("    ")
	}
}

func (p *Printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
