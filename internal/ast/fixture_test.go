package ast_test

import (
	"zkc/internal/ast"
	"zkc/internal/source"
)

func sp(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

// tokenProgram builds a small program exercising most node kinds.
func tokenProgram() *ast.Program {
	u64 := ast.IntegerType(ast.U64)
	scope := ast.NewProgramScope(ast.ProgramID{
		Name:    ast.Ident("token"),
		Network: ast.Ident("aleo"),
	}, sp(0, 500))

	scope.Structs.Set("Token", &ast.Struct{
		Identifier: ast.Ident("Token"),
		IsRecord:   true,
		Members: []ast.Member{
			{Mode: ast.ModePrivate, Identifier: ast.Ident("amount"), Type: u64, Span: sp(10, 20)},
			{Mode: ast.ModePrivate, Identifier: ast.Ident("gates"), Type: u64, Span: sp(21, 30)},
			{Mode: ast.ModePrivate, Identifier: ast.Ident("owner"), Type: ast.PrimitiveType(ast.TypeAddress), Span: sp(31, 40)},
		},
		Span: sp(5, 45),
	})
	scope.Mappings.Set("balances", &ast.Mapping{
		Identifier: ast.Ident("balances"),
		KeyType:    ast.PrimitiveType(ast.TypeAddress),
		ValueType:  u64,
		Span:       sp(46, 80),
	})

	body := ast.NewBlock(sp(100, 300),
		ast.NewDefinition(ast.DeclLet, ast.Ident("total"), u64,
			ast.NewBinary(ast.OpAdd, ast.NewIdentifier("a", sp(110, 111)), ast.NewInteger(ast.U64, "1", sp(114, 118)), sp(110, 118)),
			sp(102, 119)),
		ast.NewConditional(
			ast.NewBinary(ast.OpGt, ast.NewIdentifier("total", sp(123, 128)), ast.NewInteger(ast.U64, "10", sp(131, 135)), sp(123, 135)),
			ast.NewBlock(sp(136, 160), ast.NewAssign(ast.NewIdentifier("total", sp(140, 145)), ast.NewInteger(ast.U64, "10", sp(148, 152)), sp(140, 153))),
			nil, sp(120, 160)),
		ast.Stmt{Kind: ast.StmtReturn, Span: sp(161, 200), Data: ast.ReturnData{
			Value: ast.NewStructInit(ast.Ident("Token"), []ast.StructMemberInit{
				{Identifier: ast.Ident("owner"), Value: ast.NewIdentifier("receiver", sp(170, 178))},
				{Identifier: ast.Ident("gates"), Value: ast.NewInteger(ast.U64, "0", sp(180, 184))},
				{Identifier: ast.Ident("amount"), Value: ast.NewIdentifier("total", sp(186, 191))},
			}, sp(165, 195)),
			FinalizeArguments: []*ast.Expr{ast.NewIdentifier("receiver", sp(205, 213))},
		}},
	)
	finalize := &ast.Finalize{
		Identifier: ast.Ident("mint"),
		Input:      []ast.Input{{Identifier: ast.Ident("receiver"), Mode: ast.ModePublic, Type: ast.PrimitiveType(ast.TypeAddress)}},
		OutputType: ast.PrimitiveType(ast.TypeUnit),
		Block: ast.NewBlock(sp(310, 360),
			ast.NewIncrement(ast.Ident("balances"), ast.NewIdentifier("receiver", sp(320, 328)), ast.NewInteger(ast.U64, "1", sp(330, 334)), sp(312, 336))),
		Span: sp(301, 361),
	}
	scope.Functions.Set("mint", &ast.Function{
		Annotations: []ast.Annotation{{Identifier: ast.Ident("program")}},
		CallType:    ast.CallTransition,
		Identifier:  ast.Ident("mint"),
		Input: []ast.Input{
			{Identifier: ast.Ident("receiver"), Mode: ast.ModePublic, Type: ast.PrimitiveType(ast.TypeAddress), Span: sp(90, 98)},
			{Identifier: ast.Ident("a"), Mode: ast.ModePrivate, Type: u64, Span: sp(99, 100)},
		},
		Output:     []ast.Output{{Mode: ast.ModePrivate, Type: ast.NamedType("Token")}},
		OutputType: ast.NamedType("Token"),
		Block:      body,
		Finalize:   finalize,
		Span:       sp(85, 361),
	})

	prog := ast.NewProgram()
	prog.ProgramScopes.Set("token", scope)
	return prog
}
