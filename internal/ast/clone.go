package ast

// Clone returns a deep copy of p. The copy shares no nodes with p.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	return &Program{
		Imports:       cloneMap(p.Imports, (*Program).Clone),
		ProgramScopes: cloneMap(p.ProgramScopes, (*ProgramScope).Clone),
	}
}

func (s *ProgramScope) Clone() *ProgramScope {
	if s == nil {
		return nil
	}
	return &ProgramScope{
		ProgramID: s.ProgramID,
		Structs:   cloneMap(s.Structs, (*Struct).Clone),
		Mappings:  cloneMap(s.Mappings, (*Mapping).Clone),
		Functions: cloneMap(s.Functions, (*Function).Clone),
		Span:      s.Span,
	}
}

func cloneMap[V any](m *OrderedMap[V], clone func(V) V) *OrderedMap[V] {
	if m == nil {
		return nil
	}
	out := NewOrderedMap[V](m.Len())
	for k, v := range m.All() {
		out.Set(k, clone(v))
	}
	return out
}

func (s *Struct) Clone() *Struct {
	if s == nil {
		return nil
	}
	out := *s
	out.Members = CloneMembers(s.Members)
	return &out
}

// CloneMembers copies a member list including member types.
func CloneMembers(members []Member) []Member {
	if members == nil {
		return nil
	}
	out := make([]Member, len(members))
	for i, m := range members {
		m.Type = m.Type.Clone()
		out[i] = m
	}
	return out
}

func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	return &Mapping{
		Identifier: m.Identifier,
		KeyType:    m.KeyType.Clone(),
		ValueType:  m.ValueType.Clone(),
		Span:       m.Span,
	}
}

func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}
	return &Function{
		Annotations: CloneAnnotations(f.Annotations),
		CallType:    f.CallType,
		Identifier:  f.Identifier,
		Input:       CloneInputs(f.Input),
		Output:      CloneOutputs(f.Output),
		OutputType:  f.OutputType.Clone(),
		Block:       f.Block.Clone(),
		Finalize:    f.Finalize.Clone(),
		Span:        f.Span,
	}
}

func (f *Finalize) Clone() *Finalize {
	if f == nil {
		return nil
	}
	return &Finalize{
		Identifier: f.Identifier,
		Input:      CloneInputs(f.Input),
		Output:     CloneOutputs(f.Output),
		OutputType: f.OutputType.Clone(),
		Block:      f.Block.Clone(),
		Span:       f.Span,
	}
}

func CloneAnnotations(in []Annotation) []Annotation {
	if in == nil {
		return nil
	}
	out := make([]Annotation, len(in))
	copy(out, in)
	return out
}

func CloneInputs(in []Input) []Input {
	if in == nil {
		return nil
	}
	out := make([]Input, len(in))
	for i, input := range in {
		input.Type = input.Type.Clone()
		out[i] = input
	}
	return out
}

func CloneOutputs(in []Output) []Output {
	if in == nil {
		return nil
	}
	out := make([]Output, len(in))
	for i, o := range in {
		o.Type = o.Type.Clone()
		out[i] = o
	}
	return out
}

func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := &Block{Span: b.Span}
	if b.Statements != nil {
		out.Statements = make([]Stmt, len(b.Statements))
		for i := range b.Statements {
			out.Statements[i] = b.Statements[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the statement.
func (s Stmt) Clone() Stmt {
	out := Stmt{Kind: s.Kind, Span: s.Span}
	switch data := s.Data.(type) {
	case DefinitionData:
		data.Type = data.Type.Clone()
		data.Value = data.Value.Clone()
		out.Data = data
	case AssignData:
		out.Data = AssignData{Place: data.Place.Clone(), Value: data.Value.Clone()}
	case ConditionalData:
		var otherwise *Stmt
		if data.Otherwise != nil {
			o := data.Otherwise.Clone()
			otherwise = &o
		}
		out.Data = ConditionalData{Condition: data.Condition.Clone(), Then: data.Then.Clone(), Otherwise: otherwise}
	case IterationData:
		data.Type = data.Type.Clone()
		data.Start = data.Start.Clone()
		data.Stop = data.Stop.Clone()
		data.Block = data.Block.Clone()
		out.Data = data
	case ReturnData:
		out.Data = ReturnData{Value: data.Value.Clone(), FinalizeArguments: CloneExprs(data.FinalizeArguments)}
	case ConsoleData:
		out.Data = ConsoleData{Kind: data.Kind, Args: CloneExprs(data.Args)}
	case BlockStmtData:
		out.Data = BlockStmtData{Block: data.Block.Clone()}
	case ExpressionData:
		out.Data = ExpressionData{Expr: data.Expr.Clone()}
	case MappingUpdateData:
		out.Data = MappingUpdateData{Mapping: data.Mapping, Key: data.Key.Clone(), Amount: data.Amount.Clone()}
	default:
		out.Data = s.Data
	}
	return out
}

// Clone returns a deep copy of the expression.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Span: e.Span}
	switch data := e.Data.(type) {
	case BinaryData:
		out.Data = BinaryData{Op: data.Op, Left: data.Left.Clone(), Right: data.Right.Clone()}
	case UnaryData:
		out.Data = UnaryData{Op: data.Op, Operand: data.Operand.Clone()}
	case TernaryData:
		out.Data = TernaryData{
			Condition: data.Condition.Clone(),
			IfTrue:    data.IfTrue.Clone(),
			IfFalse:   data.IfFalse.Clone(),
		}
	case CallData:
		out.Data = CallData{Function: data.Function, External: data.External, Args: CloneExprs(data.Args)}
	case TupleData:
		out.Data = TupleData{Elements: CloneExprs(data.Elements)}
	case StructInitData:
		members := make([]StructMemberInit, len(data.Members))
		for i, m := range data.Members {
			members[i] = StructMemberInit{Identifier: m.Identifier, Value: m.Value.Clone()}
		}
		out.Data = StructInitData{Name: data.Name, Members: members}
	case MemberAccessData:
		out.Data = MemberAccessData{Inner: data.Inner.Clone(), Name: data.Name}
	case TupleAccessData:
		out.Data = TupleAccessData{Inner: data.Inner.Clone(), Index: data.Index}
	case AssociatedFunctionData:
		out.Data = AssociatedFunctionData{Type: data.Type, Name: data.Name, Args: CloneExprs(data.Args)}
	default:
		// identifiers, literals and associated constants hold no pointers
		out.Data = e.Data
	}
	return out
}

func CloneExprs(in []*Expr) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
