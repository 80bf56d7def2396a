package ast

import (
	"zkc/internal/source"
)

// Block is a sequence of statements forming one lexical scope.
type Block struct {
	Statements []Stmt      `json:"statements"`
	Span       source.Span `json:"span"`
}

// IsEmpty returns true if the block has no statements.
func (b *Block) IsEmpty() bool {
	return b == nil || len(b.Statements) == 0
}
