package entity

import "github.com/shopspring/decimal"

// Produto peça do catálogo, localizada por código de barras.
type Produto struct {
	ID           string
	Nome         string
	CodigoBarras string
	PrecoVenda   decimal.Decimal
	EstoqueAtual int
}

// Cliente cadastro mínimo usado na seleção de contraparte.
type Cliente struct {
	ID   string
	Nome string
	Doc  string
}
