package dto

import "github.com/shopspring/decimal"

// ProdutoDTO resposta da busca de produto por código de barras.
type ProdutoDTO struct {
	ID           string          `json:"id"`
	Nome         string          `json:"nome"`
	PrecoVenda   decimal.Decimal `json:"preco_venda"`
	EstoqueAtual int             `json:"estoque_atual"`
}

// BuscarProdutoResponse corpo de GET ...?codigo=<barras>.
type BuscarProdutoResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Produto *ProdutoDTO `json:"produto,omitempty"`
}

// AjusteEstoqueItem nova quantidade a gravar para um produto.
type AjusteEstoqueItem struct {
	ID             string `json:"id"`
	NovaQuantidade int    `json:"nova_quantidade"`
}

// SalvarEstoqueRequest corpo de POST /produtos/salvar/estoque/.
type SalvarEstoqueRequest struct {
	Produtos []AjusteEstoqueItem `json:"produtos"`
}

// StatusResponse envelope mínimo {status, message} de respostas simples.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
