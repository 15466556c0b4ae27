package estoque

import (
	"context"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
)

// API porta de saída para os endpoints do back-office usados pelo ajuste
// de estoque.
type API interface {
	// BuscarProduto localiza um produto pelo código de barras.
	BuscarProduto(ctx context.Context, codigo string) (*dto.ProdutoDTO, error)
	// SalvarEstoque grava as novas quantidades em lote.
	SalvarEstoque(ctx context.Context, req dto.SalvarEstoqueRequest) (*dto.StatusResponse, error)
}
