package saida

import (
	"context"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
)

// API porta de saída para os endpoints do back-office usados pelo registro
// de saída. Para testes injeta-se um dublê.
type API interface {
	// BuscarClientes busca clientes por nome ou documento.
	BuscarClientes(ctx context.Context, consulta string) ([]dto.ClienteDTO, error)
	// BuscarProduto localiza um produto pelo código de barras.
	BuscarProduto(ctx context.Context, codigo string) (*dto.ProdutoDTO, error)
	// SalvarRemessa registra a saída (venda ou consignação).
	SalvarRemessa(ctx context.Context, req dto.SalvarRemessaRequest) (*dto.SalvarRemessaResponse, error)
	// GerarRecibo pede ao back-office o PDF de recibo da saída gravada.
	GerarRecibo(ctx context.Context, req dto.GerarReciboRequest) (*dto.GerarReciboResponse, error)
}

// GeradorRecibo porta para o gerador local de PDF, contingência quando o
// endpoint de recibo falha após a saída já gravada.
type GeradorRecibo interface {
	Gerar(ctx context.Context, recibo dto.GerarReciboRequest, dataNota string) ([]byte, error)
}
