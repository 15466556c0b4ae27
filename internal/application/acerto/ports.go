package acerto

import (
	"context"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
)

// API porta de saída para os endpoints do back-office usados pelo acerto.
// A implementação concreta é o cliente HTTP; para testes injeta-se um dublê.
type API interface {
	// BuscarRemessas busca remessas em aberto pelo nome do cliente.
	BuscarRemessas(ctx context.Context, consulta string) ([]dto.RemessaResumo, error)
	// DetalhesRemessa carrega o detalhe completo de uma remessa em aberto.
	DetalhesRemessa(ctx context.Context, remessaID string) (*dto.RemessaDetalhe, error)
	// FinalizarAcerto envia o acerto reconciliado.
	FinalizarAcerto(ctx context.Context, req dto.FinalizarAcertoRequest) (*dto.FinalizarAcertoResponse, error)
}

// GeradorRecibo porta para o gerador local de PDF, usado como contingência
// quando o servidor confirma o acerto mas falha na geração do recibo.
type GeradorRecibo interface {
	Gerar(ctx context.Context, recibo dto.GerarReciboRequest, dataNota string) ([]byte, error)
}
