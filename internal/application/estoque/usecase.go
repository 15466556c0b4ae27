// Package estoque orquestra o ajuste direto de estoque no balcão: bipagem
// dos produtos, edição das novas quantidades e gravação em lote.
package estoque

import (
	"context"
	"fmt"
	"sync"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	domestoque "github.com/elderjoias/balcao-remessas/internal/domain/estoque"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

// Estado da sessão de ajuste.
type Estado int

const (
	// EstadoEdicao lista em edição.
	EstadoEdicao Estado = iota
	// EstadoEnvio gravação em andamento.
	EstadoEnvio
	// EstadoConcluida ajuste gravado; sessão encerrada.
	EstadoConcluida
)

// Sessao estado de uma sessão de ajuste de estoque.
type Sessao struct {
	api API
	log *logger.Logger

	mu     sync.Mutex
	estado Estado
	ajuste *domestoque.Ajuste
}

// NovaSessao cria uma sessão com a lista de edição vazia.
func NovaSessao(api API, log *logger.Logger) *Sessao {
	return &Sessao{api: api, log: log, ajuste: domestoque.NovoAjuste()}
}

// AdicionarPorCodigo consulta o produto pelo código de barras e o inclui na
// lista de edição. Produto já presente devolve ErrDuplicado: quem edita a
// quantidade é DefinirNovaQuantidade, não uma nova bipagem.
func (s *Sessao) AdicionarPorCodigo(ctx context.Context, codigo string) (domestoque.Item, error) {
	p, err := s.api.BuscarProduto(ctx, codigo)
	if err != nil {
		return domestoque.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estado != EstadoEdicao {
		return domestoque.Item{}, domain.ErrSessaoEncerrada
	}
	produto := entity.Produto{
		ID:           p.ID,
		Nome:         p.Nome,
		CodigoBarras: codigo,
		PrecoVenda:   p.PrecoVenda,
		EstoqueAtual: p.EstoqueAtual,
	}
	if err := s.ajuste.Adicionar(produto); err != nil {
		return domestoque.Item{}, fmt.Errorf("produto %q já está na lista: %w", p.Nome, err)
	}
	return domestoque.Item{Produto: produto, NovaQuantidade: produto.EstoqueAtual}, nil
}

// DefinirNovaQuantidade grava a quantidade digitada para o produto.
func (s *Sessao) DefinirNovaQuantidade(produtoID string, quantidade int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ajuste.DefinirNovaQuantidade(produtoID, quantidade)
}

// Remover tira o produto da lista de edição.
func (s *Sessao) Remover(produtoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ajuste.Remover(produtoID)
}

// Itens itens em edição na ordem de exibição.
func (s *Sessao) Itens() []domestoque.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ajuste.Itens()
}

// Estado estado corrente da sessão.
func (s *Sessao) Estado() Estado {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estado
}

// MontarPayload serializa a lista para gravação em lote.
func (s *Sessao) MontarPayload() dto.SalvarEstoqueRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.montarPayloadLocked()
}

func (s *Sessao) montarPayloadLocked() dto.SalvarEstoqueRequest {
	itens := s.ajuste.Itens()
	req := dto.SalvarEstoqueRequest{Produtos: make([]dto.AjusteEstoqueItem, len(itens))}
	for i, it := range itens {
		req.Produtos[i] = dto.AjusteEstoqueItem{ID: it.Produto.ID, NovaQuantidade: it.NovaQuantidade}
	}
	return req
}

// Salvar grava as novas quantidades. Reentradas durante um envio em voo são
// rejeitadas com ErrEnvioEmAndamento; falha devolve a sessão à edição com a
// lista intacta.
func (s *Sessao) Salvar(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch s.estado {
	case EstadoEnvio:
		s.mu.Unlock()
		return "", domain.ErrEnvioEmAndamento
	case EstadoConcluida:
		s.mu.Unlock()
		return "", domain.ErrSessaoEncerrada
	}
	if s.ajuste.Tamanho() == 0 {
		s.mu.Unlock()
		return "", domain.ErrCarrinhoVazio
	}
	payload := s.montarPayloadLocked()
	s.estado = EstadoEnvio
	s.mu.Unlock()

	resp, err := s.api.SalvarEstoque(ctx, payload)
	if err != nil {
		s.reabrir()
		return "", err
	}
	if resp.Status != "success" {
		s.reabrir()
		if resp.Message != "" {
			return "", fmt.Errorf("ajuste recusado: %s", resp.Message)
		}
		return "", fmt.Errorf("ajuste recusado pelo servidor")
	}

	s.mu.Lock()
	s.estado = EstadoConcluida
	s.mu.Unlock()

	s.log.Info().Int("produtos", len(payload.Produtos)).Msg("estoque ajustado")
	return resp.Message, nil
}

func (s *Sessao) reabrir() {
	s.mu.Lock()
	s.estado = EstadoEdicao
	s.mu.Unlock()
}
