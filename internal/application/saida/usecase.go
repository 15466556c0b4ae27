// Package saida orquestra a sessão de registro de saída: seleção do cliente,
// montagem do carrinho por bipagem, totais e gravação da remessa com recibo.
package saida

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	domsaida "github.com/elderjoias/balcao-remessas/internal/domain/saida"
	"github.com/elderjoias/balcao-remessas/pkg/debounce"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

const (
	// IntervaloBusca janela do debounce da busca de clientes.
	IntervaloBusca = 300 * time.Millisecond
	// MinimoConsulta comprimento mínimo da consulta; abaixo disso a busca
	// não vai à rede e os resultados são limpos.
	MinimoConsulta = 2
)

// Estado da sessão de saída.
type Estado int

const (
	// EstadoMontagem cliente e carrinho em edição.
	EstadoMontagem Estado = iota
	// EstadoEnvio gravação em andamento.
	EstadoEnvio
	// EstadoConcluida saída gravada; sessão encerrada.
	EstadoConcluida
)

// Resultado desfecho de uma saída gravada.
type Resultado struct {
	Mensagem      string
	RemessaID     string
	CaminhoRecibo string
	AvisoRecibo   string // preenchido quando a saída gravou mas o recibo falhou
}

// Sessao estado de uma sessão de registro de saída no balcão.
type Sessao struct {
	api           API
	geradorLocal  GeradorRecibo
	recibosDir    string
	log           *logger.Logger
	buscaDebounce *debounce.Debouncer

	mu              sync.Mutex
	estado          Estado
	cliente         *entity.Cliente
	carrinho        *domsaida.Carrinho
	tipoRemessa     string
	formaPagamento  string // valor enviado ao servidor
	rotuloPagamento string // texto exibido no recibo
}

// NovaSessao cria uma sessão pronta para a montagem.
func NovaSessao(api API, geradorLocal GeradorRecibo, recibosDir string, log *logger.Logger) *Sessao {
	return &Sessao{
		api:           api,
		geradorLocal:  geradorLocal,
		recibosDir:    recibosDir,
		log:           log,
		buscaDebounce: debounce.New(IntervaloBusca),
		carrinho:      domsaida.NovoCarrinho(),
		tipoRemessa:   entity.TipoConsignado,
	}
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// BuscarClientes agenda a busca com debounce. Consultas com menos de
// MinimoConsulta caracteres não vão à rede: entrega recebe resultado vazio
// de imediato, limpando a listagem.
func (s *Sessao) BuscarClientes(ctx context.Context, consulta string, entrega func([]dto.ClienteDTO, error)) {
	if len([]rune(consulta)) < MinimoConsulta {
		s.buscaDebounce.Stop()
		entrega(nil, nil)
		return
	}
	s.buscaDebounce.Do(func() {
		entrega(s.api.BuscarClientes(ctx, consulta))
	})
}

// SelecionarCliente fixa a contraparte da saída.
func (s *Sessao) SelecionarCliente(c entity.Cliente) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estado != EstadoMontagem {
		return domain.ErrSessaoEncerrada
	}
	s.cliente = &c
	return nil
}

// TrocarCliente desfaz a seleção; a finalização volta a ficar bloqueada.
func (s *Sessao) TrocarCliente() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cliente = nil
}

// Cliente cliente selecionado, ou nil.
func (s *Sessao) Cliente() *entity.Cliente {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cliente
}

// ── Carrinho ──────────────────────────────────────────────────────────────────

// AdicionarPorCodigo consulta o produto pelo código de barras e o adiciona ao
// carrinho (ou incrementa a linha existente). Código desconhecido devolve o
// erro do servidor sem tocar no carrinho.
func (s *Sessao) AdicionarPorCodigo(ctx context.Context, codigo string) (domsaida.Linha, error) {
	p, err := s.api.BuscarProduto(ctx, codigo)
	if err != nil {
		return domsaida.Linha{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estado != EstadoMontagem {
		return domsaida.Linha{}, domain.ErrSessaoEncerrada
	}
	linha := s.carrinho.Adicionar(entity.Produto{
		ID:           p.ID,
		Nome:         p.Nome,
		CodigoBarras: codigo,
		PrecoVenda:   p.PrecoVenda,
		EstoqueAtual: p.EstoqueAtual,
	})
	return linha, nil
}

// Remover apaga a linha do carrinho.
func (s *Sessao) Remover(produtoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carrinho.Remover(produtoID)
}

// DefinirQuantidade ajusta a quantidade de uma linha (mínimo 1).
func (s *Sessao) DefinirQuantidade(produtoID string, quantidade int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carrinho.DefinirQuantidade(produtoID, quantidade)
}

// Totais totais correntes do carrinho.
func (s *Sessao) Totais() entity.Totais {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carrinho.Totais()
}

// Linhas linhas do carrinho na ordem de exibição.
func (s *Sessao) Linhas() []domsaida.Linha {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carrinho.Linhas()
}

// ── Tipo e pagamento ──────────────────────────────────────────────────────────

// DefinirTipo escolhe entre venda e consignação.
func (s *Sessao) DefinirTipo(tipo string) error {
	if tipo != entity.TipoVenda && tipo != entity.TipoConsignado {
		return domain.ErrEntradaInvalida
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tipoRemessa = tipo
	return nil
}

// DefinirFormaPagamento registra a forma de pagamento: valor para o servidor
// e rótulo legível para o recibo (relevantes só em VENDA).
func (s *Sessao) DefinirFormaPagamento(valor, rotulo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formaPagamento = valor
	s.rotuloPagamento = rotulo
}

// PodeFinalizar o envio só libera com cliente selecionado e ao menos uma
// linha no carrinho.
func (s *Sessao) PodeFinalizar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estado == EstadoMontagem && s.cliente != nil && s.carrinho.Tamanho() > 0
}

// Estado estado corrente da sessão.
func (s *Sessao) Estado() Estado {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estado
}

// ── Envio ─────────────────────────────────────────────────────────────────────

// MontarPayload serializa o carrinho para gravação. forma_pagamento só
// acompanha o tipo VENDA.
func (s *Sessao) MontarPayload() dto.SalvarRemessaRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.montarPayloadLocked()
}

func (s *Sessao) montarPayloadLocked() dto.SalvarRemessaRequest {
	linhas := s.carrinho.Linhas()
	req := dto.SalvarRemessaRequest{
		TipoRemessa: s.tipoRemessa,
		Produtos:    make([]dto.ProdutoQuantidade, len(linhas)),
	}
	if s.cliente != nil {
		req.ClienteID = s.cliente.ID
	}
	for i, ln := range linhas {
		req.Produtos[i] = dto.ProdutoQuantidade{ID: ln.Produto.ID, Quantidade: ln.Quantidade}
	}
	if s.tipoRemessa == entity.TipoVenda {
		req.FormaPagamento = s.formaPagamento
	}
	return req
}

// Finalizar grava a saída e em seguida pede o recibo. Reentradas durante um
// envio em voo são rejeitadas com ErrEnvioEmAndamento. Falha na gravação
// devolve a sessão à montagem com o carrinho intacto; falha só no recibo não
// desfaz a saída já gravada.
func (s *Sessao) Finalizar(ctx context.Context) (*Resultado, error) {
	s.mu.Lock()
	switch s.estado {
	case EstadoEnvio:
		s.mu.Unlock()
		return nil, domain.ErrEnvioEmAndamento
	case EstadoConcluida:
		s.mu.Unlock()
		return nil, domain.ErrSessaoEncerrada
	}
	if s.cliente == nil {
		s.mu.Unlock()
		return nil, domain.ErrClienteNaoSelecionado
	}
	if s.carrinho.Tamanho() == 0 {
		s.mu.Unlock()
		return nil, domain.ErrCarrinhoVazio
	}
	if s.tipoRemessa == entity.TipoVenda && s.formaPagamento == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("forma de pagamento obrigatória na venda: %w", domain.ErrEntradaInvalida)
	}
	payload := s.montarPayloadLocked()
	recibo := s.montarReciboLocked()
	s.estado = EstadoEnvio
	s.mu.Unlock()

	resp, err := s.api.SalvarRemessa(ctx, payload)
	if err != nil {
		s.reabrir()
		return nil, err
	}
	if resp.Status != "success" {
		s.reabrir()
		if resp.Message != "" {
			return nil, fmt.Errorf("saída recusada: %s", resp.Message)
		}
		return nil, fmt.Errorf("saída recusada pelo servidor")
	}

	s.mu.Lock()
	s.estado = EstadoConcluida
	s.mu.Unlock()

	s.log.Info().
		Str("remessa_id", resp.ID).
		Str("tipo", payload.TipoRemessa).
		Int("produtos", len(payload.Produtos)).
		Msg("saída registrada")

	resultado := &Resultado{Mensagem: resp.Message, RemessaID: resp.ID}
	recibo.RemessaID = resp.ID

	caminho, aviso := s.obterRecibo(ctx, recibo)
	resultado.CaminhoRecibo = caminho
	resultado.AvisoRecibo = aviso
	return resultado, nil
}

func (s *Sessao) reabrir() {
	s.mu.Lock()
	s.estado = EstadoMontagem
	s.mu.Unlock()
}

// montarReciboLocked prepara os dados do recibo com valores já formatados,
// como o contrato do gerador espera.
func (s *Sessao) montarReciboLocked() dto.GerarReciboRequest {
	linhas := s.carrinho.Linhas()
	totais := s.carrinho.Totais()

	recibo := dto.GerarReciboRequest{
		NomeCliente: s.cliente.Nome,
		TotalItens:  fmt.Sprintf("%d", totais.Itens),
		ValorTotal:  "R$ " + totais.Valor.StringFixed(2),
		TipoRemessa: s.tipoRemessa,
		Produtos:    make([]dto.ReciboProduto, len(linhas)),
	}
	for i, ln := range linhas {
		recibo.Produtos[i] = dto.ReciboProduto{
			Nome:          ln.Produto.Nome,
			Quantidade:    ln.Quantidade,
			PrecoUnitario: ln.Produto.PrecoVenda.StringFixed(2),
			Subtotal:      ln.Subtotal().StringFixed(2),
		}
	}
	if s.tipoRemessa == entity.TipoVenda {
		recibo.FormaPagamento = s.rotuloPagamento
	}
	return recibo
}

// obterRecibo tenta o recibo do servidor e cai para o gerador local em caso
// de falha. A saída já está gravada: daqui só saem avisos, nunca erro fatal.
func (s *Sessao) obterRecibo(ctx context.Context, recibo dto.GerarReciboRequest) (caminho, aviso string) {
	resp, err := s.api.GerarRecibo(ctx, recibo)
	if err == nil && resp.PDFBase64 != "" {
		pdfBytes, decErr := base64.StdEncoding.DecodeString(resp.PDFBase64)
		if decErr == nil {
			if c, wErr := s.gravarRecibo(pdfBytes, resp.NomeArquivo); wErr == nil {
				return c, ""
			} else {
				err = wErr
			}
		} else {
			err = decErr
		}
	}
	if err == nil {
		err = fmt.Errorf("resposta do recibo sem PDF")
	}

	s.log.Warn().Err(err).Msg("saída gravada, recibo do servidor indisponível")

	if s.geradorLocal != nil {
		dataNota := time.Now().Format("02/01/2006")
		if pdfBytes, gErr := s.geradorLocal.Gerar(ctx, recibo, dataNota); gErr == nil {
			if c, wErr := s.gravarRecibo(pdfBytes, fmt.Sprintf("recibo_remessa_%s.pdf", recibo.RemessaID)); wErr == nil {
				return c, fmt.Sprintf("recibo do servidor indisponível (%v); gerado recibo local", err)
			}
		}
	}
	return "", fmt.Sprintf("a operação foi salva com sucesso, mas houve um erro ao gerar o recibo: %v", err)
}

func (s *Sessao) gravarRecibo(conteudo []byte, nomeArquivo string) (string, error) {
	if nomeArquivo == "" {
		nomeArquivo = "recibo.pdf"
	}
	if err := os.MkdirAll(s.recibosDir, 0o755); err != nil {
		return "", fmt.Errorf("criar diretório de recibos: %w", err)
	}
	caminho := filepath.Join(s.recibosDir, filepath.Base(nomeArquivo))
	if err := os.WriteFile(caminho, conteudo, 0o644); err != nil {
		return "", fmt.Errorf("gravar recibo: %w", err)
	}
	return caminho, nil
}
