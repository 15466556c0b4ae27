// Package acerto orquestra a sessão de acerto de contas: seleção da remessa,
// conferência das devoluções bipadas, totais e envio final reconciliado.
package acerto

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
	domacerto "github.com/elderjoias/balcao-remessas/internal/domain/acerto"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	"github.com/elderjoias/balcao-remessas/pkg/debounce"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

// IntervaloBusca janela do debounce da busca de remessas.
const IntervaloBusca = 300 * time.Millisecond

// Estado da sessão de acerto. Depois de Concluida nenhuma mutação é
// alcançável: inicia-se uma nova sessão para outro acerto.
type Estado int

const (
	// EstadoSelecao aguardando a escolha da remessa.
	EstadoSelecao Estado = iota
	// EstadoConferencia itens carregados; devoluções sendo bipadas.
	EstadoConferencia
	// EstadoEnvio envio em andamento; novas chamadas de Finalizar são rejeitadas.
	EstadoEnvio
	// EstadoConcluida acerto confirmado pelo servidor.
	EstadoConcluida
)

// Resultado desfecho de um acerto confirmado.
type Resultado struct {
	Mensagem      string
	CaminhoRecibo string // vazio quando nenhum recibo foi gravado
	AvisoRecibo   string // preenchido quando o servidor falhou só na geração do PDF
}

// Sessao estado de uma sessão de acerto no balcão. Todo o estado mutável do
// fluxo vive aqui, de posse exclusiva da sessão, sem globais.
type Sessao struct {
	api           API
	geradorLocal  GeradorRecibo
	recibosDir    string
	log           *logger.Logger
	buscaDebounce *debounce.Debouncer

	mu             sync.Mutex
	estado         Estado
	remessaID      string
	clienteNome    string
	dataSaida      string
	ledger         *domacerto.Ledger
	acaoFinal      string
	formaPagamento string
}

// NovaSessao cria uma sessão pronta para a seleção de remessa.
func NovaSessao(api API, geradorLocal GeradorRecibo, recibosDir string, log *logger.Logger) *Sessao {
	return &Sessao{
		api:           api,
		geradorLocal:  geradorLocal,
		recibosDir:    recibosDir,
		log:           log,
		buscaDebounce: debounce.New(IntervaloBusca),
		estado:        EstadoSelecao,
		acaoFinal:     entity.AcaoManter,
	}
}

// ── Busca e carga da remessa ──────────────────────────────────────────────────

// BuscarRemessas agenda a busca com debounce: digitações em sequência dentro
// da janela disparam uma única requisição, com o texto mais recente. entrega
// recebe o resultado (ou o erro) em goroutine própria.
//
// Não há cancelamento de requisições já em voo: se a latência exceder a
// janela, respostas de consultas distintas podem chegar fora de ordem.
func (s *Sessao) BuscarRemessas(ctx context.Context, consulta string, entrega func([]dto.RemessaResumo, error)) {
	s.buscaDebounce.Do(func() {
		entrega(s.api.BuscarRemessas(ctx, consulta))
	})
}

// CarregarRemessa carrega o detalhe da remessa e semeia o razão inteiro.
// A partir daqui a sessão está em conferência.
func (s *Sessao) CarregarRemessa(ctx context.Context, remessaID string) (*entity.Remessa, error) {
	detalhe, err := s.api.DetalhesRemessa(ctx, remessaID)
	if err != nil {
		return nil, err
	}

	itens := make([]entity.ItemRemessa, len(detalhe.Itens))
	for i, it := range detalhe.Itens {
		itens[i] = entity.ItemRemessa{
			ID:            it.ID,
			CodigoBarras:  it.CodigoBarras,
			ProdutoNome:   it.ProdutoNome,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estado == EstadoConcluida {
		return nil, domain.ErrSessaoEncerrada
	}
	s.remessaID = remessaID
	s.clienteNome = detalhe.ClienteNome
	s.dataSaida = detalhe.DataSaida
	s.ledger = domacerto.Semear(itens)
	s.estado = EstadoConferencia

	s.log.Info().
		Str("remessa_id", remessaID).
		Str("cliente", detalhe.ClienteNome).
		Int("itens", len(itens)).
		Msg("remessa carregada para acerto")

	return &entity.Remessa{
		ID:          remessaID,
		ClienteNome: detalhe.ClienteNome,
		DataSaida:   detalhe.DataSaida,
		Itens:       s.ledger.Linhas(),
	}, nil
}

// ── Conferência ───────────────────────────────────────────────────────────────

// DevolverUnidade processa um código de barras bipado como devolução.
// Devolve a linha resultante e se esta foi a última unidade da linha.
func (s *Sessao) DevolverUnidade(codigoBarras string) (entity.ItemRemessa, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estado != EstadoConferencia {
		return entity.ItemRemessa{}, false, domain.ErrRemessaNaoSelecionada
	}
	return s.ledger.DevolverUnidade(codigoBarras)
}

// Totais totais correntes das linhas não devolvidas.
func (s *Sessao) Totais() entity.Totais {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledger == nil {
		return entity.Totais{}
	}
	return s.ledger.Totais()
}

// Linhas linhas do razão na ordem de carga, inclusive devolvidas.
func (s *Sessao) Linhas() []entity.ItemRemessa {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Linhas()
}

// DefinirAcaoFinal escolhe entre fechar a remessa ou mantê-la em aberto.
func (s *Sessao) DefinirAcaoFinal(acao string) error {
	if acao != entity.AcaoFechar && acao != entity.AcaoManter {
		return domain.ErrEntradaInvalida
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acaoFinal = acao
	return nil
}

// DefinirFormaPagamento registra a forma de pagamento (relevante só em FECHAR).
func (s *Sessao) DefinirFormaPagamento(forma string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formaPagamento = forma
}

// PodeFinalizar informa se o envio está liberado: remessa carregada e, em
// FECHAR, forma de pagamento definida.
func (s *Sessao) PodeFinalizar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estado != EstadoConferencia {
		return false
	}
	if s.acaoFinal == entity.AcaoFechar && s.formaPagamento == "" {
		return false
	}
	return true
}

// Estado estado corrente da sessão.
func (s *Sessao) Estado() Estado {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estado
}

// ── Envio ─────────────────────────────────────────────────────────────────────

// MontarPayload serializa o razão para o envio final: toda linha já semeada
// entra, e as devolvidas vão com quantidade 0. forma_pagamento só acompanha
// a ação FECHAR.
func (s *Sessao) MontarPayload() dto.FinalizarAcertoRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.montarPayloadLocked()
}

func (s *Sessao) montarPayloadLocked() dto.FinalizarAcertoRequest {
	linhas := s.ledger.Linhas()
	itens := make([]dto.ItemQuantidade, len(linhas))
	for i, ln := range linhas {
		qtd := ln.Quantidade
		if ln.Devolvido {
			qtd = 0
		}
		itens[i] = dto.ItemQuantidade{ID: ln.ID, Quantidade: qtd}
	}
	req := dto.FinalizarAcertoRequest{
		RemessaID: s.remessaID,
		Itens:     itens,
		AcaoFinal: s.acaoFinal,
	}
	if s.acaoFinal == entity.AcaoFechar {
		req.FormaPagamento = s.formaPagamento
	}
	return req
}

// Finalizar envia o acerto reconciliado. Chamadas reentrantes durante um
// envio em voo são rejeitadas com ErrEnvioEmAndamento: a trava explícita,
// não a interface, é quem garante o envio único. Em falha a sessão volta à
// conferência com o razão intacto para nova tentativa.
func (s *Sessao) Finalizar(ctx context.Context) (*Resultado, error) {
	s.mu.Lock()
	switch s.estado {
	case EstadoEnvio:
		s.mu.Unlock()
		return nil, domain.ErrEnvioEmAndamento
	case EstadoConcluida:
		s.mu.Unlock()
		return nil, domain.ErrSessaoEncerrada
	case EstadoSelecao:
		s.mu.Unlock()
		return nil, domain.ErrRemessaNaoSelecionada
	}
	if s.acaoFinal == entity.AcaoFechar && s.formaPagamento == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("forma de pagamento obrigatória ao fechar: %w", domain.ErrEntradaInvalida)
	}
	payload := s.montarPayloadLocked()
	s.estado = EstadoEnvio
	s.mu.Unlock()

	resp, err := s.api.FinalizarAcerto(ctx, payload)
	if err != nil {
		s.mu.Lock()
		s.estado = EstadoConferencia
		s.mu.Unlock()
		return nil, err
	}
	if resp.Status != "success" {
		s.mu.Lock()
		s.estado = EstadoConferencia
		s.mu.Unlock()
		if resp.Message != "" {
			return nil, fmt.Errorf("acerto recusado: %s", resp.Message)
		}
		return nil, fmt.Errorf("acerto recusado pelo servidor")
	}

	s.mu.Lock()
	s.estado = EstadoConcluida
	s.mu.Unlock()

	resultado := &Resultado{Mensagem: resp.Message}

	switch {
	case resp.PDFBase64 != "" && resp.NomeArquivo != "":
		caminho, err := s.gravarReciboBase64(resp.PDFBase64, resp.NomeArquivo)
		if err != nil {
			// Acerto já confirmado no servidor; a falha local no recibo não o desfaz.
			s.log.Warn().Err(err).Msg("acerto confirmado, falha ao gravar o recibo")
			resultado.AvisoRecibo = "acerto realizado, mas houve erro ao gravar o recibo"
		} else {
			resultado.CaminhoRecibo = caminho
		}
	case resp.PDFError != "":
		s.log.Warn().Str("pdf_error", resp.PDFError).Msg("servidor falhou na geração do recibo")
		resultado.AvisoRecibo = resp.PDFError
		if caminho, err := s.gerarReciboLocal(ctx); err != nil {
			s.log.Warn().Err(err).Msg("fallback local do recibo também falhou")
		} else {
			resultado.CaminhoRecibo = caminho
		}
	}

	return resultado, nil
}

// ── Recibos ───────────────────────────────────────────────────────────────────

func (s *Sessao) gravarReciboBase64(conteudo, nomeArquivo string) (string, error) {
	pdfBytes, err := base64.StdEncoding.DecodeString(conteudo)
	if err != nil {
		return "", fmt.Errorf("decodificar recibo: %w", err)
	}
	return s.gravarRecibo(pdfBytes, nomeArquivo)
}

func (s *Sessao) gravarRecibo(conteudo []byte, nomeArquivo string) (string, error) {
	if nomeArquivo == "" {
		nomeArquivo = "acerto_remessa.pdf"
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

// gerarReciboLocal monta um recibo de contingência com as linhas que
// permaneceram na remessa após a conferência.
func (s *Sessao) gerarReciboLocal(ctx context.Context) (string, error) {
	if s.geradorLocal == nil {
		return "", fmt.Errorf("gerador local de recibo não configurado")
	}

	s.mu.Lock()
	linhas := s.ledger.Linhas()
	totais := s.ledger.Totais()
	situacao := "ACERTO - EM ABERTO"
	if s.acaoFinal == entity.AcaoFechar {
		situacao = "ACERTO - FECHADO"
	}
	recibo := dto.GerarReciboRequest{
		NomeCliente:    s.clienteNome,
		TotalItens:     fmt.Sprintf("%d", totais.Itens),
		ValorTotal:     "R$ " + totais.Valor.StringFixed(2),
		RemessaID:      s.remessaID,
		TipoRemessa:    situacao,
		FormaPagamento: s.formaPagamento,
	}
	for _, ln := range linhas {
		if ln.Devolvido {
			continue
		}
		recibo.Produtos = append(recibo.Produtos, dto.ReciboProduto{
			Nome:          ln.ProdutoNome,
			Quantidade:    ln.Quantidade,
			PrecoUnitario: ln.PrecoUnitario.StringFixed(2),
			Subtotal:      ln.Subtotal.StringFixed(2),
		})
	}
	dataNota := s.dataSaida
	remessaID := s.remessaID
	s.mu.Unlock()

	pdfBytes, err := s.geradorLocal.Gerar(ctx, recibo, dataNota)
	if err != nil {
		return "", err
	}
	return s.gravarRecibo(pdfBytes, fmt.Sprintf("acerto_remessa_%s.pdf", remessaID))
}
