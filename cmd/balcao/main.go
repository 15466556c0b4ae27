// Estação de balcão da joalheria: acerto de contas de consignações,
// registro de saída por bipagem e ajuste direto de estoque, tudo contra a
// API do back-office.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/elderjoias/balcao-remessas/internal/application/acerto"
	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/application/estoque"
	"github.com/elderjoias/balcao-remessas/internal/application/saida"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	"github.com/elderjoias/balcao-remessas/internal/infrastructure/backoffice"
	"github.com/elderjoias/balcao-remessas/internal/infrastructure/pdf"
	"github.com/elderjoias/balcao-remessas/pkg/config"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

// formasPagamento opções aceitas pelo back-office, na ordem do menu.
var formasPagamento = []struct{ valor, rotulo string }{
	{"dinheiro", "Dinheiro"},
	{"pix", "PIX"},
	{"cartao_credito", "Cartão de crédito"},
	{"cartao_debito", "Cartão de débito"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	cliente, err := backoffice.New(cfg.Backoffice.BaseURL, cfg.Backoffice.Timeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("criar cliente do back-office")
	}

	ctx := context.Background()
	if err := cliente.ObterCSRF(ctx); err != nil {
		log.Fatal().Err(err).Str("base_url", cfg.Backoffice.BaseURL).Msg("obter token CSRF")
	}

	b := &balcao{
		api:        cliente,
		recibos:    pdf.NovoGeradorRecibo("Elder Joias"),
		recibosDir: cfg.Recibos.Dir,
		log:        log,
		in:         bufio.NewScanner(os.Stdin),
	}
	b.menu(ctx)
}

type balcao struct {
	api        *backoffice.Client
	recibos    *pdf.GeradorRecibo
	recibosDir string
	log        *logger.Logger
	in         *bufio.Scanner
}

func (b *balcao) menu(ctx context.Context) {
	for {
		fmt.Println()
		fmt.Println("═══ Balcão Elder Joias ═══")
		fmt.Println(" 1. Acerto de contas")
		fmt.Println(" 2. Registrar saída")
		fmt.Println(" 3. Ajustar estoque")
		fmt.Println(" 0. Sair")
		switch b.ler("opção: ") {
		case "1":
			b.fluxoAcerto(ctx)
		case "2":
			b.fluxoSaida(ctx)
		case "3":
			b.fluxoEstoque(ctx)
		case "0", "":
			return
		default:
			fmt.Println("opção inválida")
		}
	}
}

// ler exibe o prompt e devolve a linha digitada, sem espaços nas pontas.
func (b *balcao) ler(prompt string) string {
	fmt.Print(prompt)
	if !b.in.Scan() {
		return ""
	}
	return strings.TrimSpace(b.in.Text())
}

// ── Acerto de contas ──────────────────────────────────────────────────────────

func (b *balcao) fluxoAcerto(ctx context.Context) {
	s := acerto.NovaSessao(b.api, b.recibos, b.recibosDir, b.log)

	remessa := b.escolherRemessa(ctx, s)
	if remessa == "" {
		return
	}
	if _, err := s.CarregarRemessa(ctx, remessa); err != nil {
		fmt.Println("erro:", err)
		return
	}
	b.imprimirRazao(s)

	for {
		entrada := b.ler("bipe o código devolvido (ENTER encerra a conferência): ")
		if entrada == "" {
			break
		}
		linha, devolvida, err := s.DevolverUnidade(entrada)
		if err != nil {
			fmt.Println("aviso:", err)
			continue
		}
		if devolvida {
			fmt.Printf("  %s: totalmente devolvido\n", linha.ProdutoNome)
		} else {
			fmt.Printf("  %s: restam %d\n", linha.ProdutoNome, linha.Quantidade)
		}
		b.imprimirRazao(s)
	}

	if b.ler("fechar a remessa? (s/N): ") == "s" {
		if err := s.DefinirAcaoFinal(entity.AcaoFechar); err != nil {
			fmt.Println("erro:", err)
			return
		}
		valor, _ := b.escolherForma()
		s.DefinirFormaPagamento(valor)
	}
	if !s.PodeFinalizar() {
		fmt.Println("acerto incompleto, nada enviado")
		return
	}

	res, err := s.Finalizar(ctx)
	if err != nil {
		fmt.Println("erro ao finalizar:", err)
		return
	}
	fmt.Println(res.Mensagem)
	if res.CaminhoRecibo != "" {
		fmt.Println("recibo salvo em:", res.CaminhoRecibo)
	}
	if res.AvisoRecibo != "" {
		fmt.Println("aviso:", res.AvisoRecibo)
	}
}

func (b *balcao) escolherRemessa(ctx context.Context, s *acerto.Sessao) string {
	for {
		consulta := b.ler("cliente da consignação (ENTER cancela): ")
		if consulta == "" {
			return ""
		}
		entregue := make(chan []dto.RemessaResumo, 1)
		s.BuscarRemessas(ctx, consulta, func(rs []dto.RemessaResumo, err error) {
			if err != nil {
				fmt.Println("erro na busca:", err)
			}
			entregue <- rs
		})
		remessas := <-entregue
		if len(remessas) == 0 {
			fmt.Println("nenhuma remessa em aberto para essa busca")
			continue
		}
		for i, r := range remessas {
			fmt.Printf(" %d. %s (saída em %s)\n", i+1, r.ClienteNome, r.DataSaida)
		}
		escolha, err := strconv.Atoi(b.ler("número da remessa: "))
		if err != nil || escolha < 1 || escolha > len(remessas) {
			fmt.Println("escolha inválida")
			continue
		}
		return remessas[escolha-1].ID
	}
}

func (b *balcao) imprimirRazao(s *acerto.Sessao) {
	fmt.Println("── razão da conferência ──")
	for _, ln := range s.Linhas() {
		marca := " "
		if ln.Devolvido {
			marca = "✓"
		}
		fmt.Printf(" [%s] %-30s x%d  R$ %s\n", marca, ln.ProdutoNome, ln.Quantidade, ln.Subtotal.StringFixed(2))
	}
	t := s.Totais()
	fmt.Printf(" fica com o cliente: %d peça(s), R$ %s\n", t.Itens, t.Valor.StringFixed(2))
}

// ── Registro de saída ─────────────────────────────────────────────────────────

func (b *balcao) fluxoSaida(ctx context.Context) {
	s := saida.NovaSessao(b.api, b.recibos, b.recibosDir, b.log)

	if !b.escolherCliente(ctx, s) {
		return
	}

	for {
		codigo := b.ler("bipe o código do produto (ENTER encerra): ")
		if codigo == "" {
			break
		}
		linha, err := s.AdicionarPorCodigo(ctx, codigo)
		if err != nil {
			fmt.Println("aviso:", err)
			continue
		}
		fmt.Printf("  %s x%d (R$ %s)\n", linha.Produto.Nome, linha.Quantidade, linha.Subtotal().StringFixed(2))
	}
	if s.Totais().Itens == 0 {
		fmt.Println("carrinho vazio, nada registrado")
		return
	}

	if b.ler("é venda? (s/N = consignação): ") == "s" {
		if err := s.DefinirTipo(entity.TipoVenda); err != nil {
			fmt.Println("erro:", err)
			return
		}
		s.DefinirFormaPagamento(b.escolherForma())
	}

	t := s.Totais()
	fmt.Printf("total: %d peça(s), R$ %s\n", t.Itens, t.Valor.StringFixed(2))
	if b.ler("confirmar? (s/N): ") != "s" {
		return
	}

	res, err := s.Finalizar(ctx)
	if err != nil {
		fmt.Println("erro ao registrar:", err)
		return
	}
	fmt.Println(res.Mensagem)
	if res.CaminhoRecibo != "" {
		fmt.Println("recibo salvo em:", res.CaminhoRecibo)
	}
	if res.AvisoRecibo != "" {
		fmt.Println("aviso:", res.AvisoRecibo)
	}
}

func (b *balcao) escolherCliente(ctx context.Context, s *saida.Sessao) bool {
	for {
		consulta := b.ler("nome ou documento do cliente (mín. 2 letras, ENTER cancela): ")
		if consulta == "" {
			return false
		}
		entregue := make(chan []dto.ClienteDTO, 1)
		s.BuscarClientes(ctx, consulta, func(cs []dto.ClienteDTO, err error) {
			if err != nil {
				fmt.Println("erro na busca:", err)
			}
			entregue <- cs
		})
		clientes := <-entregue
		if len(clientes) == 0 {
			fmt.Println("nenhum cliente encontrado")
			continue
		}
		for i, c := range clientes {
			fmt.Printf(" %d. %s (%s)\n", i+1, c.Nome, c.Doc)
		}
		escolha, err := strconv.Atoi(b.ler("número do cliente: "))
		if err != nil || escolha < 1 || escolha > len(clientes) {
			fmt.Println("escolha inválida")
			continue
		}
		c := clientes[escolha-1]
		if err := s.SelecionarCliente(entity.Cliente{ID: c.ID, Nome: c.Nome, Doc: c.Doc}); err != nil {
			fmt.Println("erro:", err)
			return false
		}
		return true
	}
}

func (b *balcao) escolherForma() (valor, rotulo string) {
	for {
		for i, f := range formasPagamento {
			fmt.Printf(" %d. %s\n", i+1, f.rotulo)
		}
		escolha, err := strconv.Atoi(b.ler("forma de pagamento: "))
		if err == nil && escolha >= 1 && escolha <= len(formasPagamento) {
			f := formasPagamento[escolha-1]
			return f.valor, f.rotulo
		}
		fmt.Println("escolha inválida")
	}
}

// ── Ajuste de estoque ─────────────────────────────────────────────────────────

func (b *balcao) fluxoEstoque(ctx context.Context) {
	s := estoque.NovaSessao(b.api, b.log)

	for {
		codigo := b.ler("bipe o código do produto (ENTER encerra): ")
		if codigo == "" {
			break
		}
		item, err := s.AdicionarPorCodigo(ctx, codigo)
		if err != nil {
			fmt.Println("aviso:", err)
			continue
		}
		fmt.Printf("  %s (estoque atual: %d)\n", item.Produto.Nome, item.Produto.EstoqueAtual)

		entrada := b.ler(fmt.Sprintf("  nova quantidade [%d]: ", item.NovaQuantidade))
		if entrada == "" {
			continue
		}
		nova, err := strconv.Atoi(entrada)
		if err != nil {
			fmt.Println("  quantidade inválida, mantido o valor atual")
			continue
		}
		if err := s.DefinirNovaQuantidade(item.Produto.ID, nova); err != nil {
			fmt.Println("  aviso:", err)
		}
	}

	itens := s.Itens()
	if len(itens) == 0 {
		fmt.Println("nada a ajustar")
		return
	}
	fmt.Println("── ajustes pendentes ──")
	for _, it := range itens {
		fmt.Printf(" %-30s %d → %d\n", it.Produto.Nome, it.Produto.EstoqueAtual, it.NovaQuantidade)
	}
	if b.ler("gravar? (s/N): ") != "s" {
		return
	}

	msg, err := s.Salvar(ctx)
	if err != nil {
		fmt.Println("erro ao gravar:", err)
		return
	}
	fmt.Println(msg)
}
