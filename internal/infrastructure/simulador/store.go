// Package simulador sobe um back-office de desenvolvimento em memória com os
// mesmos contratos HTTP do servidor real. Serve para testar o balcão sem a
// loja no ar; nada é persistido entre execuções.
package simulador

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
)

// registroRemessa remessa gravada na loja, aberta ou finalizada.
type registroRemessa struct {
	entity.Remessa
	ClienteID  string
	Tipo       string
	Finalizada bool
}

// Loja estado em memória do back-office simulado.
type Loja struct {
	mu       sync.Mutex
	clientes []entity.Cliente
	produtos map[string]*entity.Produto // por id
	remessas map[string]*registroRemessa
	ordem    []string // ids de remessa na ordem de criação
}

// NovaLoja cria a loja vazia.
func NovaLoja() *Loja {
	return &Loja{
		produtos: make(map[string]*entity.Produto),
		remessas: make(map[string]*registroRemessa),
	}
}

// NovaLojaSemeada cria a loja com um catálogo pequeno e uma consignação em
// aberto, o suficiente para exercitar os três fluxos do balcão.
func NovaLojaSemeada() *Loja {
	l := NovaLoja()
	l.SemearCliente(entity.Cliente{Nome: "Maria Souza", Doc: "123.456.789-00"})
	l.SemearCliente(entity.Cliente{Nome: "João Pereira", Doc: "987.654.321-00"})
	l.SemearCliente(entity.Cliente{Nome: "Antônia Ramos", Doc: "111.222.333-44"})

	anel := l.SemearProduto("789100", "Anel Solitário Ouro 18k", "185.00", 12)
	brinco := l.SemearProduto("789200", "Brinco Gota Prata 925", "42.50", 30)
	l.SemearProduto("789300", "Corrente Veneziana 45cm", "96.90", 8)
	l.SemearProduto("789400", "Pingente Coração Zircônia", "27.75", 20)

	maria := l.clientes[0]
	l.SemearConsignacao(maria.ID, map[string]int{anel: 3, brinco: 5})
	return l
}

// SemearCliente registra um cliente com id gerado.
func (l *Loja) SemearCliente(c entity.Cliente) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	c.ID = uuid.NewString()
	l.clientes = append(l.clientes, c)
	return c.ID
}

// SemearProduto registra um produto com id gerado e devolve o id.
func (l *Loja) SemearProduto(codigo, nome, preco string, estoque int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := &entity.Produto{
		ID:           uuid.NewString(),
		Nome:         nome,
		CodigoBarras: codigo,
		PrecoVenda:   decimal.RequireFromString(preco),
		EstoqueAtual: estoque,
	}
	l.produtos[p.ID] = p
	return p.ID
}

// SemearConsignacao abre uma remessa consignada já descontada do estoque.
func (l *Loja) SemearConsignacao(clienteID string, quantidades map[string]int) (string, error) {
	produtos := make([]dto.ProdutoQuantidade, 0, len(quantidades))
	for id, q := range quantidades {
		produtos = append(produtos, dto.ProdutoQuantidade{ID: id, Quantidade: q})
	}
	return l.SalvarRemessa(dto.SalvarRemessaRequest{
		ClienteID:   clienteID,
		TipoRemessa: entity.TipoConsignado,
		Produtos:    produtos,
	})
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// BuscarClientes filtra por nome ou documento, sem distinguir acentos nem
// caixa ("joao" encontra "João").
func (l *Loja) BuscarClientes(consulta string) []dto.ClienteDTO {
	l.mu.Lock()
	defer l.mu.Unlock()
	alvo := normalizar(consulta)
	out := make([]dto.ClienteDTO, 0)
	for _, c := range l.clientes {
		if strings.Contains(normalizar(c.Nome), alvo) || strings.Contains(c.Doc, consulta) {
			out = append(out, dto.ClienteDTO{ID: c.ID, Nome: c.Nome, Doc: c.Doc})
		}
	}
	return out
}

// BuscarRemessas lista consignações em aberto cujo cliente case com a consulta.
func (l *Loja) BuscarRemessas(consulta string) []dto.RemessaResumo {
	l.mu.Lock()
	defer l.mu.Unlock()
	alvo := normalizar(consulta)
	out := make([]dto.RemessaResumo, 0)
	for _, id := range l.ordem {
		r := l.remessas[id]
		if r.Finalizada || r.Tipo != entity.TipoConsignado {
			continue
		}
		if alvo != "" && !strings.Contains(normalizar(r.ClienteNome), alvo) {
			continue
		}
		out = append(out, dto.RemessaResumo{ID: r.ID, ClienteNome: r.ClienteNome, DataSaida: r.DataSaida})
	}
	return out
}

// DetalhesRemessa devolve o detalhe de uma remessa em aberto, ou nil se
// inexistente ou já finalizada.
func (l *Loja) DetalhesRemessa(remessaID string) *dto.RemessaDetalhe {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.remessas[remessaID]
	if !ok || r.Finalizada {
		return nil
	}
	det := &dto.RemessaDetalhe{ClienteNome: r.ClienteNome, DataSaida: r.DataSaida}
	for _, it := range r.Itens {
		det.Itens = append(det.Itens, dto.ItemRemessaDTO{
			ID:            it.ID,
			CodigoBarras:  it.CodigoBarras,
			ProdutoNome:   it.ProdutoNome,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
		})
	}
	return det
}

// BuscarProduto localiza pelo código de barras.
func (l *Loja) BuscarProduto(codigo string) *dto.ProdutoDTO {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.produtos {
		if p.CodigoBarras == codigo {
			return &dto.ProdutoDTO{ID: p.ID, Nome: p.Nome, PrecoVenda: p.PrecoVenda, EstoqueAtual: p.EstoqueAtual}
		}
	}
	return nil
}

// ── Mutações ──────────────────────────────────────────────────────────────────

// SalvarRemessa grava uma saída. Venda baixa o estoque e fecha na hora;
// consignação baixa o estoque e fica em aberto para acerto futuro.
func (l *Loja) SalvarRemessa(req dto.SalvarRemessaRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var cliente *entity.Cliente
	for i := range l.clientes {
		if l.clientes[i].ID == req.ClienteID {
			cliente = &l.clientes[i]
			break
		}
	}
	if cliente == nil {
		return "", fmt.Errorf("cliente não encontrado")
	}
	if req.TipoRemessa != entity.TipoVenda && req.TipoRemessa != entity.TipoConsignado {
		return "", fmt.Errorf("tipo de remessa inválido: %q", req.TipoRemessa)
	}
	if len(req.Produtos) == 0 {
		return "", fmt.Errorf("remessa sem produtos")
	}
	if req.TipoRemessa == entity.TipoVenda && req.FormaPagamento == "" {
		return "", fmt.Errorf("venda exige forma de pagamento")
	}

	// valida tudo antes de baixar qualquer estoque
	for _, pq := range req.Produtos {
		p, ok := l.produtos[pq.ID]
		if !ok {
			return "", fmt.Errorf("produto não encontrado: %s", pq.ID)
		}
		if pq.Quantidade <= 0 {
			return "", fmt.Errorf("quantidade inválida para %s", p.Nome)
		}
		if p.EstoqueAtual < pq.Quantidade {
			return "", fmt.Errorf("estoque insuficiente para %s (disponível: %d)", p.Nome, p.EstoqueAtual)
		}
	}

	r := &registroRemessa{
		Remessa: entity.Remessa{
			ID:          uuid.NewString(),
			ClienteNome: cliente.Nome,
			DataSaida:   time.Now().Format("02/01/2006"),
		},
		ClienteID:  cliente.ID,
		Tipo:       req.TipoRemessa,
		Finalizada: req.TipoRemessa == entity.TipoVenda,
	}
	for _, pq := range req.Produtos {
		p := l.produtos[pq.ID]
		p.EstoqueAtual -= pq.Quantidade
		r.Itens = append(r.Itens, entity.ItemRemessa{
			ID:            uuid.NewString(),
			CodigoBarras:  p.CodigoBarras,
			ProdutoNome:   p.Nome,
			Quantidade:    pq.Quantidade,
			PrecoUnitario: p.PrecoVenda,
			Subtotal:      p.PrecoVenda.Mul(decimal.NewFromInt(int64(pq.Quantidade))).Round(2),
		})
	}
	l.remessas[r.ID] = r
	l.ordem = append(l.ordem, r.ID)
	return r.ID, nil
}

// FinalizarAcerto reconcilia uma consignação em aberto. As quantidades do
// pedido são o que o cliente FICOU; a diferença volta ao estoque. Quantidade
// zero marca o item como totalmente devolvido. FECHAR encerra a remessa;
// MANTER a deixa em aberto só com os itens restantes.
func (l *Loja) FinalizarAcerto(req dto.FinalizarAcertoRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.remessas[req.RemessaID]
	if !ok || r.Finalizada {
		return fmt.Errorf("remessa não encontrada ou já finalizada")
	}
	if req.AcaoFinal != entity.AcaoFechar && req.AcaoFinal != entity.AcaoManter {
		return fmt.Errorf("ação final inválida: %q", req.AcaoFinal)
	}
	if req.AcaoFinal == entity.AcaoFechar && req.FormaPagamento == "" {
		return fmt.Errorf("fechar o acerto exige forma de pagamento")
	}

	porItem := make(map[string]int, len(req.Itens))
	for _, iq := range req.Itens {
		porItem[iq.ID] = iq.Quantidade
	}

	// valida antes de mutar
	for i := range r.Itens {
		nova, ok := porItem[r.Itens[i].ID]
		if !ok {
			return fmt.Errorf("item ausente do acerto: %s", r.Itens[i].ProdutoNome)
		}
		if nova < 0 || nova > r.Itens[i].Quantidade {
			return fmt.Errorf("quantidade inválida para %s", r.Itens[i].ProdutoNome)
		}
	}

	restantes := r.Itens[:0]
	for i := range r.Itens {
		it := r.Itens[i]
		nova := porItem[it.ID]
		if devolvidas := it.Quantidade - nova; devolvidas > 0 {
			l.devolverAoEstoque(it.CodigoBarras, devolvidas)
		}
		if nova == 0 {
			continue
		}
		antiga := decimal.NewFromInt(int64(it.Quantidade))
		it.Quantidade = nova
		it.Subtotal = it.Subtotal.Div(antiga).Mul(decimal.NewFromInt(int64(nova))).Round(2)
		restantes = append(restantes, it)
	}
	r.Itens = restantes

	if req.AcaoFinal == entity.AcaoFechar || len(r.Itens) == 0 {
		r.Finalizada = true
	}
	return nil
}

// SalvarEstoque grava as novas quantidades em lote, tudo ou nada.
func (l *Loja) SalvarEstoque(req dto.SalvarEstoqueRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, item := range req.Produtos {
		if _, ok := l.produtos[item.ID]; !ok {
			return fmt.Errorf("produto não encontrado: %s", item.ID)
		}
		if item.NovaQuantidade < 0 {
			return fmt.Errorf("quantidade negativa não é permitida")
		}
	}
	for _, item := range req.Produtos {
		l.produtos[item.ID].EstoqueAtual = item.NovaQuantidade
	}
	return nil
}

// EstoqueDe quantidade atual do produto pelo código de barras (consulta de
// apoio para testes e seed).
func (l *Loja) EstoqueDe(codigo string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.produtos {
		if p.CodigoBarras == codigo {
			return p.EstoqueAtual, true
		}
	}
	return 0, false
}

func (l *Loja) devolverAoEstoque(codigo string, quantidade int) {
	for _, p := range l.produtos {
		if p.CodigoBarras == codigo {
			p.EstoqueAtual += quantidade
			return
		}
	}
}

// normalizar reduz para minúsculas sem marcas diacríticas: "João" → "joao".
func normalizar(s string) string {
	decomposto := norm.NFD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(decomposto))
	for _, r := range decomposto {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
