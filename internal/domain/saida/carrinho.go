// Package saida contém a lógica pura do registro de saída: a lista de
// produtos bipados para venda ou consignação, com incremento por rebipagem,
// remoção direta e totais derivados.
package saida

import (
	"github.com/shopspring/decimal"

	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
)

// Linha é um produto na lista de saída. Ao contrário do acerto, aqui não há
// marcação de devolução: remover apaga a linha de vez, e quantidade nunca
// fica abaixo de 1 enquanto a linha existe.
type Linha struct {
	Produto    entity.Produto
	Quantidade int
}

// Subtotal quantidade × preço de venda, arredondado a 2 casas.
func (ln Linha) Subtotal() decimal.Decimal {
	return ln.Produto.PrecoVenda.
		Mul(decimal.NewFromInt(int64(ln.Quantidade))).
		Round(2)
}

// Carrinho lista ordenada de linhas, indexada por id de produto.
// Linhas novas entram no topo da ordem de exibição, como no balcão.
type Carrinho struct {
	linhas []Linha
	porID  map[string]int
}

// NovoCarrinho cria um carrinho vazio.
func NovoCarrinho() *Carrinho {
	return &Carrinho{porID: make(map[string]int)}
}

// Adicionar insere o produto com quantidade 1 ou, se já presente, incrementa
// a quantidade existente; rebipar nunca duplica a linha.
func (c *Carrinho) Adicionar(p entity.Produto) Linha {
	if idx, ok := c.porID[p.ID]; ok {
		c.linhas[idx].Quantidade++
		return c.linhas[idx]
	}
	ln := Linha{Produto: p, Quantidade: 1}
	c.linhas = append([]Linha{ln}, c.linhas...)
	c.reindexar()
	return ln
}

// DefinirQuantidade ajusta a quantidade de uma linha existente.
// Quantidade mínima é 1; para tirar o produto da lista use Remover.
func (c *Carrinho) DefinirQuantidade(produtoID string, quantidade int) error {
	idx, ok := c.porID[produtoID]
	if !ok {
		return domain.ErrNaoEncontrado
	}
	if quantidade < 1 {
		return domain.ErrEntradaInvalida
	}
	c.linhas[idx].Quantidade = quantidade
	return nil
}

// Remover apaga a linha inteira, qualquer que seja a quantidade.
// Uma nova bipagem do mesmo produto recomeça do zero.
func (c *Carrinho) Remover(produtoID string) error {
	idx, ok := c.porID[produtoID]
	if !ok {
		return domain.ErrNaoEncontrado
	}
	c.linhas = append(c.linhas[:idx], c.linhas[idx+1:]...)
	delete(c.porID, produtoID)
	c.reindexar()
	return nil
}

// Totais soma quantidades e subtotais (já arredondados por linha).
func (c *Carrinho) Totais() entity.Totais {
	t := entity.Totais{Valor: decimal.Zero}
	for i := range c.linhas {
		t.Itens += c.linhas[i].Quantidade
		t.Valor = t.Valor.Add(c.linhas[i].Subtotal())
	}
	return t
}

// Linhas devolve uma cópia das linhas na ordem de exibição.
func (c *Carrinho) Linhas() []Linha {
	out := make([]Linha, len(c.linhas))
	copy(out, c.linhas)
	return out
}

// Tamanho número de linhas presentes.
func (c *Carrinho) Tamanho() int { return len(c.linhas) }

func (c *Carrinho) reindexar() {
	for i := range c.linhas {
		c.porID[c.linhas[i].Produto.ID] = i
	}
}
