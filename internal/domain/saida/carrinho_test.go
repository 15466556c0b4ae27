package saida_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	"github.com/elderjoias/balcao-remessas/internal/domain/saida"
)

func produto(id, nome, preco string) entity.Produto {
	return entity.Produto{ID: id, Nome: nome, PrecoVenda: decimal.RequireFromString(preco)}
}

// TestAdicionar_RebiparIncrementa bipar o mesmo produto duas vezes resulta em
// uma única linha com quantidade 2, nunca em linhas duplicadas.
func TestAdicionar_RebiparIncrementa(t *testing.T) {
	c := saida.NovoCarrinho()

	c.Adicionar(produto("a", "Anel folheado", "5.00"))
	ln := c.Adicionar(produto("a", "Anel folheado", "5.00"))

	require.Equal(t, 1, c.Tamanho())
	assert.Equal(t, 2, ln.Quantidade)
	assert.Equal(t, "10.00", ln.Subtotal().StringFixed(2))

	totais := c.Totais()
	assert.Equal(t, 2, totais.Itens)
	assert.Equal(t, "10.00", totais.Valor.StringFixed(2))
}

// TestAdicionar_NovoEntraNoTopo a linha mais recente aparece primeiro.
func TestAdicionar_NovoEntraNoTopo(t *testing.T) {
	c := saida.NovoCarrinho()
	c.Adicionar(produto("a", "Anel", "5.00"))
	c.Adicionar(produto("b", "Brinco", "7.50"))

	linhas := c.Linhas()
	require.Len(t, linhas, 2)
	assert.Equal(t, "b", linhas[0].Produto.ID)
	assert.Equal(t, "a", linhas[1].Produto.ID)
}

// TestRemover_ApagaDeVez remover elimina a linha inteira; rebipar em seguida
// recomeça com quantidade 1 (sem estado herdado).
func TestRemover_ApagaDeVez(t *testing.T) {
	c := saida.NovoCarrinho()
	c.Adicionar(produto("a", "Anel", "5.00"))
	c.Adicionar(produto("a", "Anel", "5.00"))
	c.Adicionar(produto("b", "Brinco", "7.50"))

	require.NoError(t, c.Remover("a"))
	assert.Equal(t, 1, c.Tamanho())

	ln := c.Adicionar(produto("a", "Anel", "5.00"))
	assert.Equal(t, 1, ln.Quantidade, "linha recriada não herda quantidade anterior")

	assert.ErrorIs(t, c.Remover("x"), domain.ErrNaoEncontrado)
}

// TestDefinirQuantidade respeita o mínimo de 1 enquanto a linha existir.
func TestDefinirQuantidade(t *testing.T) {
	c := saida.NovoCarrinho()
	c.Adicionar(produto("a", "Anel", "3.333"))

	require.NoError(t, c.DefinirQuantidade("a", 3))
	totais := c.Totais()
	assert.Equal(t, 3, totais.Itens)
	// 3 × 3.333 = 9.999 -> 10.00 na linha
	assert.Equal(t, "10.00", totais.Valor.StringFixed(2))

	assert.ErrorIs(t, c.DefinirQuantidade("a", 0), domain.ErrEntradaInvalida)
	assert.ErrorIs(t, c.DefinirQuantidade("z", 2), domain.ErrNaoEncontrado)
}
