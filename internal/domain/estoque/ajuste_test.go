package estoque_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	"github.com/elderjoias/balcao-remessas/internal/domain/estoque"
)

// TestAdicionar_DuplicadoRejeitado o mesmo produto só entra uma vez na lista
// de edição; a segunda bipagem avisa e não muta nada.
func TestAdicionar_DuplicadoRejeitado(t *testing.T) {
	a := estoque.NovoAjuste()
	p := entity.Produto{ID: "1", Nome: "Anel folheado", EstoqueAtual: 7}

	require.NoError(t, a.Adicionar(p))
	require.NoError(t, a.DefinirNovaQuantidade("1", 3))

	assert.ErrorIs(t, a.Adicionar(p), domain.ErrDuplicado)
	require.Equal(t, 1, a.Tamanho())
	assert.Equal(t, 3, a.Itens()[0].NovaQuantidade, "rejeição não sobrescreve a edição em curso")
}

// TestDefinirNovaQuantidade zero é aceito (zerar estoque); negativo não.
func TestDefinirNovaQuantidade(t *testing.T) {
	a := estoque.NovoAjuste()
	require.NoError(t, a.Adicionar(entity.Produto{ID: "1", Nome: "Anel", EstoqueAtual: 5}))

	assert.Equal(t, 5, a.Itens()[0].NovaQuantidade, "nova quantidade nasce igual ao estoque atual")

	require.NoError(t, a.DefinirNovaQuantidade("1", 0))
	assert.Equal(t, 0, a.Itens()[0].NovaQuantidade)

	assert.ErrorIs(t, a.DefinirNovaQuantidade("1", -1), domain.ErrEntradaInvalida)
	assert.ErrorIs(t, a.DefinirNovaQuantidade("9", 2), domain.ErrNaoEncontrado)
}

// TestRemover tira o produto e permite bipá-lo de novo em seguida.
func TestRemover(t *testing.T) {
	a := estoque.NovoAjuste()
	p := entity.Produto{ID: "1", Nome: "Anel", EstoqueAtual: 5}

	require.NoError(t, a.Adicionar(p))
	require.NoError(t, a.Remover("1"))
	assert.Equal(t, 0, a.Tamanho())

	require.NoError(t, a.Adicionar(p))
	assert.Equal(t, 1, a.Tamanho())
}
