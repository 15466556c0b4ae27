// Package estoque contém a lista de edição direta de estoque: produtos
// bipados uma única vez, cada um com a nova quantidade a gravar.
package estoque

import (
	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
)

// Item produto em edição: quantidade atual informada pelo back-office e a
// nova quantidade digitada no balcão (zero é permitido).
type Item struct {
	Produto        entity.Produto
	NovaQuantidade int
}

// Ajuste lista de itens em edição, um por produto.
type Ajuste struct {
	itens []Item
	porID map[string]int
}

// NovoAjuste cria uma lista vazia.
func NovoAjuste() *Ajuste {
	return &Ajuste{porID: make(map[string]int)}
}

// Adicionar inclui o produto com a nova quantidade pré-preenchida pelo
// estoque atual. Produto já presente é rejeitado com ErrDuplicado, sem mutação.
func (a *Ajuste) Adicionar(p entity.Produto) error {
	if _, ok := a.porID[p.ID]; ok {
		return domain.ErrDuplicado
	}
	a.itens = append([]Item{{Produto: p, NovaQuantidade: p.EstoqueAtual}}, a.itens...)
	a.reindexar()
	return nil
}

// DefinirNovaQuantidade grava a quantidade digitada; zero é válido,
// negativo não.
func (a *Ajuste) DefinirNovaQuantidade(produtoID string, quantidade int) error {
	idx, ok := a.porID[produtoID]
	if !ok {
		return domain.ErrNaoEncontrado
	}
	if quantidade < 0 {
		return domain.ErrEntradaInvalida
	}
	a.itens[idx].NovaQuantidade = quantidade
	return nil
}

// Remover tira o produto da lista de edição.
func (a *Ajuste) Remover(produtoID string) error {
	idx, ok := a.porID[produtoID]
	if !ok {
		return domain.ErrNaoEncontrado
	}
	a.itens = append(a.itens[:idx], a.itens[idx+1:]...)
	delete(a.porID, produtoID)
	a.reindexar()
	return nil
}

// Itens devolve uma cópia dos itens na ordem de exibição.
func (a *Ajuste) Itens() []Item {
	out := make([]Item, len(a.itens))
	copy(out, a.itens)
	return out
}

// Tamanho número de produtos em edição.
func (a *Ajuste) Tamanho() int { return len(a.itens) }

func (a *Ajuste) reindexar() {
	for i := range a.itens {
		a.porID[a.itens[i].Produto.ID] = i
	}
}
