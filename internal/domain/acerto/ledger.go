// Package acerto contém a lógica pura do acerto de contas: o razão de itens
// da remessa em conferência, com devolução unidade a unidade, marcação de
// linha totalmente devolvida e totais derivados.
package acerto

import (
	"github.com/shopspring/decimal"

	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
)

// Ledger é o razão de uma remessa em conferência. Uma linha nunca é removida:
// ao chegar a zero ela é marcada como devolvida e sai dos totais, mas continua
// presente para que o envio final distinga "nunca teve" de "devolveu tudo".
//
// Mutação exclusiva pela sessão dona; sem sincronização interna.
type Ledger struct {
	linhas    []entity.ItemRemessa
	porCodigo map[string]int // código de barras -> índice em linhas
}

// Semear substitui o razão inteiro pelos itens carregados do back-office.
// O subtotal de cada linha nasce como quantidade × preço unitário,
// arredondado a 2 casas.
func Semear(itens []entity.ItemRemessa) *Ledger {
	l := &Ledger{
		linhas:    make([]entity.ItemRemessa, len(itens)),
		porCodigo: make(map[string]int, len(itens)),
	}
	for i, item := range itens {
		item.Subtotal = item.PrecoUnitario.
			Mul(decimal.NewFromInt(int64(item.Quantidade))).
			Round(2)
		l.linhas[i] = item
		l.porCodigo[item.CodigoBarras] = i
	}
	return l
}

// DevolverUnidade processa a bipagem de um código de barras devolvido.
//
// Código ausente do razão devolve ErrNaoEncontrado; linha já marcada como
// devolvida devolve ErrJaDevolvido; em ambos os casos nada é mutado.
// Com quantidade > 1, decrementa uma unidade e recalcula o subtotal como
// (subtotal antigo / quantidade antiga) × quantidade nova, arredondado a
// 2 casas. Com quantidade == 1, marca a linha como devolvida.
//
// Devolve a linha resultante e um indicador de devolução total.
func (l *Ledger) DevolverUnidade(codigoBarras string) (entity.ItemRemessa, bool, error) {
	idx, ok := l.porCodigo[codigoBarras]
	if !ok {
		return entity.ItemRemessa{}, false, domain.ErrNaoEncontrado
	}
	linha := &l.linhas[idx]
	if linha.Devolvido {
		return *linha, false, domain.ErrJaDevolvido
	}

	if linha.Quantidade > 1 {
		antiga := decimal.NewFromInt(int64(linha.Quantidade))
		linha.Quantidade--
		nova := decimal.NewFromInt(int64(linha.Quantidade))
		linha.Subtotal = linha.Subtotal.Div(antiga).Mul(nova).Round(2)
		return *linha, false, nil
	}

	linha.Devolvido = true
	return *linha, true, nil
}

// Totais soma quantidade e subtotal das linhas não devolvidas.
// O valor total é a soma dos subtotais já arredondados por linha, não o
// arredondamento da soma exata, para bater centavo a centavo com o recibo
// impresso.
func (l *Ledger) Totais() entity.Totais {
	t := entity.Totais{Valor: decimal.Zero}
	for i := range l.linhas {
		if l.linhas[i].Devolvido {
			continue
		}
		t.Itens += l.linhas[i].Quantidade
		t.Valor = t.Valor.Add(l.linhas[i].Subtotal)
	}
	return t
}

// Linhas devolve uma cópia de todas as linhas, na ordem de carga,
// incluindo as devolvidas.
func (l *Ledger) Linhas() []entity.ItemRemessa {
	out := make([]entity.ItemRemessa, len(l.linhas))
	copy(out, l.linhas)
	return out
}
