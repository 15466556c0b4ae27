// Package pdf implementa a geração local do recibo de balcão com Maroto v2.
//
// O recibo normal vem do back-office em base64; este gerador cobre duas
// situações: o simulador (que precisa emitir o mesmo artefato) e o fallback
// do balcão quando o servidor confirma a operação mas falha na geração
// (pdf_error). Nos dois casos o caixa sai com um recibo imprimível.
//
// Layout A4:
//
//	┌──────────────────────────────────────────────────────┐
//	│  ELDER JOIAS          │  RECIBO DE REMESSA + Situação │
//	│  ──────────────────────────────────────────────────  │
//	│  Cliente + Data da nota                               │
//	│  ──────────────────────────────────────────────────  │
//	│  TABELA: Qtd | Produto | Preço Unit. | Subtotal       │
//	│  ──────────────────────────────────────────────────  │
//	│  TOTAIS: peças / valor total / forma de pagamento     │
//	└──────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
)

// ── Paleta ────────────────────────────────────────────────────────────────────

var (
	corPrimaria = &props.Color{Red: 120, Green: 84, Blue: 32}
	corCinza    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Gerador ───────────────────────────────────────────────────────────────────

// GeradorRecibo gera o recibo de remessa/acerto em PDF usando Maroto v2.
type GeradorRecibo struct {
	nomeLoja string
}

// NovoGeradorRecibo constrói o gerador com o nome da loja no cabeçalho.
func NovoGeradorRecibo(nomeLoja string) *GeradorRecibo {
	if nomeLoja == "" {
		nomeLoja = "Elder Joias"
	}
	return &GeradorRecibo{nomeLoja: nomeLoja}
}

// Gerar monta o PDF e devolve seus bytes. dataNota é o rótulo de data já
// formatado (dd/mm/aaaa) da remessa.
func (g *GeradorRecibo) Gerar(_ context.Context, recibo dto.GerarReciboRequest, dataNota string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo de Remessa", true).
		WithAuthor(g.nomeLoja, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.cabecalhoRow(recibo))
	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.5}))
	m.AddRows(clienteRow(recibo.NomeCliente, dataNota, recibo.RemessaID))
	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.3}))

	m.AddRows(tabelaCabecalhoRow())
	for _, r := range tabelaProdutoRows(recibo.Produtos) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.3}))
	m.AddRows(totaisRow(recibo))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// cabecalhoRow: nome da loja (esq) e título + situação da remessa (dir).
func (g *GeradorRecibo) cabecalhoRow(recibo dto.GerarReciboRequest) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.nomeLoja, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: corPrimaria, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New("RECIBO DE REMESSA", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: corPrimaria, Top: 2,
			}),
			text.New("Situação: "+recibo.TipoRemessa, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: corCinza,
			}),
		),
	)
}

// clienteRow: cliente, data da nota e número da remessa.
func clienteRow(nomeCliente, dataNota, remessaID string) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Cliente: "+nomeCliente, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 1,
			}),
			text.New(fmt.Sprintf("Data da nota: %s   |   Remessa nº %s", dataNota, remessaID),
				props.Text{Size: 8, Top: 7, Color: corCinza}),
		),
	)
}

// tabelaCabecalhoRow: cabeçalho da tabela de produtos.
func tabelaCabecalhoRow() core.Row {
	h := func(rotulo string, tamanho int, a align.Type) core.Col {
		return col.New(tamanho).Add(text.New(rotulo, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: corPrimaria, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtd.", 1, align.Center),
		h("Produto", 6, align.Left),
		h("Preço Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tabelaProdutoRows: uma linha por produto do recibo.
func tabelaProdutoRows(produtos []dto.ReciboProduto) []core.Row {
	result := make([]core.Row, 0, len(produtos))
	for _, p := range produtos {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", p.Quantidade),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				p.Nome,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+p.PrecoUnitario,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"R$ "+p.Subtotal,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totaisRow: bloco de totais e forma de pagamento.
func totaisRow(recibo dto.GerarReciboRequest) core.Row {
	pagamento := recibo.FormaPagamento
	if pagamento == "" {
		pagamento = "-"
	}
	return row.New(14).Add(
		col.New(7).Add(
			text.New("Forma de pagamento: "+pagamento, props.Text{
				Size: 8, Top: 4, Color: corCinza,
			}),
		),
		col.New(5).Add(
			text.New("Total de peças: "+recibo.TotalItens, props.Text{
				Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Valor total: "+recibo.ValorTotal, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
				Color: corPrimaria,
			}),
		),
	)
}
