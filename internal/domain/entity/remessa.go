package entity

import "github.com/shopspring/decimal"

// Status possíveis de uma remessa no back-office.
const (
	RemessaAberta     = "ABERTO"
	RemessaFinalizada = "FINALIZADO"
)

// Tipos de remessa registrados na saída.
const (
	TipoVenda      = "VENDA"
	TipoConsignado = "CONSIGNADO"
)

// Ações finais do acerto de contas.
const (
	AcaoFechar = "FECHAR" // encerra a remessa e registra a venda
	AcaoManter = "MANTER" // mantém em aberto com nova data de saída
)

// Remessa é um lote de peças consignadas a um cliente, a ser acertado depois.
// Identificadores são strings opacas fornecidas pelo back-office.
type Remessa struct {
	ID          string
	ClienteNome string
	DataSaida   string // rótulo já formatado pelo back-office (dd/mm/aaaa)
	Itens       []ItemRemessa
}

// ItemRemessa é uma linha da remessa em conferência no acerto de contas.
// Subtotal é mantido como campo numérico de primeira classe e arredondado a
// 2 casas a cada mutação; nunca é re-derivado de texto formatado.
// Devolvido == true significa que a linha não conta nos totais, mas permanece
// no razão para o envio final (quantidade 0 informa a devolução total).
type ItemRemessa struct {
	ID            string
	CodigoBarras  string
	ProdutoNome   string
	Quantidade    int
	PrecoUnitario decimal.Decimal
	Subtotal      decimal.Decimal
	Devolvido     bool
}

// Totais agregados derivados do razão; nunca armazenados.
type Totais struct {
	Itens int
	Valor decimal.Decimal
}
