// Package dto define os tipos de fio trocados com a API do back-office.
// Os nomes de campo JSON seguem o contrato existente; identificadores são
// strings opacas e valores monetários trafegam como decimal.
package dto

import "github.com/shopspring/decimal"

// RemessaResumo linha do resultado da busca de remessas em aberto.
type RemessaResumo struct {
	ID          string `json:"id"`
	ClienteNome string `json:"cliente_nome"`
	DataSaida   string `json:"data_saida"`
}

// BuscarRemessasResponse corpo de GET /buscar_remessas_api/?q=.
type BuscarRemessasResponse struct {
	Remessas []RemessaResumo `json:"remessas"`
}

// ItemRemessaDTO item consignado dentro do detalhe da remessa.
type ItemRemessaDTO struct {
	ID            string          `json:"id"`
	CodigoBarras  string          `json:"codigo_barras"`
	ProdutoNome   string          `json:"produto_nome"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
}

// RemessaDetalhe campo "dados" do detalhe da remessa.
type RemessaDetalhe struct {
	ClienteNome string           `json:"cliente_nome"`
	DataSaida   string           `json:"data_saida"`
	Itens       []ItemRemessaDTO `json:"itens"`
}

// DetalhesRemessaResponse corpo de GET /detalhes_remessa_api/{id}/.
type DetalhesRemessaResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Dados   *RemessaDetalhe `json:"dados,omitempty"`
}

// ItemQuantidade par id/quantidade final de um item no acerto.
// Itens totalmente devolvidos vão com quantidade 0: é assim que o servidor
// distingue "devolveu tudo" de um item nunca enviado.
type ItemQuantidade struct {
	ID         string `json:"id"`
	Quantidade int    `json:"quantidade"`
}

// FinalizarAcertoRequest corpo de POST /finalizar_acerto_api/.
// FormaPagamento só acompanha a ação FECHAR; nas demais o campo é omitido
// por inteiro (omitempty), nunca enviado como null.
type FinalizarAcertoRequest struct {
	RemessaID      string           `json:"remessa_id"`
	Itens          []ItemQuantidade `json:"itens"`
	AcaoFinal      string           `json:"acao_final"`
	FormaPagamento string           `json:"forma_pagamento,omitempty"`
}

// FinalizarAcertoResponse resposta do acerto. A operação pode ter sucesso com
// falha só na geração do recibo: status "success" + pdf_error preenchido.
type FinalizarAcertoResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	PDFBase64   string `json:"pdf_base64,omitempty"`
	NomeArquivo string `json:"nome_arquivo,omitempty"`
	PDFError    string `json:"pdf_error,omitempty"`
}
