package dto

// ClienteDTO linha do resultado da busca de clientes.
type ClienteDTO struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
	Doc  string `json:"doc"`
}

// BuscarClientesResponse corpo de GET /buscar_clientes_api/?q=.
type BuscarClientesResponse struct {
	Clientes []ClienteDTO `json:"clientes"`
}

// ProdutoQuantidade par id/quantidade de um produto na saída.
type ProdutoQuantidade struct {
	ID         string `json:"id"`
	Quantidade int    `json:"quantidade"`
}

// SalvarRemessaRequest corpo de POST /salvar_remessa_api/.
// FormaPagamento só acompanha o tipo VENDA; nos demais o campo é omitido.
type SalvarRemessaRequest struct {
	ClienteID      string              `json:"cliente_id"`
	TipoRemessa    string              `json:"tipo_remessa"`
	Produtos       []ProdutoQuantidade `json:"produtos"`
	FormaPagamento string              `json:"forma_pagamento,omitempty"`
}

// SalvarRemessaResponse resposta do registro de saída.
type SalvarRemessaResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ReciboProduto linha de produto no pedido de recibo. Os valores monetários
// vão já formatados com 2 casas, como o contrato do gerador espera.
type ReciboProduto struct {
	Nome          string `json:"nome"`
	Quantidade    int    `json:"quantidade"`
	PrecoUnitario string `json:"preco_unitario"`
	Subtotal      string `json:"subtotal"`
}

// GerarReciboRequest corpo de POST /gerar_recibo_pdf/. As chaves mistas
// (snake_case e camelCase) reproduzem o contrato existente do gerador.
type GerarReciboRequest struct {
	Produtos       []ReciboProduto `json:"produtos"`
	NomeCliente    string          `json:"nome_cliente"`
	TotalItens     string          `json:"total_itens"`
	ValorTotal     string          `json:"valor_total"`
	RemessaID      string          `json:"remessaID"`
	TipoRemessa    string          `json:"tipoRemessa"`
	FormaPagamento string          `json:"forma_pagamento,omitempty"`
}

// GerarReciboResponse resposta do gerador de recibo.
type GerarReciboResponse struct {
	Success     bool   `json:"success"`
	PDFBase64   string `json:"pdf_base64,omitempty"`
	NomeArquivo string `json:"nome_arquivo,omitempty"`
	Error       string `json:"error,omitempty"`
}
