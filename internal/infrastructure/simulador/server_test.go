package simulador

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	"github.com/elderjoias/balcao-remessas/internal/infrastructure/pdf"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

func appTeste(t *testing.T) (*fiber.App, *Loja) {
	t.Helper()
	loja := NovaLojaSemeada()
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return NewServer(loja, pdf.NovoGeradorRecibo("Elder Joias"), log), loja
}

// tokenCSRF pega o cookie emitido pela raiz.
func tokenCSRF(t *testing.T, app *fiber.App) string {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	for _, ck := range resp.Cookies() {
		if ck.Name == "csrftoken" {
			return ck.Value
		}
	}
	t.Fatal("raiz não emitiu cookie csrftoken")
	return ""
}

func postJSON(t *testing.T, app *fiber.App, token, path string, corpo any) *http.Response {
	t.Helper()
	b, err := json.Marshal(corpo)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: token})
		req.Header.Set("X-CSRFToken", token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func decodificar[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestMutacaoSemTokenCSRF(t *testing.T) {
	app, _ := appTeste(t)

	resp := postJSON(t, app, "", "/salvar_remessa_api/", dto.SalvarRemessaRequest{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	env := decodificar[dto.StatusResponse](t, resp)
	assert.Equal(t, "error", env.Status)
}

func TestBuscarClientesIgnoraAcentos(t *testing.T) {
	app, _ := appTeste(t)

	var out dto.BuscarClientesResponse
	getJSON(t, app, "/buscar_clientes_api/?q=joao", &out)
	require.Len(t, out.Clientes, 1)
	assert.Equal(t, "João Pereira", out.Clientes[0].Nome)

	getJSON(t, app, "/buscar_clientes_api/?q=antonia", &out)
	require.Len(t, out.Clientes, 1)
	assert.Equal(t, "Antônia Ramos", out.Clientes[0].Nome)
}

func TestBuscarProdutoPorCodigo(t *testing.T) {
	app, _ := appTeste(t)

	var out dto.BuscarProdutoResponse
	resp := getJSON(t, app, "/buscar_produto_api/?codigo=789300", &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, out.Produto)
	assert.Equal(t, "Corrente Veneziana 45cm", out.Produto.Nome)
	assert.Equal(t, 8, out.Produto.EstoqueAtual)

	resp = getJSON(t, app, "/buscar_produto_api/?codigo=000000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSalvarRemessaConsignadaBaixaEstoqueEAbreRemessa(t *testing.T) {
	app, loja := appTeste(t)
	token := tokenCSRF(t, app)

	var prod dto.BuscarProdutoResponse
	getJSON(t, app, "/buscar_produto_api/?codigo=789300", &prod)

	var clientes dto.BuscarClientesResponse
	getJSON(t, app, "/buscar_clientes_api/?q=joao", &clientes)

	resp := postJSON(t, app, token, "/salvar_remessa_api/", dto.SalvarRemessaRequest{
		ClienteID:   clientes.Clientes[0].ID,
		TipoRemessa: entity.TipoConsignado,
		Produtos:    []dto.ProdutoQuantidade{{ID: prod.Produto.ID, Quantidade: 3}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodificar[dto.SalvarRemessaResponse](t, resp)
	assert.Equal(t, "success", out.Status)
	assert.NotEmpty(t, out.ID)

	estoque, _ := loja.EstoqueDe("789300")
	assert.Equal(t, 5, estoque)

	var abertas dto.BuscarRemessasResponse
	getJSON(t, app, "/buscar_remessas_api/?q=joao", &abertas)
	require.Len(t, abertas.Remessas, 1)
	assert.Equal(t, out.ID, abertas.Remessas[0].ID)
}

func TestSalvarRemessaVendaExigeFormaENaoFicaAberta(t *testing.T) {
	app, _ := appTeste(t)
	token := tokenCSRF(t, app)

	var prod dto.BuscarProdutoResponse
	getJSON(t, app, "/buscar_produto_api/?codigo=789400", &prod)
	var clientes dto.BuscarClientesResponse
	getJSON(t, app, "/buscar_clientes_api/?q=joao", &clientes)

	venda := dto.SalvarRemessaRequest{
		ClienteID:   clientes.Clientes[0].ID,
		TipoRemessa: entity.TipoVenda,
		Produtos:    []dto.ProdutoQuantidade{{ID: prod.Produto.ID, Quantidade: 1}},
	}
	resp := postJSON(t, app, token, "/salvar_remessa_api/", venda)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "venda sem forma de pagamento deve falhar")
	resp.Body.Close()

	venda.FormaPagamento = "pix"
	resp = postJSON(t, app, token, "/salvar_remessa_api/", venda)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var abertas dto.BuscarRemessasResponse
	getJSON(t, app, "/buscar_remessas_api/?q=joao", &abertas)
	assert.Empty(t, abertas.Remessas, "venda fecha na hora, não aparece para acerto")
}

func TestSalvarRemessaEstoqueInsuficiente(t *testing.T) {
	app, _ := appTeste(t)
	token := tokenCSRF(t, app)

	var prod dto.BuscarProdutoResponse
	getJSON(t, app, "/buscar_produto_api/?codigo=789300", &prod)
	var clientes dto.BuscarClientesResponse
	getJSON(t, app, "/buscar_clientes_api/?q=joao", &clientes)

	resp := postJSON(t, app, token, "/salvar_remessa_api/", dto.SalvarRemessaRequest{
		ClienteID:   clientes.Clientes[0].ID,
		TipoRemessa: entity.TipoConsignado,
		Produtos:    []dto.ProdutoQuantidade{{ID: prod.Produto.ID, Quantidade: 99}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decodificar[dto.SalvarRemessaResponse](t, resp)
	assert.Contains(t, out.Message, "insuficiente")
}

func TestFinalizarAcertoFecharDevolveEstoqueEEncerra(t *testing.T) {
	app, loja := appTeste(t)
	token := tokenCSRF(t, app)

	var abertas dto.BuscarRemessasResponse
	getJSON(t, app, "/buscar_remessas_api/?q=maria", &abertas)
	require.Len(t, abertas.Remessas, 1)
	remessaID := abertas.Remessas[0].ID

	var det dto.DetalhesRemessaResponse
	getJSON(t, app, fmt.Sprintf("/detalhes_remessa_api/%s/", remessaID), &det)
	require.Equal(t, "success", det.Status)
	require.Len(t, det.Dados.Itens, 2)

	// devolve um anel (fica 2) e todos os brincos (fica 0)
	itens := make([]dto.ItemQuantidade, 0, 2)
	for _, it := range det.Dados.Itens {
		switch it.CodigoBarras {
		case "789100":
			itens = append(itens, dto.ItemQuantidade{ID: it.ID, Quantidade: it.Quantidade - 1})
		case "789200":
			itens = append(itens, dto.ItemQuantidade{ID: it.ID, Quantidade: 0})
		}
	}

	resp := postJSON(t, app, token, "/finalizar_acerto_api/", dto.FinalizarAcertoRequest{
		RemessaID:      remessaID,
		Itens:          itens,
		AcaoFinal:      entity.AcaoFechar,
		FormaPagamento: "dinheiro",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodificar[dto.FinalizarAcertoResponse](t, resp)
	assert.Equal(t, "success", out.Status)
	assert.NotEmpty(t, out.PDFBase64, "acerto fechado deve vir com recibo")
	assert.Empty(t, out.PDFError)

	// seed: 12 anéis - 3 consignados + 1 devolvido = 10; brincos 30 - 5 + 5 = 30
	aneis, _ := loja.EstoqueDe("789100")
	assert.Equal(t, 10, aneis)
	brincos, _ := loja.EstoqueDe("789200")
	assert.Equal(t, 30, brincos)

	resp = getJSON(t, app, fmt.Sprintf("/detalhes_remessa_api/%s/", remessaID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "remessa fechada some do acerto")
}

func TestFinalizarAcertoManterPreservaRestante(t *testing.T) {
	app, _ := appTeste(t)
	token := tokenCSRF(t, app)

	var abertas dto.BuscarRemessasResponse
	getJSON(t, app, "/buscar_remessas_api/?q=maria", &abertas)
	remessaID := abertas.Remessas[0].ID

	var det dto.DetalhesRemessaResponse
	getJSON(t, app, fmt.Sprintf("/detalhes_remessa_api/%s/", remessaID), &det)

	itens := make([]dto.ItemQuantidade, 0, 2)
	for _, it := range det.Dados.Itens {
		if it.CodigoBarras == "789200" {
			itens = append(itens, dto.ItemQuantidade{ID: it.ID, Quantidade: 0})
		} else {
			itens = append(itens, dto.ItemQuantidade{ID: it.ID, Quantidade: it.Quantidade})
		}
	}

	resp := postJSON(t, app, token, "/finalizar_acerto_api/", dto.FinalizarAcertoRequest{
		RemessaID: remessaID,
		Itens:     itens,
		AcaoFinal: entity.AcaoManter,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	getJSON(t, app, fmt.Sprintf("/detalhes_remessa_api/%s/", remessaID), &det)
	require.Equal(t, "success", det.Status, "MANTER deixa a remessa em aberto")
	require.Len(t, det.Dados.Itens, 1, "item totalmente devolvido sai do detalhe")
	assert.Equal(t, "789100", det.Dados.Itens[0].CodigoBarras)
}

func TestFinalizarAcertoQuantidadeMaiorQueAConsignada(t *testing.T) {
	app, _ := appTeste(t)
	token := tokenCSRF(t, app)

	var abertas dto.BuscarRemessasResponse
	getJSON(t, app, "/buscar_remessas_api/?q=maria", &abertas)
	remessaID := abertas.Remessas[0].ID

	var det dto.DetalhesRemessaResponse
	getJSON(t, app, fmt.Sprintf("/detalhes_remessa_api/%s/", remessaID), &det)

	itens := make([]dto.ItemQuantidade, 0, 2)
	for _, it := range det.Dados.Itens {
		itens = append(itens, dto.ItemQuantidade{ID: it.ID, Quantidade: it.Quantidade + 1})
	}
	resp := postJSON(t, app, token, "/finalizar_acerto_api/", dto.FinalizarAcertoRequest{
		RemessaID: remessaID,
		Itens:     itens,
		AcaoFinal: entity.AcaoManter,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSalvarEstoqueAtualizaQuantidades(t *testing.T) {
	app, loja := appTeste(t)
	token := tokenCSRF(t, app)

	var prod dto.BuscarProdutoResponse
	getJSON(t, app, "/buscar_produto_api/?codigo=789400", &prod)

	resp := postJSON(t, app, token, "/produtos/salvar/estoque/", dto.SalvarEstoqueRequest{
		Produtos: []dto.AjusteEstoqueItem{{ID: prod.Produto.ID, NovaQuantidade: 0}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodificar[dto.StatusResponse](t, resp)
	assert.Equal(t, "success", out.Status)

	estoque, ok := loja.EstoqueDe("789400")
	require.True(t, ok)
	assert.Equal(t, 0, estoque)
}

func TestGerarReciboDevolveBase64(t *testing.T) {
	app, _ := appTeste(t)
	token := tokenCSRF(t, app)

	resp := postJSON(t, app, token, "/gerar_recibo_pdf/", dto.GerarReciboRequest{
		NomeCliente: "Maria Souza",
		TotalItens:  "2",
		ValorTotal:  "R$ 10.00",
		RemessaID:   "rem-1",
		TipoRemessa: entity.TipoConsignado,
		Produtos: []dto.ReciboProduto{
			{Nome: "Anel Solitário", Quantidade: 2, PrecoUnitario: "5.00", Subtotal: "10.00"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodificar[dto.GerarReciboResponse](t, resp)
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.PDFBase64)
	assert.Equal(t, "recibo_remessa_rem-1.pdf", out.NomeArquivo)
}
