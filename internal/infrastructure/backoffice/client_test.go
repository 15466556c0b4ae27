package backoffice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

func logTeste() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func novoClienteTeste(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second, logTeste())
	require.NoError(t, err)
	return c, srv
}

func escreverJSON(t *testing.T, w http.ResponseWriter, status int, corpo any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(corpo))
}

func TestObterCSRFCapturaCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	c, _ := novoClienteTeste(t, mux)

	require.NoError(t, c.ObterCSRF(context.Background()))
	assert.Equal(t, "tok-123", c.tokenCSRF())
}

func TestObterCSRFServidorSemCookie(t *testing.T) {
	c, _ := novoClienteTeste(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	err := c.ObterCSRF(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csrftoken")
}

func TestPostReenviaTokenNoHeader(t *testing.T) {
	var headerRecebido string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/salvar_remessa_api/", func(w http.ResponseWriter, r *http.Request) {
		headerRecebido = r.Header.Get("X-CSRFToken")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		escreverJSON(t, w, http.StatusOK, dto.SalvarRemessaResponse{Status: "success", ID: "rem-1"})
	})
	c, _ := novoClienteTeste(t, mux)
	require.NoError(t, c.ObterCSRF(context.Background()))

	resp, err := c.SalvarRemessa(context.Background(), dto.SalvarRemessaRequest{
		ClienteID:   "cli-1",
		TipoRemessa: "CONSIGNADO",
		Produtos:    []dto.ProdutoQuantidade{{ID: "p1", Quantidade: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "rem-1", resp.ID)
	assert.Equal(t, "tok-123", headerRecebido, "mutação deve reenviar o cookie no header")
}

func TestBuscarRemessasDecodificaLista(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/buscar_remessas_api/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "maria", r.URL.Query().Get("q"))
		escreverJSON(t, w, http.StatusOK, dto.BuscarRemessasResponse{Remessas: []dto.RemessaResumo{
			{ID: "rem-1", ClienteNome: "Maria Souza", DataSaida: "10/08/2026"},
		}})
	})
	c, _ := novoClienteTeste(t, mux)

	remessas, err := c.BuscarRemessas(context.Background(), "maria")
	require.NoError(t, err)
	require.Len(t, remessas, 1)
	assert.Equal(t, "Maria Souza", remessas[0].ClienteNome)
}

func TestBuscarProdutoInexistente(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/buscar_produto_api/", func(w http.ResponseWriter, r *http.Request) {
		escreverJSON(t, w, http.StatusOK, dto.BuscarProdutoResponse{
			Status:  "error",
			Message: "Produto não encontrado",
		})
	})
	c, _ := novoClienteTeste(t, mux)

	_, err := c.BuscarProduto(context.Background(), "000000")
	require.ErrorIs(t, err, domain.ErrNaoEncontrado)
	assert.Contains(t, err.Error(), "Produto não encontrado")
}

func TestBuscarProdutoDecodificaDecimal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/buscar_produto_api/", func(w http.ResponseWriter, r *http.Request) {
		escreverJSON(t, w, http.StatusOK, dto.BuscarProdutoResponse{
			Status: "success",
			Produto: &dto.ProdutoDTO{
				ID:           "p1",
				Nome:         "Anel Solitário",
				PrecoVenda:   decimal.RequireFromString("33.34"),
				EstoqueAtual: 5,
			},
		})
	})
	c, _ := novoClienteTeste(t, mux)

	p, err := c.BuscarProduto(context.Background(), "789100")
	require.NoError(t, err)
	assert.True(t, p.PrecoVenda.Equal(decimal.RequireFromString("33.34")))
}

func TestDetalhesRemessa404(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/detalhes_remessa_api/rem-9/", func(w http.ResponseWriter, r *http.Request) {
		escreverJSON(t, w, http.StatusNotFound, dto.StatusResponse{
			Status:  "error",
			Message: "Remessa não encontrada ou já finalizada",
		})
	})
	c, _ := novoClienteTeste(t, mux)

	_, err := c.DetalhesRemessa(context.Background(), "rem-9")
	require.ErrorIs(t, err, domain.ErrNaoEncontrado)
	assert.Contains(t, err.Error(), "já finalizada")
}

func TestErroSemEnvelopeLegivel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/buscar_clientes_api/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>erro interno</html>"))
	})
	c, _ := novoClienteTeste(t, mux)

	_, err := c.BuscarClientes(context.Background(), "maria")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGerarReciboFalhaDoGerador(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gerar_recibo_pdf/", func(w http.ResponseWriter, r *http.Request) {
		escreverJSON(t, w, http.StatusOK, dto.GerarReciboResponse{
			Success: false,
			Error:   "fonte do cabeçalho ausente",
		})
	})
	c, _ := novoClienteTeste(t, mux)

	_, err := c.GerarRecibo(context.Background(), dto.GerarReciboRequest{NomeCliente: "Maria Souza"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fonte do cabeçalho ausente")
}

func TestSalvarEstoqueDevolveEnvelope(t *testing.T) {
	var recebido dto.SalvarEstoqueRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
	})
	mux.HandleFunc("/produtos/salvar/estoque/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recebido))
		escreverJSON(t, w, http.StatusOK, dto.StatusResponse{Status: "success", Message: "Estoque atualizado"})
	})
	c, _ := novoClienteTeste(t, mux)
	require.NoError(t, c.ObterCSRF(context.Background()))

	resp, err := c.SalvarEstoque(context.Background(), dto.SalvarEstoqueRequest{
		Produtos: []dto.AjusteEstoqueItem{{ID: "p1", NovaQuantidade: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	require.Len(t, recebido.Produtos, 1)
	assert.Equal(t, 0, recebido.Produtos[0].NovaQuantidade)
}
