// Package backoffice implementa o cliente HTTP da API do back-office.
// A API é um colaborador opaco: este pacote só conhece os contratos de
// requisição/resposta e a exigência de token CSRF nas mutações.
package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

// Rotas da API (relativas à base).
const (
	rotaBuscarRemessas  = "/buscar_remessas_api/"
	rotaDetalhesRemessa = "/detalhes_remessa_api/%s/"
	rotaFinalizarAcerto = "/finalizar_acerto_api/"
	rotaBuscarClientes  = "/buscar_clientes_api/"
	rotaBuscarProduto   = "/buscar_produto_api/"
	rotaSalvarRemessa   = "/salvar_remessa_api/"
	rotaGerarRecibo     = "/gerar_recibo_pdf/"
	rotaSalvarEstoque   = "/produtos/salvar/estoque/"

	cookieCSRF = "csrftoken"
	headerCSRF = "X-CSRFToken"
)

// Client cliente HTTP do back-office. O cookie jar retém o csrftoken emitido
// pelo servidor; toda mutação o reenvia no header X-CSRFToken.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New constrói o cliente. timeout cobre cada requisição individual.
func New(baseURL string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("backoffice: cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		log: log,
	}, nil
}

// ObterCSRF faz um GET na raiz para que o servidor emita o cookie csrftoken.
// Chamar uma vez no início da sessão; as mutações falham sem o token.
func (c *Client) ObterCSRF(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("backoffice: criar requisição CSRF: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backoffice: obter CSRF: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if c.tokenCSRF() == "" {
		return fmt.Errorf("backoffice: servidor não emitiu cookie %s", cookieCSRF)
	}
	return nil
}

// tokenCSRF lê o csrftoken atual do jar (vazio se ainda não emitido).
func (c *Client) tokenCSRF() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == cookieCSRF {
			return ck.Value
		}
	}
	return ""
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// BuscarRemessas busca remessas em aberto pelo nome do cliente.
func (c *Client) BuscarRemessas(ctx context.Context, consulta string) ([]dto.RemessaResumo, error) {
	var out dto.BuscarRemessasResponse
	if err := c.getJSON(ctx, rotaBuscarRemessas, url.Values{"q": {consulta}}, &out); err != nil {
		return nil, err
	}
	return out.Remessas, nil
}

// DetalhesRemessa carrega o detalhe completo de uma remessa em aberto.
func (c *Client) DetalhesRemessa(ctx context.Context, remessaID string) (*dto.RemessaDetalhe, error) {
	var out dto.DetalhesRemessaResponse
	path := fmt.Sprintf(rotaDetalhesRemessa, url.PathEscape(remessaID))
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" || out.Dados == nil {
		return nil, fmt.Errorf("backoffice: %s: %w", out.Message, domain.ErrNaoEncontrado)
	}
	return out.Dados, nil
}

// BuscarClientes busca clientes por nome ou documento.
func (c *Client) BuscarClientes(ctx context.Context, consulta string) ([]dto.ClienteDTO, error) {
	var out dto.BuscarClientesResponse
	if err := c.getJSON(ctx, rotaBuscarClientes, url.Values{"q": {consulta}}, &out); err != nil {
		return nil, err
	}
	return out.Clientes, nil
}

// BuscarProduto localiza um produto pelo código de barras.
// Código inexistente devolve erro que embrulha domain.ErrNaoEncontrado.
func (c *Client) BuscarProduto(ctx context.Context, codigo string) (*dto.ProdutoDTO, error) {
	var out dto.BuscarProdutoResponse
	err := c.getJSON(ctx, rotaBuscarProduto, url.Values{"codigo": {codigo}}, &out)
	if err != nil {
		return nil, err
	}
	if out.Status != "success" || out.Produto == nil {
		return nil, fmt.Errorf("backoffice: %s: %w", out.Message, domain.ErrNaoEncontrado)
	}
	return out.Produto, nil
}

// ── Mutações ──────────────────────────────────────────────────────────────────

// FinalizarAcerto envia o acerto de contas reconciliado.
func (c *Client) FinalizarAcerto(ctx context.Context, req dto.FinalizarAcertoRequest) (*dto.FinalizarAcertoResponse, error) {
	var out dto.FinalizarAcertoResponse
	if err := c.postJSON(ctx, rotaFinalizarAcerto, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SalvarRemessa registra a saída (venda ou consignação).
func (c *Client) SalvarRemessa(ctx context.Context, req dto.SalvarRemessaRequest) (*dto.SalvarRemessaResponse, error) {
	var out dto.SalvarRemessaResponse
	if err := c.postJSON(ctx, rotaSalvarRemessa, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GerarRecibo pede ao back-office o PDF de recibo da saída recém-gravada.
func (c *Client) GerarRecibo(ctx context.Context, req dto.GerarReciboRequest) (*dto.GerarReciboResponse, error) {
	var out dto.GerarReciboResponse
	if err := c.postJSON(ctx, rotaGerarRecibo, req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		motivo := out.Error
		if motivo == "" {
			motivo = "não foi possível gerar o PDF"
		}
		return nil, fmt.Errorf("backoffice: gerar recibo: %s", motivo)
	}
	return &out, nil
}

// SalvarEstoque grava as novas quantidades da edição direta de estoque.
func (c *Client) SalvarEstoque(ctx context.Context, req dto.SalvarEstoqueRequest) (*dto.StatusResponse, error) {
	var out dto.StatusResponse
	if err := c.postJSON(ctx, rotaSalvarEstoque, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("backoffice: criar requisição: %w", err)
	}
	return c.executar(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("backoffice: serializar requisição: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backoffice: criar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerCSRF, c.tokenCSRF())
	return c.executar(req, out)
}

// executar dispara a requisição e decodifica o envelope JSON. Em status
// não-2xx tenta extrair {status, message} do corpo; sem mensagem legível,
// devolve um erro genérico com o código HTTP.
func (c *Client) executar(req *http.Request, out any) error {
	inicio := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backoffice: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	corpo, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backoffice: ler resposta: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(inicio)).
		Msg("requisição ao back-office")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env dto.StatusResponse
		if json.Unmarshal(corpo, &env) == nil && env.Message != "" {
			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("backoffice: %s: %w", env.Message, domain.ErrNaoEncontrado)
			}
			return fmt.Errorf("backoffice: %s", env.Message)
		}
		return fmt.Errorf("backoffice: %s %s: HTTP %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(corpo, out); err != nil {
		return fmt.Errorf("backoffice: decodificar resposta: %w", err)
	}
	return nil
}
