package simulador

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elderjoias/balcao-remessas/internal/application/dto"
	"github.com/elderjoias/balcao-remessas/internal/domain/entity"
	"github.com/elderjoias/balcao-remessas/internal/infrastructure/pdf"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

const (
	cookieCSRF = "csrftoken"
	headerCSRF = "X-CSRFToken"
)

// Server back-office simulado: loja em memória atrás dos contratos HTTP
// reais, incluindo a dança do CSRF (cookie no GET, header nas mutações).
type Server struct {
	loja    *Loja
	recibos *pdf.GeradorRecibo
	log     *logger.Logger
}

// NewServer monta o app Fiber com todas as rotas do back-office.
func NewServer(loja *Loja, recibos *pdf.GeradorRecibo, log *logger.Logger) *fiber.App {
	s := &Server{loja: loja, recibos: recibos, log: log}

	app := fiber.New(fiber.Config{
		AppName:               "balcao-simulador",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(s.csrfMiddleware)

	app.Get("/", s.raiz)
	app.Get("/buscar_remessas_api/", s.buscarRemessas)
	app.Get("/detalhes_remessa_api/:id/", s.detalhesRemessa)
	app.Post("/finalizar_acerto_api/", s.finalizarAcerto)
	app.Get("/buscar_clientes_api/", s.buscarClientes)
	app.Get("/buscar_produto_api/", s.buscarProduto)
	app.Post("/salvar_remessa_api/", s.salvarRemessa)
	app.Post("/gerar_recibo_pdf/", s.gerarRecibo)
	app.Post("/produtos/salvar/estoque/", s.salvarEstoque)

	return app
}

// csrfMiddleware emite o cookie csrftoken em requisições de leitura e exige
// o header X-CSRFToken com o mesmo valor em toda mutação.
func (s *Server) csrfMiddleware(c *fiber.Ctx) error {
	token := c.Cookies(cookieCSRF)
	if c.Method() == fiber.MethodGet {
		if token == "" {
			c.Cookie(&fiber.Cookie{Name: cookieCSRF, Value: uuid.NewString(), Path: "/"})
		}
		return c.Next()
	}
	if token == "" || c.Get(headerCSRF) != token {
		return c.Status(fiber.StatusForbidden).JSON(dto.StatusResponse{
			Status:  "error",
			Message: "token CSRF ausente ou inválido",
		})
	}
	return c.Next()
}

func (s *Server) raiz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"app": "balcao-simulador", "status": "ok"})
}

// ── Acerto de contas ──────────────────────────────────────────────────────────

func (s *Server) buscarRemessas(c *fiber.Ctx) error {
	return c.JSON(dto.BuscarRemessasResponse{Remessas: s.loja.BuscarRemessas(c.Query("q"))})
}

func (s *Server) detalhesRemessa(c *fiber.Ctx) error {
	det := s.loja.DetalhesRemessa(c.Params("id"))
	if det == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.DetalhesRemessaResponse{
			Status:  "error",
			Message: "Remessa não encontrada ou já finalizada",
		})
	}
	return c.JSON(dto.DetalhesRemessaResponse{Status: "success", Dados: det})
}

func (s *Server) finalizarAcerto(c *fiber.Ctx) error {
	var req dto.FinalizarAcertoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Status: "error", Message: "corpo inválido"})
	}
	// o detalhe some quando a remessa fecha; captura antes para o recibo
	det := s.loja.DetalhesRemessa(req.RemessaID)
	if err := s.loja.FinalizarAcerto(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Status: "error", Message: err.Error()})
	}
	s.log.Info().
		Str("remessa_id", req.RemessaID).
		Str("acao", req.AcaoFinal).
		Msg("acerto finalizado")

	resp := dto.FinalizarAcertoResponse{Status: "success", Message: "Acerto finalizado com sucesso"}
	pdfB64, nome, err := s.reciboAcerto(c.Context(), req, det)
	if err != nil {
		// a operação já gravou; o recibo falho vira aviso, não erro
		resp.PDFError = err.Error()
	} else {
		resp.PDFBase64 = pdfB64
		resp.NomeArquivo = nome
	}
	return c.JSON(resp)
}

// reciboAcerto gera o recibo do acerto a partir do detalhe pré-acerto: só
// entram as quantidades que ficaram com o cliente.
func (s *Server) reciboAcerto(ctx context.Context, req dto.FinalizarAcertoRequest, det *dto.RemessaDetalhe) (string, string, error) {
	if det == nil {
		return "", "", fmt.Errorf("detalhe da remessa indisponível para o recibo")
	}
	porItem := make(map[string]int, len(req.Itens))
	for _, iq := range req.Itens {
		porItem[iq.ID] = iq.Quantidade
	}

	recibo := dto.GerarReciboRequest{
		NomeCliente: det.ClienteNome,
		RemessaID:   req.RemessaID,
		TipoRemessa: "ACERTO",
	}
	total := 0
	valor := decimal.Zero
	for _, it := range det.Itens {
		ficou := porItem[it.ID]
		if ficou == 0 {
			continue
		}
		sub := it.PrecoUnitario.Mul(decimal.NewFromInt(int64(ficou))).Round(2)
		recibo.Produtos = append(recibo.Produtos, dto.ReciboProduto{
			Nome:          it.ProdutoNome,
			Quantidade:    ficou,
			PrecoUnitario: it.PrecoUnitario.StringFixed(2),
			Subtotal:      sub.StringFixed(2),
		})
		total += ficou
		valor = valor.Add(sub)
	}
	recibo.TotalItens = fmt.Sprintf("%d", total)
	recibo.ValorTotal = "R$ " + valor.StringFixed(2)
	if req.AcaoFinal == entity.AcaoFechar {
		recibo.FormaPagamento = req.FormaPagamento
	}

	b, err := s.recibos.Gerar(ctx, recibo, time.Now().Format("02/01/2006"))
	if err != nil {
		return "", "", fmt.Errorf("gerar recibo do acerto: %w", err)
	}
	nome := fmt.Sprintf("recibo_acerto_%s.pdf", req.RemessaID)
	return base64.StdEncoding.EncodeToString(b), nome, nil
}

// ── Registro de saída ─────────────────────────────────────────────────────────

func (s *Server) buscarClientes(c *fiber.Ctx) error {
	return c.JSON(dto.BuscarClientesResponse{Clientes: s.loja.BuscarClientes(c.Query("q"))})
}

func (s *Server) buscarProduto(c *fiber.Ctx) error {
	p := s.loja.BuscarProduto(c.Query("codigo"))
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.BuscarProdutoResponse{
			Status:  "error",
			Message: "Produto não encontrado",
		})
	}
	return c.JSON(dto.BuscarProdutoResponse{Status: "success", Produto: p})
}

func (s *Server) salvarRemessa(c *fiber.Ctx) error {
	var req dto.SalvarRemessaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Status: "error", Message: "corpo inválido"})
	}
	id, err := s.loja.SalvarRemessa(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.SalvarRemessaResponse{Status: "error", Message: err.Error()})
	}
	s.log.Info().
		Str("remessa_id", id).
		Str("tipo", req.TipoRemessa).
		Int("produtos", len(req.Produtos)).
		Msg("remessa registrada")
	return c.JSON(dto.SalvarRemessaResponse{Status: "success", Message: "Remessa registrada com sucesso", ID: id})
}

func (s *Server) gerarRecibo(c *fiber.Ctx) error {
	var req dto.GerarReciboRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.GerarReciboResponse{Success: false, Error: "corpo inválido"})
	}
	b, err := s.recibos.Gerar(c.Context(), req, time.Now().Format("02/01/2006"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.GerarReciboResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(dto.GerarReciboResponse{
		Success:     true,
		PDFBase64:   base64.StdEncoding.EncodeToString(b),
		NomeArquivo: fmt.Sprintf("recibo_remessa_%s.pdf", req.RemessaID),
	})
}

// ── Estoque ───────────────────────────────────────────────────────────────────

func (s *Server) salvarEstoque(c *fiber.Ctx) error {
	var req dto.SalvarEstoqueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Status: "error", Message: "corpo inválido"})
	}
	if err := s.loja.SalvarEstoque(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Status: "error", Message: err.Error()})
	}
	s.log.Info().Int("produtos", len(req.Produtos)).Msg("estoque ajustado")
	return c.JSON(dto.StatusResponse{Status: "success", Message: "Estoque atualizado com sucesso"})
}
