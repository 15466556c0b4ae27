package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elderjoias/balcao-remessas/internal/infrastructure/pdf"
	"github.com/elderjoias/balcao-remessas/internal/infrastructure/simulador"
	"github.com/elderjoias/balcao-remessas/pkg/config"
	"github.com/elderjoias/balcao-remessas/pkg/logger"
)

// Back-office simulado para desenvolvimento: sobe a loja em memória com o
// catálogo de exemplo e responde nos mesmos contratos do servidor real.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("addr", cfg.Simulador.Addr()).
		Msg("iniciando back-office simulado")

	loja := simulador.NovaLojaSemeada()
	recibos := pdf.NovoGeradorRecibo("Elder Joias")
	app := simulador.NewServer(loja, recibos, log)

	go func() {
		if err := app.Listen(cfg.Simulador.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("simulador parado")
}
