package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa a configuração da aplicação (leitura via Viper de env e opcionalmente arquivo).
type Config struct {
	App        AppConfig
	Backoffice BackofficeConfig
	Recibos    RecibosConfig
	Simulador  SimuladorConfig
}

// AppConfig configuração geral da aplicação.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// BackofficeConfig configuração do cliente HTTP do back-office.
type BackofficeConfig struct {
	BaseURL string        // ex.: http://localhost:8000
	Timeout time.Duration // timeout de rede por requisição
}

// RecibosConfig onde gravar os PDFs de recibo baixados/gerados.
type RecibosConfig struct {
	Dir string
}

// SimuladorConfig configuração do servidor simulador (cmd/simulador).
type SimuladorConfig struct {
	Host string
	Port int
}

// Addr devolve o endereço de escuta (host:port).
func (c SimuladorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lê a configuração de variáveis de ambiente (e opcionalmente de arquivo).
// As env vars têm prioridade. Nomes esperados: APP_ENV, BACKOFFICE_BASE_URL, RECIBOS_DIR, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: arquivo de configuração (.env ou config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos erro se não existir

	// Também tenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos erro se não existir

	// Bind de variáveis de ambiente
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	timeout, err := time.ParseDuration(getString(v, "BACKOFFICE_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("BACKOFFICE_TIMEOUT inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "balcao-remessas"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Backoffice: BackofficeConfig{
			BaseURL: getString(v, "BACKOFFICE_BASE_URL", "http://localhost:8000"),
			Timeout: timeout,
		},
		Recibos: RecibosConfig{
			Dir: getString(v, "RECIBOS_DIR", "./recibos"),
		},
		Simulador: SimuladorConfig{
			Host: getString(v, "SIMULADOR_HOST", "0.0.0.0"),
			Port: v.GetInt("SIMULADOR_PORT"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "balcao-remessas")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKOFFICE_BASE_URL", "http://localhost:8000")
	v.SetDefault("BACKOFFICE_TIMEOUT", "15s")
	v.SetDefault("RECIBOS_DIR", "./recibos")
	v.SetDefault("SIMULADOR_HOST", "0.0.0.0")
	v.SetDefault("SIMULADOR_PORT", 8000)
}

// getString devolve o valor da chave ou o default se vazio.
func getString(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}
