package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	BaseURL         string
	AllowOrigins    []string
	MaxSizeMB       int
	Environment     string
	ImagesRoot      string
	RateLimitPublic RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// defaultOrigins cobre o desenvolvimento local; em produção configure
// CORS_ORIGINS explicitamente.
var defaultOrigins = []string{
	"http://localhost:8000",
	"http://127.0.0.1:8000",
	"http://localhost:80",
	"http://127.0.0.1:80",
	"http://localhost:8002",
	"http://127.0.0.1:8002",
	"http://localhost:8006",
	"http://127.0.0.1:8006",
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8002")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.BaseURL = strings.TrimSpace(getEnv("BASE_URL", ""))

	origins := strings.Split(getEnv("CORS_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = append([]string(nil), defaultOrigins...)
	}

	// MAX_SIZE_MB inválido cai no default de 25 em vez de impedir o start
	maxMB, err := strconv.Atoi(getEnv("MAX_SIZE_MB", "25"))
	if err != nil || maxMB <= 0 {
		maxMB = 25
	}
	cfg.MaxSizeMB = maxMB

	cfg.Environment = strings.TrimSpace(getEnv("ENVIRONMENT", "development"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	root, err := filepath.Abs(getEnv("IMAGES_ROOT", "./imagens"))
	if err != nil {
		return nil, errors.New("IMAGES_ROOT inválido")
	}
	cfg.ImagesRoot = root

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}

	return cfg, nil
}

// MaxSizeBytes devolve o teto da imagem decodificada em bytes.
func (c *Config) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB) << 20
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
