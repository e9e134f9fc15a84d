package http

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vistoriafacil/imagens/internal/config"
)

// BaseURL resolve a origem externa (esquema+host[:porta]) usada para montar os
// links de resposta. BASE_URL configurada vence qualquer sinal por requisição;
// sem ela valem os cabeçalhos X-Forwarded-* do proxy reverso e, por último, o
// host literal da requisição.
func BaseURL(cfg *config.Config, r *http.Request) string {
	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/")
	}

	scheme := requestScheme(r)
	if host := r.Header.Get("X-Forwarded-Host"); host != "" {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		port := r.Header.Get("X-Forwarded-Port")
		if port != "" && !strings.Contains(host, ":") && port != defaultPort(scheme) {
			host += ":" + port
		}
		return scheme + "://" + host
	}

	log.Debug().Str("host", r.Host).Msg("base_url resolvida do host da requisição")
	return scheme + "://" + r.Host
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func defaultPort(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}
