package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vistoriafacil/imagens/internal/config"
	httpmiddleware "github.com/vistoriafacil/imagens/internal/http/middleware"
	"github.com/vistoriafacil/imagens/internal/storage"
	"github.com/vistoriafacil/imagens/internal/upload"
)

const (
	serviceName    = "upload-service"
	serviceVersion = "1.0.0"
)

type Handler struct {
	cfg           *config.Config
	uploads       *upload.Service
	store         *storage.Disk
	publicLimiter *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, store *storage.Disk) http.Handler {
	h := &Handler{
		cfg:           cfg,
		uploads:       upload.NewService(store, cfg.MaxSizeBytes()),
		store:         store,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging(cfg.Environment))
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/", h.Info)
		public.Post("/upload", h.Upload)
	})

	// leitura das imagens fica fora do rate limit público
	r.Handle("/imagens/*", h.ImageServer())

	return r
}

// Health responde status simples com o estado da raiz de imagens.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"service":              serviceName,
		"images_root_exists":   h.store.RootExists(),
		"images_root_writable": h.store.RootWritable(),
	})
}

// Info expõe a configuração efetiva para diagnóstico de roteamento em produção.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"service":       serviceName,
		"version":       serviceVersion,
		"base_url":      BaseURL(h.cfg, r),
		"cors_origins":  h.cfg.AllowOrigins,
		"max_size_mb":   h.cfg.MaxSizeMB,
		"allowed_mimes": upload.AllowedMIMETypes(),
		"images_root":   h.cfg.ImagesRoot,
		"environment":   h.cfg.Environment,
	})
}

// ImageServer serve a raiz de imagens sob /imagens/ sem listagem de diretório.
func (h *Handler) ImageServer() http.Handler {
	fileServer := http.StripPrefix("/imagens", http.FileServer(h.store.HTTPFileSystem()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
