package http

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vistoriafacil/imagens/internal/storage"
	"github.com/vistoriafacil/imagens/internal/upload"
)

// Upload recebe uma imagem em data URL base64 e a persiste com nome sequencial.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var in upload.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && (typeErr.Field == "registro" || typeErr.Field == "ponto") {
			WriteError(w, http.StatusBadRequest, "INVALID_IDENTIFIER", "identificador inválido", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.uploads.Process(r.Context(), BaseURL(h.cfg, r), in)
	if err != nil {
		h.handleUploadError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyUploadError(err)
	reqID := chimiddleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", reqID).Msg("upload: falha")
	} else {
		log.Warn().Err(err).Str("request_id", reqID).Msg("upload: rejeitado")
	}
	WriteError(w, status, code, message, nil)
}

func classifyUploadError(err error) (int, string, string) {
	switch {
	case errors.Is(err, upload.ErrMissingInput):
		return http.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, upload.ErrInvalidEncoding):
		return http.StatusBadRequest, "INVALID_ENCODING", err.Error()
	case errors.Is(err, upload.ErrUnsupportedMediaType):
		return http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", err.Error()
	case errors.Is(err, upload.ErrInvalidIdentifier):
		return http.StatusBadRequest, "INVALID_IDENTIFIER", err.Error()
	case errors.Is(err, upload.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error()
	case errors.Is(err, storage.ErrNameSpaceExhausted):
		return http.StatusInternalServerError, "NAMESPACE_EXHAUSTED", err.Error()
	case errors.Is(err, upload.ErrStorageWriteFailed):
		// o detalhe de E/S fica só no log
		return http.StatusInternalServerError, "STORAGE_WRITE_FAILED", upload.ErrStorageWriteFailed.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL", "erro interno do servidor"
	}
}
