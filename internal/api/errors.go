package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
)

const (
	msgGatewayFailed = "payment provider request failed"
	msgInternal      = "internal error"
)

// writeError maps the error taxonomy to a status code. Gateway and store
// details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		validationErr  *domain.ValidationError
		notFoundErr    *domain.NotFoundError
		gatewayErr     *domain.GatewayError
		persistenceErr *domain.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundErr.Error()})
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &gatewayErr):
		logger.Warn("gateway error", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgGatewayFailed})
	case errors.As(err, &persistenceErr):
		logger.Error("persistence error", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	default:
		logger.Error("unexpected error", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
