package catalog

import (
	"errors"
	"net/http"

	"github.com/hsalameh/dental-clinic-platform/internal/http/respond"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// Handler exposes read-only catalog endpoints for the booking UI.
type Handler struct {
	client *Client
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

// ListDoctors handles GET /doctors.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.client.Doctors(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"doctors": doctors})
}

// ListProcedures handles GET /procedures.
func (h *Handler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	procedures, err := h.client.Procedures(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"procedures": procedures})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.logger.Error("catalog request failed", "error", err)
	if errors.Is(err, ErrNotConfigured) {
		respond.Error(w, http.StatusServiceUnavailable, "catalog_unavailable", err)
		return
	}
	respond.Error(w, http.StatusBadGateway, "catalog_error", err)
}
