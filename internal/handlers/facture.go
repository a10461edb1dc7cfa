package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ValentinRndn/profconnect/internal/httpx"
	"github.com/ValentinRndn/profconnect/internal/services"
)

// FactureHandler exposes read access to generated invoices. Creation is a
// side effect of collaboration validation, never an endpoint.
type FactureHandler struct {
	Svc *services.FactureService
}

func NewFactureHandler(svc *services.FactureService) *FactureHandler {
	return &FactureHandler{Svc: svc}
}

func (h *FactureHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{factureID}", h.get)
}

func (h *FactureHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	factures, err := h.Svc.List(r.Context(), actor)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": factures, "total": len(factures)})
}

func (h *FactureHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "factureID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	f, err := h.Svc.Get(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}
