package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ValentinRndn/profconnect/internal/httpx"
	"github.com/ValentinRndn/profconnect/internal/services"
)

type CandidatureHandler struct {
	Svc *services.CandidatureService
}

func NewCandidatureHandler(svc *services.CandidatureService) *CandidatureHandler {
	return &CandidatureHandler{Svc: svc}
}

func (h *CandidatureHandler) Routes(r chi.Router) {
	r.Route("/{candidatureID}", func(r chi.Router) {
		r.Post("/accept", h.accept)
		r.Post("/reject", h.reject)
		r.Post("/withdraw", h.withdraw)
	})
}

func (h *CandidatureHandler) accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "candidatureID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.Svc.Accept(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CandidatureHandler) reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "candidatureID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.Svc.Reject(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CandidatureHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "candidatureID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.Svc.Withdraw(r.Context(), actor.UserID, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
