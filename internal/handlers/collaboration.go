package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ValentinRndn/profconnect/internal/httpx"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/services"
	"github.com/ValentinRndn/profconnect/internal/validation"
)

type CollaborationHandler struct {
	Svc *services.CollaborationService
}

func NewCollaborationHandler(svc *services.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{Svc: svc}
}

func (h *CollaborationHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Route("/{collaborationID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Post("/valider", h.validate)
		r.Patch("/statut", h.updateStatus)
	})
}

type collaborationReq struct {
	CounterpartyID uint       `json:"counterparty_id"`
	Titre          string     `json:"titre"`
	Description    string     `json:"description"`
	DateDebut      *time.Time `json:"date_debut"`
	DateFin        *time.Time `json:"date_fin"`
	MontantHT      *int64     `json:"montant_ht"`
	Notes          string     `json:"notes"`
}

func (h *CollaborationHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req collaborationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("titre", req.Titre, v)
	if req.CounterpartyID == 0 {
		v["counterparty_id"] = "required"
	}
	validation.PositiveCents("montant_ht", req.MontantHT, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c, err := h.Svc.Create(r.Context(), actor, services.CreateCollaborationInput{
		CounterpartyID: req.CounterpartyID,
		Titre:          req.Titre,
		Description:    req.Description,
		DateDebut:      req.DateDebut,
		DateFin:        req.DateFin,
		MontantHT:      req.MontantHT,
		Notes:          req.Notes,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CollaborationHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	collabs, err := h.Svc.List(r.Context(), actor)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": collabs, "total": len(collabs)})
}

func (h *CollaborationHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "collaborationID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.Svc.Get(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CollaborationHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "collaborationID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req struct {
		Titre       *string    `json:"titre"`
		Description *string    `json:"description"`
		DateDebut   *time.Time `json:"date_debut"`
		DateFin     *time.Time `json:"date_fin"`
		MontantHT   *int64     `json:"montant_ht"`
		Notes       *string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c, err := h.Svc.Update(r.Context(), actor, id, services.UpdateCollaborationInput{
		Titre:       req.Titre,
		Description: req.Description,
		DateDebut:   req.DateDebut,
		DateFin:     req.DateFin,
		MontantHT:   req.MontantHT,
		Notes:       req.Notes,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CollaborationHandler) validate(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "collaborationID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	c, err := h.Svc.Validate(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CollaborationHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "collaborationID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c, err := h.Svc.UpdateStatus(r.Context(), actor, id, models.CollaborationStatus(req.Status))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CollaborationHandler) delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "collaborationID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), actor, id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
