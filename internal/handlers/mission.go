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

type MissionHandler struct {
	Svc  *services.MissionService
	Cand *services.CandidatureService
}

func NewMissionHandler(svc *services.MissionService, cand *services.CandidatureService) *MissionHandler {
	return &MissionHandler{Svc: svc, Cand: cand}
}

func (h *MissionHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Route("/{missionID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Patch("/status", h.changeStatus)
		r.Post("/assign", h.assign)
		r.Post("/candidatures", h.apply)
		r.Get("/candidatures", h.listCandidatures)
	})
}

type missionReq struct {
	Titre       string     `json:"titre"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DateDebut   *time.Time `json:"date_debut"`
	DateFin     *time.Time `json:"date_fin"`
	PrixCents   *int64     `json:"prix_cents"`
	EcoleID     uint       `json:"ecole_id"` // admin only
}

func (h *MissionHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req missionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("titre", req.Titre, v)
	validation.MaxLen("titre", req.Titre, 255, v)
	validation.PositiveCents("prix_cents", req.PrixCents, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	m, err := h.Svc.Create(r.Context(), actor, services.CreateMissionInput{
		Titre:       req.Titre,
		Description: req.Description,
		Status:      models.MissionStatus(req.Status),
		DateDebut:   req.DateDebut,
		DateFin:     req.DateFin,
		PrixCents:   req.PrixCents,
		EcoleID:     req.EcoleID,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *MissionHandler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustActor(w, r); !ok {
		return
	}
	var ecoleID uint
	if raw := r.URL.Query().Get("ecole_id"); raw != "" {
		if id, err := urlQueryID(raw); err == nil {
			ecoleID = id
		}
	}
	missions, err := h.Svc.List(r.Context(), ecoleID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": missions, "total": len(missions)})
}

func (h *MissionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "missionID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	m, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MissionHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "missionID")
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
	m, err := h.Svc.ChangeStatus(r.Context(), actor, id, models.MissionStatus(req.Status))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MissionHandler) assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "missionID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req struct {
		IntervenantID uint `json:"intervenant_id"`
		Force         bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.IntervenantID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"intervenant_id": "required"})
		return
	}
	m, err := h.Svc.AssignIntervenant(r.Context(), actor, id, req.IntervenantID, req.Force)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MissionHandler) delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "missionID")
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

func (h *MissionHandler) apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "missionID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req struct {
		Message      string `json:"message"`
		TarifPropose *int64 `json:"tarif_propose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.PositiveCents("tarif_propose", req.TarifPropose, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c, err := h.Cand.Apply(r.Context(), actor.UserID, id, services.ApplyInput{Message: req.Message, TarifPropose: req.TarifPropose})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *MissionHandler) listCandidatures(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "missionID")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	candidatures, err := h.Cand.ListForMission(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": candidatures, "total": len(candidatures)})
}
