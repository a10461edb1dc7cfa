package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/gate"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/notify"
	"github.com/ValentinRndn/profconnect/internal/party"
	"github.com/ValentinRndn/profconnect/internal/policy"
)

// MissionService owns the mission lifecycle: creation, status transitions
// and direct assignment.
type MissionService struct {
	DB       *gorm.DB
	Gate     *gate.Gate[party.Actor]
	Resolver *policy.Resolver
	Notifier notify.Notifier
}

func NewMissionService(db *gorm.DB, g *gate.Gate[party.Actor], n notify.Notifier) *MissionService {
	return &MissionService{DB: db, Gate: g, Resolver: policy.NewResolver(db), Notifier: n}
}

type CreateMissionInput struct {
	Titre       string
	Description string
	Status      models.MissionStatus // empty means ACTIVE
	DateDebut   *time.Time
	DateFin     *time.Time
	PrixCents   *int64
	EcoleID     uint // admin only: target school
}

// Create opens a mission for the actor's school, or for any school when the
// actor is an admin.
func (s *MissionService) Create(ctx context.Context, actor party.Actor, in CreateMissionInput) (*models.Mission, error) {
	if !s.Gate.Can(ctx, actor, gate.ActionCreate, policy.ResourceMission, nil) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	var ecoleID uint
	if actor.IsAdmin() {
		if in.EcoleID == 0 {
			return nil, apperr.InvalidArgument("ecole_requise")
		}
		var e models.Ecole
		if err := s.DB.WithContext(ctx).First(&e, in.EcoleID).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ecole_introuvable")
		} else if err != nil {
			return nil, err
		}
		ecoleID = e.ID
	} else {
		e, err := s.Resolver.EcoleForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		ecoleID = e.ID
	}

	status := in.Status
	if status == "" {
		status = models.MissionActive
	}
	if !models.ValidMissionStatus(status) {
		return nil, apperr.InvalidArgument("statut_invalide")
	}

	m := models.Mission{
		Titre:       in.Titre,
		Description: in.Description,
		Status:      status,
		DateDebut:   in.DateDebut,
		DateFin:     in.DateFin,
		PrixCents:   in.PrixCents,
		EcoleID:     ecoleID,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	s.audit(actor.UserID, "Mission", m.ID, "create", "", "", string(m.Status))
	return s.Get(ctx, m.ID)
}

// Get loads a mission with its references expanded.
func (s *MissionService) Get(ctx context.Context, id uint) (*models.Mission, error) {
	var m models.Mission
	err := s.DB.WithContext(ctx).Preload("Ecole").Preload("Intervenant").First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("mission_introuvable")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns missions, optionally restricted to one school.
func (s *MissionService) List(ctx context.Context, ecoleID uint) ([]models.Mission, error) {
	q := s.DB.WithContext(ctx).Preload("Ecole").Preload("Intervenant").Order("id desc")
	if ecoleID != 0 {
		q = q.Where("ecole_id = ?", ecoleID)
	}
	var missions []models.Mission
	if err := q.Find(&missions).Error; err != nil {
		return nil, err
	}
	return missions, nil
}

// ChangeStatus moves the mission to any member of the status enum. Direction
// is deliberately unrestricted (COMPLETED back to DRAFT is allowed).
func (s *MissionService) ChangeStatus(ctx context.Context, actor party.Actor, id uint, status models.MissionStatus) (*models.Mission, error) {
	if !models.ValidMissionStatus(status) {
		return nil, apperr.InvalidArgument("statut_invalide")
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionUpdate, policy.ResourceMission, m) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	old := m.Status
	if err := s.DB.WithContext(ctx).Model(m).Update("status", status).Error; err != nil {
		return nil, err
	}
	s.audit(actor.UserID, "Mission", m.ID, "status", "status", string(old), string(status))
	return s.Get(ctx, id)
}

// AssignIntervenant fills the mission slot directly, bypassing the
// candidature workflow. Overwriting an already-assigned intervenant requires
// force, the explicit admin escape hatch. DRAFT auto-promotes to ACTIVE.
func (s *MissionService) AssignIntervenant(ctx context.Context, actor party.Actor, missionID, intervenantID uint, force bool) (*models.Mission, error) {
	m, err := s.Get(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionUpdate, policy.ResourceMission, m) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	var intervenant models.Intervenant
	if err := s.DB.WithContext(ctx).First(&intervenant, intervenantID).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("intervenant_introuvable")
	} else if err != nil {
		return nil, err
	}
	if m.Filled() && *m.IntervenantID != intervenantID && !force {
		return nil, apperr.InvalidState("mission_deja_pourvue")
	}

	updates := map[string]any{"intervenant_id": intervenantID}
	if m.Status == models.MissionDraft {
		updates["status"] = models.MissionActive
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.audit(actor.UserID, "Mission", m.ID, "assign", "intervenant_id", "", fmt.Sprint(intervenantID))
	notify.Dispatch(ctx, s.Notifier, intervenant.UserID, notify.EventMissionAssignee,
		"Mission attribuée", "La mission « "+m.Titre+" » vous a été attribuée.")
	return s.Get(ctx, missionID)
}

// Delete removes the mission row. Hard delete, no soft-delete or versioning.
func (s *MissionService) Delete(ctx context.Context, actor party.Actor, id uint) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionDelete, policy.ResourceMission, m) {
		return apperr.Forbidden("acces_refuse")
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Mission{}, id).Error; err != nil {
		return err
	}
	s.audit(actor.UserID, "Mission", id, "delete", "", "", "")
	return nil
}

func (s *MissionService) audit(userID uint, entity string, entityID uint, action, field, oldV, newV string) {
	row := models.AuditLog{UserID: userID, EntityType: entity, EntityID: entityID, Action: action, Field: field, OldValue: oldV, NewValue: newV}
	if err := s.DB.Create(&row).Error; err != nil {
		// audit best-effort
		log.Printf("audit %s %d %s: %v", entity, entityID, action, err)
	}
}
