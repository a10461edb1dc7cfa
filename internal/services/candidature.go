package services

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/gate"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/notify"
	"github.com/ValentinRndn/profconnect/internal/party"
	"github.com/ValentinRndn/profconnect/internal/policy"
)

// CandidatureService implements the application workflow: apply, list,
// accept with cascade, reject, withdraw.
type CandidatureService struct {
	DB       *gorm.DB
	Gate     *gate.Gate[party.Actor]
	Resolver *policy.Resolver
	Notifier notify.Notifier
}

func NewCandidatureService(db *gorm.DB, g *gate.Gate[party.Actor], n notify.Notifier) *CandidatureService {
	return &CandidatureService{DB: db, Gate: g, Resolver: policy.NewResolver(db), Notifier: n}
}

type ApplyInput struct {
	Message      string
	TarifPropose *int64
}

// Apply creates a candidature for the intervenant behind userID on an
// ACTIVE, unfilled mission. One candidature per (mission, intervenant) pair.
func (s *CandidatureService) Apply(ctx context.Context, userID uint, missionID uint, in ApplyInput) (*models.Candidature, error) {
	intervenant, err := s.Resolver.IntervenantForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !intervenant.IsApproved() {
		return nil, apperr.Forbidden("intervenant_non_approuve")
	}

	var mission models.Mission
	err = s.DB.WithContext(ctx).Preload("Ecole").First(&mission, missionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("mission_introuvable")
	}
	if err != nil {
		return nil, err
	}
	if mission.Status != models.MissionActive {
		return nil, apperr.InvalidState("mission_non_active")
	}
	if mission.Filled() {
		return nil, apperr.InvalidState("mission_deja_pourvue")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Candidature{}).
		Where("mission_id = ? AND intervenant_id = ?", missionID, intervenant.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("deja_candidate")
	}

	c := models.Candidature{
		MissionID:     missionID,
		IntervenantID: intervenant.ID,
		Message:       in.Message,
		TarifPropose:  in.TarifPropose,
		Status:        models.CandidatureEnAttente,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		// the unique index backs the application-level check against races
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("deja_candidate")
		}
		return nil, err
	}

	if mission.Ecole != nil {
		notify.Dispatch(ctx, s.Notifier, mission.Ecole.UserID, notify.EventCandidatureRecue,
			"Nouvelle candidature", intervenant.Prenom+" "+intervenant.Nom+" a candidaté à « "+mission.Titre+" ».")
	}
	return s.get(ctx, c.ID)
}

// ListForMission returns the mission's candidatures for the owning school or
// an admin.
func (s *CandidatureService) ListForMission(ctx context.Context, actor party.Actor, missionID uint) ([]models.Candidature, error) {
	var mission models.Mission
	err := s.DB.WithContext(ctx).First(&mission, missionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("mission_introuvable")
	}
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionList, policy.ResourceCandidature, &mission) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	var candidatures []models.Candidature
	if err := s.DB.WithContext(ctx).Preload("Intervenant").
		Where("mission_id = ?", missionID).Order("id asc").Find(&candidatures).Error; err != nil {
		return nil, err
	}
	return candidatures, nil
}

// Accept selects the candidature and applies the three-part effect in one
// transaction: target accepted, pending siblings rejected, mission slot
// filled. The already-filled check runs inside the same transaction so a
// concurrent accept on a sibling fails once the slot is taken.
func (s *CandidatureService) Accept(ctx context.Context, actor party.Actor, candidatureID uint) (*models.Candidature, error) {
	c, err := s.get(ctx, candidatureID)
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionUpdate, policy.ResourceCandidature, c) {
		return nil, apperr.Forbidden("acces_refuse")
	}

	var rejected []models.Candidature
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cand models.Candidature
		if err := tx.First(&cand, candidatureID).Error; err != nil {
			return err
		}
		if !cand.Pending() {
			return apperr.InvalidState("candidature_deja_traitee")
		}
		// the mission row is locked so two overlapping accepts on sibling
		// candidatures serialize on the filled check. SQLite (tests) has no
		// FOR UPDATE; its transactions are serialized anyway.
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var mission models.Mission
		if err := q.First(&mission, cand.MissionID).Error; err != nil {
			return err
		}
		if mission.Filled() {
			return apperr.InvalidState("mission_deja_pourvue")
		}

		// siblings first, so their prior status is still observable
		if err := tx.Preload("Intervenant").
			Where("mission_id = ? AND id <> ? AND status = ?", cand.MissionID, cand.ID, models.CandidatureEnAttente).
			Find(&rejected).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Candidature{}).
			Where("mission_id = ? AND id <> ? AND status = ?", cand.MissionID, cand.ID, models.CandidatureEnAttente).
			Update("status", models.CandidatureRefusee).Error; err != nil {
			return err
		}
		if err := tx.Model(&cand).Update("status", models.CandidatureAcceptee).Error; err != nil {
			return err
		}
		updates := map[string]any{"intervenant_id": cand.IntervenantID}
		if mission.Status == models.MissionDraft {
			updates["status"] = models.MissionActive
		}
		return tx.Model(&mission).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	var hooks postCommit
	accepted, err := s.get(ctx, candidatureID)
	if err != nil {
		return nil, err
	}
	if accepted.Intervenant != nil {
		titre := ""
		if accepted.Mission != nil {
			titre = accepted.Mission.Titre
		}
		uid := accepted.Intervenant.UserID
		hooks.add(func() {
			notify.Dispatch(ctx, s.Notifier, uid, notify.EventCandidatureAcceptee,
				"Candidature acceptée", "Votre candidature à « "+titre+" » a été acceptée.")
		})
		for _, r := range rejected {
			if r.Intervenant == nil {
				continue
			}
			ruid := r.Intervenant.UserID
			hooks.add(func() {
				notify.Dispatch(ctx, s.Notifier, ruid, notify.EventCandidatureRefusee,
					"Candidature refusée", "La mission « "+titre+" » a été attribuée à un autre intervenant.")
			})
		}
	}
	hooks.add(func() { s.audit(actor.UserID, accepted.ID, "accept") })
	hooks.run()
	return accepted, nil
}

// Reject marks a pending candidature refused. No cascade.
func (s *CandidatureService) Reject(ctx context.Context, actor party.Actor, candidatureID uint) (*models.Candidature, error) {
	c, err := s.get(ctx, candidatureID)
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionUpdate, policy.ResourceCandidature, c) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	if !c.Pending() {
		return nil, apperr.InvalidState("candidature_deja_traitee")
	}
	if err := s.DB.WithContext(ctx).Model(c).Update("status", models.CandidatureRefusee).Error; err != nil {
		return nil, err
	}
	if c.Intervenant != nil {
		titre := ""
		if c.Mission != nil {
			titre = c.Mission.Titre
		}
		notify.Dispatch(ctx, s.Notifier, c.Intervenant.UserID, notify.EventCandidatureRefusee,
			"Candidature refusée", "Votre candidature à « "+titre+" » a été refusée.")
	}
	s.audit(actor.UserID, c.ID, "reject")
	return s.get(ctx, candidatureID)
}

// Withdraw lets the applying intervenant retract a still-pending candidature.
func (s *CandidatureService) Withdraw(ctx context.Context, userID uint, candidatureID uint) (*models.Candidature, error) {
	intervenant, err := s.Resolver.IntervenantForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, err := s.get(ctx, candidatureID)
	if err != nil {
		return nil, err
	}
	if c.IntervenantID != intervenant.ID {
		return nil, apperr.Forbidden("acces_refuse")
	}
	if !c.Pending() {
		return nil, apperr.InvalidState("candidature_deja_traitee")
	}
	if err := s.DB.WithContext(ctx).Model(c).Update("status", models.CandidatureRetiree).Error; err != nil {
		return nil, err
	}
	if c.Mission != nil && c.Mission.Ecole != nil {
		notify.Dispatch(ctx, s.Notifier, c.Mission.Ecole.UserID, notify.EventCandidatureRetiree,
			"Candidature retirée", "Une candidature à « "+c.Mission.Titre+" » a été retirée.")
	}
	s.audit(userID, c.ID, "withdraw")
	return s.get(ctx, candidatureID)
}

func (s *CandidatureService) get(ctx context.Context, id uint) (*models.Candidature, error) {
	var c models.Candidature
	err := s.DB.WithContext(ctx).
		Preload("Mission").Preload("Mission.Ecole").Preload("Intervenant").
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("candidature_introuvable")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CandidatureService) audit(userID, candidatureID uint, action string) {
	row := models.AuditLog{UserID: userID, EntityType: "Candidature", EntityID: candidatureID, Action: action}
	if err := s.DB.Create(&row).Error; err != nil {
		// audit best-effort
		log.Printf("audit candidature %d %s: %v", candidatureID, action, err)
	}
}
