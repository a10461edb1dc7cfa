package services

import (
	"context"
	"errors"
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

// CollaborationService implements the dual-validation engagement between a
// school and an intervenant, and triggers invoice generation when the
// collaboration becomes active.
type CollaborationService struct {
	DB       *gorm.DB
	Gate     *gate.Gate[party.Actor]
	Resolver *policy.Resolver
	Notifier notify.Notifier
	Factures *FactureService
}

func NewCollaborationService(db *gorm.DB, g *gate.Gate[party.Actor], n notify.Notifier, f *FactureService) *CollaborationService {
	return &CollaborationService{DB: db, Gate: g, Resolver: policy.NewResolver(db), Notifier: n, Factures: f}
}

type CreateCollaborationInput struct {
	CounterpartyID uint // the other side's entity id
	Titre          string
	Description    string
	DateDebut      *time.Time
	DateFin        *time.Time
	MontantHT      *int64
	Notes          string
}

// Create declares a collaboration. The creator's side is auto-validated; the
// counterparty is notified and must validate in turn.
func (s *CollaborationService) Create(ctx context.Context, actor party.Actor, in CreateCollaborationInput) (*models.Collaboration, error) {
	own, err := s.Resolver.PartyFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	other := party.Party{Side: own.Side.Opposite(), ID: in.CounterpartyID}
	counterpartyUserID, err := s.Resolver.UserIDForParty(ctx, other)
	if err != nil {
		return nil, err
	}

	c := models.Collaboration{
		Titre:       in.Titre,
		Description: in.Description,
		DateDebut:   in.DateDebut,
		DateFin:     in.DateFin,
		MontantHT:   in.MontantHT,
		Notes:       in.Notes,
		Status:      models.CollaborationBrouillon,
		CreatedBy:   string(own.Side),
	}
	if own.Side == party.SideEcole {
		c.EcoleID, c.IntervenantID = own.ID, other.ID
		c.ValidatedByEcole = true
	} else {
		c.EcoleID, c.IntervenantID = other.ID, own.ID
		c.ValidatedByIntervenant = true
	}

	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	notify.Dispatch(ctx, s.Notifier, counterpartyUserID, notify.EventCollaborationCreee,
		"Proposition de collaboration", "Une collaboration « "+c.Titre+" » vous est proposée.")
	return s.Get(ctx, actor, c.ID)
}

// Get loads a collaboration and enforces read access: admin or either named
// party.
func (s *CollaborationService) Get(ctx context.Context, actor party.Actor, id uint) (*models.Collaboration, error) {
	var c models.Collaboration
	err := s.DB.WithContext(ctx).Preload("Ecole").Preload("Intervenant").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("collaboration_introuvable")
	}
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionView, policy.ResourceCollaboration, &c) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	return &c, nil
}

// List returns the collaborations the actor is a party to (all of them for
// an admin).
func (s *CollaborationService) List(ctx context.Context, actor party.Actor) ([]models.Collaboration, error) {
	q := s.DB.WithContext(ctx).Preload("Ecole").Preload("Intervenant").Order("id desc")
	switch {
	case actor.IsAdmin():
		// unrestricted
	case actor.Role == party.RoleEcole:
		e, err := s.Resolver.EcoleForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		q = q.Where("ecole_id = ?", e.ID)
	case actor.Role == party.RoleIntervenant:
		i, err := s.Resolver.IntervenantForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		q = q.Where("intervenant_id = ?", i.ID)
	default:
		return nil, apperr.Forbidden("acces_refuse")
	}
	var collabs []models.Collaboration
	if err := q.Find(&collabs).Error; err != nil {
		return nil, err
	}
	return collabs, nil
}

type UpdateCollaborationInput struct {
	Titre       *string
	Description *string
	DateDebut   *time.Time
	DateFin     *time.Time
	MontantHT   *int64
	Notes       *string
}

// Update mutates a collaboration. Non-admin actors may only edit drafts.
func (s *CollaborationService) Update(ctx context.Context, actor party.Actor, id uint, in UpdateCollaborationInput) (*models.Collaboration, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !c.Editable() {
		return nil, apperr.InvalidState("collaboration_non_modifiable")
	}
	updates := map[string]any{}
	if in.Titre != nil {
		updates["titre"] = *in.Titre
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DateDebut != nil {
		updates["date_debut"] = *in.DateDebut
	}
	if in.DateFin != nil {
		updates["date_fin"] = *in.DateFin
	}
	if in.MontantHT != nil {
		updates["montant_ht"] = *in.MontantHT
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, actor, id)
}

// Validate records the actor's side of the dual validation. When both sides
// are validated from brouillon the status flips to en_cours in the same
// update, and invoice generation runs as a post-commit side effect whose
// failure is logged, never propagated.
func (s *CollaborationService) Validate(ctx context.Context, actor party.Actor, id uint) (*models.Collaboration, error) {
	var c models.Collaboration
	err := s.DB.WithContext(ctx).Preload("Ecole").Preload("Intervenant").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("collaboration_introuvable")
	}
	if err != nil {
		return nil, err
	}

	// the actor must be the party matching their side of this collaboration
	own, rerr := s.Resolver.PartyFor(ctx, actor)
	if rerr != nil {
		return nil, apperr.Forbidden("acces_refuse")
	}
	var flagColumn string
	var otherValidated bool
	if own.Side == party.SideEcole {
		if c.EcoleID != own.ID {
			return nil, apperr.Forbidden("acces_refuse")
		}
		flagColumn = "validated_by_ecole"
		otherValidated = c.ValidatedByIntervenant
	} else {
		if c.IntervenantID != own.ID {
			return nil, apperr.Forbidden("acces_refuse")
		}
		flagColumn = "validated_by_intervenant"
		otherValidated = c.ValidatedByEcole
	}
	var counterpartyUserID uint
	switch own.Side.Opposite() {
	case party.SideEcole:
		if c.Ecole != nil {
			counterpartyUserID = c.Ecole.UserID
		}
	case party.SideIntervenant:
		if c.Intervenant != nil {
			counterpartyUserID = c.Intervenant.UserID
		}
	}

	// in-memory updated flag OR the stored flag of the other party
	willBeValidatedByBoth := otherValidated
	activates := willBeValidatedByBoth && c.Status == models.CollaborationBrouillon

	updates := map[string]any{flagColumn: true}
	if activates {
		updates["status"] = models.CollaborationEnCours
	}
	if err := s.DB.WithContext(ctx).Model(&c).Updates(updates).Error; err != nil {
		return nil, err
	}

	var hooks postCommit
	if activates {
		hooks.add(func() {
			fresh, gerr := s.reload(ctx, id)
			if gerr != nil {
				log.Printf("collaboration %d: reload for facture failed: %v", id, gerr)
				return
			}
			f, ferr := s.Factures.CreateForCollaboration(ctx, fresh)
			if ferr != nil {
				// best-effort: validation must not fail because invoicing failed
				log.Printf("collaboration %d: génération facture échouée: %v", id, ferr)
				return
			}
			if f != nil && fresh.Intervenant != nil {
				notify.Dispatch(ctx, s.Notifier, fresh.Intervenant.UserID, notify.EventFactureGeneree,
					"Facture générée", "La facture "+f.Numero+" a été émise pour « "+fresh.Titre+" ».")
			}
		})
		if c.Ecole != nil {
			uid := c.Ecole.UserID
			hooks.add(func() {
				notify.Dispatch(ctx, s.Notifier, uid, notify.EventCollaborationActive,
					"Collaboration active", "La collaboration « "+c.Titre+" » est maintenant active.")
			})
		}
		if c.Intervenant != nil {
			uid := c.Intervenant.UserID
			hooks.add(func() {
				notify.Dispatch(ctx, s.Notifier, uid, notify.EventCollaborationActive,
					"Collaboration active", "La collaboration « "+c.Titre+" » est maintenant active.")
			})
		}
	} else if counterpartyUserID != 0 {
		uid := counterpartyUserID
		hooks.add(func() {
			notify.Dispatch(ctx, s.Notifier, uid, notify.EventCollaborationValidee,
				"Collaboration validée", "L'autre partie a validé « "+c.Titre+" ». À vous de valider.")
		})
	}
	hooks.run()
	return s.reload(ctx, id)
}

// UpdateStatus applies an explicit status change. Non-admin actors are held
// to the transition table; admins may force any enum value.
func (s *CollaborationService) UpdateStatus(ctx context.Context, actor party.Actor, id uint, status models.CollaborationStatus) (*models.Collaboration, error) {
	if !models.ValidCollaborationStatus(status) {
		return nil, apperr.InvalidArgument("statut_invalide")
	}
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !models.CanTransition(c.Status, status) {
		return nil, apperr.InvalidState("transition_interdite").
			WithDetails(map[string]string{"from": string(c.Status), "to": string(status)})
	}
	if err := s.DB.WithContext(ctx).Model(c).Update("status", status).Error; err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// Delete removes a collaboration: its creator while still brouillon, or an
// admin at any time.
func (s *CollaborationService) Delete(ctx context.Context, actor party.Actor, id uint) error {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if actor.IsAdmin() {
		return s.DB.WithContext(ctx).Delete(&models.Collaboration{}, id).Error
	}
	if string(actor.Role) != c.CreatedBy {
		return apperr.Forbidden("acces_refuse")
	}
	if !c.Editable() {
		return apperr.InvalidState("collaboration_non_modifiable")
	}
	return s.DB.WithContext(ctx).Delete(&models.Collaboration{}, id).Error
}

func (s *CollaborationService) reload(ctx context.Context, id uint) (*models.Collaboration, error) {
	var c models.Collaboration
	if err := s.DB.WithContext(ctx).Preload("Ecole").Preload("Intervenant").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
