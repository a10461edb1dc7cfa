package policy

import (
	"context"

	"github.com/ValentinRndn/profconnect/internal/gate"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/party"
	"gorm.io/gorm"
)

// Resource type names registered on the gate.
const (
	ResourceMission       = "mission"
	ResourceCandidature   = "candidature"
	ResourceCollaboration = "collaboration"
	ResourceFacture       = "facture"
)

// NewGate builds the application gate with all domain policies registered.
func NewGate(db *gorm.DB) *gate.Gate[party.Actor] {
	r := NewResolver(db)
	g := gate.New[party.Actor]()
	g.Register(ResourceMission, &MissionPolicy{R: r})
	g.Register(ResourceCandidature, &CandidaturePolicy{R: r})
	g.Register(ResourceCollaboration, &CollaborationPolicy{R: r})
	g.Register(ResourceFacture, &FacturePolicy{R: r})
	return g
}

// MissionPolicy: anyone authenticated may view; only the owning school or an
// admin may manage.
type MissionPolicy struct{ R *Resolver }

func (p *MissionPolicy) Can(ctx context.Context, actor party.Actor, action gate.Action, resource any) bool {
	if actor.IsAdmin() {
		return true
	}
	if action == gate.ActionView || action == gate.ActionList {
		return true
	}
	m, ok := resource.(*models.Mission)
	if !ok {
		// create: any école may open a mission on its own behalf
		return action == gate.ActionCreate && actor.Role == party.RoleEcole
	}
	if actor.Role != party.RoleEcole {
		return false
	}
	e, err := p.R.EcoleForUser(ctx, actor.UserID)
	if err != nil {
		return false
	}
	return m.EcoleID == e.ID
}

// CandidaturePolicy: listing and deciding candidatures belongs to the school
// owning the mission (or an admin). The candidature must be loaded with its
// mission.
type CandidaturePolicy struct{ R *Resolver }

func (p *CandidaturePolicy) Can(ctx context.Context, actor party.Actor, _ gate.Action, resource any) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role != party.RoleEcole {
		return false
	}
	e, err := p.R.EcoleForUser(ctx, actor.UserID)
	if err != nil {
		return false
	}
	switch res := resource.(type) {
	case *models.Candidature:
		return res.Mission != nil && res.Mission.EcoleID == e.ID
	case *models.Mission:
		return res.EcoleID == e.ID
	}
	return false
}

// CollaborationPolicy: admin or either named party.
type CollaborationPolicy struct{ R *Resolver }

func (p *CollaborationPolicy) Can(ctx context.Context, actor party.Actor, action gate.Action, resource any) bool {
	if actor.IsAdmin() {
		return true
	}
	c, ok := resource.(*models.Collaboration)
	if !ok {
		// create: both marketplace roles may declare a collaboration
		return action == gate.ActionCreate &&
			(actor.Role == party.RoleEcole || actor.Role == party.RoleIntervenant)
	}
	switch actor.Role {
	case party.RoleEcole:
		e, err := p.R.EcoleForUser(ctx, actor.UserID)
		return err == nil && c.EcoleID == e.ID
	case party.RoleIntervenant:
		i, err := p.R.IntervenantForUser(ctx, actor.UserID)
		return err == nil && c.IntervenantID == i.ID
	}
	return false
}

// FacturePolicy: admin, the issuing intervenant, or the recipient school.
type FacturePolicy struct{ R *Resolver }

func (p *FacturePolicy) Can(ctx context.Context, actor party.Actor, _ gate.Action, resource any) bool {
	if actor.IsAdmin() {
		return true
	}
	f, ok := resource.(*models.Facture)
	if !ok {
		return false
	}
	switch actor.Role {
	case party.RoleEcole:
		e, err := p.R.EcoleForUser(ctx, actor.UserID)
		return err == nil && f.DestinataireType == string(party.SideEcole) && f.DestinataireID == e.ID
	case party.RoleIntervenant:
		i, err := p.R.IntervenantForUser(ctx, actor.UserID)
		return err == nil && f.EmetteurType == string(party.SideIntervenant) && f.EmetteurID == i.ID
	}
	return false
}
