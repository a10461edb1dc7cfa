// Package policy binds the generic gate engine to the marketplace domain:
// a DB-backed profile resolver plus one policy per resource type.
package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/party"
)

// Resolver maps an authenticated user id onto its domain profile (école or
// intervenant). Services use it for "my own entity" resolution; policies use
// it for ownership checks.
type Resolver struct{ DB *gorm.DB }

func NewResolver(db *gorm.DB) *Resolver { return &Resolver{DB: db} }

// EcoleForUser returns the school profile of uid, or NotFound.
func (r *Resolver) EcoleForUser(ctx context.Context, uid uint) (*models.Ecole, error) {
	var e models.Ecole
	err := r.DB.WithContext(ctx).Where("user_id = ?", uid).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ecole_introuvable")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// IntervenantForUser returns the expert profile of uid, or NotFound.
func (r *Resolver) IntervenantForUser(ctx context.Context, uid uint) (*models.Intervenant, error) {
	var i models.Intervenant
	err := r.DB.WithContext(ctx).Where("user_id = ?", uid).First(&i).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("intervenant_introuvable")
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// PartyFor resolves the actor's own profile into its collaboration party.
// Admins have no party of their own and get Forbidden.
func (r *Resolver) PartyFor(ctx context.Context, actor party.Actor) (party.Party, error) {
	switch actor.Role {
	case party.RoleEcole:
		e, err := r.EcoleForUser(ctx, actor.UserID)
		if err != nil {
			return party.Party{}, err
		}
		return party.Ecole(e.ID), nil
	case party.RoleIntervenant:
		i, err := r.IntervenantForUser(ctx, actor.UserID)
		if err != nil {
			return party.Party{}, err
		}
		return party.Intervenant(i.ID), nil
	}
	return party.Party{}, apperr.Forbidden("acces_refuse")
}

// UserIDForParty loads the user account behind a party, or NotFound when the
// entity does not exist.
func (r *Resolver) UserIDForParty(ctx context.Context, p party.Party) (uint, error) {
	if p.Side == party.SideEcole {
		var e models.Ecole
		err := r.DB.WithContext(ctx).First(&e, p.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("ecole_introuvable")
		}
		if err != nil {
			return 0, err
		}
		return e.UserID, nil
	}
	var i models.Intervenant
	err := r.DB.WithContext(ctx).First(&i, p.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFound("intervenant_introuvable")
	}
	if err != nil {
		return 0, err
	}
	return i.UserID, nil
}

// RoleForUser returns the role name stored for uid.
func (r *Resolver) RoleForUser(ctx context.Context, uid uint) (string, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Preload("Role").First(&u, uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.NotFound("utilisateur_introuvable")
	}
	if err != nil {
		return "", err
	}
	return u.Role.Name, nil
}
