package models

import "time"

// CollaborationStatus lifecycle: brouillon -> en_cours -> {terminee, annulee}.
type CollaborationStatus string

const (
	CollaborationBrouillon CollaborationStatus = "brouillon"
	CollaborationEnCours   CollaborationStatus = "en_cours"
	CollaborationTerminee  CollaborationStatus = "terminee"
	CollaborationAnnulee   CollaborationStatus = "annulee"
)

// ValidCollaborationStatus reports membership in the fixed enum.
func ValidCollaborationStatus(s CollaborationStatus) bool {
	switch s {
	case CollaborationBrouillon, CollaborationEnCours, CollaborationTerminee, CollaborationAnnulee:
		return true
	}
	return false
}

// collaborationTransitions is the allowed-transition table applied to
// non-admin status changes. Admins may force any enum value.
var collaborationTransitions = map[CollaborationStatus][]CollaborationStatus{
	CollaborationBrouillon: {CollaborationEnCours, CollaborationAnnulee},
	CollaborationEnCours:   {CollaborationTerminee, CollaborationAnnulee},
}

// CanTransition reports whether from -> to is a legal non-admin transition.
func CanTransition(from, to CollaborationStatus) bool {
	for _, next := range collaborationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Collaboration is a mutually-declared engagement between a school and an
// intervenant, independent of any mission row. It becomes en_cours exactly
// when both parties have validated it from brouillon.
type Collaboration struct {
	ID                     uint                `gorm:"primaryKey" json:"id"`
	EcoleID                uint                `gorm:"not null;index" json:"ecole_id"`
	Ecole                  *Ecole              `gorm:"foreignKey:EcoleID" json:"ecole,omitempty"`
	IntervenantID          uint                `gorm:"not null;index" json:"intervenant_id"`
	Intervenant            *Intervenant        `gorm:"foreignKey:IntervenantID" json:"intervenant,omitempty"`
	Titre                  string              `gorm:"not null" json:"titre"`
	Description            string              `gorm:"type:text" json:"description,omitempty"`
	DateDebut              *time.Time          `json:"date_debut,omitempty"`
	DateFin                *time.Time          `json:"date_fin,omitempty"`
	MontantHT              *int64              `json:"montant_ht,omitempty"` // centimes
	Status                 CollaborationStatus `gorm:"size:20;not null;default:'brouillon';index" json:"status"`
	CreatedBy              string              `gorm:"size:20;not null" json:"created_by"` // ecole | intervenant
	ValidatedByEcole       bool                `gorm:"not null;default:false" json:"validated_by_ecole"`
	ValidatedByIntervenant bool                `gorm:"not null;default:false" json:"validated_by_intervenant"`
	Notes                  string              `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// Editable reports whether non-admin mutation is still allowed.
func (c *Collaboration) Editable() bool { return c.Status == CollaborationBrouillon }
