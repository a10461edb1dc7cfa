package models

import "time"

// IntervenantStatus is the moderation state of an expert profile.
// Only approved intervenants may apply to missions.
type IntervenantStatus string

const (
	IntervenantPending  IntervenantStatus = "pending"
	IntervenantApproved IntervenantStatus = "approved"
	IntervenantRejected IntervenantStatus = "rejected"
)

// Intervenant is a freelance subject-matter expert. One profile per user.
type Intervenant struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"not null;uniqueIndex" json:"user_id"`
	User            User              `gorm:"foreignKey:UserID" json:"-"`
	Nom             string            `gorm:"not null;index" json:"nom"`
	Prenom          string            `gorm:"index" json:"prenom"`
	Specialite      string            `gorm:"index" json:"specialite,omitempty"`
	TarifJournalier *int64            `json:"tarif_journalier,omitempty"` // centimes
	Status          IntervenantStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Bio             string            `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (i *Intervenant) IsApproved() bool { return i.Status == IntervenantApproved }
