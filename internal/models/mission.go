package models

import "time"

// MissionStatus is the publication state of a mission.
type MissionStatus string

const (
	MissionDraft     MissionStatus = "DRAFT"
	MissionActive    MissionStatus = "ACTIVE"
	MissionCompleted MissionStatus = "COMPLETED"
)

// ValidMissionStatus reports membership in the fixed enum.
func ValidMissionStatus(s MissionStatus) bool {
	return s == MissionDraft || s == MissionActive || s == MissionCompleted
}

// Mission is a teaching assignment published by a school. IntervenantID is
// nil until the mission is filled, either through the candidature workflow
// or by direct assignment.
type Mission struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Titre         string        `gorm:"not null;index" json:"titre"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`
	Status        MissionStatus `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	DateDebut     *time.Time    `json:"date_debut,omitempty"`
	DateFin       *time.Time    `json:"date_fin,omitempty"`
	PrixCents     *int64        `json:"prix_cents,omitempty"`
	EcoleID       uint          `gorm:"not null;index" json:"ecole_id"`
	Ecole         *Ecole        `gorm:"foreignKey:EcoleID" json:"ecole,omitempty"`
	IntervenantID *uint         `gorm:"index" json:"intervenant_id,omitempty"`
	Intervenant   *Intervenant  `gorm:"foreignKey:IntervenantID" json:"intervenant,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Filled reports whether the mission already has an assigned intervenant.
func (m *Mission) Filled() bool { return m.IntervenantID != nil }
