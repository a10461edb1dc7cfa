package models

import "time"

// CandidatureStatus: en_attente is the only non-terminal state.
type CandidatureStatus string

const (
	CandidatureEnAttente CandidatureStatus = "en_attente"
	CandidatureAcceptee  CandidatureStatus = "acceptee"
	CandidatureRefusee   CandidatureStatus = "refusee"
	CandidatureRetiree   CandidatureStatus = "retiree"
)

// Candidature is an intervenant's application to a mission. An intervenant
// may apply to a given mission at most once; candidatures are never deleted,
// they move to a terminal status.
type Candidature struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	MissionID     uint              `gorm:"not null;uniqueIndex:idx_candidature_pair" json:"mission_id"`
	Mission       *Mission          `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	IntervenantID uint              `gorm:"not null;uniqueIndex:idx_candidature_pair" json:"intervenant_id"`
	Intervenant   *Intervenant      `gorm:"foreignKey:IntervenantID" json:"intervenant,omitempty"`
	Message       string            `gorm:"type:text" json:"message,omitempty"`
	TarifPropose  *int64            `json:"tarif_propose,omitempty"` // centimes
	Status        CandidatureStatus `gorm:"size:20;not null;default:'en_attente';index" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Pending reports whether the candidature can still transition.
func (c *Candidature) Pending() bool { return c.Status == CandidatureEnAttente }
