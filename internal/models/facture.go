package models

import (
	"fmt"
	"time"
)

// FactureStatus follows the invoice through its billing life. Only creation
// is handled by the collaboration core; later statuses belong to admin
// tooling.
type FactureStatus string

const (
	FactureBrouillon FactureStatus = "brouillon"
	FactureEnvoyee   FactureStatus = "envoyee"
	FacturePayee     FactureStatus = "payee"
	FactureAnnulee   FactureStatus = "annulee"
	FactureEnRetard  FactureStatus = "en_retard"
)

func ValidFactureStatus(s FactureStatus) bool {
	switch s {
	case FactureBrouillon, FactureEnvoyee, FacturePayee, FactureAnnulee, FactureEnRetard:
		return true
	}
	return false
}

// Facture is generated when a collaboration becomes en_cours. The
// intervenant always bills the school, never the reverse.
type Facture struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	Numero           string        `gorm:"size:50;uniqueIndex;not null" json:"numero"` // FAC-YYYY-NNNN
	Type             string        `gorm:"size:50;default:'collaboration'" json:"type"`
	EmetteurType     string        `gorm:"size:20;not null" json:"emetteur_type"` // intervenant
	EmetteurID       uint          `gorm:"not null;index" json:"emetteur_id"`
	DestinataireType string        `gorm:"size:20;not null" json:"destinataire_type"` // ecole
	DestinataireID   uint          `gorm:"not null;index" json:"destinataire_id"`
	MontantHT        int64         `gorm:"not null" json:"montant_ht"`  // centimes
	TVA              int64         `gorm:"not null" json:"tva"`         // centimes
	MontantTTC       int64         `gorm:"not null" json:"montant_ttc"` // centimes
	Description      string        `gorm:"type:text" json:"description,omitempty"`
	Status           FactureStatus `gorm:"size:20;not null;default:'brouillon';index" json:"status"`
	DateEcheance     time.Time     `gorm:"not null" json:"date_echeance"`
	CollaborationID  *uint         `gorm:"index" json:"collaboration_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// FactureCounter is the per-year invoice sequence. The row is incremented
// under a row lock inside the same transaction that inserts the facture, so
// two concurrent generations cannot observe the same sequence value.
type FactureCounter struct {
	ID        uint  `gorm:"primaryKey"`
	Year      int   `gorm:"uniqueIndex;not null"`
	Seq       int64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// FormatFactureNumero renders the FAC-YYYY-NNNN invoice number.
func FormatFactureNumero(year int, seq int64) string {
	return fmt.Sprintf("FAC-%d-%04d", year, seq)
}
