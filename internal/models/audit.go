package models

import "time"

// Audit logging of lifecycle transitions
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   // qui a fait la modification
	EntityType string // ex: "Mission", "Candidature", "Collaboration"
	EntityID   uint
	Action     string // ex: "create", "accept", "validate", "delete"
	Field      string // champ modifié (optionnel)
	OldValue   string
	NewValue   string
	CreatedAt  time.Time
}
