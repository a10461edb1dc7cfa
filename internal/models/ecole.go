package models

import "time"

// Ecole is the school side of the marketplace. One profile per user account.
type Ecole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Nom         string    `gorm:"not null;index" json:"nom"` // raison sociale
	SIRET       string    `gorm:"size:14;index" json:"siret,omitempty"`
	Telephone   string    `json:"telephone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Ville       string    `json:"ville,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
