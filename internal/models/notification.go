package models

import "time"

// Notification is the in-app inbox row written by the notifier. Email
// delivery is an external concern; this table is the durable trace.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // destinataire
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Type      string    `gorm:"size:50;not null" json:"type"` // ex: "candidature_recue"
	Title     string    `json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	SentAt    time.Time `json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
