// Package notify carries transition events to the other party. Delivery is
// best-effort: a notifier failure must never fail the business operation
// that triggered it, which is why callers go through Dispatch.
package notify

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ValentinRndn/profconnect/internal/models"
)

// Event types emitted by the lifecycle engine.
const (
	EventCandidatureRecue     = "candidature_recue"
	EventCandidatureAcceptee  = "candidature_acceptee"
	EventCandidatureRefusee   = "candidature_refusee"
	EventCandidatureRetiree   = "candidature_retiree"
	EventMissionAssignee      = "mission_assignee"
	EventCollaborationCreee   = "collaboration_creee"
	EventCollaborationValidee = "collaboration_validee"
	EventCollaborationActive  = "collaboration_active"
	EventFactureGeneree       = "facture_generee"
)

// Notifier is the contract of the delivery backend (in-app row, email relay).
type Notifier interface {
	Notify(ctx context.Context, userID uint, eventType, title, message string) error
}

// DBNotifier persists notifications as inbox rows. Email delivery, when
// enabled, reads from this table.
type DBNotifier struct{ DB *gorm.DB }

func NewDBNotifier(db *gorm.DB) *DBNotifier { return &DBNotifier{DB: db} }

func (n *DBNotifier) Notify(_ context.Context, userID uint, eventType, title, message string) error {
	row := models.Notification{
		UserID:  userID,
		Type:    eventType,
		Title:   title,
		Message: message,
		SentAt:  time.Now(),
	}
	return n.DB.Create(&row).Error
}

// LogNotifier logs instead of persisting; used in tests and tooling.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID uint, eventType, title, _ string) error {
	log.Printf("notify user=%d event=%s title=%q", userID, eventType, title)
	return nil
}

// Dispatch delivers fire-and-forget: errors and panics are logged and
// swallowed. A nil notifier is a no-op.
func Dispatch(ctx context.Context, n Notifier, userID uint, eventType, title, message string) {
	if n == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("notifier panic event=%s user=%d: %v", eventType, userID, rec)
		}
	}()
	if err := n.Notify(ctx, userID, eventType, title, message); err != nil {
		log.Printf("notifier error event=%s user=%d: %v", eventType, userID, err)
	}
}
