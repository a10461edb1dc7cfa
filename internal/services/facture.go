package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/gate"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/party"
	"github.com/ValentinRndn/profconnect/internal/policy"
)

// TVARate is the fixed French VAT rate applied to collaboration invoices.
const TVARate = 0.20

// paymentDelay is added to the collaboration end date (or to now when no end
// date is set) to obtain the due date.
const paymentDelay = 30 * 24 * time.Hour

// Renderer is the external PDF collaborator: given a stored facture it
// produces a file and returns its path. The default no-op keeps rendering
// out of the core.
type Renderer interface {
	Render(f *models.Facture) (string, error)
}

// FactureService derives invoices from activated collaborations and serves
// read access for the surrounding tooling.
type FactureService struct {
	DB       *gorm.DB
	Gate     *gate.Gate[party.Actor]
	Renderer Renderer
}

func NewFactureService(db *gorm.DB, g *gate.Gate[party.Actor]) *FactureService {
	return &FactureService{DB: db, Gate: g}
}

// ComputeTVA rounds half away from zero on cents, e.g. 100000 -> 20000.
func ComputeTVA(montantHT int64) int64 {
	return int64(math.Round(float64(montantHT) * TVARate))
}

// CreateForCollaboration generates the facture for a collaboration that just
// became en_cours. Returns (nil, nil) when no invoice is due (montant absent
// or non-positive). The per-year sequence row is locked and incremented in
// the same transaction that inserts the facture, so concurrent generations
// cannot collide on a numero.
func (s *FactureService) CreateForCollaboration(ctx context.Context, collab *models.Collaboration) (*models.Facture, error) {
	if collab.MontantHT == nil || *collab.MontantHT <= 0 {
		return nil, nil
	}
	ht := *collab.MontantHT
	tva := ComputeTVA(ht)

	due := time.Now().Add(paymentDelay)
	if collab.DateFin != nil {
		due = collab.DateFin.Add(paymentDelay)
	}

	collabID := collab.ID
	facture := models.Facture{
		Type:             "collaboration",
		EmetteurType:     string(party.SideIntervenant),
		EmetteurID:       collab.IntervenantID,
		DestinataireType: string(party.SideEcole),
		DestinataireID:   collab.EcoleID,
		MontantHT:        ht,
		TVA:              tva,
		MontantTTC:       ht + tva,
		Description:      "Facture collaboration : " + collab.Titre,
		Status:           models.FactureBrouillon,
		DateEcheance:     due,
		CollaborationID:  &collabID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		numero, err := nextNumero(tx, time.Now().Year())
		if err != nil {
			return err
		}
		facture.Numero = numero
		return tx.Create(&facture).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Renderer != nil {
		// rendering is best-effort; the facture row is already committed
		if _, rerr := s.Renderer.Render(&facture); rerr != nil {
			log.Printf("facture %s: rendering failed: %v", facture.Numero, rerr)
		}
	}
	return &facture, nil
}

// nextNumero increments the per-year counter under a row lock and formats
// the invoice number. SQLite (tests) has no FOR UPDATE; its transactions are
// serialized anyway.
func nextNumero(tx *gorm.DB, year int) (string, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var counter models.FactureCounter
	err := q.Where("year = ?", year).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.FactureCounter{Year: year}
		if cerr := tx.Create(&counter).Error; cerr != nil {
			// lost a concurrent first-of-year insert: re-read the winner's row
			if rerr := q.Where("year = ?", year).First(&counter).Error; rerr != nil {
				return "", cerr
			}
		}
	} else if err != nil {
		return "", err
	}
	counter.Seq++
	if err := tx.Model(&models.FactureCounter{}).Where("id = ?", counter.ID).Update("seq", counter.Seq).Error; err != nil {
		return "", err
	}
	return models.FormatFactureNumero(year, counter.Seq), nil
}

// Get returns one facture for an authorized reader.
func (s *FactureService) Get(ctx context.Context, actor party.Actor, id uint) (*models.Facture, error) {
	var f models.Facture
	err := s.DB.WithContext(ctx).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("facture_introuvable")
	}
	if err != nil {
		return nil, err
	}
	if !s.Gate.Can(ctx, actor, gate.ActionView, policy.ResourceFacture, &f) {
		return nil, apperr.Forbidden("acces_refuse")
	}
	return &f, nil
}

// List returns the factures visible to the actor: all of them for an admin,
// otherwise the ones the actor issues or receives.
func (s *FactureService) List(ctx context.Context, actor party.Actor) ([]models.Facture, error) {
	q := s.DB.WithContext(ctx).Order("id desc")
	switch {
	case actor.IsAdmin():
		// unrestricted
	case actor.Role == party.RoleEcole:
		e, err := policy.NewResolver(s.DB).EcoleForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		q = q.Where("destinataire_type = ? AND destinataire_id = ?", string(party.SideEcole), e.ID)
	case actor.Role == party.RoleIntervenant:
		i, err := policy.NewResolver(s.DB).IntervenantForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		q = q.Where("emetteur_type = ? AND emetteur_id = ?", string(party.SideIntervenant), i.ID)
	default:
		return nil, apperr.Forbidden("acces_refuse")
	}
	var factures []models.Facture
	if err := q.Find(&factures).Error; err != nil {
		return nil, err
	}
	return factures, nil
}
