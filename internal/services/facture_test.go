package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/party"
	"gorm.io/gorm"
)

func TestComputeTVA(t *testing.T) {
	cases := []struct {
		ht   int64
		want int64
	}{
		{100000, 20000}, // 1000,00 € -> 200,00 €
		{1, 0},          // 0,01 € -> arrondi à zéro
		{3, 1},          // 0,03 € -> 0,006 € arrondi à 0,01 €
		{12345, 2469},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ComputeTVA(c.ht), "ht=%d", c.ht)
	}
}

func seedCollab(t *testing.T, d *gorm.DB, ecoleID, intervID uint, montant *int64, fin *time.Time) *models.Collaboration {
	t.Helper()
	c := models.Collaboration{
		Titre:         "Cours de mathématiques",
		EcoleID:       ecoleID,
		IntervenantID: intervID,
		MontantHT:     montant,
		DateFin:       fin,
		Status:        models.CollaborationEnCours,
	}
	require.NoError(t, d.Create(&c).Error)
	return &c
}

func TestCreateForCollaboration(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := NewFactureService(d, testGate(d))

	_, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")
	_, interv := seedIntervenant(t, d, "i@test", models.IntervenantApproved)
	year := time.Now().Year()

	t.Run("amounts and sequential numbering", func(t *testing.T) {
		montant := int64(50000)
		first, err := svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, &montant, nil))
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, fmt.Sprintf("FAC-%d-0001", year), first.Numero)
		assert.Equal(t, int64(50000), first.MontantHT)
		assert.Equal(t, int64(10000), first.TVA)
		assert.Equal(t, int64(60000), first.MontantTTC)
		assert.Equal(t, models.FactureBrouillon, first.Status)

		second, err := svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, &montant, nil))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("FAC-%d-0002", year), second.Numero)
	})

	t.Run("no montant means no facture", func(t *testing.T) {
		f, err := svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, nil, nil))
		require.NoError(t, err)
		assert.Nil(t, f)

		zero := int64(0)
		f, err = svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, &zero, nil))
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("due date follows the end date", func(t *testing.T) {
		montant := int64(1000)
		fin := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		f, err := svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, &montant, &fin))
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.WithinDuration(t, fin.Add(30*24*time.Hour), f.DateEcheance, time.Second)
	})

	t.Run("due date defaults to thirty days out", func(t *testing.T) {
		montant := int64(1000)
		f, err := svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, &montant, nil))
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), f.DateEcheance, time.Minute)
	})
}

func TestFactureAccess(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := NewFactureService(d, testGate(d))

	ecoleUser, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")
	intervUser, interv := seedIntervenant(t, d, "i@test", models.IntervenantApproved)
	otherUser, _ := seedIntervenant(t, d, "autre@test", models.IntervenantApproved)

	montant := int64(80000)
	f, err := svc.CreateForCollaboration(ctx, seedCollab(t, d, ecole.ID, interv.ID, &montant, nil))
	require.NoError(t, err)
	require.NotNil(t, f)

	t.Run("issuer and recipient can read", func(t *testing.T) {
		_, err := svc.Get(ctx, actorFor(intervUser, party.RoleIntervenant), f.ID)
		assert.NoError(t, err)
		_, err = svc.Get(ctx, actorFor(ecoleUser, party.RoleEcole), f.ID)
		assert.NoError(t, err)
	})

	t.Run("stranger cannot", func(t *testing.T) {
		_, err := svc.Get(ctx, actorFor(otherUser, party.RoleIntervenant), f.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("list is scoped to the actor", func(t *testing.T) {
		mine, err := svc.List(ctx, actorFor(intervUser, party.RoleIntervenant))
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		none, err := svc.List(ctx, actorFor(otherUser, party.RoleIntervenant))
		require.NoError(t, err)
		assert.Empty(t, none)

		admin := seedAdmin(t, d, "admin@test")
		all, err := svc.List(ctx, actorFor(admin, party.RoleAdmin))
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := svc.Get(ctx, actorFor(ecoleUser, party.RoleEcole), 9999)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
