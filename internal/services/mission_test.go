package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/notify"
	"github.com/ValentinRndn/profconnect/internal/party"
	"gorm.io/gorm"
)

func newMissionService(d *gorm.DB) *MissionService {
	return NewMissionService(d, testGate(d), notify.LogNotifier{})
}

func TestCreateMission(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := newMissionService(d)

	ecoleUser, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")

	t.Run("defaults to ACTIVE for the actor's school", func(t *testing.T) {
		m, err := svc.Create(ctx, actorFor(ecoleUser, party.RoleEcole), CreateMissionInput{Titre: "Cours de SQL"})
		require.NoError(t, err)
		assert.Equal(t, models.MissionActive, m.Status)
		assert.Equal(t, ecole.ID, m.EcoleID)
		assert.Nil(t, m.IntervenantID)
	})

	t.Run("explicit draft is kept", func(t *testing.T) {
		m, err := svc.Create(ctx, actorFor(ecoleUser, party.RoleEcole), CreateMissionInput{Titre: "Brouillon", Status: models.MissionDraft})
		require.NoError(t, err)
		assert.Equal(t, models.MissionDraft, m.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.Create(ctx, actorFor(ecoleUser, party.RoleEcole), CreateMissionInput{Titre: "X", Status: "PAUSED"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	})

	t.Run("intervenant may not create", func(t *testing.T) {
		iu, _ := seedIntervenant(t, d, "i@test", models.IntervenantApproved)
		_, err := svc.Create(ctx, actorFor(iu, party.RoleIntervenant), CreateMissionInput{Titre: "Non"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("admin must name an existing school", func(t *testing.T) {
		admin := seedAdmin(t, d, "admin@test")
		_, err := svc.Create(ctx, actorFor(admin, party.RoleAdmin), CreateMissionInput{Titre: "Sans école"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

		_, err = svc.Create(ctx, actorFor(admin, party.RoleAdmin), CreateMissionInput{Titre: "École fantôme", EcoleID: 9999})
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		m, err := svc.Create(ctx, actorFor(admin, party.RoleAdmin), CreateMissionInput{Titre: "Pour Carnot", EcoleID: ecole.ID})
		require.NoError(t, err)
		assert.Equal(t, ecole.ID, m.EcoleID)
	})
}

func TestChangeMissionStatus(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := newMissionService(d)

	ecoleUser, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")
	otherUser, _ := seedEcole(t, d, "autre@test", "Collège Pascal")
	m := seedMission(t, d, ecole.ID, models.MissionActive)

	t.Run("owner moves the status freely", func(t *testing.T) {
		done, err := svc.ChangeStatus(ctx, actorFor(ecoleUser, party.RoleEcole), m.ID, models.MissionCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.MissionCompleted, done.Status)

		// no directional restriction
		back, err := svc.ChangeStatus(ctx, actorFor(ecoleUser, party.RoleEcole), m.ID, models.MissionDraft)
		require.NoError(t, err)
		assert.Equal(t, models.MissionDraft, back.Status)
	})

	t.Run("value outside the enum", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, actorFor(ecoleUser, party.RoleEcole), m.ID, "PAUSED")
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	})

	t.Run("another school is refused", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, actorFor(otherUser, party.RoleEcole), m.ID, models.MissionActive)
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("missing mission", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, actorFor(ecoleUser, party.RoleEcole), 9999, models.MissionActive)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestAssignIntervenant(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := newMissionService(d)

	ecoleUser, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")
	_, interv := seedIntervenant(t, d, "i@test", models.IntervenantApproved)
	_, autre := seedIntervenant(t, d, "autre@test", models.IntervenantApproved)
	actor := actorFor(ecoleUser, party.RoleEcole)

	t.Run("draft auto-promotes on assignment", func(t *testing.T) {
		m := seedMission(t, d, ecole.ID, models.MissionDraft)
		filled, err := svc.AssignIntervenant(ctx, actor, m.ID, interv.ID, false)
		require.NoError(t, err)
		require.NotNil(t, filled.IntervenantID)
		assert.Equal(t, interv.ID, *filled.IntervenantID)
		assert.Equal(t, models.MissionActive, filled.Status)
	})

	t.Run("overwrite needs force", func(t *testing.T) {
		m := seedMission(t, d, ecole.ID, models.MissionActive)
		_, err := svc.AssignIntervenant(ctx, actor, m.ID, interv.ID, false)
		require.NoError(t, err)

		// same intervenant again is a no-op, not a conflict
		_, err = svc.AssignIntervenant(ctx, actor, m.ID, interv.ID, false)
		require.NoError(t, err)

		_, err = svc.AssignIntervenant(ctx, actor, m.ID, autre.ID, false)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

		forced, err := svc.AssignIntervenant(ctx, actor, m.ID, autre.ID, true)
		require.NoError(t, err)
		assert.Equal(t, autre.ID, *forced.IntervenantID)
	})

	t.Run("unknown intervenant", func(t *testing.T) {
		m := seedMission(t, d, ecole.ID, models.MissionActive)
		_, err := svc.AssignIntervenant(ctx, actor, m.ID, 9999, false)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestDeleteMission(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := newMissionService(d)

	ecoleUser, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")
	otherUser, _ := seedEcole(t, d, "autre@test", "Collège Pascal")
	m := seedMission(t, d, ecole.ID, models.MissionActive)

	err := svc.Delete(ctx, actorFor(otherUser, party.RoleEcole), m.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Delete(ctx, actorFor(ecoleUser, party.RoleEcole), m.ID))

	_, err = svc.Get(ctx, m.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListMissions(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	svc := newMissionService(d)

	_, ecole := seedEcole(t, d, "ecole@test", "Lycée Carnot")
	_, autre := seedEcole(t, d, "autre@test", "Collège Pascal")
	seedMission(t, d, ecole.ID, models.MissionActive)
	seedMission(t, d, ecole.ID, models.MissionDraft)
	seedMission(t, d, autre.ID, models.MissionActive)

	all, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := svc.List(ctx, ecole.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
}
