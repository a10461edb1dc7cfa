package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ValentinRndn/profconnect/internal/db"
	"github.com/ValentinRndn/profconnect/internal/gate"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/party"
	"github.com/ValentinRndn/profconnect/internal/policy"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, m := range db.Models() {
		if err := d.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	return d
}

func testGate(d *gorm.DB) *gate.Gate[party.Actor] { return policy.NewGate(d) }

// seedEcole creates a user with the ecole role and its school profile.
func seedEcole(t *testing.T, d *gorm.DB, email, nom string) (models.User, models.Ecole) {
	t.Helper()
	user := seedUser(t, d, email, "ecole")
	e := models.Ecole{UserID: user.ID, Nom: nom, Ville: "Paris"}
	if err := d.Create(&e).Error; err != nil {
		t.Fatalf("ecole: %v", err)
	}
	return user, e
}

// seedIntervenant creates a user with the intervenant role and its profile.
func seedIntervenant(t *testing.T, d *gorm.DB, email string, status models.IntervenantStatus) (models.User, models.Intervenant) {
	t.Helper()
	user := seedUser(t, d, email, "intervenant")
	i := models.Intervenant{UserID: user.ID, Nom: "Durand", Prenom: "Alex", Specialite: "Mathématiques", Status: status}
	if err := d.Create(&i).Error; err != nil {
		t.Fatalf("intervenant: %v", err)
	}
	return user, i
}

func seedAdmin(t *testing.T, d *gorm.DB, email string) models.User {
	t.Helper()
	return seedUser(t, d, email, "admin")
}

func seedUser(t *testing.T, d *gorm.DB, email, roleName string) models.User {
	t.Helper()
	var role models.Role
	if err := d.Where("name = ?", roleName).First(&role).Error; err != nil {
		role = models.Role{Name: roleName}
		if err := d.Create(&role).Error; err != nil {
			t.Fatalf("role: %v", err)
		}
	}
	u := models.User{Email: email, Password: "x", Nom: "Test", RoleID: role.ID}
	if err := d.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func seedMission(t *testing.T, d *gorm.DB, ecoleID uint, status models.MissionStatus) models.Mission {
	t.Helper()
	prix := int64(50000)
	m := models.Mission{Titre: "Cours de probabilités", Status: status, PrixCents: &prix, EcoleID: ecoleID}
	if err := d.Create(&m).Error; err != nil {
		t.Fatalf("mission: %v", err)
	}
	return m
}

func actorFor(u models.User, role party.Role) party.Actor {
	return party.Actor{UserID: u.ID, Role: role}
}
