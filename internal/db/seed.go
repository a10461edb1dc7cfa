package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ValentinRndn/profconnect/internal/models"
)

// Seed inserts the baseline roles. Idempotent: existing rows are left alone.
func Seed(db *gorm.DB) {
	baseRoles := []models.Role{
		{Name: "admin", Description: "Administrateur de la plateforme"},
		{Name: "ecole", Description: "Établissement scolaire"},
		{Name: "intervenant", Description: "Intervenant indépendant"},
	}
	for _, r := range baseRoles {
		var existing models.Role
		if err := db.Where("name = ?", r.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			db.Create(&r)
		}
	}
}
