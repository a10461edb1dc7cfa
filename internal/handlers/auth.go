package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ValentinRndn/profconnect/internal/auth"
	"github.com/ValentinRndn/profconnect/internal/httpx"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/party"
	"github.com/ValentinRndn/profconnect/internal/validation"
)

// AuthHandler handles signup/login/logout. Signup creates the user plus its
// role profile (école or intervenant) in one transaction; intervenants start
// in pending until approved by an admin.
type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

// ensureRole fetches or creates a role row by name.
func ensureRole(db *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err == nil {
		return &role, nil
	}
	role = models.Role{Name: name}
	if err := db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Role     string `json:"role"` // ecole | intervenant

	// profile fields
	NomStructure string `json:"nom_structure,omitempty"` // raison sociale (école)
	SIRET        string `json:"siret,omitempty"`
	Ville        string `json:"ville,omitempty"`
	Specialite   string `json:"specialite,omitempty"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	validation.Required("nom", req.Nom, v)
	validation.OneOf("role", req.Role, []string{string(party.RoleEcole), string(party.RoleIntervenant)}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "hash_error", nil)
		return
	}

	var user models.User
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		role, rerr := ensureRole(tx, req.Role)
		if rerr != nil {
			return rerr
		}
		user = models.User{Email: req.Email, Password: string(hash), Nom: req.Nom, Prenom: req.Prenom, RoleID: role.ID}
		if cerr := tx.Create(&user).Error; cerr != nil {
			return cerr
		}
		switch req.Role {
		case string(party.RoleEcole):
			nom := req.NomStructure
			if nom == "" {
				nom = req.Nom
			}
			e := models.Ecole{UserID: user.ID, Nom: nom, SIRET: req.SIRET, Ville: req.Ville, Email: req.Email}
			return tx.Create(&e).Error
		case string(party.RoleIntervenant):
			i := models.Intervenant{UserID: user.ID, Nom: req.Nom, Prenom: req.Prenom, Specialite: req.Specialite, Status: models.IntervenantPending}
			return tx.Create(&i).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "email_deja_utilise", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": user.ID, "email": user.Email, "role": req.Role})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	err := h.DB.Preload("Role").Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusUnauthorized, "identifiants_invalides", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "identifiants_invalides", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "email": user.Email, "role": user.Role.Name})
}

func (h *AuthHandler) logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
