// handlers/auth.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivewise-academy/backend/config"
	"github.com/drivewise-academy/backend/middleware"
	"github.com/drivewise-academy/backend/models"
)

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	CompanyName string            `json:"companyName,omitempty"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func toUserPayload(u models.User) userPayload {
	return userPayload{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		CompanyName: u.CompanyName,
		Role:        u.Role,
		Status:      u.Status,
	}
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	var u models.User
	if err := config.DB.Where("username = ?", req.Username).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	// Disabled accounts are blocked before the password check.
	if u.Disabled() {
		http.Error(w, "this account has been disabled by an administrator", http.StatusForbidden)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := middleware.GenerateToken(u.ID.String(), u.Username, string(u.Role))
	if err != nil {
		http.Error(w, "couldn't create token", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	if err := config.DB.Model(&u).Update("last_login", now).Error; err != nil {
		// login still succeeds; the timestamp is best-effort
		log.Printf("failed to update last login for %s: %v", u.Username, err)
	}
	u.LastLogin = &now

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResp{Token: token, User: toUserPayload(u)})
}

func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserPayload(user))
}

type createAccountReq struct {
	CompanyName string `json:"companyName" validate:"required,min=2"`
	Username    string `json:"username" validate:"required,min=2"`
	Password    string `json:"password" validate:"required,min=6"`
}

// CreateAccount lets an administrator provision a company account. The
// login email is synthesized as {username}@<tenant domain>; the naming
// convention is owned here, not by the identity layer.
func CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid account details: company name, username and a password of at least 6 characters are required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	u := models.User{
		Username:     req.Username,
		Email:        fmt.Sprintf("%s@%s", req.Username, config.TenantDomain()),
		CompanyName:  req.CompanyName,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	if err := config.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "username already taken", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserPayload(u))
}
