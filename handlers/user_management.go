package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivewise-academy/backend/config"
	"github.com/drivewise-academy/backend/middleware"
	"github.com/drivewise-academy/backend/models"
)

// GetAllUsers lists accounts for the admin view. Disabled users are
// filtered out at read time unless include_disabled is set.
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	offset := (page - 1) * limit

	q := config.DB.Model(&models.User{})
	if r.URL.Query().Get("include_disabled") != "true" {
		q = q.Where("status = ?", models.UserStatusActive)
	}
	if search := r.URL.Query().Get("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("username ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		http.Error(w, "DB count error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var users []models.User
	if err := q.Order("username ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]userPayload, len(users))
	for i, u := range users {
		out[i] = toUserPayload(u)
	}

	response := map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  out,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func GetUserByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	user.PasswordHash = ""
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// DisableUser soft-disables an account and cascade-deletes its
// applications. Safe to call twice; the second call is a no-op.
func DisableUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	// Prevent self-disablement
	claims := middleware.GetClaims(r)
	if claims.UserID == vars["id"] {
		http.Error(w, "cannot disable your own account", http.StatusBadRequest)
		return
	}

	svc := NewAccountService(config.DB)
	if err := svc.DisableAccount(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordReq struct {
	Password string `json:"password" validate:"required,min=6"`
}

// ResetUserPassword lets an administrator set a new password for an
// account, e.g. when a company has locked itself out.
func ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var req resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "a password of at least 6 characters is required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	svc := NewAccountService(config.DB)
	if err := svc.ResetPassword(id, string(hash)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "password reset"})
}

type updateNotesReq struct {
	Notes string `json:"notes"`
}

// UpdateUserNotes replaces the administrator notes on a user record.
func UpdateUserNotes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var req updateNotesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	svc := NewAccountService(config.DB)
	if err := svc.UpdateNotes(id, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "notes updated"})
}
