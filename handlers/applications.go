package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/drivewise-academy/backend/config"
	"github.com/drivewise-academy/backend/middleware"
	"github.com/drivewise-academy/backend/models"
)

// CreateApplication submits a new LLR application for the logged-in user.
func CreateApplication(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	applicantID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID in token", http.StatusUnauthorized)
		return
	}

	var in CreateApplicationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(in); err != nil {
		http.Error(w, "invalid application: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(in.Address); err != nil {
		http.Error(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return
	}

	svc := NewApplicationService(config.DB, config.ApplicationIDPrefix())
	app, err := svc.CreateApplication(applicantID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

// ListMyApplications returns the caller's applications, newest first.
func ListMyApplications(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	applicantID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID in token", http.StatusUnauthorized)
		return
	}

	svc := NewApplicationService(config.DB, config.ApplicationIDPrefix())
	apps, err := svc.ListByApplicant(applicantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apps)
}

// GetApplication fetches one application. Owners see their own records;
// admins see everything.
func GetApplication(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid application ID", http.StatusBadRequest)
		return
	}

	var app models.Application
	if err := config.DB.First(&app, "id = ?", id).Error; err != nil {
		http.Error(w, "application not found", http.StatusNotFound)
		return
	}

	claims := middleware.GetClaims(r)
	if claims.Role != string(models.RoleAdmin) && app.ApplicantID.String() != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

// DeleteApplication removes an application together with its ledger.
func DeleteApplication(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid application ID", http.StatusBadRequest)
		return
	}

	claims := middleware.GetClaims(r)
	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID in token", http.StatusUnauthorized)
		return
	}

	svc := NewApplicationService(config.DB, config.ApplicationIDPrefix())
	if err := svc.Delete(id, callerID, claims.Role == string(models.RoleAdmin)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAllApplications is the admin register view with search and paging.
func ListAllApplications(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	offset := (page - 1) * limit

	q := config.DB.Model(&models.Application{})
	if search := r.URL.Query().Get("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("full_name ILIKE ? OR application_id ILIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}
	if status := r.URL.Query().Get("payment_status"); status != "" {
		q = q.Where("payment_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		http.Error(w, "DB count error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var apps []models.Application
	if err := q.Order("submitted_at DESC").Limit(limit).Offset(offset).Find(&apps).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  apps,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
