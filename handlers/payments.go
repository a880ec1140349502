package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/drivewise-academy/backend/config"
	"github.com/drivewise-academy/backend/middleware"
	"github.com/drivewise-academy/backend/models"
)

type recordPaymentReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordPayment applies a partial or full payment against an application.
// Validation of the amount happens inside the engine, under the same
// transaction that writes the ledger entry.
func RecordPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid application ID", http.StatusBadRequest)
		return
	}

	var req recordPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	svc := NewPaymentService(config.DB)
	app, err := svc.RecordPayment(id, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

// GetPaymentHistory lists an application's ledger, oldest first. Owners
// see their own history; admins see everything.
func GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
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

	svc := NewPaymentService(config.DB)
	payments, err := svc.GetPaymentHistory(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

// GetPaymentSummary returns the caller's latest-application snapshot:
// total fee, paid, pending and the due date. Zeroed when the caller has
// no applications yet.
func GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	applicantID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID in token", http.StatusUnauthorized)
		return
	}

	svc := NewPaymentService(config.DB)
	snapshot, err := svc.LatestApplicationSnapshot(applicantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}
