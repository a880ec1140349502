package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/drivewise-academy/backend/handlers"
	"github.com/drivewise-academy/backend/middleware"
	"github.com/drivewise-academy/backend/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", handlers.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.GetCurrentUser).Methods("GET")

	api.HandleFunc("/applications", handlers.CreateApplication).Methods("POST")
	api.HandleFunc("/applications", handlers.ListMyApplications).Methods("GET")
	api.HandleFunc("/applications/{id}", handlers.GetApplication).Methods("GET")
	api.HandleFunc("/applications/{id}", handlers.DeleteApplication).Methods("DELETE")
	api.HandleFunc("/applications/{id}/payments", handlers.GetPaymentHistory).Methods("GET")
	api.HandleFunc("/payments/summary", handlers.GetPaymentSummary).Methods("GET")

	// =====================================================
	// Admin Routes (require admin role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(requireAdmin)

	admin.HandleFunc("/accounts", handlers.CreateAccount).Methods("POST")
	admin.HandleFunc("/users", handlers.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", handlers.GetUserByID).Methods("GET")
	admin.HandleFunc("/users/{id}/disable", handlers.DisableUser).Methods("POST")
	admin.HandleFunc("/users/{id}/notes", handlers.UpdateUserNotes).Methods("PUT")
	admin.HandleFunc("/users/{id}/reset-password", handlers.ResetUserPassword).Methods("POST")
	admin.HandleFunc("/applications", handlers.ListAllApplications).Methods("GET")
	admin.HandleFunc("/applications/export", handlers.ExportApplications).Methods("GET")
	admin.HandleFunc("/applications/{id}/payments", handlers.RecordPayment).Methods("POST")

	return r
}

func requireAdmin(next http.Handler) http.Handler {
	return middleware.RequireRole([]string{string(models.RoleAdmin)}, next)
}
