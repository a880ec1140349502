package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/drivewise-academy/backend/models"
)

var validate = validator.New()

// writeServiceError maps the error taxonomy onto HTTP statuses. Every
// failure path out of the services lands here; nothing is swallowed.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr  *models.ValidationError
		amountErr      *models.InvalidAmountError
		authErr        *models.AuthError
		persistenceErr *models.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &amountErr):
		http.Error(w, amountErr.Error(), http.StatusBadRequest)
	case errors.As(err, &authErr):
		http.Error(w, authErr.Error(), http.StatusForbidden)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "record not found", http.StatusNotFound)
	case errors.As(err, &persistenceErr):
		http.Error(w, "storage error: "+persistenceErr.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
