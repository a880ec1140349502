package handlers

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drivewise-academy/backend/models"
)

// AccountService manages the user lifecycle. Disablement is a soft state
// flip plus a cascade delete of the user's applications, applied as one
// transaction so a store failure cannot leave a disabled user with live
// records or vice versa.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// DisableAccount disables a user and deletes their application records
// and payment ledgers. The user row itself is kept: the username maps to
// a login identity that cannot be cheaply recreated, and keeping the row
// preserves uniqueness and the audit trail. Calling this on an already
// disabled user is a no-op, not an error.
func (s *AccountService) DisableAccount(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return &models.PersistenceError{Op: "read", Target: "users/" + userID.String(), Err: err}
		}

		// Ledger entries first, then the applications themselves. Both
		// are no-ops on a repeat call.
		appIDs := tx.Model(&models.Application{}).Select("id").Where("applicant_id = ?", userID)
		if err := tx.Where("application_id IN (?)", appIDs).Delete(&models.Payment{}).Error; err != nil {
			return &models.PersistenceError{Op: "delete", Target: "llr_payments", Err: err}
		}
		if err := tx.Where("applicant_id = ?", userID).Delete(&models.Application{}).Error; err != nil {
			return &models.PersistenceError{Op: "delete", Target: "llr_applications", Err: err}
		}

		if user.Disabled() {
			return nil
		}
		if err := tx.Model(&user).Update("status", models.UserStatusDisabled).Error; err != nil {
			return &models.PersistenceError{Op: "update", Target: "users/" + userID.String(), Err: err}
		}
		return nil
	})
}

// ResetPassword replaces a user's credential with a new bcrypt hash.
// Used by the admin reset flow; users cannot reset their own password.
func (s *AccountService) ResetPassword(userID uuid.UUID, passwordHash string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
	if res.Error != nil {
		return &models.PersistenceError{Op: "update", Target: "users/" + userID.String(), Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateNotes replaces the administrator notes on a user record.
func (s *AccountService) UpdateNotes(userID uuid.UUID, notes string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("notes", notes)
	if res.Error != nil {
		return &models.PersistenceError{Op: "update", Target: "users/" + userID.String(), Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
