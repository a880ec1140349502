package handlers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/drivewise-academy/backend/models"
)

func expectDisableCascade(mock sqlmock.Sqlmock, userID uuid.UUID, status models.UserStatus) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1.*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "status"}).
			AddRow(userID.String(), "ravi", string(status)))
	mock.ExpectExec(`DELETE FROM "llr_payments" WHERE application_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "llr_applications" WHERE applicant_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestDisableAccount(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewAccountService(gdb)
	userID := uuid.New()

	expectDisableCascade(mock, userID, models.UserStatusActive)
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DisableAccount(userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisableAccountIdempotent(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewAccountService(gdb)
	userID := uuid.New()

	// already disabled: cascade deletes still run but no status update
	expectDisableCascade(mock, userID, models.UserStatusDisabled)
	mock.ExpectCommit()

	require.NoError(t, svc.DisableAccount(userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisableAccountUnknownUser(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewAccountService(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1.*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := svc.DisableAccount(uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewAccountService(gdb)

	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.ResetPassword(uuid.New(), "$2a$10$newhash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordUnknownUser(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewAccountService(gdb)

	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ResetPassword(uuid.New(), "$2a$10$newhash")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotesUnknownUser(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewAccountService(gdb)

	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.UpdateNotes(uuid.New(), "spoke on phone")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
