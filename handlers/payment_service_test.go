package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drivewise-academy/backend/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		totalFee   string
		paid       string
		amount     string
		wantPaid   string
		wantStatus models.PaymentStatus
		wantErr    bool
	}{
		{"first partial", "500", "0", "200", "200", models.PaymentStatusPartiallyPaid, false},
		{"settles exactly", "500", "200", "300", "500", models.PaymentStatusPaid, false},
		{"full in one go", "500", "0", "500", "500", models.PaymentStatusPaid, false},
		{"zero amount rejected", "500", "0", "0", "", "", true},
		{"negative amount rejected", "500", "0", "-50", "", "", true},
		{"exceeds pending", "500", "0", "600", "", "", true},
		{"exceeds remaining pending", "500", "400", "150", "", "", true},
		{"already settled", "500", "500", "1", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newPaid, status, err := reconcile(d(tt.totalFee), d(tt.paid), d(tt.amount))
			if tt.wantErr {
				var invalid *models.InvalidAmountError
				require.Error(t, err)
				assert.True(t, errors.As(err, &invalid), "want InvalidAmountError, got %T", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, newPaid.Equal(d(tt.wantPaid)), "paid = %s, want %s", newPaid, tt.wantPaid)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestRecordPayment(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewPaymentService(gdb)
	appID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "llr_applications" WHERE id = \$1.*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "total_fee", "paid_amount", "payment_status"}).
			AddRow(appID.String(), "DW-LLR-001", "500", "200", "Partially Paid"))
	mock.ExpectExec(`UPDATE "llr_applications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "llr_payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := svc.RecordPayment(appID, d("300"))
	require.NoError(t, err)
	assert.True(t, app.PaidAmount.Equal(d("500")))
	assert.Equal(t, models.PaymentStatusPaid, app.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentSequence(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewPaymentService(gdb)
	appID := uuid.New()

	// three instalments against a 500 fee: paidAmount must track the
	// running sum and exactly one ledger entry per call must be written
	steps := []struct {
		paidBefore string
		amount     string
		wantPaid   string
		wantStatus models.PaymentStatus
	}{
		{"0", "100", "100", models.PaymentStatusPartiallyPaid},
		{"100", "150", "250", models.PaymentStatusPartiallyPaid},
		{"250", "250", "500", models.PaymentStatusPaid},
	}

	for _, step := range steps {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "llr_applications" WHERE id = \$1.*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "total_fee", "paid_amount", "payment_status"}).
				AddRow(appID.String(), "500", step.paidBefore, string(models.DerivePaymentStatus(d("500"), d(step.paidBefore)))))
		mock.ExpectExec(`UPDATE "llr_applications" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "llr_payments"`).
			WithArgs(sqlmock.AnyArg(), appID.String(), step.amount, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		app, err := svc.RecordPayment(appID, d(step.amount))
		require.NoError(t, err)
		assert.True(t, app.PaidAmount.Equal(d(step.wantPaid)), "paid = %s, want %s", app.PaidAmount, step.wantPaid)
		assert.Equal(t, step.wantStatus, app.PaymentStatus)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentOverpaymentRollsBack(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewPaymentService(gdb)
	appID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "llr_applications" WHERE id = \$1.*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_fee", "paid_amount", "payment_status"}).
			AddRow(appID.String(), "500", "450", "Partially Paid"))
	mock.ExpectRollback()

	_, err := svc.RecordPayment(appID, d("100"))
	var invalid *models.InvalidAmountError
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalid), "want InvalidAmountError, got %T", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentUnknownApplication(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewPaymentService(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "llr_applications" WHERE id = \$1.*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.RecordPayment(uuid.New(), d("100"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentHistoryOrdersByPaidAt(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewPaymentService(gdb)
	appID := uuid.New()

	// rows come back out of order on purpose
	t1 := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "llr_payments" WHERE application_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "amount", "paid_at"}).
			AddRow(uuid.NewString(), appID.String(), "200", t2).
			AddRow(uuid.NewString(), appID.String(), "100", t1).
			AddRow(uuid.NewString(), appID.String(), "150", t3))

	payments, err := svc.GetPaymentHistory(appID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.True(t, payments[0].PaidAt.Equal(t1))
	assert.True(t, payments[1].PaidAt.Equal(t3))
	assert.True(t, payments[2].PaidAt.Equal(t2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestApplication(t *testing.T) {
	old := models.Application{ApplicationID: "DW-LLR-001", SubmittedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.Application{ApplicationID: "DW-LLR-002", SubmittedAt: time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)}
	legacy := models.Application{ApplicationID: "DW-LLR-000"} // zero submittedAt

	tests := []struct {
		name string
		apps []models.Application
		want string
	}{
		{"empty", nil, ""},
		{"single", []models.Application{old}, "DW-LLR-001"},
		{"picks newest", []models.Application{old, newer}, "DW-LLR-002"},
		{"order independent", []models.Application{newer, old}, "DW-LLR-002"},
		{"legacy zero timestamp loses", []models.Application{legacy, old}, "DW-LLR-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := latestApplication(tt.apps)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ApplicationID)
		})
	}
}

func TestLatestApplicationSnapshotEmpty(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewPaymentService(gdb)

	mock.ExpectQuery(`SELECT \* FROM "llr_applications" WHERE applicant_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	snap, err := svc.LatestApplicationSnapshot(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, snap.ApplicationID)
	assert.True(t, snap.TotalFee.IsZero())
	assert.True(t, snap.PendingAmount.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
