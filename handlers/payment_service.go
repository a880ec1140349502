package handlers

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drivewise-academy/backend/models"
)

// PaymentService is the reconciliation engine. Every mutation of an
// application's paidAmount and paymentStatus goes through RecordPayment;
// nothing else in the system writes those fields.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// reconcile recomputes the running total and status from the absolute
// amounts. The status is derived fresh on every call rather than tracked
// as a transition flag, so replays and a future refund extension stay
// correct.
func reconcile(totalFee, paidAmount, amount decimal.Decimal) (decimal.Decimal, models.PaymentStatus, error) {
	pending := totalFee.Sub(paidAmount)
	if amount.LessThanOrEqual(decimal.Zero) || amount.GreaterThan(pending) {
		return decimal.Decimal{}, "", &models.InvalidAmountError{Amount: amount, Pending: pending}
	}
	newPaid := paidAmount.Add(amount)
	return newPaid, models.DerivePaymentStatus(totalFee, newPaid), nil
}

// RecordPayment applies one partial or full payment as a single atomic
// unit: the application row is locked, the amount re-validated against
// the pending balance, the running total and status updated, and one
// ledger entry appended. Either all of it commits or none of it does.
func (s *PaymentService) RecordPayment(applicationID uuid.UUID, amount decimal.Decimal) (*models.Application, error) {
	var app models.Application
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the row so concurrent payments on the same application
		// serialize instead of racing on the read of paidAmount.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&app, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return &models.PersistenceError{Op: "read", Target: "llr_applications/" + applicationID.String(), Err: err}
		}

		newPaid, newStatus, err := reconcile(app.TotalFee, app.PaidAmount, amount)
		if err != nil {
			return err
		}

		if err := tx.Model(&app).
			Select("paid_amount", "payment_status").
			Updates(models.Application{PaidAmount: newPaid, PaymentStatus: newStatus}).Error; err != nil {
			return &models.PersistenceError{Op: "update", Target: "llr_applications/" + applicationID.String(), Err: err}
		}

		payment := models.Payment{
			ApplicationID: app.ID,
			Amount:        amount,
			PaidAt:        time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return &models.PersistenceError{Op: "create", Target: "llr_applications/" + applicationID.String() + "/payments", Err: err}
		}

		app.PaidAmount = newPaid
		app.PaymentStatus = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetPaymentHistory returns an application's ledger entries ordered by
// paidAt ascending. The store is not trusted to return them ordered.
func (s *PaymentService) GetPaymentHistory(applicationID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Where("application_id = ?", applicationID).Find(&payments).Error; err != nil {
		return nil, &models.PersistenceError{Op: "read", Target: "llr_applications/" + applicationID.String() + "/payments", Err: err}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})
	return payments, nil
}

// ApplicationSnapshot summarizes the applicant's most recent application.
type ApplicationSnapshot struct {
	ApplicationID  string          `json:"applicationId,omitempty"`
	TotalFee       decimal.Decimal `json:"totalFee"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	PendingAmount  decimal.Decimal `json:"pendingAmount"`
	PaymentDueDate string          `json:"paymentDueDate,omitempty"`
}

// latestApplication picks the record with the maximum submittedAt. Sorting
// happens here rather than in the store because legacy rows may carry a
// zero submittedAt, which store-side ordering handles inconsistently.
func latestApplication(apps []models.Application) *models.Application {
	if len(apps) == 0 {
		return nil
	}
	latest := &apps[0]
	for i := range apps[1:] {
		if apps[i+1].SubmittedAt.After(latest.SubmittedAt) {
			latest = &apps[i+1]
		}
	}
	return latest
}

// LatestApplicationSnapshot derives fee/paid/pending/due-date figures from
// the applicant's newest application. An applicant with no applications
// gets an explicit zero snapshot, not an error.
func (s *PaymentService) LatestApplicationSnapshot(applicantID uuid.UUID) (*ApplicationSnapshot, error) {
	var apps []models.Application
	if err := s.db.Where("applicant_id = ?", applicantID).Find(&apps).Error; err != nil {
		return nil, &models.PersistenceError{Op: "read", Target: "llr_applications", Err: err}
	}

	latest := latestApplication(apps)
	if latest == nil {
		return &ApplicationSnapshot{
			TotalFee:      decimal.Zero,
			PaidAmount:    decimal.Zero,
			PendingAmount: decimal.Zero,
		}, nil
	}

	return &ApplicationSnapshot{
		ApplicationID:  latest.ApplicationID,
		TotalFee:       latest.TotalFee,
		PaidAmount:     latest.PaidAmount,
		PendingAmount:  latest.PendingAmount(),
		PaymentDueDate: latest.PaymentDueDate,
	}, nil
}
