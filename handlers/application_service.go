package handlers

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/drivewise-academy/backend/models"
)

// classOfVehicle values accepted on an application.
var vehicleClasses = []string{"MCWOG", "LMV", "MCWOG + LMV"}

// ApplicationService owns creation, lookup and deletion of LLR application
// records: daily-sequential ID assignment, due-date computation and fee
// validation.
type ApplicationService struct {
	db     *gorm.DB
	prefix string
}

func NewApplicationService(db *gorm.DB, prefix string) *ApplicationService {
	return &ApplicationService{db: db, prefix: prefix}
}

// CreateApplicationInput carries the validated form fields into the
// service. Payment status is derived, never taken from the caller.
type CreateApplicationInput struct {
	FullName       string          `json:"fullName" validate:"required,min=2"`
	FatherName     string          `json:"fatherName" validate:"required,min=2"`
	Gender         string          `json:"gender" validate:"required,oneof=male female"`
	DOB            string          `json:"dob" validate:"required"`
	BloodGroup     string          `json:"bloodGroup" validate:"required"`
	Phone          string          `json:"phone" validate:"required"`
	Address        models.Address  `json:"address"`
	ClassOfVehicle string          `json:"classOfVehicle" validate:"required"`
	Photo          *models.FileMeta `json:"photo,omitempty"`
	Signature      *models.FileMeta `json:"signature,omitempty"`
	TotalFee       decimal.Decimal `json:"totalFee"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
}

// validateFees enforces the fee invariants before anything is written:
// totalFee > 0 and paidAmount within [0, totalFee].
func validateFees(totalFee, paidAmount decimal.Decimal) error {
	if totalFee.LessThanOrEqual(decimal.Zero) {
		return &models.ValidationError{Field: "totalFee", Reason: "must be a positive amount"}
	}
	if paidAmount.IsNegative() {
		return &models.ValidationError{Field: "paidAmount", Reason: "cannot be negative"}
	}
	if paidAmount.GreaterThan(totalFee) {
		return &models.ValidationError{Field: "paidAmount", Reason: "cannot exceed totalFee"}
	}
	return nil
}

func validateVehicleClass(class string) error {
	for _, v := range vehicleClasses {
		if class == v {
			return nil
		}
	}
	return &models.ValidationError{Field: "classOfVehicle", Reason: "must be one of MCWOG, LMV, MCWOG + LMV"}
}

// NextApplicationID increments the per-day counter atomically in the
// store and formats the sequential ID. Must run inside the caller's
// transaction so a failed creation does not burn a number silently.
func (s *ApplicationService) NextApplicationID(tx *gorm.DB, submittedAt time.Time) (string, error) {
	day := submittedAt.Format(models.DateFormat)
	var counter int
	err := tx.Raw(`INSERT INTO application_sequences (seq_date, counter) VALUES (?, 1)
		ON CONFLICT (seq_date) DO UPDATE SET counter = application_sequences.counter + 1
		RETURNING counter`, day).Scan(&counter).Error
	if err != nil {
		return "", &models.PersistenceError{Op: "increment", Target: "application_sequences/" + day, Err: err}
	}
	return models.FormatApplicationID(s.prefix, counter), nil
}

// CreateApplication validates the submission, assigns the application ID
// and due date, derives the payment status and persists the record as one
// transaction.
func (s *ApplicationService) CreateApplication(applicantID uuid.UUID, in CreateApplicationInput) (*models.Application, error) {
	if err := validateFees(in.TotalFee, in.PaidAmount); err != nil {
		return nil, err
	}
	if err := validateVehicleClass(in.ClassOfVehicle); err != nil {
		return nil, err
	}

	addr, err := json.Marshal(in.Address)
	if err != nil {
		return nil, &models.ValidationError{Field: "address", Reason: "malformed address"}
	}

	now := time.Now()
	app := &models.Application{
		ApplicantID:    applicantID,
		FullName:       in.FullName,
		FatherName:     in.FatherName,
		Gender:         in.Gender,
		DOB:            in.DOB,
		BloodGroup:     in.BloodGroup,
		Phone:          in.Phone,
		Address:        datatypes.JSON(addr),
		ClassOfVehicle: in.ClassOfVehicle,
		TotalFee:       in.TotalFee,
		PaidAmount:     in.PaidAmount,
		PaymentStatus:  models.DerivePaymentStatus(in.TotalFee, in.PaidAmount),
		PaymentDueDate: models.ComputeDueDate(now),
		Status:         "Submitted",
		SubmittedAt:    now,
	}
	if in.Photo != nil {
		b, err := json.Marshal(in.Photo)
		if err != nil {
			return nil, &models.ValidationError{Field: "photo", Reason: "malformed file metadata"}
		}
		app.Photo = datatypes.JSON(b)
	}
	if in.Signature != nil {
		b, err := json.Marshal(in.Signature)
		if err != nil {
			return nil, &models.ValidationError{Field: "signature", Reason: "malformed file metadata"}
		}
		app.Signature = datatypes.JSON(b)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		id, err := s.NextApplicationID(tx, now)
		if err != nil {
			return err
		}
		app.ApplicationID = id
		if err := tx.Create(app).Error; err != nil {
			return &models.PersistenceError{Op: "create", Target: "llr_applications", Err: err}
		}
		// Money collected at submission goes into the ledger too, so the
		// sum of an application's entries always equals paidAmount.
		if in.PaidAmount.IsPositive() {
			payment := models.Payment{
				ApplicationID: app.ID,
				Amount:        in.PaidAmount,
				PaidAt:        now,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return &models.PersistenceError{Op: "create", Target: "llr_applications/" + app.ID.String() + "/payments", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ListByApplicant returns the applicant's records sorted newest first.
// The sort runs here for the same legacy-row reason as the snapshot pick.
func (s *ApplicationService) ListByApplicant(applicantID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	if err := s.db.Where("applicant_id = ?", applicantID).Find(&apps).Error; err != nil {
		return nil, &models.PersistenceError{Op: "read", Target: "llr_applications", Err: err}
	}
	sortApplicationsNewestFirst(apps)
	return apps, nil
}

func sortApplicationsNewestFirst(apps []models.Application) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].SubmittedAt.After(apps[j].SubmittedAt)
	})
}

// Delete removes an application and its ledger entries in one
// transaction. Non-admins can only delete their own records.
func (s *ApplicationService) Delete(applicationID, callerID uuid.UUID, isAdmin bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return &models.PersistenceError{Op: "read", Target: "llr_applications/" + applicationID.String(), Err: err}
		}
		if !isAdmin && app.ApplicantID != callerID {
			return &models.AuthError{Reason: "not allowed to delete this application"}
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&models.Payment{}).Error; err != nil {
			return &models.PersistenceError{Op: "delete", Target: "llr_applications/" + applicationID.String() + "/payments", Err: err}
		}
		if err := tx.Delete(&app).Error; err != nil {
			return &models.PersistenceError{Op: "delete", Target: "llr_applications/" + applicationID.String(), Err: err}
		}
		return nil
	})
}
