package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus is persisted on the application so the store can filter on
// it, but it is always recomputed from the absolute amounts inside the
// reconciliation engine. It is never accepted as a client-supplied value.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "Unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
)

// DerivePaymentStatus computes the payment status as a pure function of
// (paidAmount, totalFee): Paid when paidAmount >= totalFee, Unpaid when
// paidAmount is zero, Partially Paid in between.
func DerivePaymentStatus(totalFee, paidAmount decimal.Decimal) PaymentStatus {
	switch {
	case paidAmount.LessThanOrEqual(decimal.Zero):
		return PaymentStatusUnpaid
	case paidAmount.GreaterThanOrEqual(totalFee):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

const (
	// DateFormat is used for dob, due dates and the daily sequence scope.
	DateFormat = "2006-01-02"

	// PaymentTermDays is the payment window granted at submission.
	PaymentTermDays = 15
)

// ComputeDueDate is the submission date plus the payment term, as a plain
// calendar-day addition.
func ComputeDueDate(submittedAt time.Time) string {
	return submittedAt.AddDate(0, 0, PaymentTermDays).Format(DateFormat)
}

// FormatApplicationID renders the human-readable daily-sequential ID,
// e.g. DW-LLR-007 for the seventh application submitted that day.
func FormatApplicationID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// Application is one learner's-license request record.
type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID string    `gorm:"size:20;uniqueIndex;not null" json:"applicationId"`
	ApplicantID   uuid.UUID `gorm:"type:uuid;index;not null" json:"applicantId"`

	FullName   string `gorm:"size:100;not null" json:"fullName"`
	FatherName string `gorm:"size:100;not null" json:"fatherName"`
	Gender     string `gorm:"size:10;not null" json:"gender"`
	DOB        string `gorm:"column:dob;size:10;not null" json:"dob"`
	BloodGroup string `gorm:"size:10;not null" json:"bloodGroup"`
	Phone      string `gorm:"size:15;not null" json:"phone"`

	Address        datatypes.JSON `gorm:"type:jsonb;not null" json:"address"`
	ClassOfVehicle string         `gorm:"size:20;not null" json:"classOfVehicle"`
	Photo          datatypes.JSON `gorm:"type:jsonb" json:"photo,omitempty"`
	Signature      datatypes.JSON `gorm:"type:jsonb" json:"signature,omitempty"`

	TotalFee       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"totalFee"`
	PaidAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"paidAmount"`
	PaymentStatus  PaymentStatus   `gorm:"size:20;index;not null;default:'Unpaid'" json:"paymentStatus"`
	PaymentDueDate string          `gorm:"size:10;not null" json:"paymentDueDate"`

	Status      string    `gorm:"size:30;not null;default:'Submitted'" json:"status"`
	SubmittedAt time.Time `gorm:"index;not null" json:"submittedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the collection name of the original store layout.
func (Application) TableName() string {
	return "llr_applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// PendingAmount is totalFee - paidAmount. Never negative for a live record.
func (a *Application) PendingAmount() decimal.Decimal {
	return a.TotalFee.Sub(a.PaidAmount)
}

// ApplicationSequence backs the per-day atomic counter behind application
// IDs. Incremented with an upsert inside the creation transaction, so two
// submissions racing on the same day cannot observe the same value.
type ApplicationSequence struct {
	SeqDate string `gorm:"size:10;primaryKey" json:"seqDate"`
	Counter int    `gorm:"not null" json:"counter"`
}

func (ApplicationSequence) TableName() string {
	return "application_sequences"
}

// Address mirrors the jsonb address document on an application.
type Address struct {
	DoorNo        string `json:"doorNo" validate:"required"`
	StreetName    string `json:"streetName" validate:"required,min=3"`
	VillageOrTown string `json:"villageOrTown" validate:"required,min=3"`
	Taluk         string `json:"taluk" validate:"required,min=3"`
	District      string `json:"district" validate:"required,min=3"`
	Pincode       string `json:"pincode" validate:"required,len=6,numeric"`
}

// FileMeta describes an uploaded document without storing its contents.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
