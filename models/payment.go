package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one append-only ledger entry against an application. Entries
// are never mutated or deleted individually; the sum of a live
// application's entries always equals its paidAmount.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID       `gorm:"type:uuid;index;not null" json:"applicationId"`
	Application   *Application    `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaidAt        time.Time       `gorm:"index;not null" json:"paidAt"`
}

func (Payment) TableName() string {
	return "llr_payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
