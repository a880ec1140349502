package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/drivewise-academy/backend/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250801_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Application{},
					&models.Payment{}, &models.ApplicationSequence{})
			},
		},
		{
			ID: "20250801_fee_check_constraints",
			Migrate: func(tx *gorm.DB) error {
				// paidAmount must stay inside [0, totalFee]; the engine
				// enforces this too, the constraint is the backstop.
				if err := tx.Exec(`ALTER TABLE llr_applications ADD CONSTRAINT chk_total_fee_positive CHECK (total_fee > 0)`).Error; err != nil {
					return err
				}
				if err := tx.Exec(`ALTER TABLE llr_applications ADD CONSTRAINT chk_paid_within_fee CHECK (paid_amount >= 0 AND paid_amount <= total_fee)`).Error; err != nil {
					return err
				}
				return tx.Exec(`ALTER TABLE llr_payments ADD CONSTRAINT chk_payment_amount_positive CHECK (amount > 0)`).Error
			},
		},
	})
	return m.Migrate()
}
