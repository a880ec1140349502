package config

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/drivewise-academy/backend/models"
)

// SeedAdminUser creates the bootstrap administrator account if no admin
// exists yet. Replaces the old lazy admin sign-up on first login.
func SeedAdminUser() {
	var count int64
	if err := DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		log.Printf("Warning: could not check for admin account: %v", err)
		return
	}
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Warning: could not hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username:     "admin",
		Email:        fmt.Sprintf("admin@%s", TenantDomain()),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Warning: could not seed admin account: %v", err)
		return
	}
	log.Println("Seeded default admin account")
}
