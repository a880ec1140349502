package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
}

// TenantDomain is the email domain accounts are synthesized under:
// login email = {username}@TenantDomain().
func TenantDomain() string {
	if d := os.Getenv("TENANT_DOMAIN"); d != "" {
		return d
	}
	return "drivewise.com"
}

// ApplicationIDPrefix is the human-readable prefix for daily-sequential
// application IDs, e.g. DW-LLR-001.
func ApplicationIDPrefix() string {
	if p := os.Getenv("APP_ID_PREFIX"); p != "" {
		return p
	}
	return "DW-LLR"
}
