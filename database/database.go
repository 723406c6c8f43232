package database

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"courtside/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")

	var dialector gorm.Dialector
	switch os.Getenv("DB_DRIVER") {
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			user, pass, host, port, name,
		)
		dialector = mysql.Open(dsn)
	default:
		sslmode := os.Getenv("DB_SSLMODE")
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			host, user, pass, name, port, sslmode,
		)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db
	log.Println("✅ Connected to database")

	autoMigrateEnv := os.Getenv("DB_AUTO_MIGRATE")
	autoMigrate, err := strconv.ParseBool(autoMigrateEnv)
	if err != nil {
		log.Printf("⚠️  Invalid value for DB_AUTO_MIGRATE: %s\n", autoMigrateEnv)
	}

	if autoMigrate {
		log.Println("🟡 Starting auto-migration...")

		if err := Migrate(DB); err != nil {
			log.Fatal("❌ Failed to auto-migrate database:", err)
		}

		log.Println("✅ Auto migration completed")
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MembershipTier{},
		&models.Member{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Slot{},
		&models.Booking{},
		&models.BookingSlot{},
		&models.CancellationRequest{},
		&models.EscrowLedgerEntry{},
		&models.ClassSession{},
		&models.SessionEnrollment{},
	)
}
