package main

import (
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fintrack/models"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		migrateAll(db)
	}
	seedDB()
}

// migrateAll migrates models individually so a failure on one doesn't block
// others. Shared with the test harness, which runs it against sqlite.
func migrateAll(gdb *gorm.DB) {
	for _, m := range []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Expense{},
		&models.Budget{},
		&models.Goal{},
		&models.Category{},
		&models.Notification{},
	} {
		if err := gdb.AutoMigrate(m); err != nil {
			log.Printf("migration warning (%T): %v", m, err)
		}
	}
}

func seedDB() {
	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		admin := models.User{Username: "admin"}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
		seedDefaultCategories(admin.ID)
	}
}

// seedDefaultCategories gives a user the stock category set (idempotent).
func seedDefaultCategories(userID uint) {
	for _, name := range models.DefaultCategories {
		var cnt int64
		db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name).Count(&cnt)
		if cnt == 0 {
			db.Create(&models.Category{UserID: userID, Name: name, IsDefault: true})
		}
	}
}
