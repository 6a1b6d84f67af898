package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stagegear/internal/config"
	"stagegear/internal/database"
	"stagegear/internal/domain"
)

// Seeds the database with an admin account and a small starter inventory.
// Safe to re-run: existing rows are left alone.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	if err := seedAdmin(db); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := seedInventory(db); err != nil {
		log.Fatalf("seed inventory: %v", err)
	}

	log.Println("seed complete")
}

func seedAdmin(db *gorm.DB) error {
	var n int64
	if err := db.Model(&domain.User{}).Where("username = ?", "admin").Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&domain.User{
		Username:     "admin",
		Email:        "admin@stagegear.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}).Error
}

func seedInventory(db *gorm.DB) error {
	var n int64
	if err := db.Model(&domain.Equipment{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	bagAudio := domain.Bag{
		Code:     "BAG-AUDIO-01",
		Name:     "Audio kit 1",
		Status:   domain.BagAvailable,
		IsActive: true,
	}
	if err := db.Create(&bagAudio).Error; err != nil {
		return err
	}

	serial := func(s string) *string { return &s }
	items := []domain.Equipment{
		{Code: "MIC-001", Name: "Shure SM58", Category: "audio", Serial: serial("SM58-44121"), Status: domain.EquipmentAvailable, Condition: domain.ConditionGood, BagID: &bagAudio.ID},
		{Code: "MIC-002", Name: "Shure SM57", Category: "audio", Serial: serial("SM57-90312"), Status: domain.EquipmentAvailable, Condition: domain.ConditionExcellent, BagID: &bagAudio.ID},
		{Code: "MIX-001", Name: "Behringer X32", Category: "audio", Status: domain.EquipmentAvailable, Condition: domain.ConditionGood},
		{Code: "CAM-001", Name: "Sony FX3", Category: "video", Serial: serial("FX3-00871"), Status: domain.EquipmentAvailable, Condition: domain.ConditionExcellent},
		{Code: "LGT-001", Name: "Aputure 300d", Category: "lighting", Status: domain.EquipmentAvailable, Condition: domain.ConditionFair},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			return err
		}
	}

	return db.Create(&domain.Event{
		Code:      "EVT-DEMO-01",
		Name:      "Demo launch night",
		Type:      "show",
		Status:    domain.EventPlanned,
		StartDate: time.Now().AddDate(0, 0, 7),
		EndDate:   time.Now().AddDate(0, 0, 8),
	}).Error
}
