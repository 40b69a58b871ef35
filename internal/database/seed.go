package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/services"
	"github.com/example/speakci/internal/utils"
)

// Seed creates the rows the site needs on first boot: the back-office
// credential, the default settings and the built-in level test.
// Existing rows are never overwritten.
func Seed(conn *gorm.DB, adminPassword, whatsApp string) error {
	if err := seedAdminCredential(conn, adminPassword); err != nil {
		return fmt.Errorf("seed admin credential: %w", err)
	}

	settings := services.DefaultSettings(whatsApp)
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	var questions int64
	if err := conn.Model(&models.QuizQuestion{}).Count(&questions).Error; err != nil {
		return err
	}
	if questions == 0 {
		bank := services.DefaultQuestionBank()
		if err := conn.Create(&bank).Error; err != nil {
			return fmt.Errorf("seed questions: %w", err)
		}
		log.Printf("[Database] seeded %d level test questions", len(bank))
	}

	return nil
}

func seedAdminCredential(conn *gorm.DB, password string) error {
	var existing models.AdminCredential
	err := conn.First(&existing, "id = ?", models.AdminCredentialID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if password == "" {
		log.Println("[Database] ADMIN_PASSWORD not set, back-office login is disabled until a credential exists")
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	cred := models.AdminCredential{ID: models.AdminCredentialID, PasswordHash: hash}
	if err := conn.Create(&cred).Error; err != nil {
		return err
	}
	log.Println("[Database] admin credential created")
	return nil
}
