package database

import (
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.StudyProgress{},
		&entity.FlashcardBankTemplate{},
		&entity.GeneratedFlashcard{},
		&entity.StudySessionRecord{},
	)
	return err
}
