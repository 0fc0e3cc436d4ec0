package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Article{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ActivityLog{}); err != nil {
		return err
	}

	return nil
}
