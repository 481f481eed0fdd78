package database

import (
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"pureplay/pkg/models"
)

// Open connects to the sqlite database at path and migrates the schema.
// The handle is returned to the caller rather than kept in a package global
// so services receive their database explicitly.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.DB().SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Video{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
