package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
)

func CreateFile(db *gorm.DB, file *models.File) error {
	return db.Create(file).Error
}

func GetFileByID(db *gorm.DB, id uint) (*models.File, error) {
	var file models.File
	err := db.Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func DeleteFile(db *gorm.DB, file *models.File) error {
	return db.Delete(file).Error
}
