package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
)

func GetRoles(db *gorm.DB) ([]models.Role, error) {
	roles := make([]models.Role, 0)
	if err := db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func GetRoleByID(db *gorm.DB, id uint) (*models.Role, error) {
	var role models.Role
	err := db.Where("id = ?", id).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func CreateRole(db *gorm.DB, role *models.Role) error {
	return db.Create(role).Error
}

func UpdateRole(db *gorm.DB, role *models.Role) error {
	return db.Save(role).Error
}

func RoleExists(db *gorm.DB, name string) (bool, error) {
	var count int64
	if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
