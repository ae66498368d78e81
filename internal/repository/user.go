package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
)

// GetUserByID loads a user with its role preloaded. Returns (nil, nil) when
// no such user exists.
func GetUserByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := db.Preload("Role").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername resolves a live (not soft-deleted) user by username.
func GetUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.Preload("Role").
		Where("username = ? AND deleted_at IS NULL", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUsers(db *gorm.DB) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := db.Preload("Role").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func CreateUser(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func UpdateUser(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

func SoftDeleteUser(db *gorm.DB, user *models.User) error {
	now := time.Now().UTC()
	user.DeletedAt = &now
	return db.Save(user).Error
}

func RestoreUser(db *gorm.DB, user *models.User) error {
	user.DeletedAt = nil
	return db.Save(user).Error
}

func DeleteUser(db *gorm.DB, user *models.User) error {
	return db.Delete(user).Error
}
