package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
)

// GetArticlesByAuthor lists all of the author's articles, newest first.
// Soft-deleted articles are included: deleted_at tells them apart and gives
// the client the ids it needs to restore them.
func GetArticlesByAuthor(db *gorm.DB, authorID uint) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	err := db.Preload("ThumbnailFile").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func GetArticleByID(db *gorm.DB, id string) (*models.Article, error) {
	var article models.Article
	err := db.Preload("ThumbnailFile").Preload("Author").
		Where("id = ?", id).
		First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func CreateArticle(db *gorm.DB, article *models.Article) error {
	return db.Create(article).Error
}

func UpdateArticle(db *gorm.DB, article *models.Article) error {
	return db.Save(article).Error
}

func SoftDeleteArticle(db *gorm.DB, article *models.Article) error {
	now := time.Now().UTC()
	article.DeletedAt = &now
	return db.Save(article).Error
}

func RestoreArticle(db *gorm.DB, article *models.Article) error {
	article.DeletedAt = nil
	return db.Save(article).Error
}

func DeleteArticle(db *gorm.DB, article *models.Article) error {
	return db.Delete(article).Error
}
