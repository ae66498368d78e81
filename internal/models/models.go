package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"unique;not null"          json:"username"`
	Name         string     `gorm:"not null"                 json:"name"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	RoleID       uint       `gorm:"not null"                 json:"role_id"`
	Role         Role       `gorm:"foreignKey:RoleID"        json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role.Name == "admin"
}

type Article struct {
	ID              string     `gorm:"primaryKey;size:36"       json:"id"`
	Title           string     `gorm:"size:255;not null"        json:"title"`
	Slug            string     `gorm:"size:255;unique;not null" json:"slug"`
	Content         string     `gorm:"type:text;not null"       json:"content"`
	ThumbnailFileID *uint      `json:"thumbnail_file_id,omitempty"`
	ThumbnailFile   *File      `gorm:"foreignKey:ThumbnailFileID" json:"thumbnail_file,omitempty"`
	AuthorID        uint       `gorm:"index;not null"           json:"author_id"`
	Author          User       `gorm:"foreignKey:AuthorID"      json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type File struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FilePath string `gorm:"size:255;not null"        json:"file_path"`
}
