package main

import (
	"log"

	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/config"
	"github.com/Skotchmaster/cms_backend/internal/hash"
	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/repository"
)

var roleNames = []string{"admin", "editor"}

var users = []struct {
	Username string
	Name     string
	Password string
	RoleName string
}{
	{Username: "admin", Name: "Admin User", Password: "admin123", RoleName: "admin"},
	{Username: "editor", Name: "Editor User", Password: "editor123", RoleName: "editor"},
}

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	log.Println("Running all seeds...")
	if err := seedRoles(db); err != nil {
		log.Fatal(err)
	}
	if err := seedUsers(db); err != nil {
		log.Fatal(err)
	}
	log.Println("All seeds completed.")
}

func seedRoles(db *gorm.DB) error {
	for _, name := range roleNames {
		exists, err := repository.RoleExists(db, name)
		if err != nil {
			return err
		}
		if exists {
			log.Printf("Role %q already exists.", name)
			continue
		}
		if err := repository.CreateRole(db, &models.Role{Name: name}); err != nil {
			return err
		}
		log.Printf("Role %q created.", name)
	}
	return nil
}

func seedUsers(db *gorm.DB) error {
	for _, u := range users {
		var role models.Role
		if err := db.Where("name = ?", u.RoleName).First(&role).Error; err != nil {
			log.Printf("Role %q not found. Skipping user %q.", u.RoleName, u.Username)
			continue
		}

		existing, err := repository.GetUserByUsername(db, u.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Printf("User %q already exists.", u.Username)
			continue
		}

		pwHash, err := hash.HashPassword(u.Password)
		if err != nil {
			return err
		}
		user := models.User{
			Username:     u.Username,
			Name:         u.Name,
			PasswordHash: pwHash,
			RoleID:       role.ID,
		}
		if err := repository.CreateUser(db, &user); err != nil {
			return err
		}
		log.Printf("User %q created.", u.Username)
	}
	return nil
}
