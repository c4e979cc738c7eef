package main

import (
	"log"
	"os"

	"github.com/critics-hub/yamdb/internal/config"
	"github.com/critics-hub/yamdb/internal/database"
	"github.com/critics-hub/yamdb/internal/models"
	"github.com/google/uuid"
)

// Bootstraps the first superuser. The account has no confirmation code yet;
// it obtains one through the regular signup endpoint.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")

	if adminUsername == "" || adminEmail == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL")
	}

	var admin models.User
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error == nil {
		log.Println("Admin user already exists:", admin.Username)
		log.Println("   Email:", admin.Email)
		return
	}

	admin = models.User{
		ID:          uuid.New().String(),
		Username:    adminUsername,
		Email:       adminEmail,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	log.Println("Admin user created successfully!")
	log.Println("   Username:", admin.Username)
	log.Println("   Email:", admin.Email)
}
