package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/voxpopuly/voxpopuly-api/internal/config"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// Sends every notification template to TEST_EMAIL_TO through Resend
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Setup("development")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}

	emailService := services.NewEmailService(cfg)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Delivery fails unless the sender domain is verified.")
	}

	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour)
	point := &models.VotingPoint{
		Name:     "Mesa 1",
		Location: "Biblioteca central",
		Election: models.Election{
			Title:     "Elección de prueba",
			StartDate: start,
			EndDate:   start.Add(8 * time.Hour),
		},
	}

	log.Printf("Sending delegate account email to %s...", toEmail)
	profile := &models.Profile{FullName: "Delegado de Prueba", Role: models.RoleDelegate}
	if err := emailService.SendDelegateAccountCreated(ctx, profile, toEmail, point.Name); err != nil {
		log.Fatalf("Failed to send delegate account email: %v", err)
	}
	log.Println("Delegate account email sent successfully!")

	log.Printf("Sending voter registered email to %s...", toEmail)
	if err := emailService.SendVoterRegistered(ctx, "Votante de Prueba", toEmail, point); err != nil {
		log.Fatalf("Failed to send voter registered email: %v", err)
	}
	log.Println("Voter registered email sent successfully!")
}
