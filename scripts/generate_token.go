package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Define command line flags
	userID := flag.String("user", "", "User ID (sub claim) for the token")
	roles := flag.String("roles", "user", "Comma-separated list of roles")
	expirationHours := flag.Int("exp", 0, "Token expiration in hours (defaults to JWT_EXPIRATION_HOURS)")
	tenant := flag.String("tenant", "", "Tenant identifier, e.g. tenant1")
	flag.Parse()

	if *userID == "" {
		log.Fatal("User ID is required")
	}

	if *tenant == "" {
		log.Fatal("Tenant identifier is required")
	}
	if !middleware.ValidTenantIdentifier(*tenant) {
		log.Fatalf("Invalid tenant identifier %q", *tenant)
	}

	// Parse roles
	rolesList := []string{}
	for _, role := range strings.Split(*roles, ",") {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if !domain.IsValidRole(role) {
			log.Fatalf("Unknown role %q", role)
		}
		rolesList = append(rolesList, role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *expirationHours > 0 {
		cfg.JWTExpirationHours = *expirationHours
	}

	tokenString, err := middleware.NewAuthMiddleware(cfg).GenerateToken(*userID, *tenant, rolesList)
	if err != nil {
		log.Fatalf("Error signing token: %v", err)
	}

	fmt.Printf("Generated JWT Token:\n%s\n", tokenString)
}
