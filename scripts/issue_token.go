package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

func main() {
	role := flag.String("role", string(auth.RoleSuperAdmin), "super_admin, campus_admin, restaurant_manager or user")
	user := flag.String("user", "dev", "subject (user id)")
	email := flag.String("email", "", "email claim")
	campus := flag.Uint("campus", 0, "campus id for campus admins and managers")
	restaurant := flag.Uint("restaurant", 0, "restaurant id for managers")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Tokens are issued by the identity provider in production")
	}

	parsed, err := auth.ParseRole(*role)
	if err != nil {
		log.Fatal(err)
	}

	token, err := auth.NewJWTManager(cfg).GenerateToken(auth.Principal{
		UserID:       *user,
		Email:        *email,
		Role:         parsed,
		CampusID:     *campus,
		RestaurantID: *restaurant,
	}, *ttl)
	if err != nil {
		log.Fatal("Error signing token:", err)
	}

	fmt.Printf("Role: %s\n", parsed)
	fmt.Printf("Token: %s\n", token)
	fmt.Println("✅ Use it as: Authorization: Bearer <token>")
}
