package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/security"
)

func main() {
	userID := flag.String("user", "ops", "user id to embed in the token")
	role := flag.String("role", model.RoleAdmin, "role to embed in the token")
	expires := flag.Int64("expires", 3600, "validity in seconds")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("SIGNING_SECRET")
	if secret == "" {
		log.Fatal("SIGNING_SECRET is not set")
	}

	token, err := security.CreateIdentityToken(&security.Identity{
		UserID: *userID,
		Role:   *role,
	}, secret, *expires)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
