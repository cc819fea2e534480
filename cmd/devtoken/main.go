// Command devtoken prints a player token signed with the configured secret,
// for poking at the API by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id to embed (random when empty)")
	name := flag.String("name", "Tester", "display name to embed")
	hours := flag.Int("hours", 0, "token lifetime in hours (config default when zero)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *userID == "" {
		*userID = uuid.New().String()
	}
	if *hours == 0 {
		*hours = cfg.JWT.Expiration
	}

	token, err := auth.GenerateJWT(*userID, *name, cfg.JWT.Secret, *hours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User: %s\n", *userID)
	fmt.Printf("Token:\n%s\n", token)
}
