package main

import (
	"log"

	"github.com/joho/godotenv"

	"okr/internal/app/server"
)

func main() {
	// Missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	if err := server.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
