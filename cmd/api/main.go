package main

import (
	"log"

	"github.com/Egham-7/site-context/internal/config"
	"github.com/Egham-7/site-context/pkg/server"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	config.LoadEnvFiles([]string{".env.local", ".env.development", ".env"})

	cfg, err := config.LoadFromFile("config.yaml")
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting site-context server...")
	if err := server.New(cfg, server.Options{}).Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
