package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"courtside/database"
	"courtside/events"
	"courtside/jobs"
	"courtside/routes"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file loaded")
	}

	database.Connect()

	if err := services.EnsureDefaultTiers(); err != nil {
		log.Fatalf("Failed to seed membership tiers: %v", err)
	}
	if err := services.EnsurePlatformAccount(); err != nil {
		log.Fatalf("Failed to create platform account: %v", err)
	}

	if url := os.Getenv("AMQP_URL"); url != "" {
		exchange := os.Getenv("AMQP_EXCHANGE")
		if exchange == "" {
			exchange = "courtside.events"
		}
		notifier, err := events.NewAMQPNotifier(url, exchange)
		if err != nil {
			log.Fatalf("Failed to connect to broker: %v", err)
		}
		defer notifier.Close()
		services.SetNotifier(notifier)
		log.Println("✅ Connected to event broker")
	}

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")

	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}

	app := fiber.New()
	routes.Setup(app)
	jobs.StartSweeps()

	addr := fmt.Sprintf("%s:%s", host, port)
	log.Println("Server running at", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Gracefully shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited cleanly")
}
