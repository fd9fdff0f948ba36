package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/BlessPro/PongFocus/config"
	"github.com/BlessPro/PongFocus/handlers"
	"github.com/BlessPro/PongFocus/repository"
	"github.com/BlessPro/PongFocus/rooms"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	var sessions *repository.SessionLog
	if cfg.SessionLogEnabled() {
		db, err := repository.ConnectToPostgreSQL(cfg)
		if err != nil {
			log.Fatal(err)
		}
		sessions = repository.NewSessionLog(db)
		if err := sessions.EnsureSchema(); err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("Session log disabled (no DB_HOST configured)")
	}

	registry := rooms.NewRegistry()
	h := handlers.New(cfg, registry, sessions)

	log.Printf("Relay listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h.NewRouter()); err != nil {
		log.Fatal(err)
	}
}
