package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"gorm.io/gorm"

	"hotseat/internal/config"
	"hotseat/internal/db"
	"hotseat/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn := openDatabase(cfg)
	srv := server.New(conn, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunCleanup(ctx)

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("hotseat server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}

// openDatabase is optional: without DATABASE_URL the server runs on the
// in-memory store.
func openDatabase(cfg config.Config) *gorm.DB {
	if os.Getenv("DATABASE_URL") == "" {
		log.Println("DATABASE_URL not set, running with in-memory sessions")
		return nil
	}
	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.ConfigurePool(conn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime(), cfg.DBConnMaxIdleTime()); err != nil {
		log.Fatalf("database pool setup failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	return conn
}
