package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/cycure/cycure-server/internal/api/http"
	"github.com/cycure/cycure-server/internal/auth"
	"github.com/cycure/cycure-server/internal/config"
	"github.com/cycure/cycure-server/internal/db"
	"github.com/cycure/cycure-server/internal/quiz"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)

	sessions := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL, auth.NewSQLSessionStore(dbh))

	r := api.NewRouter(store, sessions, cfg.BcryptCost, cfg.CORSOrigins)

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
