package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/admission"
	"github.com/coopmp/lobbysync/internal/config"
	"github.com/coopmp/lobbysync/internal/httpapi"
	"github.com/coopmp/lobbysync/internal/hub"
	"github.com/coopmp/lobbysync/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	h := hub.NewHub(ctx, log.Named("hub"), cfg.LobbyTTL)

	var st *store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.Open(cfg.DatabaseURL, log.Named("store"))
		if err != nil {
			log.Fatal("open results store", zap.Error(err))
		}
		log.Info("results store enabled")
	}

	registry := admission.NewRegistry(cfg.LobbyCapacity)
	gate := admission.NewGate(registry, log.Named("admission"))

	handler := httpapi.SetupRoutes(h, gate, st, log.Named("http"))

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
