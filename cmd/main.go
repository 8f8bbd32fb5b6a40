package main

import (
	"net/http"

	"github.com/forgeline/devagent/internal/api/v1/handlers"
	"github.com/forgeline/devagent/internal/config"
	"github.com/forgeline/devagent/internal/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	level, err := zerolog.ParseLevel(config.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	r := setupRouter(svcs)

	addr := config.GetListenAddr()
	log.Info().Str("addr", addr).Msg("Server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()
	handlers.RegisterV1Routes(r, svcs)
	return r
}
