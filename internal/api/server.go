package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rebaselabs/rebase-bridge/internal/config"
	"github.com/rebaselabs/rebase-bridge/internal/services"
)

// Server is the HTTP surface over the ledger, the vault and the bridge.
type Server struct {
	cfg *config.ServerConfig
	svc *services.Service
}

func New(cfg *config.ServerConfig, svc *services.Service) *Server {
	return &Server{cfg: cfg, svc: svc}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", s.handleHealthcheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rate", s.handleGlobalRate)
		r.Route("/holders/{address}", func(r chi.Router) {
			r.Get("/balance", s.handleBalance)
			r.Get("/principal", s.handlePrincipal)
			r.Get("/rate", s.handleUserRate)
		})
		r.Post("/vault/deposit", s.handleDeposit)
		r.Post("/vault/redeem", s.handleRedeem)
		r.Post("/bridge/send", s.handleBridgeSend)
	})
	return r
}

// Start blocks serving HTTP until the listener fails or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down api server")
		}
	}()
	log.Info().Str("address", s.cfg.Address()).Msg("starting api server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode api response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
