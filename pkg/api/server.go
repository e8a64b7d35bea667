package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/minimmo/pkg/api/handlers"
	"github.com/cbodonnell/minimmo/pkg/api/middleware"
	"github.com/cbodonnell/minimmo/pkg/game"
	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port        int
	AllowOrigin string
	TLS         *TLSConfig
	Repository  repositories.Repository
	GameManager *game.GameManager
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewHandler(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewHandler builds the routed handler with CORS, request ids, logging and gzip applied.
func NewHandler(opts NewAPIServerOptions) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", handlers.HandleRoot()).Methods(http.MethodGet)

	characters := r.PathPrefix("/characters").Subrouter()
	characters.HandleFunc("/", handlers.HandleListCharacters(opts.Repository)).Methods(http.MethodGet)
	characters.HandleFunc("/", handlers.HandleCreateCharacter(opts.Repository)).Methods(http.MethodPost)
	characters.HandleFunc("/stats", handlers.HandleCharacterStats(opts.Repository)).Methods(http.MethodGet)
	characters.HandleFunc("/random", handlers.HandleCreateRandomCharacter(opts.GameManager)).Methods(http.MethodPost)
	characters.HandleFunc("/{characterID:[0-9]+}", handlers.HandleGetCharacter(opts.Repository)).Methods(http.MethodGet)
	characters.HandleFunc("/{characterID:[0-9]+}", handlers.HandleUpdateCharacter(opts.Repository)).Methods(http.MethodPut)
	characters.HandleFunc("/{characterID:[0-9]+}", handlers.HandleDeleteCharacter(opts.Repository)).Methods(http.MethodDelete)

	r.HandleFunc("/spawn/{characterID:[0-9]+}", handlers.HandleSpawn(opts.GameManager)).Methods(http.MethodPost)
	r.HandleFunc("/move/{characterID:[0-9]+}", handlers.HandleMove(opts.GameManager)).Methods(http.MethodPost)
	r.HandleFunc("/attack", handlers.HandleAttack(opts.GameManager)).Methods(http.MethodPost)
	r.HandleFunc("/positions", handlers.HandleListPositions(opts.Repository)).Methods(http.MethodGet)
	r.HandleFunc("/enemies", handlers.HandleListEnemies(opts.Repository)).Methods(http.MethodGet)
	r.HandleFunc("/enemies", handlers.HandleCreateEnemy(opts.Repository)).Methods(http.MethodPost)

	var h http.Handler = gzhttp.GzipHandler(r)
	h = middleware.NewLoggingMiddleware()(h)
	h = middleware.NewRequestIDMiddleware()(h)
	return middleware.NewCORSMiddleware(opts.AllowOrigin)(h)
}

// Start blocks until the server stops. A server closed by Stop returns nil.
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
