// Package server exposes rooms over HTTP, websockets and server-sent events.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"impostor/internal/config"
	"impostor/internal/db"
	"impostor/internal/game"
	"impostor/internal/metrics"
	"impostor/internal/rooms"
	"impostor/internal/wordbank"
)

const (
	timeout         = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	Rooms   *rooms.Registry
	DB      *db.DB // nil if no database configured
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger
	Cfg     config.Config
}

// RoomsConfig derives the registry settings from cfg.
func RoomsConfig(cfg config.Config, bank *wordbank.Bank) rooms.Config {
	return rooms.Config{
		CodeLength: cfg.CodeLength,
		Game: game.Options{
			MinPlayers: cfg.MinPlayers,
			MaxPlayers: cfg.MaxPlayers,
			Bank:       bank,
		},
		ReconnectGrace: cfg.ReconnectGrace,
		IdleTTL:        cfg.IdleTimeout,
		SweepInterval:  cfg.SweepInterval,
	}
}

func (s *Server) Routes() http.Handler {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, p any) {
		s.Log.WithFields(logrus.Fields{"path": r.URL.Path, "panic": p}).Error("handler panicked")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"type": "error", "code": "INTERNAL"})
	}

	mux.POST("/api/game/create", s.handleCreate)
	mux.POST("/api/game/join/:code", s.handleJoin)
	mux.GET("/api/game/:code", s.handleState)
	mux.GET("/api/game/:code/events", s.handleEvents)
	mux.GET("/api/game/:code/qr", s.handleQR)
	mux.POST("/api/room/:code/:action", s.handleAction)
	mux.GET("/ws/:code", s.handleWS)
	mux.GET("/health", s.handleHealth)
	mux.Handler(http.MethodGet, "/metrics", s.Metrics.Handler())

	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	m := metrics.New()
	bank := wordbank.Default()

	var database *db.DB
	if cfg.DatabaseURL != "" {
		d, err := db.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.WithError(err).Warn("database unavailable, using the built-in word bank")
		} else if err := d.Migrate(ctx); err != nil {
			log.WithError(err).Warn("migration failed, using the built-in word bank")
			d.Close()
		} else {
			database = d
			defer database.Close()
			words, err := database.LoadWords(ctx)
			switch {
			case err != nil:
				log.WithError(err).Warn("loading words failed, using the built-in word bank")
			case len(words) == 0:
				log.Warn("word bank table is empty, using the built-in word bank")
			default:
				bank = wordbank.New(words)
			}
		}
	} else {
		log.Info("database url not set, using the built-in word bank")
	}
	log.WithField("words", bank.Len()).Info("word bank ready")

	reg := rooms.NewRegistry(RoomsConfig(cfg, bank), log, m)
	srv := &Server{
		Rooms:   reg,
		DB:      database,
		Metrics: m,
		Log:     log,
		Cfg:     cfg,
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: timeout,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	swept := make(chan struct{})
	go func() {
		reg.Run(sweepCtx)
		close(swept)
	}()

	errs := make(chan error, 1)
	go func() {
		log.WithField("addr", httpSrv.Addr).Info("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// close rooms first so websocket handlers return
	stopSweep()
	<-swept
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}
