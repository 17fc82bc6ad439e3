package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-mailer/config"
	"club-mailer/database"
	"club-mailer/handlers"
	"club-mailer/logger"
	"club-mailer/services"

	"github.com/gorilla/mux"
)

// stores groups the persistence the services need.
type stores struct {
	repo    database.Repository
	sentLog database.SentLogStore
	closers []func() error
}

func (s *stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

// openStores uses Postgres when DATABASE_URL is set and an in-memory store
// otherwise. REDIS_URL adds a lookup cache in front of the sent log.
func openStores(ctx context.Context, cfg *config.Config, zlog logger.Logger) (*stores, error) {
	s := &stores{}
	if cfg.DatabaseURL == "" {
		zlog.Warn("DATABASE_URL not set, data is kept in memory only", nil)
		s.repo = database.NewMemoryStore()
	} else {
		db, err := database.InitDB(ctx, cfg.DatabaseURL, zlog)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err := database.ApplyMigrations(cfg.DatabaseURL, cfg.MigrationsPath, zlog); err != nil {
			s.Close()
			return nil, err
		}
		s.repo = database.NewStore(db)
	}
	s.sentLog = s.repo

	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, sent log cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			s.closers = append(s.closers, rdb.Close)
			s.sentLog = database.NewCachedSentLog(s.repo, rdb, cfg.SentCacheTTL, zlog)
			zlog.Info("sent log cache enabled", nil)
		}
	}
	return s, nil
}

// seedConfig builds the sender settings from the environment. A bare
// MAILHUB host becomes an smtp:// endpoint.
func seedConfig(cfg *config.Config) database.ClubConfig {
	endpoint := cfg.TransportEndpoint
	if endpoint == "" && cfg.MailHub != "" {
		endpoint = "smtp://" + cfg.MailHub
	}
	return database.ClubConfig{
		SenderName:        cfg.SenderName,
		SenderEmail:       cfg.SenderEmail,
		TransportEndpoint: endpoint,
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	st, err := openStores(ctx, cfg, zlog)
	if err != nil {
		zlog.Error("failed to open storage", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer st.Close()

	clock := services.LocalClock(cfg.Location())
	transports := services.NewEndpointTransportFactory(services.SMTPCredentials{
		User:          cfg.AuthUser,
		Pass:          cfg.AuthPass,
		SkipTLSVerify: cfg.SkipTLSVerify,
	}, cfg.SendTimeout, zlog)
	dispatcher := services.NewDispatcher(st.repo, st.sentLog, transports, zlog, cfg.SendTimeout, clock)

	mailer := services.NewMailer(services.MailerDeps{
		Contacts:   st.repo,
		SentLog:    st.sentLog,
		Drafts:     st.repo,
		Config:     st.repo,
		Dispatcher: dispatcher,
		Calculator: services.NewCalculator(cfg.LookaheadDays),
		Logger:     zlog,
		Clock:      clock,
	})
	if err := mailer.SeedConfig(ctx, seedConfig(cfg)); err != nil {
		zlog.Warn("failed to seed sender settings", map[string]interface{}{"error": err.Error()})
	}
	outbox := services.NewOutbox(st.repo, dispatcher, zlog, clock)

	api := handlers.NewAPI(mailer, outbox, services.NewWorkspace(), zlog, cfg.DailyMailLimit)
	r := mux.NewRouter()
	handlers.RegisterRoutes(r, api, cfg.StaticDir)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", map[string]interface{}{"port": cfg.Port, "timezone": cfg.Timezone})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zlog.Info("shutdown signal received, draining requests", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
