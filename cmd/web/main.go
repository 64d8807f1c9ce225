package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/shuttle-league/internal/config"
	"github.com/AdamBeresnev/shuttle-league/internal/db"
	"github.com/AdamBeresnev/shuttle-league/internal/events"
	"github.com/AdamBeresnev/shuttle-league/internal/metrics"
	"github.com/AdamBeresnev/shuttle-league/internal/middleware"
	"github.com/AdamBeresnev/shuttle-league/internal/schedule"
	"github.com/AdamBeresnev/shuttle-league/internal/service"
	"github.com/AdamBeresnev/shuttle-league/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	cfg.InstallLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	reader := database
	if !db.IsMemory(cfg.DatabasePath) {
		reader, err = db.InitReadDB(cfg.DatabasePath)
		if err != nil {
			log.Fatal("Failed to open read handle", "error", err)
		}
		defer reader.Close()
	}

	clock := clockwork.NewRealClock()
	leagueStore := store.NewLeagueStore(reader)

	if cfg.AutoSeedOnEmpty {
		seedIfEmpty(ctx, schedule.NewSeeder(database, leagueStore, clock), cfg.SeedFile)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			slog.Warn("match events disabled, failed to connect to NATS", "url", cfg.NATSURL, "error", err)
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close()

	metricsSvc := metrics.NewService()
	matchService := service.NewMatchService(database, leagueStore, clock, publisher, metricsSvc)
	finalsService := service.NewFinalsService(database, leagueStore, matchService, clock, service.FinalsConfig{
		Court:     cfg.FinalCourt,
		GameCount: cfg.FinalGameCount,
	})

	sessionStore := sqlite3store.New(database.DB)
	defer sessionStore.StopCleanup()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sessionStore
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	router := newRouter(&app{
		league:         service.NewLeagueService(database, leagueStore, clock),
		matches:        matchService,
		finals:         finalsService,
		dashboard:      service.NewDashboardService(leagueStore, finalsService, clock, metricsSvc),
		referees:       middleware.NewRefereeSession(sessionManager),
		sessions:       sessionManager,
		metricsHandler: metrics.NewMetricsHandler(),
		corsOrigins:    cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// seedIfEmpty loads the league definition into a fresh database. A database
// that already has teams is left alone.
func seedIfEmpty(ctx context.Context, seeder *schedule.Seeder, seedFile string) {
	def, err := schedule.LoadOrDefault(seedFile)
	if err != nil {
		log.Fatal("Failed to load league definition", "file", seedFile, "error", err)
	}
	if _, err := seeder.Seed(ctx, def); err != nil {
		if errors.Is(err, schedule.ErrNotEmpty) {
			slog.Debug("league already seeded")
			return
		}
		log.Fatal("Failed to seed league", "error", err)
	}
}
