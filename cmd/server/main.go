package main

import (
	"context"
	"database/sql"
	"eld-hos-service/internal/adapters/cache"
	"eld-hos-service/internal/adapters/repositories"
	"eld-hos-service/internal/adapters/routing"
	"eld-hos-service/internal/api"
	"eld-hos-service/internal/auth"
	"eld-hos-service/internal/config"
	"eld-hos-service/internal/platform/db"
	"eld-hos-service/internal/platform/metrics"
	"eld-hos-service/internal/platform/obs"
	"eld-hos-service/internal/ports"
	"eld-hos-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/zoobzio/clockz"
)

type store interface {
	ports.DriverRepository
	ports.DutyEntryRepository
	ports.CertificationRepository
}

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	rules, err := config.LoadRuleSet(cfg.RulesPath, cfg.Cycle)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("hos rules=%s cycle_limit=%s cycle_days=%d", rules.Name, rules.CycleLimit, rules.CycleDays)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(reg)
	obs.SetRecorder(m.ObserveOperation)

	ctx := context.Background()

	var (
		conn     *sql.DB
		repo     store
		routes   routing.RouteCache
		geocodes routing.GeocodeCache
	)
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL, db.DefaultPoolConfig())
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if cfg.AutoMigrate {
			if err := initAndSeed(conn, cfg.SeedPath); err != nil {
				log.Fatal(err)
			}
		}

		repo = repositories.NewPostgresDutyRepository(conn)
		routes = cache.NewSQLRouteCache(conn)
		geocodes = cache.NewSQLGeocodeCache(conn)
	} else {
		// Without a database the service runs on an in-memory store, seeded when SEED_PATH is set.
		log.Println("DATABASE_URL not set, using in-memory duty history")
		mem := repositories.NewMemoryRepository()
		if cfg.SeedPath != "" {
			seed, err := repositories.LoadSeed(cfg.SeedPath)
			if err != nil {
				log.Fatal(err)
			}
			mem.Load(seed)
		}
		repo = mem
		routes = cache.NewMemoryRouteCache()
		geocodes = cache.NewMemoryGeocodeCache()
	}

	provider, err := distanceProvider(cfg, routes, geocodes)
	if err != nil {
		log.Fatal(err)
	}

	hos := &services.HOSService{
		Drivers:        repo,
		Entries:        repo,
		Certifications: repo,
		Clock:          clockz.RealClock,
		Rules:          rules,
	}

	router := api.NewRouter(api.Deps{
		HOS:     hos,
		Planner: services.NewTripPlanner(provider, rules),
		Rules:   rules,
		Clock:   clockz.RealClock,
		Metrics: m,
		Auth:    auth.NewMiddleware(cfg.JWTSecret),
	})
	if cfg.JWTSecret == "" {
		log.Println("AUTH_JWT_SECRET not set, bearer auth disabled")
	}

	// Timeouts are tuned for cold-cache trip planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Server stopped.")
}

// distanceProvider prefers OpenRouteService and falls back to a static route table.
func distanceProvider(cfg *config.Config, routes routing.RouteCache, geocodes routing.GeocodeCache) (ports.DistanceProvider, error) {
	if cfg.ORSAPIKey != "" {
		var opts []routing.ORSOption
		if cfg.ORSBaseURL != "" {
			opts = append(opts, routing.WithBaseURL(cfg.ORSBaseURL))
		}
		return routing.NewORSRouteProvider(cfg.ORSAPIKey, routes, geocodes, opts...)
	}

	if cfg.StaticRoutesPath == "" {
		return nil, errors.New("either ORS_API_KEY or STATIC_ROUTES_PATH is required")
	}
	log.Printf("ORS_API_KEY not set, using static routes path=%s", cfg.StaticRoutesPath)
	return routing.LoadStaticRoutes(cfg.StaticRoutesPath)
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if seedPath == "" {
		return nil
	}
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}
