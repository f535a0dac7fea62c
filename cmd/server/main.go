package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"github.com/pejotadev/fidlink/internal/cache"
	clienthandler "github.com/pejotadev/fidlink/internal/client/handler"
	clientmetrics "github.com/pejotadev/fidlink/internal/client/metrics"
	clientservice "github.com/pejotadev/fidlink/internal/client/service"
	clientstore "github.com/pejotadev/fidlink/internal/client/store"
	contracthandler "github.com/pejotadev/fidlink/internal/contract/handler"
	contractmetrics "github.com/pejotadev/fidlink/internal/contract/metrics"
	contractservice "github.com/pejotadev/fidlink/internal/contract/service"
	contractstore "github.com/pejotadev/fidlink/internal/contract/store"
	fundhandler "github.com/pejotadev/fidlink/internal/fund/handler"
	fundstore "github.com/pejotadev/fidlink/internal/fund/store"
	"github.com/pejotadev/fidlink/internal/platform/config"
	"github.com/pejotadev/fidlink/internal/platform/httpserver"
	"github.com/pejotadev/fidlink/internal/platform/logger"
	platformmetrics "github.com/pejotadev/fidlink/internal/platform/metrics"
	platformredis "github.com/pejotadev/fidlink/internal/platform/redis"
	simhandler "github.com/pejotadev/fidlink/internal/simulation/handler"
	simmetrics "github.com/pejotadev/fidlink/internal/simulation/metrics"
	simservice "github.com/pejotadev/fidlink/internal/simulation/service"
	simstore "github.com/pejotadev/fidlink/internal/simulation/store"
	httptransport "github.com/pejotadev/fidlink/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Stores: Postgres when a DSN is configured, in-memory otherwise. The
	// in-memory catalog ships pre-seeded so a fresh process can price
	// simulations immediately.
	var (
		clients   clientservice.ClientStore
		funds     simservice.FundStore
		fundsRead fundhandler.Store
		sims      interface {
			simservice.SimulationStore
			contractservice.OfferStore
		}
		contracts contractservice.ContractStore
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("failed to reach postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgFunds := fundstore.NewPostgres(db)
		clients = clientstore.NewPostgres(db)
		funds = pgFunds
		fundsRead = pgFunds
		sims = simstore.NewPostgres(db)
		contracts = contractstore.NewPostgres(db)
	} else {
		memFunds := fundstore.NewInMemory()
		if _, err := fundstore.SeedDefaultCatalog(memFunds); err != nil {
			log.Error("failed to seed fund catalog", "error", err)
			os.Exit(1)
		}
		clients = clientstore.NewInMemory()
		funds = memFunds
		fundsRead = memFunds
		sims = simstore.NewInMemory()
		contracts = contractstore.NewInMemory()
	}

	// Cache: Redis when configured, in-process otherwise.
	var eligibilityCache cache.Cache = cache.NewMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		eligibilityCache = cache.NewRedis(redisClient.Client)
	}

	httpMetrics := platformmetrics.New()

	clientSvc := clientservice.New(clients,
		clientservice.WithLogger(log),
		clientservice.WithMetrics(clientmetrics.New()))
	simSvc := simservice.New(clients, funds, sims,
		simservice.WithLogger(log),
		simservice.WithMetrics(simmetrics.New()),
		simservice.WithCache(eligibilityCache, cfg.EligibilityCacheTTL))
	contractSvc := contractservice.New(contracts, sims,
		contractservice.WithLogger(log),
		contractservice.WithMetrics(contractmetrics.New()))

	router := httptransport.NewRouter(log, httpMetrics,
		clienthandler.New(clientSvc, log),
		fundhandler.New(fundsRead, eligibilityCache, log),
		simhandler.New(simSvc, log),
		contracthandler.New(contractSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting fidlink", "addr", cfg.Addr,
		"postgres", cfg.PostgresDSN != "", "redis", redisClient != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
