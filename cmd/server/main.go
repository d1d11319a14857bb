// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages. Optional backends
// (postgres, redis, kafka) fall back to in-memory implementations when their
// configuration is absent, so a bare binary is a complete single-node system.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"attest/internal/ack"
	"attest/internal/assignment"
	assignmenthandler "attest/internal/assignment/handler"
	"attest/internal/assignment/service"
	"attest/internal/jwttoken"
	"attest/internal/magiclink"
	"attest/internal/mailer"
	"attest/internal/platform/config"
	"attest/internal/platform/httpserver"
	"attest/internal/platform/logger"
	"attest/internal/platform/metrics"
	platformredis "attest/internal/platform/redis"
	"attest/internal/policy"
	"attest/internal/receipt"
	"attest/internal/viewgate"
	audit "attest/pkg/platform/audit"
	auditpublisher "attest/pkg/platform/audit/publisher"
	auditmemory "attest/pkg/platform/audit/store/memory"
	auditworker "attest/pkg/platform/audit/worker"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Assignment storage: postgres when configured, memory otherwise.
	var store assignment.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		store = assignment.NewPostgresStore(db)
		log.Info("assignment store: postgres")
	} else {
		store = assignment.NewInMemoryStore()
		log.Info("assignment store: memory")
	}

	// Magic link revocations: redis when configured, memory otherwise.
	var revocations magiclink.RevocationStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = magiclink.NewRedisRevocations(redisClient.Client)
		log.Info("link revocations: redis")
	} else {
		revocations = magiclink.NewInMemoryRevocations()
		log.Info("link revocations: memory")
	}

	// Audit trail: always the in-process store; tee to kafka when brokers
	// are configured.
	auditStore := audit.Store(auditmemory.New())
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := auditpublisher.NewKafka(ctx, cfg.KafkaBrokers)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		auditStore = audit.Tee{auditStore, kafka}
		log.Info("audit trail: memory + kafka", "brokers", cfg.KafkaBrokers)
	} else {
		log.Info("audit trail: memory")
	}

	auditInbox := make(chan audit.Event, 256)
	recorder := audit.NewRecorder(auditInbox)

	policies := policy.NewInMemoryStore()
	links := magiclink.NewIssuer([]byte(cfg.JWTSigningKey), cfg.MagicLinkTTL, cfg.FrontendURL, revocations)
	receipts := receipt.NewMemoryStore(policies)

	svc := service.New(store, policies, links, mailer.NewLogMailer(log), receipts, recorder, m, log)
	gates := viewgate.NewManager(viewgate.RealTicker, m, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "attest")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	assignmenthandler.New(svc, log, m, validator).Register(router)
	ack.New(svc, policies, links, gates, viewgate.UserAgentProbe{}, recorder, log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting attest server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		err := auditworker.NewWorker(auditStore, auditInbox, log).Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		err := svc.RunSweeper(groupCtx, cfg.SweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
