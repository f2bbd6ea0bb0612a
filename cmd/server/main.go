// Command server runs the whereabouts filing service: quarter creation,
// pattern expansion, completion tracking, and the compliance audit trail,
// exposed over HTTP.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"whereabouts/internal/audit"
	httpapi "whereabouts/internal/http"
	"whereabouts/internal/platform/config"
	"whereabouts/internal/platform/httpserver"
	"whereabouts/internal/platform/logger"
	platformmetrics "whereabouts/internal/platform/metrics"
	platformredis "whereabouts/internal/platform/redis"
	"whereabouts/internal/schedule/cache"
	"whereabouts/internal/schedule/handler"
	schedulemetrics "whereabouts/internal/schedule/metrics"
	"whereabouts/internal/schedule/ports"
	"whereabouts/internal/schedule/service"
	"whereabouts/internal/schedule/store"
	"whereabouts/internal/schedule/store/competition"
	"whereabouts/internal/schedule/store/quarter"
	"whereabouts/internal/schedule/store/slot"
	"whereabouts/internal/schedule/store/template"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var (
		quarterStore  ports.QuarterStore
		slotStore     ports.SlotStore
		templateStore ports.TemplateStore
	)

	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, store.Schema); err != nil {
			return err
		}
		quarterStore = quarter.NewPostgres(pool)
		slotStore = slot.NewPostgres(pool)
		templateStore = template.NewPostgres(pool)
		log.Info("using postgres stores")
	} else {
		quarterStore = quarter.NewMemory()
		slotStore = slot.NewMemory()
		templateStore = template.NewMemory()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	auditStore := audit.NewMemoryStore()
	publisher, worker := audit.NewPipeline(auditStore, log, cfg.AuditBuffer)

	scheduleMetrics := schedulemetrics.New()
	opts := []service.Option{
		service.WithTemplateStore(templateStore),
		service.WithAuditPublisher(publisher),
		service.WithLogger(log),
		service.WithMetrics(scheduleMetrics),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithCache(cache.New(redisClient.Client, cfg.CacheTTL)))
		log.Info("quarter summary cache enabled")
	}

	competitionStore := competition.NewMemory()
	svc := service.New(quarterStore, slotStore, opts...)
	scheduleHandler := handler.New(svc, competitionStore, auditStore, log)

	router := httpapi.NewRouter(scheduleHandler, log, platformmetrics.New())
	server := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
