package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/Domenick1991/flightledger/internal/bootstrap"
	"github.com/Domenick1991/flightledger/internal/cache"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/payment"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/Domenick1991/flightledger/internal/service/tickets"
	"github.com/Domenick1991/flightledger/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	// Badger maintenance runs in-process; the store holds an exclusive
	// directory lock, so a separate process cannot do it.
	if badgerStore, ok := store.(*storage.BadgerStore); ok {
		sweep := cfg.Worker.MaintenanceSweepMinutes
		if sweep <= 0 {
			sweep = 10
		}
		go func() {
			ticker := time.NewTicker(time.Duration(sweep) * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := badgerStore.Maintain(); err != nil {
						logger.WithError(err).Warn("storage maintenance")
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	repo := repository.NewLedgerRepository(store)
	if err := provisionAdmin(ctx, repo, cfg.Ledger.AdminAddress); err != nil {
		log.Fatalf("provision admin: %v", err)
	}

	verifier := auth.NewHMACVerifier(cfg.Ledger.AuthSecret)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	rail := payment.NewLogRail(logger)

	routeTTL := time.Duration(cfg.Ledger.RouteCacheTTLSecs) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, routeTTL)

	flightService := flights.NewFlightService(repo, producer, cfg.Kafka.LedgerTopic, logger, flights.WithCache(redisCache))
	ticketService := tickets.NewTicketService(repo, rail, producer, cfg.Kafka.LedgerTopic, logger)

	if err := bootstrap.Run(ctx, cfg, verifier, flightService, ticketService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Storage.Database.DSN())
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStore(ctx, pool)
	default:
		return storage.NewBadgerStore(cfg.Storage.Dir, logger)
	}
}

// provisionAdmin performs the one-time admin initialization from config.
// A ledger that is already initialized keeps its stored admin; the config
// value is ignored after first boot.
func provisionAdmin(ctx context.Context, repo repository.LedgerRepository, admin string) error {
	_, err := repo.Admin(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrAdminNotInitialized) {
		return err
	}
	if admin == "" {
		return errors.New("ledger.admin_address is required on first boot")
	}
	if err := repo.InitAdmin(ctx, domain.Address(admin)); err != nil && !errors.Is(err, domain.ErrAlreadyInitialized) {
		return err
	}
	return nil
}
