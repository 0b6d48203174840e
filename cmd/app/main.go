package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/charterbook/api"
	"github.com/Domenick1991/charterbook/config"
	"github.com/Domenick1991/charterbook/internal/bootstrap"
	"github.com/Domenick1991/charterbook/internal/cache"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/kafka"
	"github.com/Domenick1991/charterbook/internal/logger"
	"github.com/Domenick1991/charterbook/internal/payment"
	"github.com/Domenick1991/charterbook/internal/repository"
	"github.com/Domenick1991/charterbook/internal/service/availability"
	"github.com/Domenick1991/charterbook/internal/service/booking"
	"github.com/Domenick1991/charterbook/internal/service/fleet"
	"github.com/Domenick1991/charterbook/internal/service/ledger"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
	"github.com/Domenick1991/charterbook/internal/service/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
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

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	loc, err := cfg.Booking.Location()
	if err != nil {
		lg.Fatal("load timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.AssetsCacheTTL(), cfg.Booking.DraftIdle())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()

	catalog := pricing.DefaultCatalog()
	if cfg.Booking.PricingRulesPath != "" {
		catalog, err = pricing.LoadCatalog(cfg.Booking.PricingRulesPath)
		if err != nil {
			lg.Fatal("load pricing rules", zap.String("path", cfg.Booking.PricingRulesPath), zap.Error(err))
		}
	}
	pricer := pricing.NewEngine(catalog, cfg.Booking.Currency)

	assetRepo := repository.NewAssetRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	fleetService := fleet.NewFleetService(assetRepo, redisCache, fleet.WithLogger(lg))
	resolver := availability.NewResolver(fleetService, reservationRepo, loc,
		availability.WithOperatingHours(cfg.Booking.OpenHour, cfg.Booking.CloseHour),
	)
	bookingService := booking.NewBookingService(
		bookingRepo,
		reservationRepo,
		pricer,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.Policy{
			Deposit: cfg.Deposit,
			Refund: domain.RefundPolicy{
				Type:          domain.RefundType(cfg.Refund.Type),
				DeadlineHours: cfg.Refund.DeadlineHours,
				Percentage:    cfg.Refund.Percentage,
			},
			SlotLockTTL: cfg.Booking.SlotLockTTL(),
		},
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(lg),
	)
	ledgerService := ledger.NewLedgerService(
		bookingRepo,
		paymentRepo,
		reservationRepo,
		producer,
		cfg.Kafka.BookingEventsTopic,
		ledger.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		ledger.WithLogger(lg),
	)
	workflowService := workflow.NewService(
		redisCache,
		fleetService,
		resolver,
		pricer,
		bookingService,
		payment.NewSandboxProvider(lg),
		ledgerService,
		workflow.Settings{
			Location:         loc,
			MinLeadDays:      cfg.Booking.MinLeadDays,
			StaffMinLeadDays: cfg.Booking.StaffMinLeadDays,
			DraftIdle:        cfg.Booking.DraftIdle(),
		},
		workflow.WithLogger(lg),
	)

	handlers := bootstrap.Handlers{
		Assets:      api.NewAssetHandler(fleetService, resolver, loc),
		Quotes:      api.NewQuoteHandler(pricer, loc),
		Drafts:      api.NewDraftHandler(workflowService),
		StaffDrafts: api.NewStaffDraftHandler(workflowService),
		Bookings:    api.NewBookingHandler(workflowService, bookingService, ledgerService),
		Health: api.NewHealthHandler(map[string]api.HealthCheck{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
			"kafka": func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				return producer.CheckConnection(ctx)
			},
		}),
	}

	if err := bootstrap.Run(ctx, cfg, handlers, lg); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
