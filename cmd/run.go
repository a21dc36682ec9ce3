package cmd

import (
	"context"
	"fmt"

	"tokenlottery/api"
	"tokenlottery/application"
	"tokenlottery/bot"
	"tokenlottery/config"
	"tokenlottery/database"
	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"
	"tokenlottery/events"
	"tokenlottery/infrastructure"
	"tokenlottery/infrastructure/oracle"
	"tokenlottery/repository"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const serviceName = "token-lottery"

// Run initializes and starts the lottery service
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := setupLogging(cfg); err != nil {
		return err
	}

	log.WithField("environment", cfg.Environment).Info("Starting token lottery service...")

	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
	if err := database.MigrateUp(databaseURL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()

	if cfg.NATSEnabled {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers, serviceName)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		defer natsClient.Close()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureLotteryEventStream(mapper); err != nil {
			return fmt.Errorf("failed to ensure lottery event stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(natsClient, mapper, serviceName).Attach(eventBus)
		log.Info("Forwarding lottery events to NATS")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	clock := infrastructure.NewWallSlotClock(cfg.SlotGenesis, cfg.SlotDuration)
	verifier := oracle.NewBLSVerifier()

	handler := application.NewLotteryHandler(uowFactory, clock, verifier, cfg.BeaconPublicKey, func(records interfaces.RandomnessRecordRepository) interfaces.RandomnessOracle {
		return oracle.NewOracle(records, verifier, cfg.BeaconPublicKey)
	})

	if cfg.DiscordEnabled() {
		session, err := infrastructure.OpenDiscordSession(cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("failed to open discord session: %w", err)
		}
		defer session.Close()

		infrastructure.NewDiscordAnnouncer(session, cfg.DiscordChannelID).Attach(eventBus)
		log.WithField("channelID", cfg.DiscordChannelID).Info("Posting lottery announcements to Discord")

		lotteryBot, err := bot.New(session, handler, entities.DefaultNamespace)
		if err != nil {
			return fmt.Errorf("failed to start discord bot: %w", err)
		}
		defer lotteryBot.Close()
	}

	if cfg.AdminAddress == (common.Address{}) {
		log.Warn("ADMIN_ADDRESS is not set; deposit and beacon routes are disabled")
	}

	server := api.NewServer(handler, api.NewAuthenticator(cfg.JWTSecret, cfg.AdminAddress), db)
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		return err
	}

	log.Info("Shutdown completed")
	return nil
}
