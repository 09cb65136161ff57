package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"nscollab/api"
	"nscollab/bot"
	"nscollab/config"
	"nscollab/database"
	"nscollab/events"
	"nscollab/infrastructure"
	"nscollab/observability"
	"nscollab/repository"
	"nscollab/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	setupLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting Demoday service...")

	// Initialize database connection
	log.Info("Connecting to database...")
	databaseURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return err
	}
	db, err := database.NewConnection(ctx, databaseURL, cfg.DatabasePoolOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	observability.Register(prometheus.DefaultRegisterer)
	observability.SubscribeToEvents(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	services := api.Services{
		Events:      service.NewEventService(uowFactory),
		Angels:      service.NewAngelService(uowFactory),
		Pitches:     service.NewPitchService(uowFactory),
		Investments: service.NewInvestmentService(uowFactory),
		Results:     service.NewResultsService(uowFactory),
	}
	log.Info("Services initialized successfully")

	// Forward committed events to NATS when configured
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()

		if err := natsClient.EnsureStream(); err != nil {
			return fmt.Errorf("failed to ensure NATS stream: %w", err)
		}

		infrastructure.NewEventForwarder(natsClient).Subscribe(eventBus)
		log.Info("Event forwarding to NATS enabled")
	}

	// Start the Discord bot when configured
	if cfg.DiscordBotToken != "" {
		discordBot, err := bot.New(bot.Config{
			Token:             cfg.DiscordBotToken,
			GuildID:           cfg.DiscordGuildID,
			AnnounceChannelID: cfg.DiscordAnnounceChannelID,
		}, services.Events, services.Angels, services.Results, eventBus)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		defer func() {
			if err := discordBot.Close(); err != nil {
				log.WithError(err).Error("Error closing Discord bot")
			}
		}()
		log.Info("Discord bot initialized successfully")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(services, api.NewDiscordIdentityProvider(), cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for context cancellation or a server failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down...")

	// Give in-flight requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown timeout exceeded")
	}

	log.Info("Shutdown completed")
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
