package main

import (
	"log"

	"tesoro/internal/domain/event"
	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
	"tesoro/internal/domain/report"
	"tesoro/internal/infrastructure/kafka"
	"tesoro/internal/infrastructure/postgres"
	httphandlers "tesoro/internal/interfaces/http"
	"tesoro/internal/shared/auth"
	"tesoro/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler     *httphandlers.AuthHandler
	FundHandler     *httphandlers.FundHandler
	LedgerHandler   *httphandlers.LedgerHandler
	TransferHandler *httphandlers.TransferHandler
	ReportHandler   *httphandlers.ReportHandler
	EventHandler    *httphandlers.EventHandler

	// Auth
	JWT *auth.JWT

	publisher *kafka.Publisher
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize stores and repositories
	ledgerStore := postgres.NewLedgerStore(db)
	reportStore := postgres.NewReportStore(db)
	eventStore := postgres.NewEventStore(db)
	fundRepo := postgres.NewFundRepository(db)
	treasurerRepo := postgres.NewTreasurerRepository(db)

	// Initialize event publishing
	var publisher *kafka.Publisher
	var events ledger.EventPublisher
	if cfg.Kafka.Enabled {
		publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		events = publisher
		log.Printf("Kafka publisher enabled (topic %s)", cfg.Kafka.Topic)
	} else {
		log.Println("Kafka publishing is disabled")
	}

	// Initialize domain services
	ledgerService := ledger.NewService(ledgerStore, events)
	fundService := fund.NewService(fundRepo)
	reportService := report.NewService(reportStore)
	eventService := event.NewService(eventStore)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	authHandler := httphandlers.NewAuthHandler(treasurerRepo, jwt)
	fundHandler := httphandlers.NewFundHandler(fundService, ledgerService)
	ledgerHandler := httphandlers.NewLedgerHandler(ledgerService)
	transferHandler := httphandlers.NewTransferHandler(ledgerService)
	reportHandler := httphandlers.NewReportHandler(reportService)
	eventHandler := httphandlers.NewEventHandler(eventService)

	return &Dependencies{
		DB:              db,
		AuthHandler:     authHandler,
		FundHandler:     fundHandler,
		LedgerHandler:   ledgerHandler,
		TransferHandler: transferHandler,
		ReportHandler:   reportHandler,
		EventHandler:    eventHandler,
		JWT:             jwt,
		publisher:       publisher,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			log.Printf("Error closing Kafka publisher: %v", err)
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
