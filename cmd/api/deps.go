package main

import (
	"context"
	"log"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/layer"
	"layerdemo/internal/infrastructure/crypto"
	"layerdemo/internal/infrastructure/memory"
	"layerdemo/internal/infrastructure/plaid"
	"layerdemo/internal/infrastructure/postgres"
	httphandlers "layerdemo/internal/interfaces/http"
	"layerdemo/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	TokenHandler     *httphandlers.TokenHandler
	ApplicantHandler *httphandlers.ApplicantHandler
}

// NewDependencies initializes all application dependencies. Postgres is only
// touched when the store is enabled.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	itemRepo, applicantRepo, err := newRepositories(ctx, cfg, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	// Initialize vendor client and domain services
	plaidClient := plaid.NewClient(cfg.Plaid.BaseURL, cfg.Plaid.ClientID, cfg.Plaid.Secret)
	layerService := layer.NewService(plaidClient, itemRepo, cfg.Plaid.TemplateID)
	applicantService := applicant.NewService(applicantRepo)

	// Initialize handlers
	deps.TokenHandler = httphandlers.NewTokenHandler(layerService)
	deps.ApplicantHandler = httphandlers.NewApplicantHandler(applicantService)

	log.Printf("Relaying to %s (%s)", cfg.Plaid.BaseURL, cfg.Plaid.Env)

	return deps, nil
}

// newRepositories opens the Postgres store when it is enabled. With the store
// off no linked items are kept, so the returned ItemRepository is nil.
func newRepositories(ctx context.Context, cfg *config.Config, deps *Dependencies) (layer.ItemRepository, applicant.Repository, error) {
	if !cfg.Store.Enabled {
		log.Println("Store disabled, linked items are not kept and applicants live in memory")
		return nil, memory.NewApplicantRepository(), nil
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	log.Println("Connected to database")

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, nil, err
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, nil, err
	}

	return postgres.NewItemRepository(db, encryptor), postgres.NewApplicantRepository(db), nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
