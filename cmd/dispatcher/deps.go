package main

import (
	"context"
	"fmt"
	"log"

	fs "cloud.google.com/go/firestore"

	"notifyd/internal/domain/dispatch"
	"notifyd/internal/infrastructure/fcm"
	fsinfra "notifyd/internal/infrastructure/firestore"
	"notifyd/internal/infrastructure/postgres"
	httphandlers "notifyd/internal/interfaces/http"
	"notifyd/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Pipeline        *dispatch.Pipeline
	DispatchHandler *httphandlers.DispatchHandler

	// Listener is nil unless the Firestore on-create listener is enabled.
	Listener *fsinfra.Listener

	db       *postgres.DB
	fsClient *fs.Client
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Firestore client is shared between the recipient store and the
	// on-create listener.
	if cfg.Store.Backend == config.StoreBackendFirestore || cfg.Listener.Enabled {
		client, err := fsinfra.NewClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		deps.fsClient = client
		log.Printf("Connected to Firestore project %s", cfg.Firebase.ProjectID)
	}

	var store dispatch.RecipientStore
	switch cfg.Store.Backend {
	case config.StoreBackendFirestore:
		store = fsinfra.NewStore(deps.fsClient, cfg.Store.UsersCollection)
	case config.StoreBackendPostgres:
		db, err := postgres.New(cfg.Database.ConnectionString())
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.db = db
		store = postgres.NewTokenStore(db)
		log.Println("Connected to database")
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}

	gateway, err := fcm.NewClient(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Pipeline = dispatch.NewPipeline(store, gateway, dispatch.BuilderConfig{
		ChannelID:   cfg.Dispatch.ChannelID,
		ClickAction: cfg.Dispatch.ClickAction,
		DefaultTag:  cfg.Dispatch.DefaultTag,
		Icon:        cfg.Dispatch.Icon,
	})
	deps.DispatchHandler = httphandlers.NewDispatchHandler(deps.Pipeline)

	if cfg.Listener.Enabled {
		deps.Listener = fsinfra.NewListener(deps.fsClient, cfg.Listener.NotificationsCollection, deps.Pipeline)
	}

	return deps, nil
}

// Close releases all held connections.
func (d *Dependencies) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.fsClient != nil {
		d.fsClient.Close()
	}
}
