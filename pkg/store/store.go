// Package store opens the repositories selected by STORE_DRIVER
package store

import (
	"context"
	"fmt"

	"github.com/jordanlanch/leadboard/config"
	"github.com/jordanlanch/leadboard/pkg/database"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/repository/memory"
	mongorepo "github.com/jordanlanch/leadboard/pkg/repository/mongo"
	"github.com/jordanlanch/leadboard/pkg/repository/postgres"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store bundles the repositories of one backend with its lifecycle hooks
type Store struct {
	Driver string
	Leads  domain.LeadRepository
	Users  domain.UserRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backend connection
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the configured backend and prepares its schema or indexes
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.StoreDriver {
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	case config.StorePostgres:
		return openPostgres(ctx, cfg, log)
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return &Store{
			Driver: config.StoreMemory,
			Leads:  memory.NewLeadRepository(),
			Users:  memory.NewUserRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

func openMongo(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, error) {
	client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		return nil, err
	}

	leadRepo := mongorepo.NewLeadRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	if err := leadRepo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		Driver: config.StoreMongo,
		Leads:  leadRepo,
		Users:  userRepo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, error) {
	sslCfg := &database.SSLConfig{
		Mode:         cfg.DBSSLMode,
		CertPath:     cfg.DBSSLCertPath,
		KeyPath:      cfg.DBSSLKeyPath,
		RootCertPath: cfg.DBSSLRootCertPath,
	}
	db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, database.DefaultPoolConfig(), sslCfg, log)
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Driver: config.StorePostgres,
		Leads:  postgres.NewLeadRepository(db),
		Users:  postgres.NewUserRepository(db),
		ping:   db.PingContext,
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}
