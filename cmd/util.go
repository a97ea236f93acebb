package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/expiration"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/networks"
	"github.com/tranvictor/uns/resolvers"
	"github.com/tranvictor/uns/storage/postgres"
	"github.com/tranvictor/uns/ui"
)

var errNotFound = errors.New("not found")

// replaced in tests
var (
	newUI        = func() ui.UI { return ui.NewTerminalUI() }
	buildService = nameservice.NewFromConfig
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.ConfigFile)
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("network"); f != nil && f.Changed {
		networks.SetNetwork(config.Network)
		cfg.Resolvers.ENS.Network = networks.CurrentNetwork().GetName()
	}
	return cfg, nil
}

func lookupOptions() nameservice.Options {
	return nameservice.Options{
		ChainID:  config.ChainID,
		CoinType: config.CoinTypeFlag(),
		NoCache:  config.NoCache,
	}
}

// withService builds the service from the config, runs fn and disposes it.
func withService(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Dispose()
	return fn(ctx, cfg, svc, newUI())
}

// newTracker watches expiry through the ENS resolver. Records go to
// Postgres when a database is configured, to memory otherwise.
func newTracker(ctx context.Context, cfg config.Config, svc *nameservice.Service) (*expiration.Tracker, func(), error) {
	r, found := svc.Resolver(resolvers.ENSID)
	if !found {
		return nil, nil, errors.New("expiry tracking needs the ens resolver enabled")
	}
	reader, ok := r.(expiration.ExpiryReader)
	if !ok {
		return nil, nil, errors.New("the ens resolver can't read expiry")
	}
	var store expiration.Store = expiration.NewMemoryStore()
	cleanup := func() {}
	if cfg.Postgres.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.Postgres.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = postgres.NewExpirationStore(db)
		cleanup = db.Close
	}
	tracker := expiration.NewTracker(reader, expiration.Config{
		PollInterval: cfg.Expiration.PollInterval.Std(),
		Thresholds:   cfg.Expiration.ThresholdDurations(),
		Store:        store,
	})
	return tracker, cleanup, nil
}
