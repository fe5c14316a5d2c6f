// Command seed fills the configured store with fake leads for one account,
// creating the account when it does not exist yet.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jordanlanch/leadboard/config"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/leads"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/store"
	"github.com/jordanlanch/leadboard/pkg/testdata"
	"github.com/jordanlanch/leadboard/pkg/users"
)

func main() {
	email := flag.String("email", "demo@leadboard.local", "account that will own the leads")
	password := flag.String("password", "demo1234", "password used when the account is created")
	count := flag.Int("count", 100, "number of leads to create")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if cfg.StoreDriver == config.StoreMemory {
		log.Error("seeding the in-memory store has no effect; set STORE_DRIVER to mongo or postgres")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close(context.Background())

	owner, err := ensureUser(ctx, users.NewService(st.Users, log), *email, *password)
	if err != nil {
		log.Error("failed to prepare account", "email", *email, "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Error("invalid filter timezone", "error", err)
		os.Exit(1)
	}
	leadService := leads.NewService(st.Leads, nil, filter.NewCompiler(loc), leads.Config{}, log)

	cfgGen := testdata.DefaultLeadGeneratorConfig(*count)
	cfgGen.Seed = *seed
	gen := testdata.NewLeadGenerator(cfgGen)

	created := 0
	for i, in := range gen.GenerateLeads() {
		if _, err := leadService.Create(ctx, owner.ID, in); err != nil {
			log.Warn("skipping lead", "index", i, "error", err)
			continue
		}
		created++
	}

	log.Info("seed complete", "owner", owner.Email, "created", created, "requested", *count)
}

// ensureUser logs into an existing account or registers a new one
func ensureUser(ctx context.Context, svc *users.Service, email, password string) (*models.User, error) {
	user, err := svc.Authenticate(ctx, models.LoginRequest{Email: email, Password: password})
	if err == nil {
		return user, nil
	}
	if !domain.IsNotAuthenticated(err) {
		return nil, err
	}
	return svc.Register(ctx, models.RegisterRequest{Email: email, Password: password})
}
