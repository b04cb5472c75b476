package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/taichungmao-blip/CB-Monitor/internal/external/discord"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/mops"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/tpex"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/twse"
	"github.com/taichungmao-blip/CB-Monitor/internal/flows"
	"github.com/taichungmao-blip/CB-Monitor/internal/quotes"
	"github.com/taichungmao-blip/CB-Monitor/internal/report"
	"github.com/taichungmao-blip/CB-Monitor/internal/scanner"
	"github.com/taichungmao-blip/CB-Monitor/internal/watchlist"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
	"github.com/taichungmao-blip/CB-Monitor/pkg/redis"
)

const cachePrefix = "cbmonitor"

// app holds the wired dependencies of one process
type app struct {
	cfg       *config.Config
	logger    *logger.Logger
	watchlist *watchlist.Watchlist
	scanner   *scanner.Scanner
	redis     *redis.Client
}

// newApp wires config, upstream clients and the scanner.
// dryRun forces console delivery even when a webhook is configured.
func newApp(ctx context.Context, dryRun bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	wl, err := watchlist.Load(cfg.WatchlistPath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		// cache is optional, run without it
		log.WithError(err).Warn("Redis unavailable, settlement cache disabled")
		rc, _ = redis.New(ctx, &config.Config{})
	}
	cache := redis.NewCache(rc, cachePrefix)

	httpClient := httputil.New(cfg, log)
	twseClient := twse.NewClient(httpClient, cfg, log).WithCache(cache)
	tpexClient := tpex.NewClient(httpClient, cfg, log).WithCache(cache)

	var disclosures scanner.DisclosureSource
	if cfg.Scan.DisclosureEnabled {
		disclosures = mops.NewClient(httpClient, cfg, log)
	}

	s := scanner.New(scanner.Deps{
		Watchlist:   wl,
		Normalizer:  quotes.NewNormalizer(twseClient, log, twseClient, tpexClient),
		Aggregator:  flows.NewAggregator(log, twseClient, tpexClient),
		Disclosures: disclosures,
		Formatter:   report.NewFormatter(nil),
		Dispatcher:  report.NewDispatcher(newDeliverer(cfg, httpClient, log, dryRun), cfg.Scan.DispatchDelay, log),
	}, log)

	return &app{
		cfg:       cfg,
		logger:    log,
		watchlist: wl,
		scanner:   s,
		redis:     rc,
	}, nil
}

// newDeliverer picks the webhook or the console. Config validation already
// rejects a missing webhook in production.
func newDeliverer(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger, dryRun bool) report.Deliverer {
	if dryRun {
		log.Info("Dry run, alerts go to stdout")
		return discord.NewConsole(os.Stdout)
	}
	if !cfg.DeliveryEnabled() {
		log.WithField("env", cfg.Env).Warn("DISCORD_WEBHOOK_URL not set, alerts go to stdout")
		return discord.NewConsole(os.Stdout)
	}
	return discord.NewClient(httpClient, cfg, log)
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
