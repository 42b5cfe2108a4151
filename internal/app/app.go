package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/config"
	"github.com/easyloft/easyloft-client/internal/logging"
	"github.com/easyloft/easyloft-client/internal/prefs"
	"github.com/easyloft/easyloft-client/internal/service"
	"github.com/easyloft/easyloft-client/internal/state"
	"github.com/easyloft/easyloft-client/internal/tokenstore"
	"github.com/easyloft/easyloft-client/internal/ui"
)

// Options configure the EasyLoft client.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/easyloft/prefs.toml
	// RefreshEvery overrides the background refresh interval in seconds.
	// Zero keeps the configured value; negative disables refreshing.
	RefreshEvery int
}

// Run boots the EasyLoft TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, flush, err := logging.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer flush()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("load preferences failed", zap.Error(err))
	}

	tokens, err := tokenstore.Open(cfg.TokenPath())
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	client, err := api.NewClient(cfg.APIURL, tokens,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.Named("api")),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	auth := state.NewAuthStore(service.NewAuthService(client), tokens, logger.Named("auth"))
	lofts := state.NewLoftStore(service.NewLoftService(client), logger.Named("lofts"))
	pigeons := state.NewPigeonStore(service.NewPigeonService(client), logger.Named("pigeons"))

	// Restore the stored session before the first frame.
	auth.CheckAuth(ctx)

	interval := refreshInterval(cfg.RefreshInterval, opts.RefreshEvery)
	if interval > 0 {
		StartPoller(ctx, auth, []Refresher{lofts, pigeons}, interval, logger.Named("poller"))
	}

	logger.Info("starting",
		zap.String("api_url", client.BaseURL()),
		zap.Bool("signed_in", auth.IsAuthenticated()),
		zap.Duration("refresh", interval),
	)

	return ui.Run(ui.Options{
		Context:   ctx,
		Auth:      auth,
		Lofts:     lofts,
		Pigeons:   pigeons,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		LogPath:   cfg.LogPath(),
		Logger:    logger.Named("ui"),
	})
}

// refreshInterval resolves the flag override against the configured value.
func refreshInterval(configured time.Duration, seconds int) time.Duration {
	switch {
	case seconds > 0:
		return time.Duration(seconds) * time.Second
	case seconds < 0:
		return 0
	default:
		return configured
	}
}
