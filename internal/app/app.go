package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/furrow/internal/config"
	"github.com/five82/furrow/internal/irrigation"
	"github.com/five82/furrow/internal/logging"
	"github.com/five82/furrow/internal/prefs"
	"github.com/five82/furrow/internal/ui"
)

// Options configure the furrow application.
type Options struct {
	ConfigPath string // empty uses ~/.config/furrow/config.toml
	EnvPath    string // empty uses ./.env
	APIURL     string // overrides config and environment when set
	PrefsPath  string // empty uses ~/.config/furrow/prefs.toml
	StartView  string // route name; unknown names open the fields view
}

// Run boots the furrow TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.Open(cfg.LogFile, slog.LevelInfo)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Close()

	transportOpts := []irrigation.Option{irrigation.WithLogger(logger.Logger)}
	if cfg.RequestTimeout > 0 {
		transportOpts = append(transportOpts, irrigation.WithTimeout(cfg.RequestTimeout))
	}
	transport, err := irrigation.NewHTTPTransport(cfg.APIURL, transportOpts...)
	if err != nil {
		return fmt.Errorf("init irrigation client: %w", err)
	}
	client := irrigation.NewClientWithTransport(transport)

	userPrefs := prefs.Load(opts.PrefsPath)
	view := ui.ParseView(opts.StartView)

	logger.Info("furrow starting",
		slog.String("api", transport.BaseURL()),
		slog.String("view", view.Route()),
		slog.Duration("request_timeout", cfg.RequestTimeout))

	err = ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Logger:    logger.Logger,
		BaseURL:   transport.BaseURL(),
		StartView: view,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
	if err != nil {
		logger.Error("ui exited", slog.Any("err", err))
		return err
	}
	logger.Info("furrow stopped")
	return nil
}

// loadConfig resolves the effective configuration. The -api flag wins over
// the environment, which wins over the config file.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(opts.EnvPath); err != nil {
		return config.Config{}, fmt.Errorf("load env: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	return cfg, nil
}
