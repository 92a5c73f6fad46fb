package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/bibliotech/mlol/internal/config"
	"github.com/bibliotech/mlol/internal/logger"
	"github.com/bibliotech/mlol/pkg/browser"
	"github.com/bibliotech/mlol/pkg/mlol"
)

// session bundles the resources one command invocation owns: the browser
// and the authenticated site client riding on it.
type session struct {
	browser *browser.Session
	client  *mlol.Client
}

// loadConfig loads the configuration file and stands up logging. The
// account password is registered with the redactor so it never reaches a
// log sink, whichever field carries it.
func loadConfig(path string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	lg, err := logger.New(logger.Config{
		Level:     level,
		File:      cfg.Logging.File,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, nil, err
	}
	lg.AddSecret(cfg.Password)

	return cfg, lg, nil
}

// openSession launches the browser and logs in to the site
func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	b, err := browser.Launch(ctx, browser.Options{
		Headless:    cfg.Browser.Headless,
		NoSandbox:   cfg.Browser.NoSandbox,
		ChromePath:  cfg.Browser.ChromePath,
		UserDataDir: cfg.Browser.UserDataDir,
		Timeout:     cfg.Browser.Timeout(),
	})
	if err != nil {
		return nil, err
	}

	client := mlol.NewClient(b, cfg.URL)
	creds := mlol.Credentials{Username: cfg.Username, Password: cfg.Password}
	if err := client.Login(ctx, creds); err != nil {
		if cerr := b.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("browser shutdown failed")
		}
		return nil, err
	}

	return &session{browser: b, client: client}, nil
}

// Close shuts the browser down; safe to defer right after openSession
func (s *session) Close() {
	if err := s.browser.Close(); err != nil {
		log.Warn().Err(err).Msg("browser shutdown failed")
	}
}
