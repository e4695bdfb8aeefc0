package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/nmadhukar/workforcenexus/internal/app"
	"github.com/nmadhukar/workforcenexus/internal/log"
)

func main() {
	cmd := &cli.Command{
		Name:  "workforcenexus",
		Usage: "Healthcare workforce and license compliance API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":8080",
				Usage: "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "db-driver",
				Value:   "sqlite",
				Sources: cli.EnvVars("WFN_DB_DRIVER"),
				Usage:   "Database driver: sqlite or postgres",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Value:   "./workforcenexus.sqlite",
				Sources: cli.EnvVars("WFN_DATABASE_URL"),
				Usage:   "Postgres URL or SQLite file path",
			},
			&cli.StringFlag{
				Name:    "env",
				Value:   "live",
				Sources: cli.EnvVars("WFN_ENV"),
				Usage:   "Token environment segment (wfn_<env>_...)",
			},
			&cli.StringFlag{
				Name:    "bootstrap-api-key",
				Sources: cli.EnvVars("WFN_BOOTSTRAP_API_KEY"),
				Usage:   "Optional admin token to register at startup",
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Sources: cli.EnvVars("WFN_WEBHOOK_URL"),
				Usage:   "Outbox event webhook target URL",
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Sources: cli.EnvVars("WFN_WEBHOOK_SECRET"),
				Usage:   "HMAC-SHA256 signing secret for outbound webhooks",
			},
			&cli.BoolFlag{
				Name:  "no-scheduler",
				Usage: "Disable the cron jobs (scans, rotation sweep)",
			},
			&cli.DurationFlag{
				Name:    "key-max-age",
				Sources: cli.EnvVars("WFN_KEY_MAX_AGE"),
				Usage:   "Auto-rotate API keys older than this (0 disables)",
			},
			&cli.DurationFlag{
				Name:    "rotation-grace",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("WFN_ROTATION_GRACE"),
				Usage:   "How long a rotated-out key stays valid",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("WFN_LOG_LEVEL"),
				Usage:   "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Sources: cli.EnvVars("WFN_LOG_JSON"),
				Usage:   "Emit JSON log lines instead of console output",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log.Init(log.Config{
				Level:      log.Level(c.String("log-level")),
				JSONOutput: c.Bool("log-json"),
			})

			cfg := app.Config{
				Addr:             c.String("addr"),
				DatabaseDriver:   c.String("db-driver"),
				DatabaseURL:      c.String("database-url"),
				Env:              c.String("env"),
				BootstrapAPIKey:  c.String("bootstrap-api-key"),
				WebhookURL:       c.String("webhook-url"),
				WebhookSecret:    c.String("webhook-secret"),
				DisableScheduler: c.Bool("no-scheduler"),
				KeyMaxAge:        c.Duration("key-max-age"),
				RotationGrace:    c.Duration("rotation-grace"),
			}

			server, closer, err := app.NewServer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					log.Logger.Error().Err(closeErr).Msg("close resources")
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.Logger.Info().Str("addr", cfg.Addr).Msg("listening")
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case sig := <-sigCh:
				log.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Logger.Fatal().Err(err).Msg("exit")
	}
}
