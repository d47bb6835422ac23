package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/sleuth/pkg/cli/config"
	httpctrl "github.com/secmon-lab/sleuth/pkg/controller/http"
	"github.com/secmon-lab/sleuth/pkg/service/metrics"
	"github.com/secmon-lab/sleuth/pkg/usecase"
	"github.com/secmon-lab/sleuth/pkg/utils/async"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var enableMetrics bool
	var botCfg config.Bot
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SLEUTH_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics at /metrics",
			Value:       true,
			Sources:     cli.EnvVars("SLEUTH_METRICS"),
			Destination: &enableMetrics,
		},
	}

	// Add shared config flags
	flags = append(flags, botCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server receiving Slack events and commands",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// A missing bot token is the only fatal startup condition
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			settings, err := botCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load bot settings")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			var m *metrics.Metrics
			if enableMetrics {
				m = metrics.New()
			}

			ucOpts := []usecase.Option{
				usecase.WithSlackService(slackSvc),
				usecase.WithMetrics(m),
			}
			ucOpts = append(ucOpts, settings.Options()...)
			uc := usecase.New(repo, ucOpts...)

			logging.Default().Info("Bot configured",
				"settings", settings,
				"slack", slackCfg,
			)

			httpOpts := []httpctrl.Options{
				httpctrl.WithSlackWebhook(httpctrl.NewSlackWebhookHandler(uc.Slack)),
				httpctrl.WithSlackCommand(httpctrl.NewSlackCommandHandler(uc.Slack)),
				httpctrl.WithSlackSigningSecret(slackCfg.SigningSecret()),
			}
			if m != nil {
				httpOpts = append(httpOpts, httpctrl.WithMetrics(m.Handler()))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			return runServer(ctx, server)
		},
	}
}

// runServer serves until the server fails or SIGINT/SIGTERM arrives, then
// shuts down gracefully and drains dispatched Slack handlers.
func runServer(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logging.Default().Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "failed to start server", goerr.V("addr", server.Addr))
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logging.Default().Info("Shutting down HTTP server", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		shutdownErr := server.Shutdown(shutdownCtx)

		// Searches still running are cancelled at the deadline; their records
		// are saved before the repository is closed
		async.Wait(shutdownCtx)

		if shutdownErr != nil {
			return goerr.Wrap(shutdownErr, "failed to shutdown server gracefully")
		}

		logging.Default().Info("Server shutdown completed")
		return nil
	})

	return eg.Wait()
}
