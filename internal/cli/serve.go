package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"study-planner/internal/bot"
	"study-planner/internal/config"
	"study-planner/internal/httpapi"
	"study-planner/internal/repository"
	"study-planner/internal/service"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterMaxIdle         = 30 * time.Minute
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr  string
	NoBot bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduler and (when configured) the Telegram bot",
		Long: `Run the HTTP API together with the background scheduler.

The scheduler reconciles counters on RECONCILE_SCHEDULE and prunes idle rate
limiters. When TELEGRAM_TOKEN is set the Telegram bot is started as well and
daily reports are sent once a day at REPORT_AT (HH:MM) or, when that is unset,
every REPORT_INTERVAL.

Example:
  studyplanner serve --addr :9090 --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "HTTP listen address, overrides HTTP_ADDR")
	cmd.Flags().BoolVar(&opts.NoBot, "no-bot", false, "do not start the Telegram bot even if a token is configured")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	rt, err := setup(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, log := rt.cfg, rt.log
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}

	store := repository.NewStore(rt.db)
	users := service.NewUserService(store, log)
	plans := service.NewPlanService(store, log)
	projects := service.NewProjectService(store, log)
	reconciler := service.NewReconcileService(store, log)
	reminders := service.NewReminderService(store, log)

	limiter := httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log.Named("ratelimit"))
	api := httpapi.NewServer(httpapi.Services{
		Users:    users,
		Plans:    plans,
		Planners: service.NewPlannerService(store, log),
		Projects: projects,
		Studies:  service.NewStudyService(store, log),
		Posts:    service.NewPostService(store, log),
	}, limiter, log.Named("http"))

	scheduler := service.NewSchedulerService(time.Local, log)
	if cfg.ReconcileSchedule != "" {
		if _, err := scheduler.Schedule("reconcile", cfg.ReconcileSchedule, func(ctx context.Context) error {
			_, err := reconciler.Reconcile(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	if _, err := scheduler.ScheduleInterval("ratelimit-cleanup", limiterCleanupInterval, limiter.CleanupJob(limiterMaxIdle)); err != nil {
		return err
	}

	var telegramBot *bot.Bot
	if cfg.BotEnabled() && !opts.NoBot {
		telegramBot, err = bot.New(cfg.TelegramToken, bot.Services{
			Users:     users,
			Plans:     plans,
			Projects:  projects,
			Reminders: reminders,
		}, log.Named("bot"))
		if err != nil {
			return err
		}
		if err := scheduleReports(scheduler, cfg, telegramBot.SendDailyReports); err != nil {
			return err
		}
	} else {
		log.Info("telegram bot disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	scheduler.Start()
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if telegramBot != nil {
		g.Go(func() error {
			return telegramBot.Start(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("serve stopped with error", zap.Error(err))
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// scheduleReports registers the daily report job. A fixed REPORT_AT time wins over REPORT_INTERVAL.
func scheduleReports(scheduler *service.SchedulerService, cfg config.Config, job service.Job) error {
	switch {
	case cfg.ReportAt != "":
		if _, err := scheduler.ScheduleDaily("daily-report", cfg.ReportAt, job); err != nil {
			return fmt.Errorf("REPORT_AT: %w", err)
		}
	case cfg.ReportInterval > 0:
		if _, err := scheduler.ScheduleInterval("daily-report", cfg.ReportInterval, job); err != nil {
			return err
		}
	}
	return nil
}
