package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/romeolab/agenda-notify/internal/config"
	"github.com/romeolab/agenda-notify/internal/infra/postgresql"
	"github.com/romeolab/agenda-notify/internal/infra/postgresql/migrations"
	"github.com/romeolab/agenda-notify/internal/observability"
	"github.com/romeolab/agenda-notify/internal/provider"
	"github.com/romeolab/agenda-notify/internal/ratelimit"
	"github.com/romeolab/agenda-notify/internal/repository"
	"github.com/romeolab/agenda-notify/internal/security"
	"github.com/romeolab/agenda-notify/internal/service"
	"github.com/romeolab/agenda-notify/internal/whatsapp"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "agenda-notify",
		Short:        "Outbound notification workers for the booking platform",
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newEmailWorkerCmd(),
		newWhatsAppWorkerCmd(),
		newQueueRemindersCmd(),
	)

	return root
}

// bootstrap loads config, logger and DB. Failures here are the fatal
// setup class: nothing has been mutated yet and the process exits 1.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = observability.WithRunID(logger)

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres initialization failed: %w", err)
	}

	return cfg, logger, db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := migrations.Migrate(db); err != nil {
				logger.Error("database migrations failed", zap.Error(err))
				return err
			}

			logger.Info("database migrations applied")
			return nil
		},
	}
}

func newEmailWorkerCmd() *cobra.Command {
	var batchSize int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "email-worker",
		Short: "Drain one batch of the email notification queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if batchSize <= 0 {
				batchSize = cfg.BatchSize
			}

			emailProvider, err := provider.New(provider.Config{
				Provider:       cfg.MailProvider,
				SMTPHost:       cfg.SMTPHost,
				SMTPPort:       cfg.SMTPPort,
				SMTPUser:       cfg.SMTPUser,
				SMTPPass:       cfg.SMTPPass,
				BrevoAPIKey:    cfg.BrevoAPIKey,
				MailgunAPIKey:  cfg.MailgunAPIKey,
				MailgunDomain:  cfg.MailgunDomain,
				MailgunEURegio: cfg.MailgunEURegion,
				ResendAPIKey:   cfg.ResendAPIKey,
			})
			if err != nil {
				return fmt.Errorf("mail provider initialization failed: %w", err)
			}

			worker := service.NewEmailWorker(
				repository.NewGormQueueRepo(db),
				emailProvider,
				service.NewSenderTable(cfg),
				batchSize,
				time.Duration(cfg.SendDelayMillis)*time.Millisecond,
				dryRun,
				logger,
			)

			summary, err := worker.Run(cmd.Context())
			if err != nil {
				logger.Error("email worker failed", zap.Error(err))
				return err
			}
			if summary.AllAttemptedFailed() {
				return fmt.Errorf("all %d attempted emails failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch", 0, "batch size (defaults to WORKER_BATCH_SIZE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render and mark without sending")

	return cmd
}

func newWhatsAppWorkerCmd() *cobra.Command {
	var batchSize int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "whatsapp-worker",
		Short: "Drain one batch of the WhatsApp outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if batchSize <= 0 {
				batchSize = cfg.BatchSize
			}

			encryptor, err := security.NewEncryptor(cfg.EncryptionKey)
			if err != nil {
				return fmt.Errorf("encryption key invalid: %w", err)
			}

			outbox := repository.NewGormOutboxRepo(db)
			worker := service.NewWhatsAppWorker(
				outbox,
				repository.NewGormClientRepo(db),
				ratelimit.NewHistoryBudget(outbox, cfg.WhatsAppPerMinuteCap, cfg.WhatsAppDailyCap),
				encryptor,
				whatsapp.NewClient(cfg.WhatsAppAPIVersion),
				batchSize,
				time.Duration(cfg.SendDelayMillis)*time.Millisecond,
				dryRun,
				logger,
			)

			summary, err := worker.Run(cmd.Context())
			if err != nil {
				logger.Error("whatsapp worker failed", zap.Error(err))
				return err
			}
			if summary.AllAttemptedFailed() {
				return fmt.Errorf("all %d attempted messages failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch", 0, "batch size (defaults to WORKER_BATCH_SIZE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run all gates without sending")

	return cmd
}

func newQueueRemindersCmd() *cobra.Command {
	var hours int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "queue-reminders",
		Short: "Enqueue reminder emails for upcoming bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if hours <= 0 {
				hours = cfg.ReminderLookaheadHours
			}

			settings := repository.NewGormSettingsRepo(db)
			notifier := service.NewNotifier(
				repository.NewGormQueueRepo(db),
				settings,
				repository.NewGormClientRepo(db),
				cfg.DefaultTimezone,
				cfg.DefaultLocale,
				cfg.FrontendURL,
				logger,
			)

			scheduler := service.NewReminderScheduler(
				repository.NewGormBookingRepo(db),
				settings,
				notifier,
				hours,
				dryRun,
				logger,
			)

			candidates, enqueued, err := scheduler.Run(cmd.Context())
			if err != nil {
				logger.Error("reminder sweep failed", zap.Error(err))
				return err
			}

			logger.Info("reminder sweep finished",
				zap.Int("candidates", candidates),
				zap.Int("enqueued", enqueued),
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "lookahead window in hours (defaults to REMINDER_LOOKAHEAD_HOURS)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report candidates without enqueuing")

	return cmd
}
