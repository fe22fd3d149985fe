package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dukerupert/bulkmail/internal"
	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/dukerupert/bulkmail/internal/email"
	"github.com/dukerupert/bulkmail/internal/recipient"
	"github.com/dukerupert/bulkmail/internal/report"
	"github.com/dukerupert/bulkmail/internal/storage"
	"github.com/dukerupert/bulkmail/internal/telemetry"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// options are the command-line overrides for one run.
type options struct {
	envFile      string
	input        string
	subject      string
	templatePath string
	dryRun       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("bulkmail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.envFile, "env", internal.DefaultEnvFile, "env file holding SMTP credentials")
	fs.StringVar(&opts.input, "input", "", "recipient spreadsheet, local path or s3://bucket/key (overrides INPUT_PATH)")
	fs.StringVar(&opts.subject, "subject", "", "email subject (overrides MAIL_SUBJECT)")
	fs.StringVar(&opts.templatePath, "template", "", "HTML template file (overrides TEMPLATE_PATH)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "read, validate and render only; no SMTP connection is made")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// apply copies non-empty overrides onto cfg.
func (o options) apply(cfg *internal.Config) {
	if o.input != "" {
		cfg.Input.Path = o.input
	}
	if o.subject != "" {
		cfg.Input.Subject = o.subject
	}
	if o.templatePath != "" {
		cfg.Input.TemplatePath = o.templatePath
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := internal.NewConfig(opts.envFile)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	runID := uuid.NewString()
	logger := internal.WithRun(internal.NewLogger(stderr, cfg.Env, cfg.LogLevel), runID)

	// Initialize Sentry
	flush, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		logger.Warn("Sentry initialization failed, continuing without error tracking", "error", err)
	}
	defer flush()
	telemetry.SetRun(runID)

	metrics := telemetry.NewMetrics("")
	defer func() {
		if cfg.MetricsTextfile == "" {
			return
		}
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}()

	notifier := report.Multi{report.NewWriterNotifier(stdout), report.NewLogNotifier(logger)}
	notify := func(block report.Block, ok bool) {
		if !ok {
			return
		}
		if err := notifier.Notify(ctx, block); err != nil {
			logger.Error("failed to deliver report", "title", block.Title, "error", err)
		}
	}

	tmpl, err := email.LoadTemplate(cfg.Input.TemplatePath)
	if err != nil {
		return fmt.Errorf("template load failed: %w", err)
	}
	if !email.HasPlaceholder(tmpl) {
		logger.Warn("template has no {{Full_Name}} placeholder, every recipient gets the same body", "template", cfg.Input.TemplatePath)
	}

	var sender *email.SMTPSender
	if !opts.dryRun {
		sender, err = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Server,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			Timeout:  cfg.SMTP.Timeout,
		}, logger)
		if err != nil {
			notify(report.FromReadError(err))
			return fmt.Errorf("email sender initialization failed: %w", err)
		}
	}

	resolver, err := newResolver(ctx, cfg)
	if err != nil {
		notify(report.FromReadError(err))
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Read and validate recipients
	start := time.Now()
	reader := recipient.NewReader(resolver, logger, metrics)
	recipients, rowErrs, err := reader.Read(ctx, cfg.Input.Path)
	if err != nil {
		logger.Error("reading recipients failed", "op", domain.ErrorOp(err), "code", domain.ErrorCode(err), "error", err)
		notify(report.FromReadError(err))
		telemetry.CaptureError(err, map[string]interface{}{"input": cfg.Input.Path})
		return fmt.Errorf("reading recipients failed: %w", err)
	}
	notify(report.FromRowErrors(rowErrs))

	if opts.dryRun {
		notify(report.FromPreview(recipients, tmpl))
		logger.Info("dry run complete, nothing sent",
			"input", cfg.Input.Path,
			"ready", len(recipients),
			"rejected_rows", len(rowErrs),
			"duration", time.Since(start),
		)
		return nil
	}

	// Send
	service := email.NewService(sender, email.ServiceOptions{
		From:    sender.From(),
		Timeout: cfg.SMTP.Timeout,
		RunID:   runID,
		Logger:  logger,
		Metrics: metrics,
	})
	failures := service.SendBatch(ctx, recipients, cfg.Input.Subject, tmpl)
	notify(report.FromSendFailures(failures))
	if len(failures) > 0 {
		telemetry.CaptureMessage(
			fmt.Sprintf("%d of %d emails failed", len(failures), len(recipients)),
			sentry.LevelWarning,
			map[string]interface{}{"input": cfg.Input.Path},
		)
	}

	logger.Info("run complete",
		"input", cfg.Input.Path,
		"recipients", len(recipients),
		"rejected_rows", len(rowErrs),
		"sent", len(recipients)-len(failures),
		"failed", len(failures),
		"duration", time.Since(start),
	)

	return nil
}

// newResolver opens local paths directly and builds an S3 client only when
// the input lives in a bucket.
func newResolver(ctx context.Context, cfg *internal.Config) (*storage.Resolver, error) {
	if _, _, ok := storage.ParseS3Location(cfg.Input.Path); !ok {
		return storage.NewResolver(nil, nil), nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3Config{
		Region:      cfg.Storage.S3Region,
		Endpoint:    cfg.Storage.S3Endpoint,
		AccessKeyID: cfg.Storage.S3AccessKeyID,
		SecretKey:   cfg.Storage.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewResolver(nil, storage.S3Buckets(client)), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
