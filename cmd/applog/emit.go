package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/philipp01105/applog/handler"
	"github.com/philipp01105/applog/logger"
	"github.com/philipp01105/applog/router"
)

type emitOptions struct {
	level   string
	api     string
	logFile string
}

func newEmitCmd(root *rootOptions) *cobra.Command {
	opts := &emitOptions{}

	cmd := &cobra.Command{
		Use:   "emit MESSAGE...",
		Short: "Send one record through the configured handlers",
		Long: `Send one record through the handlers the current environment configures.
With MAIL_SERVER and ADMINS set in production, an error record triggers an alert email.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd, root, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&opts.level, "level", "l", "error", "record level")
	cmd.Flags().StringVar(&opts.api, "api", "native", "logging API to emit through (native, slog, logrus)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", router.LogFile, "log file path")
	return cmd
}

func runEmit(cmd *cobra.Command, root *rootOptions, opts *emitOptions, msg string) (err error) {
	level, err := logger.ParseLevel(opts.level)
	if err != nil {
		return err
	}
	cfg, err := root.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := router.Configure(cfg,
		router.WithLogFile(opts.logFile),
		router.WithContext(ctx),
		router.WithStdout(cmd.OutOrStdout()),
		router.WithErrorReporter(handler.StderrReporter(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, log.Close()) }()

	switch opts.api {
	case "native":
		err = log.Emit(level, msg, logger.String("source", "applog emit"))
	case "slog":
		log.Slog().Log(ctx, slogLevel(level), msg, "source", "applog emit")
	case "logrus":
		lr := logrus.New()
		lr.SetOutput(cmd.ErrOrStderr())
		lr.SetReportCaller(true)
		lr.SetLevel(logrus.DebugLevel)
		lr.AddHook(handler.NewLogrusHook(log.Handler(), log.Level()))
		emitLogrus(lr.WithField("source", "applog emit"), level, msg)
	default:
		return fmt.Errorf("unknown api %q", opts.api)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "emitted %s record via %s (%d handlers)\n", level, opts.api, len(log.Handlers()))
	return nil
}

func emitLogrus(e *logrus.Entry, level logger.Level, msg string) {
	switch level {
	case logger.DebugLevel:
		e.Debug(msg)
	case logger.InfoLevel:
		e.Info(msg)
	case logger.WarnLevel:
		e.Warn(msg)
	default:
		// Fatal and Panic would exit or unwind the CLI
		e.Error(msg)
	}
}
