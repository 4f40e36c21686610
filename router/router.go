// Package router wires the application's handlers from configuration.
//
// Configure is called once at startup. It always attaches a rotating
// file handler; in production it also attaches a mail alert handler
// when a mail server is configured.
//
//	| mode                          | file    | mail  |
//	|-------------------------------|---------|-------|
//	| debug                         | DEBUG   | -     |
//	| production, no MAIL_SERVER    | WARNING | -     |
//	| production, MAIL_SERVER set   | WARNING | ERROR |
package router

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/philipp01105/applog/config"
	"github.com/philipp01105/applog/core"
	"github.com/philipp01105/applog/formatter"
	"github.com/philipp01105/applog/handler"
	"github.com/philipp01105/applog/logger"
)

const (
	LogFile     = "logs/app.log"
	MaxBytes    = 1 * 1024 * 1024
	BackupCount = 100

	AlertSender  = "no-reply@julien-bonnefoy.dev"
	AlertSubject = "Website failure"
	MailTimeout  = 30 * time.Second
)

// TransportFactory builds the transport used by the mail handler.
type TransportFactory func(handler.SMTPConfig) (handler.MailTransport, error)

// SMTP is the default TransportFactory.
func SMTP(cfg handler.SMTPConfig) (handler.MailTransport, error) {
	return handler.NewSMTPTransport(cfg)
}

type options struct {
	logFile    string
	ctx        context.Context
	transport  TransportFactory
	registerer prometheus.Registerer
	stdout     io.Writer
	reporter   handler.ErrorReporter
}

// Option customises Configure.
type Option func(*options)

// WithLogFile overrides the log file path.
func WithLogFile(path string) Option {
	return func(o *options) { o.logFile = path }
}

// WithContext sets the context that bounds mail delivery. Cancelling it
// makes pending and later alert sends return an error.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithTransport replaces the SMTP transport factory.
func WithTransport(f TransportFactory) Option {
	return func(o *options) { o.transport = f }
}

// WithRegisterer registers handler metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithStdout sets the writer used when LOG_TO_STDOUT is set.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithErrorReporter receives mail delivery failures.
func WithErrorReporter(r handler.ErrorReporter) Option {
	return func(o *options) { o.reporter = r }
}

// Configure builds the application logger from cfg.
func Configure(cfg *config.Config, opts ...Option) (*logger.Logger, error) {
	o := options{
		logFile:   LogFile,
		ctx:       context.Background(),
		transport: SMTP,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var metrics *handler.Metrics
	if o.registerer != nil {
		metrics = handler.NewMetrics(o.registerer)
	}

	fileHandler, err := handler.NewFileHandler(handler.FileConfig{
		Filename:   o.logFile,
		Formatter:  formatter.NewLineFormatter(formatter.Config{}),
		MaxSize:    MaxBytes,
		MaxBackups: BackupCount,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("file handler: %w", err)
	}

	level := core.WarnLevel
	if cfg.Debug {
		level = core.DebugLevel
	}

	b := logger.NewBuilder().
		WithCaller(true).
		WithHandler(fileHandler, level)

	if cfg.StdoutLogging() {
		b.WithHandler(handler.NewZapHandler(handler.ZapConfig{Writer: o.stdout, Metrics: metrics}), level)
	}

	var warnings []string
	if !cfg.Debug && cfg.MailEnabled() {
		if len(cfg.Admins) == 0 {
			warnings = append(warnings, "mail alerts disabled: MAIL_SERVER is set but ADMINS is empty")
		} else {
			mailHandler, err := newMailHandler(cfg, &o, metrics)
			if err != nil {
				return nil, multierr.Append(fmt.Errorf("mail handler: %w", err), fileHandler.Close())
			}
			b.WithHandler(mailHandler, core.ErrorLevel)
		}
	}

	log := b.Build()
	for _, w := range warnings {
		log.Warn(w)
	}
	return log, nil
}

// Security maps the MAIL_USE_SSL / MAIL_USE_TLS flags to a transport mode.
func Security(cfg *config.Config) handler.Security {
	switch {
	case cfg.MailUseSSL:
		return handler.SSL
	case cfg.MailUseTLS:
		return handler.StartTLS
	default:
		return handler.Plaintext
	}
}

func newMailHandler(cfg *config.Config, o *options, metrics *handler.Metrics) (*handler.MailHandler, error) {
	smtpCfg := handler.SMTPConfig{
		Host:     cfg.MailServer,
		Port:     cfg.MailPort,
		Security: Security(cfg),
		Timeout:  MailTimeout,
	}
	if user, pass, ok := cfg.MailCredentials(); ok {
		smtpCfg.Credentials = &handler.Credentials{Username: user, Password: pass}
	}

	transport, err := o.transport(smtpCfg)
	if err != nil {
		return nil, err
	}

	from := cfg.MailDefaultSender
	if from == "" {
		from = AlertSender
	}

	return handler.NewMailHandler(handler.MailConfig{
		Transport:     transport,
		From:          from,
		To:            cfg.Admins,
		Subject:       AlertSubject,
		Formatter:     formatter.NewMailFormatter(formatter.Config{}),
		Context:       o.ctx,
		ErrorReporter: o.reporter,
		Metrics:       metrics,
	})
}
