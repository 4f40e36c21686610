package handler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"
	"github.com/wneessen/go-mail/smtp"
)

// Security selects how a mail session is protected.
type Security int

const (
	// Plaintext sends without encryption.
	Plaintext Security = iota
	// StartTLS upgrades a plaintext session with STARTTLS and refuses to
	// continue if the server does not offer it.
	StartTLS
	// SSL wraps the whole session in TLS from the first byte (SMTPS).
	SSL
)

// String returns the string representation of the security mode
func (s Security) String() string {
	switch s {
	case Plaintext:
		return "plaintext"
	case StartTLS:
		return "starttls"
	case SSL:
		return "ssl"
	default:
		return "unknown"
	}
}

// DefaultPort is the conventional SMTP port for the security mode.
func (s Security) DefaultPort() int {
	switch s {
	case SSL:
		return 465
	case StartTLS:
		return 587
	default:
		return 25
	}
}

// Credentials authenticate a mail session.
type Credentials struct {
	Username string
	Password string
}

// Message is a single alert email.
type Message struct {
	From    string
	To      []string
	Subject string
	Date    time.Time
	Body    string
}

// MailTransport delivers messages. Implementations open whatever
// connection they need per call and release it before returning.
type MailTransport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig describes an SMTP endpoint.
type SMTPConfig struct {
	Host string
	// Port overrides Security.DefaultPort when non-zero
	Port        int
	Security    Security
	Credentials *Credentials
	// Timeout bounds dialing and each SMTP command (default: 30s)
	Timeout time.Duration
	// TLSConfig verifies the server for SSL and StartTLS (default: system
	// roots). ServerName defaults to Host.
	TLSConfig *tls.Config
}

// SMTPTransport sends each message over a fresh SMTP session.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport creates an SMTP transport
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = cfg.Security.DefaultPort()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}, nil
}

// Addr returns host:port of the endpoint
func (t *SMTPTransport) Addr() string {
	return fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
}

// Security returns the configured security mode
func (t *SMTPTransport) Security() Security {
	return t.cfg.Security
}

// Authenticated reports whether sessions log in before sending
func (t *SMTPTransport) Authenticated() bool {
	return t.cfg.Credentials != nil
}

func (t *SMTPTransport) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
	}

	switch t.cfg.Security {
	case SSL:
		opts = append(opts, mail.WithSSL())
	case StartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if t.cfg.TLSConfig != nil {
		tc := t.cfg.TLSConfig.Clone()
		if tc.ServerName == "" {
			tc.ServerName = t.cfg.Host
		}
		opts = append(opts, mail.WithTLSConfig(tc))
	}

	if c := t.cfg.Credentials; c != nil {
		if t.cfg.Security == Plaintext {
			// go-mail refuses PLAIN and LOGIN without TLS unless the
			// server is localhost
			opts = append(opts, mail.WithSMTPAuthCustom(&plaintextAuth{
				host:     t.cfg.Host,
				username: c.Username,
				password: c.Password,
			}))
		} else {
			opts = append(opts,
				mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
				mail.WithUsername(c.Username),
				mail.WithPassword(c.Password),
			)
		}
	}
	return opts
}

// ErrNoAuthMechanism is returned when the server offers no mechanism the
// plaintext transport can log in with.
var ErrNoAuthMechanism = errors.New("no supported SMTP AUTH mechanism")

// plaintextAuth logs in over an unencrypted session with the first of
// CRAM-MD5, PLAIN and LOGIN the server advertises.
type plaintextAuth struct {
	host     string
	username string
	password string
	mech     smtp.Auth
}

func (a *plaintextAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	switch {
	case slices.Contains(server.Auth, "CRAM-MD5"):
		a.mech = smtp.CRAMMD5Auth(a.username, a.password)
	case slices.Contains(server.Auth, "PLAIN"):
		a.mech = smtp.PlainAuth("", a.username, a.password, a.host, true)
	case slices.Contains(server.Auth, "LOGIN"):
		a.mech = smtp.LoginAuth(a.username, a.password, a.host, true)
	default:
		return "", nil, fmt.Errorf("%w: server offers %q", ErrNoAuthMechanism, strings.Join(server.Auth, " "))
	}
	return a.mech.Start(server)
}

func (a *plaintextAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if a.mech == nil {
		return nil, ErrNoAuthMechanism
	}
	return a.mech.Next(fromServer, more)
}

// Send dials, optionally authenticates, sends msg and quits.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(t.cfg.Host, t.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", t.Addr(), err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail via %s: %w", t.Addr(), err)
	}
	return nil
}

func buildMsg(msg *Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients %q: %w", strings.Join(msg.To, ","), err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(msg.Date)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
