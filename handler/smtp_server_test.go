package handler

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// smtpHost is a loopback address go-mail does not treat as localhost, so
// its unencrypted-auth guard applies as it would against a real relay.
const smtpHost = "127.0.0.2"

// smtpSession is what the fake server saw on one connection.
type smtpSession struct {
	Verbs    []string
	Mech     string
	Username string
	Password string
	From     string
	Rcpt     []string
	Data     []string
}

func (s smtpSession) count(verb string) int {
	n := 0
	for _, v := range s.Verbs {
		if v == verb {
			n++
		}
	}
	return n
}

// smtpServer is a minimal ESMTP server speaking just enough of the
// protocol for go-mail: EHLO, STARTTLS, AUTH PLAIN/LOGIN, MAIL, RCPT,
// DATA and QUIT.
type smtpServer struct {
	ln       net.Listener
	tls      *tls.Config
	mechs    string
	startTLS bool

	mu       sync.Mutex
	sessions []*smtpSession
	wg       sync.WaitGroup
}

// newSMTPServer listens on smtpHost. For SSL the listener speaks TLS
// from the first byte; for StartTLS the server offers STARTTLS. The
// returned pool trusts the server certificate.
func newSMTPServer(t *testing.T, sec Security, mechs string) (*smtpServer, *x509.CertPool) {
	t.Helper()

	serverTLS, roots := selfSignedTLS(t)

	ln, err := net.Listen("tcp", smtpHost+":0")
	if err != nil {
		t.Skipf("cannot listen on %s: %v", smtpHost, err)
	}
	if sec == SSL {
		ln = tls.NewListener(ln, serverTLS)
	}

	s := &smtpServer{ln: ln, tls: serverTLS, mechs: mechs, startTLS: sec == StartTLS}
	s.wg.Add(1)
	go s.accept()
	t.Cleanup(s.close)
	return s, roots
}

func (s *smtpServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *smtpServer) close() {
	_ = s.ln.Close()
	s.wg.Wait()
}

func (s *smtpServer) Sessions() []smtpSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]smtpSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	return out
}

func (s *smtpServer) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *smtpServer) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(conn)
		}()
	}
}

func (s *smtpServer) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	sess := &smtpSession{}
	s.update(func() { s.sessions = append(s.sessions, sess) })

	tp := textproto.NewConn(conn)
	reply := func(lines ...string) {
		for _, l := range lines {
			_ = tp.PrintfLine("%s", l)
		}
	}
	_, encrypted := conn.(*tls.Conn)

	reply("220 mail.example.com ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			reply("500 empty command")
			continue
		}
		verb := strings.ToUpper(fields[0])
		s.update(func() { sess.Verbs = append(sess.Verbs, verb) })

		switch verb {
		case "EHLO":
			lines := []string{"250-mail.example.com"}
			if s.startTLS && !encrypted {
				lines = append(lines, "250-STARTTLS")
			}
			reply(append(lines, "250 AUTH "+s.mechs)...)
		case "STARTTLS":
			reply("220 ready to start TLS")
			tc := tls.Server(conn, s.tls)
			if err := tc.Handshake(); err != nil {
				return
			}
			conn, tp, encrypted = tc, textproto.NewConn(tc), true
		case "AUTH":
			if !s.auth(tp, sess, fields[1:]) {
				reply("535 authentication failed")
				continue
			}
			reply("235 authenticated")
		case "MAIL":
			s.update(func() { sess.From = address(line) })
			reply("250 sender ok")
		case "RCPT":
			s.update(func() { sess.Rcpt = append(sess.Rcpt, address(line)) })
			reply("250 recipient ok")
		case "DATA":
			reply("354 end with <CRLF>.<CRLF>")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			s.update(func() { sess.Data = append(sess.Data, string(data)) })
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func (s *smtpServer) auth(tp *textproto.Conn, sess *smtpSession, args []string) bool {
	if len(args) == 0 || !strings.Contains(" "+s.mechs+" ", " "+strings.ToUpper(args[0])+" ") {
		return false
	}
	mech := strings.ToUpper(args[0])

	challenge := func(prompt string) (string, bool) {
		_ = tp.PrintfLine("334 %s", base64.StdEncoding.EncodeToString([]byte(prompt)))
		line, err := tp.ReadLine()
		if err != nil {
			return "", false
		}
		b, err := base64.StdEncoding.DecodeString(line)
		return string(b), err == nil
	}

	var user, pass string
	switch mech {
	case "PLAIN":
		var resp string
		if len(args) > 1 {
			b, err := base64.StdEncoding.DecodeString(args[1])
			if err != nil {
				return false
			}
			resp = string(b)
		} else {
			var ok bool
			if resp, ok = challenge(""); !ok {
				return false
			}
		}
		parts := strings.Split(resp, "\x00")
		if len(parts) != 3 {
			return false
		}
		user, pass = parts[1], parts[2]
	case "LOGIN":
		var ok bool
		if user, ok = challenge("Username:"); !ok {
			return false
		}
		if pass, ok = challenge("Password:"); !ok {
			return false
		}
	default:
		return false
	}

	s.update(func() {
		sess.Mech, sess.Username, sess.Password = mech, user, pass
	})
	return true
}

// address extracts the mailbox from "MAIL FROM:<a@b> ..." or "RCPT TO:<a@b>".
func address(line string) string {
	start := strings.IndexByte(line, '<')
	end := strings.IndexByte(line, '>')
	if start < 0 || end < start {
		return ""
	}
	return line[start+1 : end]
}

func selfSignedTLS(t *testing.T) (*tls.Config, *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "mail.example.com"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP(smtpHost)},
		DNSNames:              []string{"mail.example.com"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	roots := x509.NewCertPool()
	roots.AddCert(cert)

	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key, Leaf: cert}},
		MinVersion:   tls.VersionTLS12,
	}, roots
}
