package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/config"
	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// ErrNoStartTLS сервер не предлагает STARTTLS, а конфиг не разрешает открытое соединение.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

// Transport открывает сессии с почтовым сервером из конфига.
// Без Insecure сервер обязан поддерживать STARTTLS.
type Transport struct {
	cfg    config.SMTP
	log    *slog.Logger
	dialer net.Dialer
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{
		cfg:    cfg,
		log:    log.With(slog.String("smtp_host", cfg.SMTPHost)),
		dialer: net.Dialer{Timeout: dialTimeout},
	}
}

// Dial подключается к серверу, включает TLS и проходит аутентификацию.
// Дедлайн ctx распространяется на всю сессию.
func (t *Transport) Dial(ctx context.Context) (Client, error) {
	const op = "smtp.Transport.Dial"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: dial %s: %w", op, addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		t.log.Error("failed to create SMTP client", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := t.handshake(client); err != nil {
		_ = client.Close()
		t.log.Error("SMTP handshake failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

func (t *Transport) handshake(client *smtp.Client) error {
	if !t.cfg.Insecure {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return ErrNoStartTLS
		}
		tlsConfig := &tls.Config{
			ServerName: t.cfg.SMTPHost,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start tls: %w", err)
		}
	}

	// локальные ловушки писем обычно работают без аутентификации
	if t.cfg.SMTPUser == "" {
		return nil
	}
	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// From возвращает адрес отправителя: smtp.from, а если он пуст, то логин.
func (t *Transport) From() string {
	if t.cfg.From != "" {
		return t.cfg.From
	}
	return t.cfg.SMTPUser
}
