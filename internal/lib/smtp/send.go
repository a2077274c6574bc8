package smtp

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
)

// ErrNoRecipients у письма нет ни одного адресата.
var ErrNoRecipients = errors.New("no recipients")

// Send отправляет письмо в отдельной сессии. Пустой From заменяется адресом
// отправителя из d. Сессия закрывается при любом исходе.
func Send(ctx context.Context, d Dialer, m Message) error {
	const op = "smtp.Send"
	if len(m.To) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRecipients)
	}
	if m.From == "" {
		m.From = d.From()
	}

	client, err := d.Dial(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(envelope(m.From)); err != nil {
		return fmt.Errorf("%s: mail from %s: %w", op, m.From, err)
	}
	for _, addr := range m.To {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt %s: %w", op, addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write(m.Bytes()); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write body: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}

// envelope извлекает голый адрес из заголовка вида "Name <addr>".
func envelope(from string) string {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}
