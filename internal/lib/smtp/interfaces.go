// Package smtp содержит SMTP-транспорт для писем об изменении доступа.
package smtp

import (
	"context"
	"io"
)

// Client часть *smtp.Client, через которую отправляется одно письмо.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает авторизованную сессию с почтовым сервером.
type Dialer interface {
	Dial(ctx context.Context) (Client, error)
	From() string
}
