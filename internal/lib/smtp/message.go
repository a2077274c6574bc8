package smtp

import (
	"mime"
	"strings"
)

// Message текстовое письмо.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Bytes собирает письмо с заголовками. Переводы строк в теле приводятся к CRLF,
// тема с не-ASCII символами кодируется по RFC 2047.
func (m Message) Bytes() []byte {
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")

	return []byte(strings.Join([]string{
		"From: " + m.From,
		"To: " + strings.Join(m.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", m.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n"))
}
