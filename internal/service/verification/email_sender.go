package verification

import (
	"context"
	"fmt"
	"net/smtp"
)

type EmailSender struct {
	host     string
	port     string
	from     string
	password string
}

func NewEmailSender(host, port, from, password string) *EmailSender {
	return &EmailSender{host: host, port: port, from: from, password: password}
}

func (e *EmailSender) Send(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", e.from, e.password, e.host)
	if err := smtp.SendMail(e.host+":"+e.port, auth, e.from, []string{to}, codeMessage(e.from, to, code)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func codeMessage(from, to, code string) []byte {
	subject := "Seu código de verificação"
	body := fmt.Sprintf("Seu código de verificação é %s.\n\nEle expira em poucos minutos. Se você não pediu este código, ignore este e-mail.", code)

	return []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")
}
