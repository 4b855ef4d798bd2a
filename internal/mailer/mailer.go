// Package mailer はメール通知の送信ポートとSMTP実装を提供する。
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message は送信するメール1通を表す。
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer はメール送信のインターフェース。
// 呼び出し側はディスパッチャ経由で非同期に利用し、送信失敗を
// ユーザー向けエラーとして扱わない。
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig はSMTP接続の設定。
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string // 空の場合は認証なしで送信する
	Password string
}

// SMTPMailer はnet/smtpによるMailerの実装。
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTPMailer はSMTPMailerを生成する。
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// Send はメールを1通送信する。
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := m.config.Host + ":" + m.config.Port

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, m.config.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	return nil
}

// compile-time interface check
var _ Mailer = (*SMTPMailer)(nil)
