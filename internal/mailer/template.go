package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

// resetPasswordSubject はパスワード再設定メールの件名。
const resetPasswordSubject = "Partyup: password recovery"

// resetPasswordTemplate はパスワード再設定メールの本文テンプレート。
var resetPasswordTemplate = template.Must(template.New("resetPassword").Parse(
	`Hi {{.Username}},

We received a request to reset your Partyup password.
Open the link below to choose a new one:

{{.ResetURL}}

The link is valid for 2 hours and can be used only once.
If you did not request this, you can safely ignore this mail.

-- Partyup
`))

// BuildResetPasswordMessage はパスワード再設定メールを組み立てる。
// resetURLには呼び出し元が組み立てたトークン付きURLを渡す。
func BuildResetPasswordMessage(to, username, resetURL string) (Message, error) {
	var body strings.Builder
	err := resetPasswordTemplate.Execute(&body, struct {
		Username string
		ResetURL string
	}{Username: username, ResetURL: resetURL})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render reset password mail: %w", err)
	}

	return Message{
		To:      to,
		Subject: resetPasswordSubject,
		Body:    body.String(),
	}, nil
}
